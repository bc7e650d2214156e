package controllers

import (
	"errors"
	"net/http"

	"github.com/campus-lostfound/api-go/apperrors"
	"github.com/campus-lostfound/api-go/models"
	"github.com/campus-lostfound/api-go/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors to HTTP responses.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var transitionErr *models.InvalidTransitionError
	var rejected *storage.RejectedFileError

	switch {
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   transitionErr.Error(),
			"from":    transitionErr.From,
			"to":      transitionErr.To,
		})
	case errors.As(err, &rejected):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": rejected.Reason})
	case errors.Is(err, apperrors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Forbidden"})
	default:
		logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	}
}
