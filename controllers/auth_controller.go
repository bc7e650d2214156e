package controllers

import (
	"net/http"

	"github.com/campus-lostfound/api-go/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	Auth   services.AuthService
	logger *zap.Logger
}

func NewAuthController(auth services.AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{Auth: auth, logger: logger.Named("auth-controller")}
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	token, user, err := ac.Auth.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"token_type":   "bearer",
		"access_token": token,
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"role":       user.Role,
			"department": user.Department,
			"section":    user.Section,
		},
	})
}
