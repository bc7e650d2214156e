package controllers

import (
	"net/http"
	"strconv"

	"github.com/campus-lostfound/api-go/models"
	"github.com/campus-lostfound/api-go/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminController struct {
	Reports services.ReportService
	Status  services.StatusService
	logger  *zap.Logger
}

func NewAdminController(reports services.ReportService, status services.StatusService, logger *zap.Logger) *AdminController {
	return &AdminController{Reports: reports, Status: status, logger: logger.Named("admin-controller")}
}

func (ac *AdminController) ListReports(c *gin.Context) {
	reports, err := ac.Reports.ListAll(c.Request.Context(), services.AdminReportQuery{
		Section:    c.Query("section"),
		TimeFilter: c.Query("time_filter"),
		Status:     c.Query("status"),
		ReportType: c.Query("report_type"),
	})
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: reportResponses(reports)})
}

func (ac *AdminController) ListMatches(c *gin.Context) {
	matches, err := ac.Reports.ListMatches(c.Request.Context())
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}

	out := make([]MatchResponse, 0, len(matches))
	for i := range matches {
		out = append(out, newMatchResponse(&matches[i]))
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: out})
}

func (ac *AdminController) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid report id"})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	report, err := ac.Status.TransitionStatus(c.Request.Context(), uint(id), models.ReportStatus(input.Status))
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    gin.H{"new_status": report.Status},
		Message: "Status updated",
	})
}
