package controllers

import (
	"net/http"

	"github.com/campus-lostfound/api-go/models"
	"github.com/campus-lostfound/api-go/services"
	"github.com/campus-lostfound/api-go/storage"
	"github.com/campus-lostfound/api-go/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReportController struct {
	Reports services.ReportService
	logger  *zap.Logger
}

func NewReportController(reports services.ReportService, logger *zap.Logger) *ReportController {
	return &ReportController{Reports: reports, logger: logger.Named("report-controller")}
}

// Submit accepts a multipart form with the report fields and an optional
// "image" file.
func (rc *ReportController) Submit(c *gin.Context) {
	user := utils.GetUser(c)

	input := services.ReportInput{
		Type:             c.PostForm("type"),
		ItemName:         c.PostForm("item_name"),
		Category:         c.PostForm("category"),
		Description:      c.PostForm("description"),
		Block:            c.PostForm("block"),
		Floor:            c.PostForm("floor"),
		SpecificLocation: c.PostForm("specific_location"),
		DateReported:     c.PostForm("date_reported"),
	}

	var upload *storage.Upload
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Could not read image"})
			return
		}
		defer f.Close()
		upload = &storage.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		}
	}

	res, err := rc.Reports.Submit(c.Request.Context(), user, input, upload)
	if err != nil {
		respondError(c, rc.logger, err)
		return
	}

	resp := newReportResponse(res.Report)
	resp.Username = &user.Username
	if user.Section != "" {
		resp.Section = &user.Section
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    resp,
		Meta:    gin.H{"high_matches": len(res.HighMatches)},
		Message: "Report submitted successfully",
	})
}

func (rc *ReportController) ListMine(c *gin.Context) {
	user := utils.GetUser(c)

	reports, err := rc.Reports.ListMine(c.Request.Context(), user)
	if err != nil {
		respondError(c, rc.logger, err)
		return
	}

	out := make([]*ReportResponse, 0, len(reports))
	for i := range reports {
		resp := newReportResponse(&reports[i])
		resp.Username = &user.Username
		if user.Section != "" {
			resp.Section = &user.Section
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: out})
}

func reportResponses(reports []models.Report) []*ReportResponse {
	out := make([]*ReportResponse, 0, len(reports))
	for i := range reports {
		out = append(out, newReportResponse(&reports[i]))
	}
	return out
}
