package controllers

import (
	"time"

	"github.com/campus-lostfound/api-go/models"
)

type StandardResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ReportResponse struct {
	ID               uint                `json:"id"`
	UserID           uint                `json:"user_id"`
	Type             models.ReportKind   `json:"type"`
	ItemName         string              `json:"item_name"`
	Category         string              `json:"category"`
	Description      string              `json:"description"`
	Block            string              `json:"block"`
	Floor            *string             `json:"floor"`
	SpecificLocation *string             `json:"specific_location"`
	DateReported     string              `json:"date_reported"`
	ImagePath        *string             `json:"image_path"`
	Status           models.ReportStatus `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	Username         *string             `json:"username"`
	Section          *string             `json:"section"`
}

type MatchResponse struct {
	ID              uint            `json:"id"`
	LostReportID    uint            `json:"lost_report_id"`
	FoundReportID   uint            `json:"found_report_id"`
	ImageSimilarity float64         `json:"image_similarity"`
	TextSimilarity  float64         `json:"text_similarity"`
	CombinedScore   float64         `json:"combined_score"`
	CreatedAt       time.Time       `json:"created_at"`
	LostReport      *ReportResponse `json:"lost_report"`
	FoundReport     *ReportResponse `json:"found_report"`
}

// newReportResponse uses r.User for owner details when it is loaded.
func newReportResponse(r *models.Report) *ReportResponse {
	if r == nil {
		return nil
	}
	resp := &ReportResponse{
		ID:               r.ID,
		UserID:           r.UserID,
		Type:             r.Type,
		ItemName:         r.ItemName,
		Category:         r.Category,
		Description:      r.Description,
		Block:            r.Block,
		Floor:            r.Floor,
		SpecificLocation: r.SpecificLocation,
		DateReported:     r.DateReported,
		ImagePath:        r.ImagePath,
		Status:           r.Status,
		CreatedAt:        r.CreatedAt,
	}
	if r.User != nil {
		resp.Username = &r.User.Username
		resp.Section = r.User.Section
	}
	return resp
}

func newMatchResponse(m *models.Match) MatchResponse {
	return MatchResponse{
		ID:              m.ID,
		LostReportID:    m.LostReportID,
		FoundReportID:   m.FoundReportID,
		ImageSimilarity: m.ImageSimilarity,
		TextSimilarity:  m.TextSimilarity,
		CombinedScore:   m.CombinedScore,
		CreatedAt:       m.CreatedAt,
		LostReport:      newReportResponse(m.LostReport),
		FoundReport:     newReportResponse(m.FoundReport),
	}
}
