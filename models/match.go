package models

import (
	"time"
)

// Match relates one lost report to one found report. At most one row exists
// per (LostReportID, FoundReportID); rows are never updated.
type Match struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	LostReportID    uint      `gorm:"not null;index;uniqueIndex:idx_matches_pair,priority:1" json:"lost_report_id"`
	FoundReportID   uint      `gorm:"not null;index;uniqueIndex:idx_matches_pair,priority:2" json:"found_report_id"`
	ImageSimilarity float64   `gorm:"not null;default:0" json:"image_similarity"`
	TextSimilarity  float64   `gorm:"not null;default:0" json:"text_similarity"`
	CombinedScore   float64   `gorm:"not null;default:0;index" json:"combined_score"`

	LostReport  *Report `gorm:"foreignKey:LostReportID" json:"lost_report,omitempty"`
	FoundReport *Report `gorm:"foreignKey:FoundReportID" json:"found_report,omitempty"`
}

// MatchPair returns the (lost, found) ordering for a newly submitted report
// and a candidate of the opposite kind.
func MatchPair(newReport, candidate *Report) (lostID, foundID uint) {
	if newReport.Type == ReportKindLost {
		return newReport.ID, candidate.ID
	}
	return candidate.ID, newReport.ID
}
