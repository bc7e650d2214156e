package models

import (
	"fmt"
	"time"
)

type ReportKind string

const (
	ReportKindLost  ReportKind = "lost"
	ReportKindFound ReportKind = "found"
)

// Opposite returns the kind a report of this kind is matched against.
func (k ReportKind) Opposite() ReportKind {
	if k == ReportKindLost {
		return ReportKindFound
	}
	return ReportKindLost
}

func (k ReportKind) Valid() bool {
	return k == ReportKindLost || k == ReportKindFound
}

func ParseReportKind(s string) (ReportKind, error) {
	k := ReportKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("type must be 'lost' or 'found'")
	}
	return k, nil
}

type Report struct {
	ID               uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt        time.Time    `gorm:"index:ix_reports_created_at" json:"created_at"`
	UserID           uint         `gorm:"not null;index" json:"user_id"`
	Type             ReportKind   `gorm:"type:varchar(10);not null;index:ix_reports_type" json:"type"`
	ItemName         string       `gorm:"type:varchar(100);not null" json:"item_name"`
	Category         string       `gorm:"type:varchar(50);not null" json:"category"`
	Description      string       `gorm:"type:text;not null" json:"description"`
	Block            string       `gorm:"type:varchar(50);not null" json:"block"`
	Floor            *string      `gorm:"type:varchar(50)" json:"floor"`
	SpecificLocation *string      `gorm:"type:varchar(100)" json:"specific_location"`
	DateReported     string       `gorm:"type:varchar(20);not null" json:"date_reported"`
	ImagePath        *string      `gorm:"type:varchar(255)" json:"image_path"`
	Status           ReportStatus `gorm:"type:varchar(20);not null;default:'pending';index:ix_reports_status" json:"status"` // pending, match_found, closed

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// MatchText is the text the matcher compares: name, category and description.
func (r *Report) MatchText() string {
	return r.ItemName + " " + r.Category + " " + r.Description
}

func (r *Report) HasImage() bool {
	return r.ImagePath != nil && *r.ImagePath != ""
}
