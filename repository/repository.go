// Package repository persists users, reports and matches with gorm.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campus-lostfound/api-go/apperrors"
	"github.com/campus-lostfound/api-go/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportFilter narrows an admin report listing. Zero values do not filter.
type ReportFilter struct {
	Section string
	Status  models.ReportStatus
	Type    models.ReportKind
	From    *time.Time
	To      *time.Time
}

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	ListPendingByKind(ctx context.Context, kind models.ReportKind) ([]models.Report, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]models.Report, error)
	// UpdateStatus loads the report under a row lock, applies fn and saves
	// the new status in the same transaction. If fn fails nothing is written.
	UpdateStatus(ctx context.Context, id uint, fn func(*models.Report) error) (*models.Report, error)
}

type MatchRepository interface {
	// InsertNew stores every match whose (lost, found) pair has no row yet,
	// in a single transaction, and returns the ones actually inserted.
	InsertNew(ctx context.Context, matches []*models.Match) ([]*models.Match, error)
	ListByScore(ctx context.Context) ([]models.Match, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateSection(ctx context.Context, id uint, section string) error
}

type reportRepository struct {
	db *gorm.DB
}

var _ ReportRepository = (*reportRepository)(nil)

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, notFound(err, "report")
	}
	return &report, nil
}

func (r *reportRepository) ListPendingByKind(ctx context.Context, kind models.ReportKind) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.WithContext(ctx).
		Where("type = ? AND status = ?", kind, models.StatusPending).
		Order("id").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("list pending %s reports: %w", kind, err)
	}
	return reports, nil
}

func (r *reportRepository) ListByUser(ctx context.Context, userID uint) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("list reports of user %d: %w", userID, err)
	}
	return reports, nil
}

func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]models.Report, error) {
	query := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = reports.user_id")

	if filter.Section != "" {
		query = query.Where("users.section = ?", filter.Section)
	}
	if filter.Status != "" {
		query = query.Where("reports.status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("reports.type = ?", filter.Type)
	}
	if filter.From != nil {
		query = query.Where("reports.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("reports.created_at <= ?", *filter.To)
	}

	var reports []models.Report
	if err := query.Order("reports.created_at DESC").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id uint, fn func(*models.Report) error) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&report, id).Error; err != nil {
			return notFound(err, "report")
		}
		if err := fn(&report); err != nil {
			return err
		}
		return tx.Model(&report).Update("status", report.Status).Error
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

type matchRepository struct {
	db *gorm.DB
}

var _ MatchRepository = (*matchRepository)(nil)

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) InsertNew(ctx context.Context, matches []*models.Match) ([]*models.Match, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	var inserted []*models.Match
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted = inserted[:0]
		for _, m := range matches {
			var count int64
			err := tx.Model(&models.Match{}).
				Where("lost_report_id = ? AND found_report_id = ?", m.LostReportID, m.FoundReportID).
				Count(&count).Error
			if err != nil {
				return fmt.Errorf("check match %d/%d: %w", m.LostReportID, m.FoundReportID, err)
			}
			if count > 0 {
				continue
			}

			// A concurrent scan may have inserted the pair since the check;
			// the unique index turns that into a no-op.
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "lost_report_id"}, {Name: "found_report_id"}},
				DoNothing: true,
			}).Create(m)
			if res.Error != nil {
				if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
					continue
				}
				return fmt.Errorf("insert match %d/%d: %w", m.LostReportID, m.FoundReportID, res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			inserted = append(inserted, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

func (r *matchRepository) ListByScore(ctx context.Context) ([]models.Match, error) {
	var matches []models.Match
	err := r.db.WithContext(ctx).
		Preload("LostReport.User").
		Preload("FoundReport.User").
		Order("combined_score DESC").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

type userRepository struct {
	db *gorm.DB
}

var _ UserRepository = (*userRepository)(nil)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return nil
}

func (r *userRepository) UpdateSection(ctx context.Context, id uint, section string) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("section", section).Error
	if err != nil {
		return fmt.Errorf("update section of user %d: %w", id, err)
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", what, apperrors.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", what, err)
}
