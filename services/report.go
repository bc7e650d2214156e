package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/campus-lostfound/api-go/apperrors"
	"github.com/campus-lostfound/api-go/models"
	"github.com/campus-lostfound/api-go/notify"
	"github.com/campus-lostfound/api-go/repository"
	"github.com/campus-lostfound/api-go/storage"
	"github.com/campus-lostfound/api-go/utils"
	"go.uber.org/zap"
)

// ReportInput is a submission as received from the client.
type ReportInput struct {
	Type             string
	ItemName         string
	Category         string
	Description      string
	Block            string
	Floor            string
	SpecificLocation string
	DateReported     string
}

type fieldRule struct {
	name     string
	value    string
	required bool
	max      int
}

// Validate checks the type and field lengths.
func (in ReportInput) Validate() error {
	if _, err := models.ParseReportKind(in.Type); err != nil {
		return fmt.Errorf("%w: Type must be 'lost' or 'found'", apperrors.ErrInvalidInput)
	}
	rules := []fieldRule{
		{"item_name", in.ItemName, true, 100},
		{"category", in.Category, true, 50},
		{"description", in.Description, true, 2000},
		{"block", in.Block, true, 50},
		{"floor", in.Floor, false, 50},
		{"specific_location", in.SpecificLocation, false, 100},
		{"date_reported", in.DateReported, true, 20},
	}
	for _, r := range rules {
		v := strings.TrimSpace(r.value)
		if r.required && v == "" {
			return fmt.Errorf("%w: %s is required", apperrors.ErrInvalidInput, r.name)
		}
		if utf8.RuneCountInString(v) > r.max {
			return fmt.Errorf("%w: %s must be at most %d characters", apperrors.ErrInvalidInput, r.name, r.max)
		}
	}
	return nil
}

// SubmitResult is a stored report and the number of high matches it produced.
type SubmitResult struct {
	Report      *models.Report
	HighMatches []*models.Match
	// MatchingErr is set when the scan failed; the report is stored anyway.
	MatchingErr error
}

// AdminReportQuery carries the raw admin listing filters.
type AdminReportQuery struct {
	Section    string
	TimeFilter string
	Status     string
	ReportType string
}

type ReportService interface {
	Submit(ctx context.Context, user *utils.Principal, input ReportInput, image *storage.Upload) (*SubmitResult, error)
	ListMine(ctx context.Context, user *utils.Principal) ([]models.Report, error)
	ListAll(ctx context.Context, query AdminReportQuery) ([]models.Report, error)
	ListMatches(ctx context.Context) ([]models.Match, error)
}

type reportService struct {
	reports  repository.ReportRepository
	matches  repository.MatchRepository
	store    storage.Store
	matching MatchingService
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

var _ ReportService = (*reportService)(nil)

func NewReportService(
	reports repository.ReportRepository,
	matches repository.MatchRepository,
	store storage.Store,
	matching MatchingService,
	notifier notify.Notifier,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		reports:  reports,
		matches:  matches,
		store:    store,
		matching: matching,
		notifier: notifier,
		logger:   logger.Named("reports"),
		now:      time.Now,
	}
}

func (s *reportService) Submit(ctx context.Context, user *utils.Principal, input ReportInput, image *storage.Upload) (*SubmitResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var imagePath *string
	if image != nil && image.Filename != "" {
		ref, err := s.store.Save(ctx, *image)
		if err != nil {
			return nil, err
		}
		imagePath = &ref
	}

	report := &models.Report{
		UserID:           user.UserID,
		Type:             models.ReportKind(input.Type),
		ItemName:         strings.TrimSpace(input.ItemName),
		Category:         strings.TrimSpace(input.Category),
		Description:      strings.TrimSpace(input.Description),
		Block:            strings.TrimSpace(input.Block),
		Floor:            utils.OptionalString(input.Floor),
		SpecificLocation: utils.OptionalString(input.SpecificLocation),
		DateReported:     strings.TrimSpace(input.DateReported),
		ImagePath:        imagePath,
		Status:           models.StatusPending,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	result := &SubmitResult{Report: report}
	result.HighMatches, result.MatchingErr = s.runMatching(ctx, report)
	if result.MatchingErr != nil {
		s.logger.Error("Matching failed", zap.Uint("report_id", report.ID), zap.Error(result.MatchingErr))
	}

	s.notifier.Broadcast(notify.Event{
		"event": "new_report",
		"report": map[string]interface{}{
			"id":          report.ID,
			"type":        report.Type,
			"item_name":   report.ItemName,
			"category":    report.Category,
			"description": report.Description,
			"block":       report.Block,
			"floor":       report.Floor,
			"status":      report.Status,
			"created_at":  report.CreatedAt,
			"username":    user.Username,
			"section":     user.Section,
			"image_path":  report.ImagePath,
		},
		"high_matches": len(result.HighMatches),
	})
	return result, nil
}

// runMatching runs the scan on its own goroutine, detached from request
// cancellation, and waits for it.
func (s *reportService) runMatching(ctx context.Context, report *models.Report) ([]*models.Match, error) {
	type outcome struct {
		high []*models.Match
		err  error
	}
	done := make(chan outcome, 1)
	scanCtx := context.WithoutCancel(ctx)
	go func() {
		high, err := s.matching.RunMatching(scanCtx, report)
		done <- outcome{high, err}
	}()
	o := <-done
	return o.high, o.err
}

func (s *reportService) ListMine(ctx context.Context, user *utils.Principal) ([]models.Report, error) {
	return s.reports.ListByUser(ctx, user.UserID)
}

func (s *reportService) ListAll(ctx context.Context, query AdminReportQuery) ([]models.Report, error) {
	filter := repository.ReportFilter{Section: query.Section}

	if query.Status != "" {
		status, err := models.ParseReportStatus(query.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		filter.Status = status
	}
	if query.ReportType != "" {
		kind, err := models.ParseReportKind(query.ReportType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		filter.Type = kind
	}
	if query.TimeFilter != "" {
		from, to, ok := utils.TimeWindow(query.TimeFilter, s.now().UTC())
		if !ok {
			return nil, fmt.Errorf("%w: unknown time_filter '%s'", apperrors.ErrInvalidInput, query.TimeFilter)
		}
		filter.From = from
		filter.To = &to
	}
	return s.reports.List(ctx, filter)
}

func (s *reportService) ListMatches(ctx context.Context) ([]models.Match, error) {
	return s.matches.ListByScore(ctx)
}

// IsRejectedUpload reports whether err is an upload validation failure.
func IsRejectedUpload(err error) bool {
	var rejected *storage.RejectedFileError
	return errors.As(err, &rejected)
}
