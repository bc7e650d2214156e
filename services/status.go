package services

import (
	"context"

	"github.com/campus-lostfound/api-go/models"
	"github.com/campus-lostfound/api-go/notify"
	"github.com/campus-lostfound/api-go/repository"
	"go.uber.org/zap"
)

type StatusService interface {
	// TransitionStatus moves a report to requested. It returns
	// apperrors.ErrNotFound for an unknown id and *models.InvalidTransitionError
	// when the move is not allowed.
	TransitionStatus(ctx context.Context, reportID uint, requested models.ReportStatus) (*models.Report, error)
}

type statusService struct {
	reports  repository.ReportRepository
	notifier notify.Notifier
	logger   *zap.Logger
}

var _ StatusService = (*statusService)(nil)

func NewStatusService(reports repository.ReportRepository, notifier notify.Notifier, logger *zap.Logger) StatusService {
	return &statusService{
		reports:  reports,
		notifier: notifier,
		logger:   logger.Named("status"),
	}
}

func (s *statusService) TransitionStatus(ctx context.Context, reportID uint, requested models.ReportStatus) (*models.Report, error) {
	var from models.ReportStatus
	report, err := s.reports.UpdateStatus(ctx, reportID, func(r *models.Report) error {
		from = r.Status
		return r.Transition(requested)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Report status changed",
		zap.Uint("report_id", report.ID),
		zap.String("from", string(from)),
		zap.String("to", string(report.Status)))

	if s.notifier != nil {
		s.notifier.Broadcast(notify.Event{
			"event":      "report_status_changed",
			"report_id":  report.ID,
			"old_status": from,
			"new_status": report.Status,
		})
	}
	return report, nil
}
