package services

import (
	"context"
	"fmt"

	"github.com/campus-lostfound/api-go/apperrors"
	"github.com/campus-lostfound/api-go/models"
	"github.com/campus-lostfound/api-go/repository"
	"github.com/campus-lostfound/api-go/similarity"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MatchingConfig tunes the candidate scan.
type MatchingConfig struct {
	Weights similarity.Weights
	// Threshold is the combined score at or above which a match is high.
	Threshold float64
	// DiscardFloor drops pairs whose combined score is at or below it.
	DiscardFloor float64
	// Workers bounds how many candidates are scored at once.
	Workers int
}

var DefaultMatchingConfig = MatchingConfig{
	Weights:      similarity.DefaultWeights,
	Threshold:    0.70,
	DiscardFloor: 0.05,
	Workers:      4,
}

// ImageScorer compares two stored images.
type ImageScorer interface {
	Compare(ctx context.Context, refA, refB string) similarity.Score
}

type MatchingService interface {
	// RunMatching scores report against every pending report of the opposite
	// kind, stores new matches and returns the newly stored high matches.
	RunMatching(ctx context.Context, report *models.Report) ([]*models.Match, error)
}

type matchingService struct {
	reports repository.ReportRepository
	matches repository.MatchRepository
	images  ImageScorer
	cfg     MatchingConfig
	logger  *zap.Logger
}

var _ MatchingService = (*matchingService)(nil)

func NewMatchingService(
	reports repository.ReportRepository,
	matches repository.MatchRepository,
	images ImageScorer,
	cfg MatchingConfig,
	logger *zap.Logger,
) MatchingService {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &matchingService{
		reports: reports,
		matches: matches,
		images:  images,
		cfg:     cfg,
		logger:  logger.Named("matching"),
	}
}

func (s *matchingService) RunMatching(ctx context.Context, report *models.Report) ([]*models.Match, error) {
	candidates, err := s.reports.ListPendingByKind(ctx, report.Type.Opposite())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrMatchingFailed, err)
	}

	// Scoring is independent per candidate; results keep candidate order.
	scored := make([]*models.Match, len(candidates))
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Workers)
	for i := range candidates {
		i := i
		g.Go(func() error {
			m, err := s.scoreCandidate(ctx, report, &candidates[i])
			if err != nil {
				s.logger.Error("Failed to score candidate",
					zap.Uint("report_id", report.ID),
					zap.Uint("candidate_id", candidates[i].ID),
					zap.Error(err))
				return nil
			}
			scored[i] = m
			return nil
		})
	}
	_ = g.Wait()

	var pending []*models.Match
	for _, m := range scored {
		if m != nil {
			pending = append(pending, m)
		}
	}

	inserted, err := s.matches.InsertNew(ctx, pending)
	if err != nil {
		s.logger.Error("Failed to store matches", zap.Uint("report_id", report.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrMatchingFailed, err)
	}

	var high []*models.Match
	for _, m := range inserted {
		if m.CombinedScore >= s.cfg.Threshold {
			high = append(high, m)
			s.logger.Info("High match found",
				zap.Uint("lost_report_id", m.LostReportID),
				zap.Uint("found_report_id", m.FoundReportID),
				zap.Float64("score", m.CombinedScore))
		}
	}

	s.logger.Debug("Matching finished",
		zap.Uint("report_id", report.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("stored", len(inserted)),
		zap.Int("high", len(high)))
	return high, nil
}

// scoreCandidate returns the match for one pair, or nil when the combined
// score is at or below the discard floor. A panic while scoring is turned
// into an error so one bad candidate cannot take the scan down.
func (s *matchingService) scoreCandidate(ctx context.Context, report, candidate *models.Report) (m *models.Match, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("panic while scoring: %v", r)
		}
	}()

	text := similarity.CompareText(report.MatchText(), candidate.MatchText())
	if text.Failed() {
		s.logger.Debug("Text comparison degraded",
			zap.Uint("candidate_id", candidate.ID),
			zap.String("reason", string(text.Failure)))
	}

	var image similarity.Score
	if report.HasImage() && candidate.HasImage() && s.images != nil {
		image = s.images.Compare(ctx, *report.ImagePath, *candidate.ImagePath)
		if image.Failed() {
			s.logger.Warn("Image comparison degraded",
				zap.Uint("candidate_id", candidate.ID),
				zap.String("reason", string(image.Failure)),
				zap.Error(image.Err))
		}
	}

	imageSim := similarity.Round4(image.Float())
	textSim := similarity.Round4(text.Float())
	combined := s.cfg.Weights.Combine(image.Float(), text.Float())
	if combined <= s.cfg.DiscardFloor {
		return nil, nil
	}

	lostID, foundID := models.MatchPair(report, candidate)
	return &models.Match{
		LostReportID:    lostID,
		FoundReportID:   foundID,
		ImageSimilarity: imageSim,
		TextSimilarity:  textSim,
		CombinedScore:   combined,
	}, nil
}
