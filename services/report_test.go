package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/campus-lostfound/api-go/apperrors"
	"github.com/campus-lostfound/api-go/models"
	"github.com/campus-lostfound/api-go/storage"
	"github.com/campus-lostfound/api-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubMatching struct {
	high []*models.Match
	err  error
	seen []uint
}

func (s *stubMatching) RunMatching(_ context.Context, r *models.Report) ([]*models.Match, error) {
	s.seen = append(s.seen, r.ID)
	return s.high, s.err
}

func validInput() ReportInput {
	return ReportInput{
		Type:         "lost",
		ItemName:     " Black wallet ",
		Category:     "Accessories",
		Description:  "leather, has student id",
		Block:        "A",
		Floor:        " ",
		DateReported: "2026-03-12",
	}
}

func newReportFixture() (*reportService, *memStore, *stubMatching, *recordingNotifier) {
	store := newMemStore()
	matching := &stubMatching{}
	notifier := &recordingNotifier{}
	svc := NewReportService(memReports{store}, memMatches{store}, &memFileStore{saved: map[string][]byte{}},
		matching, notifier, zap.NewNop()).(*reportService)
	return svc, store, matching, notifier
}

var student = &utils.Principal{UserID: 7, Username: "727625BIT116", Role: "student", Section: "IT-B"}

func TestSubmitCreatesPendingReportAndRunsMatching(t *testing.T) {
	svc, _, matching, notifier := newReportFixture()
	matching.high = []*models.Match{{ID: 1}}

	res, err := svc.Submit(context.Background(), student, validInput(), &storage.Upload{
		Filename: "wallet.png", ContentType: "image/png", Size: 10, Body: strings.NewReader("x"),
	})
	require.NoError(t, err)
	require.NoError(t, res.MatchingErr)

	r := res.Report
	assert.Equal(t, models.StatusPending, r.Status)
	assert.Equal(t, "Black wallet", r.ItemName)
	assert.Nil(t, r.Floor)
	require.NotNil(t, r.ImagePath)
	assert.Equal(t, uint(7), r.UserID)
	assert.Equal(t, []uint{r.ID}, matching.seen)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "new_report", notifier.events[0]["event"])
	assert.Equal(t, 1, notifier.events[0]["high_matches"])
}

func TestSubmitSurvivesMatchingFailure(t *testing.T) {
	svc, store, matching, notifier := newReportFixture()
	matching.err = apperrors.ErrMatchingFailed

	res, err := svc.Submit(context.Background(), student, validInput(), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, res.MatchingErr, apperrors.ErrMatchingFailed)
	assert.Empty(t, res.HighMatches)
	assert.Len(t, store.reports, 1)
	assert.Equal(t, 0, notifier.events[0]["high_matches"])
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	svc, store, _, _ := newReportFixture()

	in := validInput()
	in.Type = "stolen"
	_, err := svc.Submit(context.Background(), student, in, nil)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	in = validInput()
	in.ItemName = strings.Repeat("x", 101)
	_, err = svc.Submit(context.Background(), student, in, nil)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	in = validInput()
	in.Block = "  "
	_, err = svc.Submit(context.Background(), student, in, nil)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.Submit(context.Background(), student, validInput(), &storage.Upload{Filename: "virus.exe"})
	assert.True(t, IsRejectedUpload(err))

	assert.Empty(t, store.reports)
}

func TestListAllFilters(t *testing.T) {
	svc, store, _, _ := newReportFixture()
	now := time.Date(2026, time.March, 12, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	store.add(models.Report{Type: models.ReportKindLost, CreatedAt: now.Add(-time.Hour)})
	store.add(models.Report{Type: models.ReportKindFound, CreatedAt: now.Add(-time.Hour)})
	store.add(models.Report{Type: models.ReportKindLost, CreatedAt: now.AddDate(0, 0, -3)})

	all, err := svc.ListAll(context.Background(), AdminReportQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	today, err := svc.ListAll(context.Background(), AdminReportQuery{TimeFilter: "today", ReportType: "lost"})
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, uint(1), today[0].ID)

	_, err = svc.ListAll(context.Background(), AdminReportQuery{TimeFilter: "someday"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.ListAll(context.Background(), AdminReportQuery{Status: "resolved"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestListMine(t *testing.T) {
	svc, store, _, _ := newReportFixture()
	store.add(models.Report{UserID: 7})
	store.add(models.Report{UserID: 8})
	store.add(models.Report{UserID: 7})

	mine, err := svc.ListMine(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, uint(3), mine[0].ID)
}
