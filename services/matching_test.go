package services

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/campus-lostfound/api-go/apperrors"
	"github.com/campus-lostfound/api-go/models"
	"github.com/campus-lostfound/api-go/similarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type dirSource string

func (d dirSource) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(string(d), ref))
}

func writeTestImage(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: 40, B: uint8(y * 8), A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return name
}

func strPtr(s string) *string { return &s }

func testMatchingConfig() MatchingConfig {
	return MatchingConfig{
		Weights:      similarity.Weights{Image: 0.4, Text: 0.6},
		Threshold:    0.70,
		DiscardFloor: 0.05,
		Workers:      2,
	}
}

func newMatching(store *memStore, images ImageScorer) MatchingService {
	return NewMatchingService(memReports{store}, memMatches{store}, images, testMatchingConfig(), zap.NewNop())
}

func TestRunMatchingHighMatchWithDuplicateImage(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, dir, "a.png")
	writeTestImage(t, dir, "a_dup.png")

	store := newMemStore()
	candidate := store.add(models.Report{Type: models.ReportKindFound, ItemName: "black leather wallet", ImagePath: strPtr("a_dup.png")})
	report := store.add(models.Report{Type: models.ReportKindLost, ItemName: "black wallet leather", ImagePath: strPtr("a.png")})

	svc := newMatching(store, similarity.NewImageComparer(dirSource(dir)))
	high, err := svc.RunMatching(context.Background(), report)
	require.NoError(t, err)
	require.Len(t, high, 1)

	m := high[0]
	assert.Equal(t, report.ID, m.LostReportID)
	assert.Equal(t, candidate.ID, m.FoundReportID)
	assert.InDelta(t, 1.0, m.ImageSimilarity, 1e-4)
	assert.Greater(t, m.TextSimilarity, 0.7)
	assert.GreaterOrEqual(t, m.CombinedScore, 0.70)
	assert.Equal(t, 1, store.matchCount())
}

func TestRunMatchingDiscardsNoise(t *testing.T) {
	store := newMemStore()
	store.add(models.Report{Type: models.ReportKindFound, ItemName: "blue umbrella"})
	report := store.add(models.Report{Type: models.ReportKindLost, ItemName: "black wallet leather", ImagePath: strPtr("a.png")})

	high, err := newMatching(store, nil).RunMatching(context.Background(), report)
	require.NoError(t, err)
	assert.Empty(t, high)
	assert.Equal(t, 0, store.matchCount())
}

func TestRunMatchingStoresLowMatchesWithoutPromoting(t *testing.T) {
	store := newMemStore()
	store.add(models.Report{Type: models.ReportKindLost, ItemName: "black leather wallet", Category: "accessories", Description: "student id inside"})
	report := store.add(models.Report{Type: models.ReportKindFound, ItemName: "brown leather wallet", Category: "bags", Description: "found near canteen"})

	high, err := newMatching(store, nil).RunMatching(context.Background(), report)
	require.NoError(t, err)
	assert.Empty(t, high)

	matches, _ := memMatches{store}.ListByScore(context.Background())
	require.Len(t, matches, 1)
	assert.Greater(t, matches[0].CombinedScore, 0.05)
	assert.Less(t, matches[0].CombinedScore, 0.70)
	assert.Equal(t, 0.0, matches[0].ImageSimilarity)
	// The new report is found, so the candidate takes the lost side.
	assert.Equal(t, uint(1), matches[0].LostReportID)
	assert.Equal(t, report.ID, matches[0].FoundReportID)
}

func TestRunMatchingIsIdempotent(t *testing.T) {
	store := newMemStore()
	store.add(models.Report{Type: models.ReportKindFound, ItemName: "black leather wallet"})
	report := store.add(models.Report{Type: models.ReportKindLost, ItemName: "black wallet leather"})
	svc := newMatching(store, nil)

	_, err := svc.RunMatching(context.Background(), report)
	require.NoError(t, err)
	require.Equal(t, 1, store.matchCount())

	second, err := svc.RunMatching(context.Background(), report)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Equal(t, 1, store.matchCount())
}

func TestRunMatchingSkipsResolvedAndSameKindReports(t *testing.T) {
	store := newMemStore()
	store.add(models.Report{Type: models.ReportKindFound, ItemName: "black leather wallet", Status: models.StatusMatchFound})
	store.add(models.Report{Type: models.ReportKindFound, ItemName: "black leather wallet", Status: models.StatusClosed})
	store.add(models.Report{Type: models.ReportKindLost, ItemName: "black leather wallet"})
	report := store.add(models.Report{Type: models.ReportKindLost, ItemName: "black wallet leather"})

	high, err := newMatching(store, nil).RunMatching(context.Background(), report)
	require.NoError(t, err)
	assert.Empty(t, high)
	assert.Equal(t, 0, store.matchCount())
}

type panickyImages struct{ bad string }

func (p panickyImages) Compare(_ context.Context, a, b string) similarity.Score {
	if a == p.bad || b == p.bad {
		panic("corrupt image")
	}
	return similarity.Score{Value: 1}
}

func TestRunMatchingContinuesPastFailingCandidate(t *testing.T) {
	store := newMemStore()
	store.add(models.Report{Type: models.ReportKindFound, ItemName: "black leather wallet", ImagePath: strPtr("corrupt.png")})
	good := store.add(models.Report{Type: models.ReportKindFound, ItemName: "black leather wallet", ImagePath: strPtr("ok.png")})
	report := store.add(models.Report{Type: models.ReportKindLost, ItemName: "black wallet leather", ImagePath: strPtr("mine.png")})

	high, err := newMatching(store, panickyImages{bad: "corrupt.png"}).RunMatching(context.Background(), report)
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, good.ID, high[0].FoundReportID)
}

func TestRunMatchingPersistenceFailure(t *testing.T) {
	store := newMemStore()
	store.insertErr = errors.New("commit failed")
	store.add(models.Report{Type: models.ReportKindFound, ItemName: "black leather wallet"})
	report := store.add(models.Report{Type: models.ReportKindLost, ItemName: "black wallet leather"})

	high, err := newMatching(store, nil).RunMatching(context.Background(), report)
	assert.Nil(t, high)
	assert.True(t, errors.Is(err, apperrors.ErrMatchingFailed))
}

func TestRunMatchingConcurrentOppositeSubmissions(t *testing.T) {
	store := newMemStore()
	lost := store.add(models.Report{Type: models.ReportKindLost, ItemName: "grey hoodie", Description: "nike logo"})
	found := store.add(models.Report{Type: models.ReportKindFound, ItemName: "grey hoodie", Description: "nike logo on chest"})
	svc := newMatching(store, nil)

	var wg sync.WaitGroup
	for _, r := range []*models.Report{lost, found} {
		wg.Add(1)
		go func(r *models.Report) {
			defer wg.Done()
			_, err := svc.RunMatching(context.Background(), r)
			assert.NoError(t, err)
		}(r)
	}
	wg.Wait()

	matches, _ := memMatches{store}.ListByScore(context.Background())
	require.Len(t, matches, 1)
	assert.Equal(t, lost.ID, matches[0].LostReportID)
	assert.Equal(t, found.ID, matches[0].FoundReportID)
}

func TestRunMatchingThresholdIsInclusive(t *testing.T) {
	store := newMemStore()
	store.add(models.Report{Type: models.ReportKindFound, ItemName: "black leather wallet"})
	report := store.add(models.Report{Type: models.ReportKindLost, ItemName: "black wallet leather"})

	cfg := testMatchingConfig()
	cfg.Threshold = 0.6 // text-only identical pair fuses to exactly 0.6
	svc := NewMatchingService(memReports{store}, memMatches{store}, nil, cfg, zap.NewNop())

	high, err := svc.RunMatching(context.Background(), report)
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, 0.6, high[0].CombinedScore)
}

func TestRunMatchingLogsFailedCandidate(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	store := newMemStore()
	bad := store.add(models.Report{Type: models.ReportKindFound, ItemName: "black leather wallet", ImagePath: strPtr("corrupt.png")})
	report := store.add(models.Report{Type: models.ReportKindLost, ItemName: "black wallet leather", ImagePath: strPtr("mine.png")})

	svc := NewMatchingService(memReports{store}, memMatches{store}, panickyImages{bad: "corrupt.png"}, testMatchingConfig(), zap.New(core))
	_, err := svc.RunMatching(context.Background(), report)
	require.NoError(t, err)

	entries := logs.FilterMessage("Failed to score candidate").All()
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(bad.ID), entries[0].ContextMap()["candidate_id"])
}
