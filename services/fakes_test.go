package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/campus-lostfound/api-go/apperrors"
	"github.com/campus-lostfound/api-go/models"
	"github.com/campus-lostfound/api-go/notify"
	"github.com/campus-lostfound/api-go/repository"
	"github.com/campus-lostfound/api-go/storage"
)

type pairKey struct{ lost, found uint }

// memStore is an in-memory stand-in for the report and match tables,
// including the unique (lost, found) index.
type memStore struct {
	mu        sync.Mutex
	reports   map[uint]*models.Report
	matches   []*models.Match
	pairs     map[pairKey]bool
	nextID    uint
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{reports: map[uint]*models.Report{}, pairs: map[pairKey]bool{}}
}

type memReports struct{ s *memStore }
type memMatches struct{ s *memStore }

var (
	_ repository.ReportRepository = memReports{}
	_ repository.MatchRepository  = memMatches{}
)

func (s *memStore) add(r models.Report) *models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	if r.Status == "" {
		r.Status = models.StatusPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	s.reports[r.ID] = &r
	cp := r
	return &cp
}

func (s *memStore) matchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

func (m memReports) Create(_ context.Context, r *models.Report) error {
	stored := m.s.add(*r)
	*r = *stored
	return nil
}

func (m memReports) GetByID(_ context.Context, id uint) (*models.Report, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.reports[id]
	if !ok {
		return nil, fmt.Errorf("report %w", apperrors.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (m memReports) ListPendingByKind(_ context.Context, kind models.ReportKind) ([]models.Report, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Report
	for _, r := range m.s.reports {
		if r.Type == kind && r.Status == models.StatusPending {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memReports) ListByUser(_ context.Context, userID uint) ([]models.Report, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Report
	for _, r := range m.s.reports {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m memReports) List(_ context.Context, f repository.ReportFilter) ([]models.Report, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Report
	for _, r := range m.s.reports {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.From != nil && r.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && r.CreatedAt.After(*f.To) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m memReports) UpdateStatus(_ context.Context, id uint, fn func(*models.Report) error) (*models.Report, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.reports[id]
	if !ok {
		return nil, fmt.Errorf("report %w", apperrors.ErrNotFound)
	}
	cp := *r
	if err := fn(&cp); err != nil {
		return nil, err
	}
	r.Status = cp.Status
	return &cp, nil
}

func (m memMatches) InsertNew(_ context.Context, matches []*models.Match) ([]*models.Match, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.insertErr != nil {
		return nil, m.s.insertErr
	}
	var inserted []*models.Match
	for _, match := range matches {
		key := pairKey{match.LostReportID, match.FoundReportID}
		if m.s.pairs[key] {
			continue
		}
		m.s.pairs[key] = true
		match.ID = uint(len(m.s.matches) + 1)
		m.s.matches = append(m.s.matches, match)
		inserted = append(inserted, match)
	}
	return inserted, nil
}

func (m memMatches) ListByScore(_ context.Context) ([]models.Match, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]models.Match, 0, len(m.s.matches))
	for _, match := range m.s.matches {
		out = append(out, *match)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CombinedScore > out[j].CombinedScore })
	return out, nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

var _ repository.UserRepository = (*memUsers)(nil)

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*models.User{}}
}

func (m *memUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %w", apperrors.ErrNotFound)
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, fmt.Errorf("user %w", apperrors.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return errors.New("duplicate username")
	}
	u.ID = uint(len(m.users) + 1)
	cp := *u
	m.users[u.Username] = &cp
	return nil
}

func (m *memUsers) UpdateSection(_ context.Context, id uint, section string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			u.Section = &section
			return nil
		}
	}
	return fmt.Errorf("user %w", apperrors.ErrNotFound)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Broadcast(e notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

type memFileStore struct {
	saved map[string][]byte
}

var _ storage.Store = (*memFileStore)(nil)

func (m *memFileStore) Save(_ context.Context, u storage.Upload) (string, error) {
	if err := (storage.Validator{MaxSize: 1024}).Validate(u); err != nil {
		return "", err
	}
	ref := fmt.Sprintf("img%d.png", len(m.saved)+1)
	m.saved[ref] = nil
	return ref, nil
}

func (m *memFileStore) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}
