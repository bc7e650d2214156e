package models

import (
	"errors"
	"fmt"
)

type ReportStatus string

const (
	StatusPending    ReportStatus = "pending"
	StatusMatchFound ReportStatus = "match_found"
	StatusClosed     ReportStatus = "closed"
)

// ErrInvalidTransition is matched by every *InvalidTransitionError.
var ErrInvalidTransition = errors.New("invalid status transition")

// statusTransitions lists, for each status, the statuses it may move to.
// A status with no entry is terminal.
var statusTransitions = map[ReportStatus][]ReportStatus{
	StatusPending:    {StatusMatchFound},
	StatusMatchFound: {StatusClosed},
	StatusClosed:     {},
}

type InvalidTransitionError struct {
	From ReportStatus
	To   ReportStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from '%s' to '%s'", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func (s ReportStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// AllowedTransitions returns a copy of the statuses reachable from s.
func (s ReportStatus) AllowedTransitions() []ReportStatus {
	allowed := statusTransitions[s]
	out := make([]ReportStatus, len(allowed))
	copy(out, allowed)
	return out
}

func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition moves the report to next or returns an *InvalidTransitionError
// leaving the report untouched.
func (r *Report) Transition(next ReportStatus) error {
	if !r.Status.CanTransitionTo(next) {
		return &InvalidTransitionError{From: r.Status, To: next}
	}
	r.Status = next
	return nil
}

func ParseReportStatus(s string) (ReportStatus, error) {
	status := ReportStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown status '%s'", s)
	}
	return status, nil
}
