// Package sprint defines the Sprint entity and its lifecycle state machine.
package sprint

import (
	"strings"
	"time"

	"github.com/teamsuite/workflow-core/internal/domain"
)

// Sprint represents a time-boxed unit of work within a project. A new sprint
// always begins in planning; at most one sprint per project may be active at
// any time.
type Sprint struct {
	ID        int64
	ProjectID int64
	Name      string
	Goal      string
	StartDate *time.Time
	EndDate   *time.Time
	Status    Status
	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks business rules for the Sprint entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (s *Sprint) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(s.Name) == "" {
		fields["name"] = domain.MsgRequired
	}
	if s.ProjectID <= 0 {
		fields["project_id"] = "must be positive"
	}
	if !s.Status.IsValid() {
		fields["status"] = "invalid: " + string(s.Status)
	}
	if s.StartDate != nil && s.EndDate != nil && s.EndDate.Before(*s.StartDate) {
		fields["end_date"] = "must not be before start_date"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// EndsOn reports whether the sprint has an end date falling on the same
// calendar day as t (in t's location). Used by the sprint-ending sweep.
func (s *Sprint) EndsOn(t time.Time) bool {
	if s.EndDate == nil {
		return false
	}
	y1, m1, d1 := s.EndDate.In(t.Location()).Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
