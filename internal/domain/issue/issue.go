// Package issue defines the Issue entity, the unit of trackable work.
// An issue belongs to exactly one project and at most one sprint of that
// project. Issues are never deleted by the workflow core, only edited.
package issue

import (
	"fmt"
	"strings"
	"time"

	"github.com/teamsuite/workflow-core/internal/domain"
)

// Issue represents a task or bug within a project. Key is the sequential
// project-scoped identifier ("HRM-7"). StatusID references an entry of the
// shared status catalog, which this core reads but does not own.
type Issue struct {
	ID             int64
	ProjectID      int64
	SprintID       *int64
	Key            string
	Title          string
	Description    string
	StatusID       int64
	Priority       Priority
	ReporterID     int64
	AssigneeID     *int64
	EstimatedHours *float64
	ActualHours    *float64
	DueDate        *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks business rules for the Issue entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (i *Issue) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(i.Title) == "" {
		fields["title"] = domain.MsgRequired
	}
	if i.ProjectID <= 0 {
		fields["project_id"] = "must be positive"
	}
	if !i.Priority.IsValid() {
		fields["priority"] = fmt.Sprintf("invalid: %q", i.Priority)
	}
	if i.EstimatedHours != nil && *i.EstimatedHours < 0 {
		fields["estimated_hours"] = "must not be negative"
	}
	if i.ActualHours != nil && *i.ActualHours < 0 {
		fields["actual_hours"] = "must not be negative"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// IsOverdue reports whether the issue's due date has passed as of now while
// its status is not the catalog's terminal done entry. Due dates carry day
// precision: an issue due today becomes overdue tomorrow, not at midnight of
// its due date. Overdue is a read-side signal for dashboards and the sweeper;
// it never blocks mutation.
func (i *Issue) IsOverdue(now time.Time, doneStatusID int64) bool {
	if i.DueDate == nil {
		return false
	}
	if i.StatusID == doneStatusID {
		return false
	}
	y, m, d := i.DueDate.In(now.Location()).Date()
	due := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	y, m, d = now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return due.Before(today)
}
