package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/teamsuite/workflow-core/internal/domain"
	"github.com/teamsuite/workflow-core/internal/domain/issue"
	"github.com/teamsuite/workflow-core/internal/ports"
)

const (
	msgRequired     = "is required"
	msgMustNotEmpty = "must not be empty"
	msgBadDate      = "must be a date in YYYY-MM-DD format"
)

// parseDate parses a YYYY-MM-DD value, recording a field error on failure.
func parseDate(field, value string, fields map[string]string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		fields[field] = msgBadDate
		return nil
	}
	return &t
}

// CreateSprintRequest represents the JSON body for creating a new sprint.
// Dates use YYYY-MM-DD format and are optional at creation time.
type CreateSprintRequest struct {
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
	Goal      string `json:"goal,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// Validate checks that required fields are present and dates are well formed.
// Returns a *domain.ValidationError if any checks fail.
func (r *CreateSprintRequest) Validate() error {
	fields := make(map[string]string)

	if r.ProjectID <= 0 {
		fields["project_id"] = msgRequired
	}
	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = msgRequired
	}
	start := parseDate("start_date", r.StartDate, fields)
	end := parseDate("end_date", r.EndDate, fields)
	if start != nil && end != nil && end.Before(*start) {
		fields["end_date"] = "must not be before start_date"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Input converts a validated request to the service input.
func (r *CreateSprintRequest) Input() ports.CreateSprintInput {
	fields := make(map[string]string)
	return ports.CreateSprintInput{
		ProjectID: r.ProjectID,
		Name:      strings.TrimSpace(r.Name),
		Goal:      r.Goal,
		StartDate: parseDate("start_date", r.StartDate, fields),
		EndDate:   parseDate("end_date", r.EndDate, fields),
	}
}

// SprintIssueRequest represents the JSON body for adding or removing an
// issue on a sprint.
type SprintIssueRequest struct {
	IssueID int64 `json:"issue_id"`
}

// Validate checks that the issue reference is present.
func (r *SprintIssueRequest) Validate() error {
	if r.IssueID <= 0 {
		return &domain.ValidationError{Fields: map[string]string{"issue_id": msgRequired}}
	}
	return nil
}

// CreateIssueRequest represents the JSON body for creating a new issue.
// The key, initial status, and reporter are assigned server-side.
type CreateIssueRequest struct {
	ProjectID      int64    `json:"project_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	SprintID       *int64   `json:"sprint_id,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	DueDate        string   `json:"due_date,omitempty"`
}

// Validate checks that required fields are present and optional fields have
// valid values. Returns a *domain.ValidationError if any checks fail.
func (r *CreateIssueRequest) Validate() error {
	fields := make(map[string]string)

	if r.ProjectID <= 0 {
		fields["project_id"] = msgRequired
	}
	if strings.TrimSpace(r.Title) == "" {
		fields["title"] = msgRequired
	}
	if r.Priority != "" && !issue.Priority(r.Priority).IsValid() {
		fields["priority"] = fmt.Sprintf("invalid: %q", r.Priority)
	}
	if r.EstimatedHours != nil && *r.EstimatedHours < 0 {
		fields["estimated_hours"] = "must not be negative"
	}
	parseDate("due_date", r.DueDate, fields)

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Input converts a validated request to the service input.
func (r *CreateIssueRequest) Input() ports.CreateIssueInput {
	fields := make(map[string]string)
	return ports.CreateIssueInput{
		ProjectID:      r.ProjectID,
		Title:          strings.TrimSpace(r.Title),
		Description:    r.Description,
		Priority:       issue.Priority(r.Priority),
		SprintID:       r.SprintID,
		EstimatedHours: r.EstimatedHours,
		DueDate:        parseDate("due_date", r.DueDate, fields),
	}
}

// UpdateIssueRequest represents the JSON body for updating an existing issue.
// All fields are optional; nil means "do not change this field".
type UpdateIssueRequest struct {
	Title          *string  `json:"title,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Priority       *string  `json:"priority,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	ActualHours    *float64 `json:"actual_hours,omitempty"`
	DueDate        *string  `json:"due_date,omitempty"`
}

// Validate checks that any provided fields have valid values.
// Returns a *domain.ValidationError if any checks fail.
func (r *UpdateIssueRequest) Validate() error {
	fields := make(map[string]string)

	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		fields["title"] = msgMustNotEmpty
	}
	if r.Priority != nil && !issue.Priority(*r.Priority).IsValid() {
		fields["priority"] = fmt.Sprintf("invalid: %q", *r.Priority)
	}
	if r.EstimatedHours != nil && *r.EstimatedHours < 0 {
		fields["estimated_hours"] = "must not be negative"
	}
	if r.ActualHours != nil && *r.ActualHours < 0 {
		fields["actual_hours"] = "must not be negative"
	}
	if r.DueDate != nil {
		parseDate("due_date", *r.DueDate, fields)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Input converts a validated request to the service input.
func (r *UpdateIssueRequest) Input() ports.UpdateIssueInput {
	in := ports.UpdateIssueInput{
		Title:          r.Title,
		Description:    r.Description,
		EstimatedHours: r.EstimatedHours,
		ActualHours:    r.ActualHours,
	}
	if r.Priority != nil {
		p := issue.Priority(*r.Priority)
		in.Priority = &p
	}
	if r.DueDate != nil {
		fields := make(map[string]string)
		in.DueDate = parseDate("due_date", *r.DueDate, fields)
	}
	return in
}

// AssignIssueRequest represents the JSON body for assigning an issue.
// A null assignee clears the assignment.
type AssignIssueRequest struct {
	AssigneeID *int64 `json:"assignee_id"`
}

// Validate checks that a provided assignee reference is positive.
func (r *AssignIssueRequest) Validate() error {
	if r.AssigneeID != nil && *r.AssigneeID <= 0 {
		return &domain.ValidationError{Fields: map[string]string{"assignee_id": "must be positive"}}
	}
	return nil
}

// ChangeIssueStatusRequest represents the JSON body for moving an issue to a
// different catalog status.
type ChangeIssueStatusRequest struct {
	StatusID int64 `json:"status_id"`
}

// Validate checks that the status reference is present.
func (r *ChangeIssueStatusRequest) Validate() error {
	if r.StatusID <= 0 {
		return &domain.ValidationError{Fields: map[string]string{"status_id": msgRequired}}
	}
	return nil
}
