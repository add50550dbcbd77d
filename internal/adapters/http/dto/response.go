// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"time"

	"github.com/teamsuite/workflow-core/internal/domain/issue"
	"github.com/teamsuite/workflow-core/internal/domain/membership"
	"github.com/teamsuite/workflow-core/internal/domain/sprint"
)

// SprintResponse represents a single sprint in HTTP responses.
type SprintResponse struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
	Goal      string `json:"goal,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Status    string `json:"status"`
	CreatedBy int64  `json:"created_by"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// SprintListResponse represents a list of sprints in HTTP responses.
type SprintListResponse struct {
	Sprints []SprintResponse `json:"sprints"`
	Count   int              `json:"count"`
}

// ToSprintResponse converts a domain Sprint entity to an HTTP response DTO.
func ToSprintResponse(sp *sprint.Sprint) SprintResponse {
	resp := SprintResponse{
		ID:        sp.ID,
		ProjectID: sp.ProjectID,
		Name:      sp.Name,
		Goal:      sp.Goal,
		Status:    string(sp.Status),
		CreatedBy: sp.CreatedBy,
		CreatedAt: sp.CreatedAt.Format(time.RFC3339),
		UpdatedAt: sp.UpdatedAt.Format(time.RFC3339),
	}
	if sp.StartDate != nil {
		resp.StartDate = sp.StartDate.Format(time.DateOnly)
	}
	if sp.EndDate != nil {
		resp.EndDate = sp.EndDate.Format(time.DateOnly)
	}
	return resp
}

// ToSprintListResponse converts a slice of domain Sprint entities to an HTTP
// list response DTO.
func ToSprintListResponse(sprints []sprint.Sprint) SprintListResponse {
	items := make([]SprintResponse, len(sprints))
	for i := range sprints {
		items[i] = ToSprintResponse(&sprints[i])
	}
	return SprintListResponse{
		Sprints: items,
		Count:   len(items),
	}
}

// IssueResponse represents a single issue in HTTP responses.
type IssueResponse struct {
	ID             int64    `json:"id"`
	ProjectID      int64    `json:"project_id"`
	SprintID       *int64   `json:"sprint_id,omitempty"`
	Key            string   `json:"key"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	StatusID       int64    `json:"status_id"`
	Priority       string   `json:"priority"`
	ReporterID     int64    `json:"reporter_id"`
	AssigneeID     *int64   `json:"assignee_id,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	ActualHours    *float64 `json:"actual_hours,omitempty"`
	DueDate        string   `json:"due_date,omitempty"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

// IssueListResponse represents a list of issues in HTTP responses.
type IssueListResponse struct {
	Issues []IssueResponse `json:"issues"`
	Count  int             `json:"count"`
}

// ToIssueResponse converts a domain Issue entity to an HTTP response DTO.
func ToIssueResponse(iss *issue.Issue) IssueResponse {
	resp := IssueResponse{
		ID:             iss.ID,
		ProjectID:      iss.ProjectID,
		SprintID:       iss.SprintID,
		Key:            iss.Key,
		Title:          iss.Title,
		Description:    iss.Description,
		StatusID:       iss.StatusID,
		Priority:       string(iss.Priority),
		ReporterID:     iss.ReporterID,
		AssigneeID:     iss.AssigneeID,
		EstimatedHours: iss.EstimatedHours,
		ActualHours:    iss.ActualHours,
		CreatedAt:      iss.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      iss.UpdatedAt.Format(time.RFC3339),
	}
	if iss.DueDate != nil {
		resp.DueDate = iss.DueDate.Format(time.DateOnly)
	}
	return resp
}

// ToIssueListResponse converts a slice of domain Issue entities to an HTTP
// list response DTO.
func ToIssueListResponse(issues []issue.Issue) IssueListResponse {
	items := make([]IssueResponse, len(issues))
	for i := range issues {
		items[i] = ToIssueResponse(&issues[i])
	}
	return IssueListResponse{
		Issues: items,
		Count:  len(items),
	}
}

// MemberResponse represents a single project membership in HTTP responses.
type MemberResponse struct {
	ProjectID int64  `json:"project_id"`
	UserID    int64  `json:"user_id"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// MemberListResponse represents a project's membership list in HTTP responses.
type MemberListResponse struct {
	Members []MemberResponse `json:"members"`
	Count   int              `json:"count"`
}

// ToMemberListResponse converts domain memberships to an HTTP list response DTO.
func ToMemberListResponse(members []membership.Membership) MemberListResponse {
	items := make([]MemberResponse, len(members))
	for i, m := range members {
		items[i] = MemberResponse{
			ProjectID: m.ProjectID,
			UserID:    m.UserID,
			Role:      string(m.Role),
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		}
	}
	return MemberListResponse{
		Members: items,
		Count:   len(items),
	}
}
