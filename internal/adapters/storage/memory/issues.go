package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/teamsuite/workflow-core/internal/domain"
	"github.com/teamsuite/workflow-core/internal/domain/issue"
)

// CreateIssue inserts the issue, allocating the next project-scoped key
// under the write lock. Concurrent creates in the same project therefore
// receive a strictly increasing, gap-free sequence.
func (s *Store) CreateIssue(_ context.Context, in *issue.Issue) (*issue.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[in.ProjectID]
	if !ok {
		return nil, fmt.Errorf("project %d: %w", in.ProjectID, domain.ErrNotFound)
	}

	s.issueSeq[in.ProjectID]++
	s.nextIssueID++

	stored := *in
	stored.ID = s.nextIssueID
	stored.Key = fmt.Sprintf("%s-%d", p.Key, s.issueSeq[in.ProjectID])
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt
	s.issues[stored.ID] = stored

	return &stored, nil
}

// GetIssue returns an issue by ID.
func (s *Store) GetIssue(_ context.Context, id int64) (*issue.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	iss, ok := s.issues[id]
	if !ok {
		return nil, fmt.Errorf("issue %d: %w", id, domain.ErrNotFound)
	}
	return &iss, nil
}

// ListIssues returns issues matching the filter, ordered by ID (which is
// also key order within a project).
func (s *Store) ListIssues(_ context.Context, f issue.Filter) ([]issue.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var issues []issue.Issue
	for _, iss := range s.issues {
		if matchesFilter(&iss, f) {
			issues = append(issues, iss)
		}
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].ID < issues[j].ID })
	return issues, nil
}

// UpdateIssue persists the issue's mutable fields. The sprint and project
// references of the stored row are preserved.
func (s *Store) UpdateIssue(_ context.Context, in *issue.Issue) (*issue.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.issues[in.ID]
	if !ok {
		return nil, fmt.Errorf("issue %d: %w", in.ID, domain.ErrNotFound)
	}

	stored.Title = in.Title
	stored.Description = in.Description
	stored.StatusID = in.StatusID
	stored.Priority = in.Priority
	stored.AssigneeID = in.AssigneeID
	stored.EstimatedHours = in.EstimatedHours
	stored.ActualHours = in.ActualHours
	stored.DueDate = in.DueDate
	stored.UpdatedAt = s.now()
	s.issues[in.ID] = stored

	return &stored, nil
}

// SetIssueSprint sets (or clears, with nil) the issue's sprint reference.
func (s *Store) SetIssueSprint(_ context.Context, issueID int64, sprintID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	iss, ok := s.issues[issueID]
	if !ok {
		return fmt.Errorf("issue %d: %w", issueID, domain.ErrNotFound)
	}

	iss.SprintID = sprintID
	iss.UpdatedAt = s.now()
	s.issues[issueID] = iss
	return nil
}

func matchesFilter(iss *issue.Issue, f issue.Filter) bool {
	if f.ProjectID != nil && iss.ProjectID != *f.ProjectID {
		return false
	}
	if f.Backlog && iss.SprintID != nil {
		return false
	}
	if f.SprintID != nil && (iss.SprintID == nil || *iss.SprintID != *f.SprintID) {
		return false
	}
	if f.StatusID != nil && iss.StatusID != *f.StatusID {
		return false
	}
	if f.AssigneeID != nil && (iss.AssigneeID == nil || *iss.AssigneeID != *f.AssigneeID) {
		return false
	}
	if f.Priority != "" && iss.Priority != f.Priority {
		return false
	}
	return true
}
