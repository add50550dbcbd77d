package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teamsuite/workflow-core/internal/domain"
	"github.com/teamsuite/workflow-core/internal/domain/issue"
	"github.com/teamsuite/workflow-core/internal/ports"
)

// Compile-time check that IssueService implements ports.IssueService.
var _ ports.IssueService = (*IssueService)(nil)

// IssueService owns issue creation, field mutation, assignment, and status
// changes. Triage operations (assign, change status, update) are open to any
// project member; moving issues between sprints goes through SprintService
// and its manager gate, and creating an issue directly into a sprint passes
// the same gate.
type IssueService struct {
	auth     ports.MembershipService
	store    ports.Store
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewIssueService creates an IssueService. A nil logger is replaced with a
// no-op logger.
func NewIssueService(auth ports.MembershipService, store ports.Store, notifier ports.Notifier, logger *slog.Logger) *IssueService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &IssueService{
		auth:     auth,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Create assigns the next project-scoped key, defaults the status to the
// catalog's lowest-order entry, and records the actor as reporter. The key
// itself is allocated atomically by the store so concurrent creates in the
// same project never collide.
func (s *IssueService) Create(ctx context.Context, actorID int64, in ports.CreateIssueInput) (*issue.Issue, error) {
	s.logger.InfoContext(ctx, "creating issue",
		slog.Int64("project_id", in.ProjectID),
		slog.String("title", in.Title),
	)

	if err := requireMember(ctx, s.auth, in.ProjectID, actorID); err != nil {
		return nil, err
	}

	if _, err := s.store.GetProject(ctx, in.ProjectID); err != nil {
		return nil, fmt.Errorf("verifying project %d: %w", in.ProjectID, err)
	}

	catalog, err := s.store.StatusCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading status catalog: %w", err)
	}
	defaultStatus, ok := catalog.Default()
	if !ok {
		return nil, fmt.Errorf("status catalog is empty: %w", domain.ErrUnavailable)
	}

	if in.SprintID != nil {
		if err := s.checkSprintAccepts(ctx, actorID, *in.SprintID, in.ProjectID); err != nil {
			return nil, err
		}
	}

	priority := in.Priority
	if priority == "" {
		priority = issue.PriorityMedium
	}

	iss := &issue.Issue{
		ProjectID:      in.ProjectID,
		SprintID:       in.SprintID,
		Title:          in.Title,
		Description:    in.Description,
		StatusID:       defaultStatus.ID,
		Priority:       priority,
		ReporterID:     actorID,
		EstimatedHours: in.EstimatedHours,
		DueDate:        in.DueDate,
	}
	if err := iss.Validate(); err != nil {
		return nil, err
	}

	created, err := s.store.CreateIssue(ctx, iss)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create issue",
			slog.String("operation", "Create"),
			slog.Int64("project_id", in.ProjectID),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "issue created",
		slog.Int64("issue_id", created.ID),
		slog.String("key", created.Key),
	)
	return created, nil
}

// Get returns an issue by ID. The actor must be a member of its project.
func (s *IssueService) Get(ctx context.Context, actorID, issueID int64) (*issue.Issue, error) {
	iss, err := s.store.GetIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, s.auth, iss.ProjectID, actorID); err != nil {
		return nil, err
	}
	return iss, nil
}

// List returns the project's issues matching the filter, ordered by key.
func (s *IssueService) List(ctx context.Context, actorID, projectID int64, f issue.Filter) ([]issue.Issue, error) {
	if err := requireMember(ctx, s.auth, projectID, actorID); err != nil {
		return nil, err
	}
	f.ProjectID = &projectID
	return s.store.ListIssues(ctx, f)
}

// Update mutates title/description/priority/effort/due-date fields. Nil
// input fields are left unchanged. Sprint and project references cannot be
// changed via this path.
func (s *IssueService) Update(ctx context.Context, actorID, issueID int64, in ports.UpdateIssueInput) (*issue.Issue, error) {
	iss, err := s.store.GetIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, s.auth, iss.ProjectID, actorID); err != nil {
		return nil, err
	}

	if in.Title != nil {
		iss.Title = *in.Title
	}
	if in.Description != nil {
		iss.Description = *in.Description
	}
	if in.Priority != nil {
		iss.Priority = *in.Priority
	}
	if in.EstimatedHours != nil {
		iss.EstimatedHours = in.EstimatedHours
	}
	if in.ActualHours != nil {
		iss.ActualHours = in.ActualHours
	}
	if in.DueDate != nil {
		iss.DueDate = in.DueDate
	}

	if err := iss.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateIssue(ctx, iss)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update issue",
			slog.String("operation", "Update"),
			slog.Int64("issue_id", issueID),
			slog.Any("error", err),
		)
		return nil, err
	}
	return updated, nil
}

// Assign sets or clears (nil) the assignee. The new assignee is notified on
// success, best-effort.
func (s *IssueService) Assign(ctx context.Context, actorID, issueID int64, assigneeID *int64) (*issue.Issue, error) {
	iss, err := s.store.GetIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, s.auth, iss.ProjectID, actorID); err != nil {
		return nil, err
	}

	iss.AssigneeID = assigneeID

	updated, err := s.store.UpdateIssue(ctx, iss)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to assign issue",
			slog.String("operation", "Assign"),
			slog.Int64("issue_id", issueID),
			slog.Any("error", err),
		)
		return nil, err
	}

	if assigneeID != nil {
		notifyUsers(ctx, s.notifier, s.logger, notifyWorkers, []int64{*assigneeID}, ports.KindIssueAssigned, map[string]any{
			"issue_id":  updated.ID,
			"issue_key": updated.Key,
			"title":     updated.Title,
		})
	}

	return updated, nil
}

// ChangeStatus sets the status catalog reference. Any catalog status is
// reachable from any other; no transition table applies to issues. The
// assignee is notified on success, best-effort.
func (s *IssueService) ChangeStatus(ctx context.Context, actorID, issueID, statusID int64) (*issue.Issue, error) {
	iss, err := s.store.GetIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, s.auth, iss.ProjectID, actorID); err != nil {
		return nil, err
	}

	catalog, err := s.store.StatusCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading status catalog: %w", err)
	}
	st, ok := catalog.ByID(statusID)
	if !ok {
		return nil, &domain.ValidationError{Fields: map[string]string{
			"status_id": fmt.Sprintf("unknown status %d", statusID),
		}}
	}

	iss.StatusID = st.ID

	updated, err := s.store.UpdateIssue(ctx, iss)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to change issue status",
			slog.String("operation", "ChangeStatus"),
			slog.Int64("issue_id", issueID),
			slog.Int64("status_id", statusID),
			slog.Any("error", err),
		)
		return nil, err
	}

	if updated.AssigneeID != nil && *updated.AssigneeID != actorID {
		notifyUsers(ctx, s.notifier, s.logger, notifyWorkers, []int64{*updated.AssigneeID}, ports.KindIssueStatusChanged, map[string]any{
			"issue_id":  updated.ID,
			"issue_key": updated.Key,
			"status":    st.Name,
		})
	}

	return updated, nil
}

// checkSprintAccepts validates a sprint supplied at issue creation. Placing
// an issue into a sprint is sprint membership management, so the actor needs
// the manager gate even though plain creation is member-level. The sprint
// must exist, belong to the same project, and not be closed. Mirrors the
// guards of SprintService.AddIssue.
func (s *IssueService) checkSprintAccepts(ctx context.Context, actorID, sprintID, projectID int64) error {
	if err := requireManager(ctx, s.auth, projectID, actorID); err != nil {
		return err
	}

	sp, err := s.store.GetSprint(ctx, sprintID)
	if err != nil {
		return fmt.Errorf("verifying sprint %d: %w", sprintID, err)
	}
	if sp.ProjectID != projectID {
		return &domain.ValidationError{Fields: map[string]string{
			"sprint_id": fmt.Sprintf("sprint %d belongs to project %d, not %d", sprintID, sp.ProjectID, projectID),
		}}
	}
	return sprintAcceptsIssues(sp)
}
