package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamsuite/workflow-core/internal/domain"
	"github.com/teamsuite/workflow-core/internal/domain/issue"
	"github.com/teamsuite/workflow-core/internal/domain/sprint"
	"github.com/teamsuite/workflow-core/internal/ports"
)

// Compile-time check that SprintService implements ports.SprintService.
var _ ports.SprintService = (*SprintService)(nil)

// SprintService owns the sprint state machine and the single-active-sprint
// invariant. Every mutation passes the membership gate first; state changes
// are re-checked atomically inside the store so concurrent callers cannot
// admit a second active sprint.
type SprintService struct {
	auth     ports.MembershipService
	store    ports.Store
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewSprintService creates a SprintService. A nil logger is replaced with a
// no-op logger.
func NewSprintService(auth ports.MembershipService, store ports.Store, notifier ports.Notifier, logger *slog.Logger) *SprintService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SprintService{
		auth:     auth,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Create validates input and creates a sprint in planning status.
func (s *SprintService) Create(ctx context.Context, actorID int64, in ports.CreateSprintInput) (*sprint.Sprint, error) {
	s.logger.InfoContext(ctx, "creating sprint",
		slog.Int64("project_id", in.ProjectID),
		slog.String("name", in.Name),
	)

	if err := requireManager(ctx, s.auth, in.ProjectID, actorID); err != nil {
		return nil, err
	}

	if _, err := s.store.GetProject(ctx, in.ProjectID); err != nil {
		return nil, fmt.Errorf("verifying project %d: %w", in.ProjectID, err)
	}

	sp := &sprint.Sprint{
		ProjectID: in.ProjectID,
		Name:      in.Name,
		Goal:      in.Goal,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Status:    sprint.StatusPlanning,
		CreatedBy: actorID,
	}
	if err := sp.Validate(); err != nil {
		return nil, err
	}

	created, err := s.store.CreateSprint(ctx, sp)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create sprint",
			slog.String("operation", "Create"),
			slog.Int64("project_id", in.ProjectID),
			slog.Any("error", err),
		)
		return nil, err
	}

	return created, nil
}

// Get returns a sprint by ID. The actor must be a member of its project.
func (s *SprintService) Get(ctx context.Context, actorID, sprintID int64) (*sprint.Sprint, error) {
	sp, err := s.store.GetSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, s.auth, sp.ProjectID, actorID); err != nil {
		return nil, err
	}
	return sp, nil
}

// ListByProject returns all sprints of a project, oldest first.
func (s *SprintService) ListByProject(ctx context.Context, actorID, projectID int64) ([]sprint.Sprint, error) {
	if err := requireMember(ctx, s.auth, projectID, actorID); err != nil {
		return nil, err
	}
	return s.store.ListSprintsByProject(ctx, projectID)
}

// Start moves a planning sprint to active. The single-active-sprint check is
// enforced atomically by the store; a losing concurrent caller receives
// domain.ErrConflict and the state is unchanged.
func (s *SprintService) Start(ctx context.Context, actorID, sprintID int64) (*sprint.Sprint, error) {
	return s.transition(ctx, actorID, sprintID, sprint.StatusActive, ports.KindSprintStarted)
}

// Complete moves an active sprint to completed.
func (s *SprintService) Complete(ctx context.Context, actorID, sprintID int64) (*sprint.Sprint, error) {
	return s.transition(ctx, actorID, sprintID, sprint.StatusCompleted, ports.KindSprintCompleted)
}

// Cancel moves a planning or active sprint to cancelled.
func (s *SprintService) Cancel(ctx context.Context, actorID, sprintID int64) (*sprint.Sprint, error) {
	return s.transition(ctx, actorID, sprintID, sprint.StatusCancelled, "")
}

// transition performs the shared guard sequence for all status changes:
// membership gate, state-machine check, then an atomic check-and-set in the
// store. A non-empty kind triggers a best-effort notification to every
// project member on success.
func (s *SprintService) transition(ctx context.Context, actorID, sprintID int64, target sprint.Status, kind ports.NotificationKind) (*sprint.Sprint, error) {
	sp, err := s.store.GetSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	if err := requireManager(ctx, s.auth, sp.ProjectID, actorID); err != nil {
		return nil, err
	}

	if !sp.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("sprint %d: %s -> %s: %w",
			sprintID, sp.Status, target, domain.ErrInvalidTransition)
	}

	updated, err := s.store.TransitionSprint(ctx, sprintID, sp.Status, target)
	if err != nil {
		s.logger.ErrorContext(ctx, "sprint transition failed",
			slog.String("operation", "transition"),
			slog.Int64("sprint_id", sprintID),
			slog.String("from", sp.Status.String()),
			slog.String("to", target.String()),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "sprint transitioned",
		slog.Int64("sprint_id", sprintID),
		slog.String("from", sp.Status.String()),
		slog.String("to", target.String()),
	)

	if kind != "" {
		s.notifyProjectMembers(ctx, updated, kind)
	}

	return updated, nil
}

// Delete removes a sprint. Active sprints cannot be deleted. Issues that
// referenced the sprint return to the backlog; no issue row is removed.
func (s *SprintService) Delete(ctx context.Context, actorID, sprintID int64) error {
	sp, err := s.store.GetSprint(ctx, sprintID)
	if err != nil {
		return err
	}

	if err := requireManager(ctx, s.auth, sp.ProjectID, actorID); err != nil {
		return err
	}

	if sp.Status == sprint.StatusActive {
		return fmt.Errorf("sprint %d is active and cannot be deleted: %w", sprintID, domain.ErrConflict)
	}

	if err := s.store.DeleteSprint(ctx, sprintID); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete sprint",
			slog.String("operation", "Delete"),
			slog.Int64("sprint_id", sprintID),
			slog.Any("error", err),
		)
		return err
	}

	s.logger.InfoContext(ctx, "sprint deleted, issues returned to backlog",
		slog.Int64("sprint_id", sprintID),
		slog.Int64("project_id", sp.ProjectID),
	)
	return nil
}

// AddIssue associates an issue of the same project with the sprint.
func (s *SprintService) AddIssue(ctx context.Context, actorID, sprintID, issueID int64) error {
	sp, _, err := s.issueMembershipGuards(ctx, actorID, sprintID, issueID)
	if err != nil {
		return err
	}

	if err := s.store.SetIssueSprint(ctx, issueID, &sp.ID); err != nil {
		return fmt.Errorf("adding issue %d to sprint %d: %w", issueID, sprintID, err)
	}
	return nil
}

// RemoveIssue clears the issue's sprint association, returning it to the
// backlog.
func (s *SprintService) RemoveIssue(ctx context.Context, actorID, sprintID, issueID int64) error {
	_, iss, err := s.issueMembershipGuards(ctx, actorID, sprintID, issueID)
	if err != nil {
		return err
	}

	if iss.SprintID == nil || *iss.SprintID != sprintID {
		return &domain.ValidationError{Fields: map[string]string{
			"issue_id": fmt.Sprintf("issue %d is not in sprint %d", issueID, sprintID),
		}}
	}

	if err := s.store.SetIssueSprint(ctx, issueID, nil); err != nil {
		return fmt.Errorf("removing issue %d from sprint %d: %w", issueID, sprintID, err)
	}
	return nil
}

// issueMembershipGuards runs the shared checks for AddIssue/RemoveIssue:
// manager gate, open sprint, and same-project issue.
func (s *SprintService) issueMembershipGuards(ctx context.Context, actorID, sprintID, issueID int64) (*sprint.Sprint, *issue.Issue, error) {
	sp, err := s.store.GetSprint(ctx, sprintID)
	if err != nil {
		return nil, nil, err
	}

	if err := requireManager(ctx, s.auth, sp.ProjectID, actorID); err != nil {
		return nil, nil, err
	}

	if err := sprintAcceptsIssues(sp); err != nil {
		return nil, nil, err
	}

	iss, err := s.store.GetIssue(ctx, issueID)
	if err != nil {
		return nil, nil, err
	}
	if iss.ProjectID != sp.ProjectID {
		return nil, nil, &domain.ValidationError{Fields: map[string]string{
			"issue_id": fmt.Sprintf("issue %d belongs to project %d, not %d", issueID, iss.ProjectID, sp.ProjectID),
		}}
	}

	return sp, iss, nil
}

// notifyProjectMembers fans a best-effort notification out to every member
// of the sprint's project.
func (s *SprintService) notifyProjectMembers(ctx context.Context, sp *sprint.Sprint, kind ports.NotificationKind) {
	members, err := s.store.ListMemberships(ctx, sp.ProjectID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to list members for notification",
			slog.Int64("project_id", sp.ProjectID),
			slog.Any("error", err),
		)
		return
	}

	userIDs := make([]int64, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}

	payload := map[string]any{
		"sprint_id":   sp.ID,
		"sprint_name": sp.Name,
		"project_id":  sp.ProjectID,
		"status":      sp.Status.String(),
	}
	if sp.EndDate != nil {
		payload["end_date"] = sp.EndDate.Format(time.DateOnly)
	}

	notifyUsers(ctx, s.notifier, s.logger, notifyWorkers, userIDs, kind, payload)
}
