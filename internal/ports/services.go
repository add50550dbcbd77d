package ports

import (
	"context"
	"time"

	"github.com/teamsuite/workflow-core/internal/domain/issue"
	"github.com/teamsuite/workflow-core/internal/domain/membership"
	"github.com/teamsuite/workflow-core/internal/domain/sprint"
)

// MembershipService resolves a (project, user) pair to a role and capability.
// It is the sole authorization gate of the workflow core: every mutating
// operation elsewhere consults it before touching storage.
type MembershipService interface {
	// RoleOf returns the user's role within the project.
	// Returns domain.ErrNotFound if the user is not a member.
	RoleOf(ctx context.Context, projectID, userID int64) (membership.Role, error)

	// CanManage reports whether the user holds the owner or manager role.
	// A missing membership yields false, not an error.
	CanManage(ctx context.Context, projectID, userID int64) (bool, error)

	// IsMember reports whether the user holds any role in the project.
	IsMember(ctx context.Context, projectID, userID int64) (bool, error)

	// ListMembers returns all memberships of the project.
	// Returns domain.ErrNotFound if the project does not exist.
	ListMembers(ctx context.Context, projectID int64) ([]membership.Membership, error)
}

// CreateSprintInput carries the caller-supplied fields for a new sprint.
type CreateSprintInput struct {
	ProjectID int64
	Name      string
	Goal      string
	StartDate *time.Time
	EndDate   *time.Time
}

// SprintService owns the sprint state machine and the single-active-sprint
// invariant. All mutations require manager capability for the sprint's
// project and fail with domain.ErrAccessDenied otherwise, with no side
// effects.
type SprintService interface {
	// Create validates input and creates a sprint in planning status.
	Create(ctx context.Context, actorID int64, in CreateSprintInput) (*sprint.Sprint, error)

	// Get returns a sprint by ID. The actor must be a member of the
	// sprint's project.
	Get(ctx context.Context, actorID, sprintID int64) (*sprint.Sprint, error)

	// ListByProject returns all sprints of a project.
	ListByProject(ctx context.Context, actorID, projectID int64) ([]sprint.Sprint, error)

	// Start moves a planning sprint to active. Returns
	// domain.ErrInvalidTransition if the sprint is not in planning, and
	// domain.ErrConflict if another sprint of the project is already
	// active.
	Start(ctx context.Context, actorID, sprintID int64) (*sprint.Sprint, error)

	// Complete moves an active sprint to completed.
	Complete(ctx context.Context, actorID, sprintID int64) (*sprint.Sprint, error)

	// Cancel moves a planning or active sprint to cancelled.
	Cancel(ctx context.Context, actorID, sprintID int64) (*sprint.Sprint, error)

	// Delete removes a sprint. Returns domain.ErrConflict while the sprint
	// is active. Issues referencing the sprint return to the backlog; no
	// issue is ever deleted.
	Delete(ctx context.Context, actorID, sprintID int64) error

	// AddIssue associates an issue of the same project with the sprint.
	// Disallowed once the sprint is completed or cancelled.
	AddIssue(ctx context.Context, actorID, sprintID, issueID int64) error

	// RemoveIssue clears the issue's sprint association. Same guards as
	// AddIssue.
	RemoveIssue(ctx context.Context, actorID, sprintID, issueID int64) error
}

// CreateIssueInput carries the caller-supplied fields for a new issue.
// The key, status, and reporter are assigned by the service.
type CreateIssueInput struct {
	ProjectID      int64
	Title          string
	Description    string
	Priority       issue.Priority
	SprintID       *int64
	EstimatedHours *float64
	DueDate        *time.Time
}

// UpdateIssueInput carries optional field mutations for an issue. Nil fields
// are left unchanged. Sprint and project reassignment are not possible via
// this path; use SprintService.AddIssue / RemoveIssue.
type UpdateIssueInput struct {
	Title          *string
	Description    *string
	Priority       *issue.Priority
	EstimatedHours *float64
	ActualHours    *float64
	DueDate        *time.Time
}

// IssueService owns issue creation, field mutation, assignment, and status
// changes. Any project member may triage issues (assign, change status,
// update fields); manager capability is required only where sprint state is
// involved.
type IssueService interface {
	// Create assigns the next project-scoped key, defaults the status to
	// the catalog's lowest-order entry, and records the actor as reporter.
	// A supplied sprint passes the sprint-membership guards, manager gate
	// included; without one, any member may create.
	Create(ctx context.Context, actorID int64, in CreateIssueInput) (*issue.Issue, error)

	// Get returns an issue by ID. The actor must be a project member.
	Get(ctx context.Context, actorID, issueID int64) (*issue.Issue, error)

	// List returns the project's issues matching the filter.
	List(ctx context.Context, actorID, projectID int64, f issue.Filter) ([]issue.Issue, error)

	// Update mutates title/description/priority/effort/due-date fields.
	Update(ctx context.Context, actorID, issueID int64, in UpdateIssueInput) (*issue.Issue, error)

	// Assign sets or clears (nil) the assignee.
	Assign(ctx context.Context, actorID, issueID int64, assigneeID *int64) (*issue.Issue, error)

	// ChangeStatus sets the status catalog reference. Any catalog status is
	// reachable from any other; no transition table is enforced.
	ChangeStatus(ctx context.Context, actorID, issueID, statusID int64) (*issue.Issue, error)
}

// SweepReport summarizes a single sweep run.
type SweepReport struct {
	Scanned  int
	Notified int
	Failed   int
}

// Sweeper runs the read-only consistency scans. Implementations never write
// workflow state, so overlapping runs are safe by construction.
type Sweeper interface {
	// SweepOverdue emits one reminder per overdue assigned issue. Issues
	// that remain overdue are re-notified on every run; these are
	// reminders, not one-shot alerts.
	SweepOverdue(ctx context.Context, now time.Time) (SweepReport, error)

	// SweepEndingSprints notifies every member of a project whose active
	// sprint ends within the configured warning horizon (end date equals
	// now plus horizon, by calendar day).
	SweepEndingSprints(ctx context.Context, now time.Time) (SweepReport, error)
}
