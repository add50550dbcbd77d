package ports

import (
	"context"

	"github.com/teamsuite/workflow-core/internal/domain/issue"
	"github.com/teamsuite/workflow-core/internal/domain/membership"
	"github.com/teamsuite/workflow-core/internal/domain/project"
	"github.com/teamsuite/workflow-core/internal/domain/sprint"
	"github.com/teamsuite/workflow-core/internal/domain/status"
)

// ProjectStore provides read access to externally-provisioned projects.
type ProjectStore interface {
	// GetProject returns a project by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetProject(ctx context.Context, id int64) (*project.Project, error)
}

// MembershipStore provides read access to project memberships.
type MembershipStore interface {
	// GetMembership returns the membership for a (project, user) pair.
	// Returns domain.ErrNotFound if the user is not a member.
	GetMembership(ctx context.Context, projectID, userID int64) (*membership.Membership, error)

	// ListMemberships returns all memberships of a project.
	ListMemberships(ctx context.Context, projectID int64) ([]membership.Membership, error)
}

// SprintStore persists sprints. Each mutating method executes as one atomic
// unit: guard re-checks and the write either all commit or all abort.
type SprintStore interface {
	// CreateSprint inserts the sprint and returns it with server-assigned
	// fields (ID, timestamps).
	CreateSprint(ctx context.Context, s *sprint.Sprint) (*sprint.Sprint, error)

	// GetSprint returns a sprint by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetSprint(ctx context.Context, id int64) (*sprint.Sprint, error)

	// ListSprintsByProject returns all sprints of a project, oldest first.
	ListSprintsByProject(ctx context.Context, projectID int64) ([]sprint.Sprint, error)

	// ListActiveSprints returns every sprint currently in active status,
	// across all projects. Used by the sprint-ending sweep.
	ListActiveSprints(ctx context.Context) ([]sprint.Sprint, error)

	// TransitionSprint atomically moves the sprint from the expected
	// current status to the target status. The current status is re-read
	// inside the store's transaction; a mismatch means the sprint changed
	// concurrently and returns domain.ErrConflict. Moving to active
	// enforces the single-active-sprint-per-project invariant (unique
	// partial index or per-project lock), also with domain.ErrConflict.
	TransitionSprint(ctx context.Context, id int64, from, to sprint.Status) (*sprint.Sprint, error)

	// DeleteSprint clears the sprint reference on all issues of the sprint
	// and removes the sprint row, in one transaction. The status is
	// re-checked inside that transaction: an active sprint returns
	// domain.ErrConflict. Issues are never deleted.
	DeleteSprint(ctx context.Context, id int64) error
}

// IssueStore persists issues.
type IssueStore interface {
	// CreateIssue inserts the issue, allocating the next project-scoped
	// key atomically (sequence, counter, or unique constraint with retry).
	// The caller leaves Key empty. Returns the stored issue.
	CreateIssue(ctx context.Context, i *issue.Issue) (*issue.Issue, error)

	// GetIssue returns an issue by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetIssue(ctx context.Context, id int64) (*issue.Issue, error)

	// ListIssues returns issues matching the filter, ordered by key.
	ListIssues(ctx context.Context, f issue.Filter) ([]issue.Issue, error)

	// UpdateIssue persists the issue's mutable fields (title, description,
	// priority, effort, due date, assignee, status). Sprint and project
	// references are not touched by this method.
	UpdateIssue(ctx context.Context, i *issue.Issue) (*issue.Issue, error)

	// SetIssueSprint sets (or clears, with nil) the issue's sprint
	// reference.
	SetIssueSprint(ctx context.Context, issueID int64, sprintID *int64) error
}

// StatusStore provides read access to the externally-seeded status catalog.
type StatusStore interface {
	// StatusCatalog returns the ordered catalog snapshot.
	StatusCatalog(ctx context.Context) (status.Catalog, error)
}

// Store aggregates every persistence port. Storage adapters implement the
// whole interface; application services depend only on the slices they use.
type Store interface {
	ProjectStore
	MembershipStore
	SprintStore
	IssueStore
	StatusStore
}
