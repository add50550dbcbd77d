package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teamsuite/workflow-core/internal/app/fanout"
	"github.com/teamsuite/workflow-core/internal/domain"
	"github.com/teamsuite/workflow-core/internal/domain/sprint"
	"github.com/teamsuite/workflow-core/internal/ports"
)

// notifyWorkers bounds the concurrency of best-effort notification fan-out.
const notifyWorkers = 4

// requireManager aborts with domain.ErrAccessDenied unless the actor holds
// manager capability in the project. Authorization runs before any write, so
// a denial leaves storage untouched.
func requireManager(ctx context.Context, auth ports.MembershipService, projectID, actorID int64) error {
	ok, err := auth.CanManage(ctx, projectID, actorID)
	if err != nil {
		return fmt.Errorf("resolving role for user %d in project %d: %w", actorID, projectID, err)
	}
	if !ok {
		return fmt.Errorf("user %d cannot manage project %d: %w", actorID, projectID, domain.ErrAccessDenied)
	}
	return nil
}

// requireMember aborts with domain.ErrAccessDenied unless the actor holds any
// role in the project.
func requireMember(ctx context.Context, auth ports.MembershipService, projectID, actorID int64) error {
	ok, err := auth.IsMember(ctx, projectID, actorID)
	if err != nil {
		return fmt.Errorf("resolving membership for user %d in project %d: %w", actorID, projectID, err)
	}
	if !ok {
		return fmt.Errorf("user %d is not a member of project %d: %w", actorID, projectID, domain.ErrAccessDenied)
	}
	return nil
}

// sprintAcceptsIssues rejects issue membership changes on closed sprints.
func sprintAcceptsIssues(s *sprint.Sprint) error {
	if s.Status == sprint.StatusCompleted || s.Status == sprint.StatusCancelled {
		return fmt.Errorf("sprint %d is %s: %w", s.ID, s.Status, domain.ErrConflict)
	}
	return nil
}

// notifyUsers sends one notification per user with bounded concurrency.
// Failures are logged and swallowed: notification delivery is best-effort
// and never rolls back a committed mutation. Returns the failure count.
func notifyUsers(
	ctx context.Context,
	notifier ports.Notifier,
	logger *slog.Logger,
	workers int,
	userIDs []int64,
	kind ports.NotificationKind,
	payload map[string]any,
) int {
	results := fanout.Run(ctx, workers, userIDs, func(ctx context.Context, userID int64) (struct{}, error) {
		return struct{}{}, notifier.Notify(ctx, userID, kind, payload)
	})

	failed := 0
	for i, res := range results {
		if res.Err != nil {
			failed++
			logger.WarnContext(ctx, "notification delivery failed",
				slog.String("kind", string(kind)),
				slog.Int64("user_id", userIDs[i]),
				slog.Any("error", res.Err),
			)
		}
	}
	return failed
}
