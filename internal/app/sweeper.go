package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/teamsuite/workflow-core/internal/domain"
	"github.com/teamsuite/workflow-core/internal/domain/issue"
	"github.com/teamsuite/workflow-core/internal/platform/telemetry"
	"github.com/teamsuite/workflow-core/internal/ports"
)

// Compile-time check that Sweeper implements ports.Sweeper.
var _ ports.Sweeper = (*Sweeper)(nil)

// defaultEndingHorizon is how far ahead of a sprint's end date members are
// warned.
const defaultEndingHorizon = 3 * 24 * time.Hour

// Sweeper runs the periodic read-only consistency scans: overdue issue
// reminders and sprint-ending warnings. It only reads workflow state and
// calls the notifier, so overlapping or duplicate runs are safe.
type Sweeper struct {
	store    ports.Store
	notifier ports.Notifier
	horizon  time.Duration
	workers  int
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper. A zero horizon defaults to three days, a
// non-positive workers count to notifyWorkers, and a nil logger to a no-op
// logger. metrics may be nil.
func NewSweeper(store ports.Store, notifier ports.Notifier, horizon time.Duration, workers int, metrics *telemetry.Metrics, logger *slog.Logger) *Sweeper {
	if horizon <= 0 {
		horizon = defaultEndingHorizon
	}
	if workers <= 0 {
		workers = notifyWorkers
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sweeper{
		store:    store,
		notifier: notifier,
		horizon:  horizon,
		workers:  workers,
		metrics:  metrics,
		logger:   logger,
	}
}

// SweepOverdue emits one reminder per overdue issue that has an assignee.
// Issues that remain overdue are re-notified on every run: these are
// reminder semantics, so the sweep keeps no dedup state.
func (s *Sweeper) SweepOverdue(ctx context.Context, now time.Time) (ports.SweepReport, error) {
	start := time.Now()
	var report ports.SweepReport

	catalog, err := s.store.StatusCatalog(ctx)
	if err != nil {
		return report, fmt.Errorf("loading status catalog: %w", err)
	}
	done, ok := catalog.Done()
	if !ok {
		return report, fmt.Errorf("status catalog is empty: %w", domain.ErrUnavailable)
	}

	issues, err := s.store.ListIssues(ctx, issue.Filter{})
	if err != nil {
		return report, fmt.Errorf("listing issues: %w", err)
	}
	report.Scanned = len(issues)

	for i := range issues {
		iss := &issues[i]
		if !iss.IsOverdue(now, done.ID) || iss.AssigneeID == nil {
			continue
		}

		failed := notifyUsers(ctx, s.notifier, s.logger, s.workers, []int64{*iss.AssigneeID}, ports.KindIssueOverdue, map[string]any{
			"issue_id":  iss.ID,
			"issue_key": iss.Key,
			"title":     iss.Title,
			"due_date":  iss.DueDate.Format(time.DateOnly),
		})
		report.Failed += failed
		report.Notified += 1 - failed
	}

	s.finishSweep(ctx, "overdue", start, report)
	return report, nil
}

// SweepEndingSprints warns every member of a project whose active sprint
// ends on the day now+horizon falls on.
func (s *Sweeper) SweepEndingSprints(ctx context.Context, now time.Time) (ports.SweepReport, error) {
	start := time.Now()
	var report ports.SweepReport

	sprints, err := s.store.ListActiveSprints(ctx)
	if err != nil {
		return report, fmt.Errorf("listing active sprints: %w", err)
	}
	report.Scanned = len(sprints)

	warnDay := now.Add(s.horizon)

	for i := range sprints {
		sp := &sprints[i]
		if !sp.EndsOn(warnDay) {
			continue
		}

		members, err := s.store.ListMemberships(ctx, sp.ProjectID)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to list members for sprint-ending warning",
				slog.Int64("sprint_id", sp.ID),
				slog.Int64("project_id", sp.ProjectID),
				slog.Any("error", err),
			)
			continue
		}

		userIDs := make([]int64, 0, len(members))
		for _, m := range members {
			userIDs = append(userIDs, m.UserID)
		}

		failed := notifyUsers(ctx, s.notifier, s.logger, s.workers, userIDs, ports.KindSprintEnding, map[string]any{
			"sprint_id":   sp.ID,
			"sprint_name": sp.Name,
			"project_id":  sp.ProjectID,
			"end_date":    sp.EndDate.Format(time.DateOnly),
		})
		report.Failed += failed
		report.Notified += len(userIDs) - failed
	}

	s.finishSweep(ctx, "sprint_ending", start, report)
	return report, nil
}

// finishSweep logs the run outcome and records sweep metrics.
func (s *Sweeper) finishSweep(ctx context.Context, scan string, start time.Time, report ports.SweepReport) {
	s.logger.InfoContext(ctx, "sweep completed",
		slog.String("scan", scan),
		slog.Int("scanned", report.Scanned),
		slog.Int("notified", report.Notified),
		slog.Int("failed", report.Failed),
		slog.Duration("duration", time.Since(start)),
	)

	if s.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(telemetry.AttrScan.String(scan))
	s.metrics.SweepDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	s.metrics.NotificationsSent.Add(ctx, int64(report.Notified), attrs)
}
