package app_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/teamsuite/workflow-core/internal/app"
	"github.com/teamsuite/workflow-core/internal/ports"
)

func newSweeper(f *fixture, horizon time.Duration) *app.Sweeper {
	return app.NewSweeper(f.store, f.notifier, horizon, 2, nil, slog.New(slog.DiscardHandler))
}

func TestSweeper_OverdueRemindsAssigneeEveryRun(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	now := time.Date(2026, time.June, 10, 8, 0, 0, 0, time.UTC)
	due := now.Add(-24 * time.Hour)

	iss, err := f.issues.Create(ctx, managerID, ports.CreateIssueInput{
		ProjectID: projectID,
		Title:     "Slipped task",
		DueDate:   &due,
	})
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	assignee := memberID
	if _, err := f.issues.Assign(ctx, managerID, iss.ID, &assignee); err != nil {
		t.Fatalf("Assign() = %v", err)
	}

	sweeper := newSweeper(f, 0)

	report, err := sweeper.SweepOverdue(ctx, now)
	if err != nil {
		t.Fatalf("SweepOverdue() = %v", err)
	}
	if report.Notified != 1 || report.Failed != 0 {
		t.Fatalf("report = %+v, want 1 notified, 0 failed", report)
	}

	// Still overdue on the next run: the reminder repeats.
	if _, err := sweeper.SweepOverdue(ctx, now.Add(24*time.Hour)); err != nil {
		t.Fatalf("second SweepOverdue() = %v", err)
	}
	if got := f.notifier.sentTo(memberID, ports.KindIssueOverdue); got != 2 {
		t.Errorf("overdue reminders = %d, want 2 (one per run)", got)
	}
}

func TestSweeper_OverdueSkipsUnassignedFutureAndDone(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	now := time.Date(2026, time.June, 10, 8, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	// Overdue but unassigned: nobody to remind.
	if _, err := f.issues.Create(ctx, managerID, ports.CreateIssueInput{
		ProjectID: projectID, Title: "Unassigned", DueDate: &past,
	}); err != nil {
		t.Fatalf("Create() = %v", err)
	}

	// Assigned but not yet due.
	early, err := f.issues.Create(ctx, managerID, ports.CreateIssueInput{
		ProjectID: projectID, Title: "Not due", DueDate: &future,
	})
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	assignee := memberID
	if _, err := f.issues.Assign(ctx, managerID, early.ID, &assignee); err != nil {
		t.Fatalf("Assign() = %v", err)
	}

	// Past due but already done.
	finished, err := f.issues.Create(ctx, managerID, ports.CreateIssueInput{
		ProjectID: projectID, Title: "Shipped", DueDate: &past,
	})
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	if _, err := f.issues.Assign(ctx, managerID, finished.ID, &assignee); err != nil {
		t.Fatalf("Assign() = %v", err)
	}
	if _, err := f.issues.ChangeStatus(ctx, memberID, finished.ID, statusDone); err != nil {
		t.Fatalf("ChangeStatus() = %v", err)
	}

	report, err := newSweeper(f, 0).SweepOverdue(ctx, now)
	if err != nil {
		t.Fatalf("SweepOverdue() = %v", err)
	}
	if report.Scanned != 3 {
		t.Errorf("scanned = %d, want 3", report.Scanned)
	}
	if report.Notified != 0 {
		t.Errorf("notified = %d, want 0", report.Notified)
	}
	if got := f.notifier.count(ports.KindIssueOverdue); got != 0 {
		t.Errorf("overdue reminders = %d, want 0", got)
	}
}

func TestSweeper_EndingSprintWarnsAllMembers(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	horizon := 72 * time.Hour
	now := time.Date(2026, time.March, 13, 9, 0, 0, 0, time.UTC)

	// Ends exactly on the warning day (now + 3 days).
	ending, err := f.sprints.Create(ctx, managerID, ports.CreateSprintInput{
		ProjectID: projectID,
		Name:      "Ending soon",
		StartDate: datePtr(2026, time.March, 2),
		EndDate:   datePtr(2026, time.March, 16),
	})
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	if _, err := f.sprints.Start(ctx, managerID, ending.ID); err != nil {
		t.Fatalf("Start() = %v", err)
	}

	report, err := newSweeper(f, horizon).SweepEndingSprints(ctx, now)
	if err != nil {
		t.Fatalf("SweepEndingSprints() = %v", err)
	}
	if report.Scanned != 1 {
		t.Errorf("scanned = %d, want 1", report.Scanned)
	}
	if report.Notified != 3 {
		t.Errorf("notified = %d, want 3 (all members)", report.Notified)
	}
	for _, userID := range []int64{ownerID, managerID, memberID} {
		if got := f.notifier.sentTo(userID, ports.KindSprintEnding); got != 1 {
			t.Errorf("sprint_ending to user %d = %d, want 1", userID, got)
		}
	}

	// A day earlier the end date is outside the warning day: no warnings.
	f2 := newFixture()
	sp2, err := f2.sprints.Create(ctx, managerID, ports.CreateSprintInput{
		ProjectID: projectID,
		Name:      "Not yet",
		StartDate: datePtr(2026, time.March, 2),
		EndDate:   datePtr(2026, time.March, 16),
	})
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	if _, err := f2.sprints.Start(ctx, managerID, sp2.ID); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if _, err := newSweeper(f2, horizon).SweepEndingSprints(ctx, now.Add(-24*time.Hour)); err != nil {
		t.Fatalf("SweepEndingSprints() = %v", err)
	}
	if got := f2.notifier.count(ports.KindSprintEnding); got != 0 {
		t.Errorf("early warnings = %d, want 0", got)
	}
}

func TestSweeper_CountsDeliveryFailures(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	now := time.Date(2026, time.June, 10, 8, 0, 0, 0, time.UTC)
	due := now.Add(-24 * time.Hour)

	iss, err := f.issues.Create(ctx, managerID, ports.CreateIssueInput{
		ProjectID: projectID, Title: "Undeliverable", DueDate: &due,
	})
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	assignee := memberID
	if _, err := f.issues.Assign(ctx, managerID, iss.ID, &assignee); err != nil {
		t.Fatalf("Assign() = %v", err)
	}

	f.notifier.fail[ports.KindIssueOverdue] = true

	report, err := newSweeper(f, 0).SweepOverdue(ctx, now)
	if err != nil {
		t.Fatalf("SweepOverdue() = %v", err)
	}
	if report.Failed != 1 || report.Notified != 0 {
		t.Errorf("report = %+v, want 1 failed, 0 notified", report)
	}
}
