package app_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teamsuite/workflow-core/internal/adapters/storage/memory"
	"github.com/teamsuite/workflow-core/internal/app"
	"github.com/teamsuite/workflow-core/internal/domain/membership"
	"github.com/teamsuite/workflow-core/internal/domain/project"
	"github.com/teamsuite/workflow-core/internal/domain/status"
	"github.com/teamsuite/workflow-core/internal/ports"
)

// Test users of the seeded project.
const (
	ownerID   = int64(1)
	managerID = int64(2)
	memberID  = int64(3)
	outsider  = int64(99)

	projectID = int64(10)

	statusToDo       = int64(1)
	statusInProgress = int64(2)
	statusDone       = int64(3)
)

// sentEvent records one delivered notification.
type sentEvent struct {
	UserID  int64
	Kind    ports.NotificationKind
	Payload map[string]any
}

// fakeNotifier is a thread-safe in-memory Notifier. Kinds listed in fail
// return an error instead of recording.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentEvent
	fail map[ports.NotificationKind]bool
}

func (f *fakeNotifier) Notify(_ context.Context, userID int64, kind ports.NotificationKind, payload map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail[kind] {
		return fmt.Errorf("dispatcher rejected %s", kind)
	}
	f.sent = append(f.sent, sentEvent{UserID: userID, Kind: kind, Payload: payload})
	return nil
}

func (f *fakeNotifier) sentTo(userID int64, kind ports.NotificationKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, e := range f.sent {
		if e.UserID == userID && e.Kind == kind {
			n++
		}
	}
	return n
}

func (f *fakeNotifier) count(kind ports.NotificationKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, e := range f.sent {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// fixture bundles the wired services over a seeded in-memory store.
type fixture struct {
	store    *memory.Store
	notifier *fakeNotifier
	auth     *app.MembershipService
	sprints  *app.SprintService
	issues   *app.IssueService
}

// newFixture seeds one project ("HRM") with an owner, a manager, and a
// member, plus a three-entry status catalog.
func newFixture() *fixture {
	store := memory.New()

	store.SeedProject(project.Project{
		ID:      projectID,
		Key:     "HRM",
		Name:    "Hiring Manager",
		Status:  project.StatusActive,
		OwnerID: ownerID,
	})
	for userID, role := range map[int64]membership.Role{
		ownerID:   membership.RoleOwner,
		managerID: membership.RoleManager,
		memberID:  membership.RoleMember,
	} {
		store.SeedMembership(membership.Membership{
			ProjectID: projectID,
			UserID:    userID,
			Role:      role,
		})
	}
	store.SeedStatuses([]status.Status{
		{ID: statusToDo, Name: "To Do", OrderIndex: 0},
		{ID: statusInProgress, Name: "In Progress", OrderIndex: 1},
		{ID: statusDone, Name: "Done", OrderIndex: 2},
	})

	notifier := &fakeNotifier{fail: make(map[ports.NotificationKind]bool)}
	logger := slog.New(slog.DiscardHandler)
	auth := app.NewMembershipService(store, logger)

	return &fixture{
		store:    store,
		notifier: notifier,
		auth:     auth,
		sprints:  app.NewSprintService(auth, store, notifier, logger),
		issues:   app.NewIssueService(auth, store, notifier, logger),
	}
}
