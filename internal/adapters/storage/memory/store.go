// Package memory provides an in-memory implementation of the storage ports.
// It backs the local profile and the application-layer tests. A single mutex
// serializes mutations, which makes the check-then-act invariants (single
// active sprint, sequential issue keys) trivially atomic.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/teamsuite/workflow-core/internal/domain"
	"github.com/teamsuite/workflow-core/internal/domain/issue"
	"github.com/teamsuite/workflow-core/internal/domain/membership"
	"github.com/teamsuite/workflow-core/internal/domain/project"
	"github.com/teamsuite/workflow-core/internal/domain/sprint"
	"github.com/teamsuite/workflow-core/internal/domain/status"
	"github.com/teamsuite/workflow-core/internal/ports"
)

// Compile-time check that Store implements the full persistence port.
var _ ports.Store = (*Store)(nil)

type membershipKey struct {
	projectID int64
	userID    int64
}

// Store is a mutex-guarded in-memory store.
type Store struct {
	mu sync.RWMutex

	projects    map[int64]project.Project
	memberships map[membershipKey]membership.Membership
	sprints     map[int64]sprint.Sprint
	issues      map[int64]issue.Issue
	statuses    []status.Status

	issueSeq     map[int64]int64 // per-project issue key counter
	nextSprintID int64
	nextIssueID  int64

	now func() time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		projects:    make(map[int64]project.Project),
		memberships: make(map[membershipKey]membership.Membership),
		sprints:     make(map[int64]sprint.Sprint),
		issues:      make(map[int64]issue.Issue),
		issueSeq:    make(map[int64]int64),
		now:         time.Now,
	}
}

// SeedProject inserts a project row. Projects are provisioned externally;
// this hook exists for tests and the local profile.
func (s *Store) SeedProject(p project.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
}

// SeedMembership inserts a membership row.
func (s *Store) SeedMembership(m membership.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[membershipKey{m.ProjectID, m.UserID}] = m
}

// SeedStatuses replaces the status catalog.
func (s *Store) SeedStatuses(entries []status.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append([]status.Status(nil), entries...)
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "memory" }

// HealthCheck implements ports.HealthChecker. The in-memory store is always
// healthy.
func (s *Store) HealthCheck(_ context.Context) error { return nil }

// GetProject returns a project by ID.
func (s *Store) GetProject(_ context.Context, id int64) (*project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %d: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

// GetMembership returns the membership for a (project, user) pair.
func (s *Store) GetMembership(_ context.Context, projectID, userID int64) (*membership.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.memberships[membershipKey{projectID, userID}]
	if !ok {
		return nil, fmt.Errorf("membership of user %d in project %d: %w", userID, projectID, domain.ErrNotFound)
	}
	return &m, nil
}

// ListMemberships returns all memberships of a project, ordered by user ID.
func (s *Store) ListMemberships(_ context.Context, projectID int64) ([]membership.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var members []membership.Membership
	for key, m := range s.memberships {
		if key.projectID == projectID {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })
	return members, nil
}

// StatusCatalog returns the ordered catalog snapshot.
func (s *Store) StatusCatalog(_ context.Context) (status.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return status.NewCatalog(s.statuses), nil
}
