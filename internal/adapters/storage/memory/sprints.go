package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/teamsuite/workflow-core/internal/domain"
	"github.com/teamsuite/workflow-core/internal/domain/sprint"
)

// CreateSprint inserts the sprint and assigns ID and timestamps.
func (s *Store) CreateSprint(_ context.Context, sp *sprint.Sprint) (*sprint.Sprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[sp.ProjectID]; !ok {
		return nil, fmt.Errorf("project %d: %w", sp.ProjectID, domain.ErrNotFound)
	}

	s.nextSprintID++
	stored := *sp
	stored.ID = s.nextSprintID
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt
	s.sprints[stored.ID] = stored

	return &stored, nil
}

// GetSprint returns a sprint by ID.
func (s *Store) GetSprint(_ context.Context, id int64) (*sprint.Sprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.sprints[id]
	if !ok {
		return nil, fmt.Errorf("sprint %d: %w", id, domain.ErrNotFound)
	}
	return &sp, nil
}

// ListSprintsByProject returns all sprints of a project, oldest first.
func (s *Store) ListSprintsByProject(_ context.Context, projectID int64) ([]sprint.Sprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sprints []sprint.Sprint
	for _, sp := range s.sprints {
		if sp.ProjectID == projectID {
			sprints = append(sprints, sp)
		}
	}
	sort.Slice(sprints, func(i, j int) bool { return sprints[i].ID < sprints[j].ID })
	return sprints, nil
}

// ListActiveSprints returns every active sprint across all projects.
func (s *Store) ListActiveSprints(_ context.Context) ([]sprint.Sprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sprints []sprint.Sprint
	for _, sp := range s.sprints {
		if sp.Status == sprint.StatusActive {
			sprints = append(sprints, sp)
		}
	}
	sort.Slice(sprints, func(i, j int) bool { return sprints[i].ID < sprints[j].ID })
	return sprints, nil
}

// TransitionSprint atomically moves the sprint between statuses. The current
// status is re-checked under the write lock, so racing callers observe a
// serial order; a stale expected status means the sprint changed since the
// caller's read and fails with domain.ErrConflict, as does moving to active
// while the project has another active sprint.
func (s *Store) TransitionSprint(_ context.Context, id int64, from, to sprint.Status) (*sprint.Sprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.sprints[id]
	if !ok {
		return nil, fmt.Errorf("sprint %d: %w", id, domain.ErrNotFound)
	}
	if sp.Status != from {
		return nil, fmt.Errorf("sprint %d is %s, expected %s: %w", id, sp.Status, from, domain.ErrConflict)
	}

	if to == sprint.StatusActive {
		for _, other := range s.sprints {
			if other.ProjectID == sp.ProjectID && other.ID != sp.ID && other.Status == sprint.StatusActive {
				return nil, fmt.Errorf("project %d already has active sprint %d: %w",
					sp.ProjectID, other.ID, domain.ErrConflict)
			}
		}
	}

	sp.Status = to
	sp.UpdatedAt = s.now()
	s.sprints[id] = sp

	return &sp, nil
}

// DeleteSprint clears the sprint reference on all of its issues and removes
// the sprint row, all under one lock acquisition. The status is re-checked
// under the same lock: an active sprint is refused with domain.ErrConflict
// even when the caller read a different status earlier. Issues are never
// deleted.
func (s *Store) DeleteSprint(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.sprints[id]
	if !ok {
		return fmt.Errorf("sprint %d: %w", id, domain.ErrNotFound)
	}
	if sp.Status == sprint.StatusActive {
		return fmt.Errorf("sprint %d is active and cannot be deleted: %w", id, domain.ErrConflict)
	}

	for issueID, iss := range s.issues {
		if iss.SprintID != nil && *iss.SprintID == id {
			iss.SprintID = nil
			iss.UpdatedAt = s.now()
			s.issues[issueID] = iss
		}
	}

	delete(s.sprints, id)
	return nil
}
