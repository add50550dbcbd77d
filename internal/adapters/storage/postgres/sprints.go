package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/teamsuite/workflow-core/internal/domain"
	"github.com/teamsuite/workflow-core/internal/domain/sprint"
)

const sprintColumns = `id, project_id, name, goal, start_date, end_date, status, created_by, created_at, updated_at`

type sprintRow interface {
	Scan(dest ...any) error
}

func scanSprint(row sprintRow) (*sprint.Sprint, error) {
	var (
		sp         sprint.Sprint
		start, end sql.NullTime
	)
	err := row.Scan(&sp.ID, &sp.ProjectID, &sp.Name, &sp.Goal, &start, &end,
		&sp.Status, &sp.CreatedBy, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if start.Valid {
		sp.StartDate = &start.Time
	}
	if end.Valid {
		sp.EndDate = &end.Time
	}
	return &sp, nil
}

// CreateSprint inserts the sprint and returns the stored row.
func (s *Store) CreateSprint(ctx context.Context, sp *sprint.Sprint) (*sprint.Sprint, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO sprints (project_id, name, goal, start_date, end_date, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+sprintColumns,
		sp.ProjectID, sp.Name, sp.Goal, sp.StartDate, sp.EndDate, sp.Status, sp.CreatedBy)

	created, err := scanSprint(row)
	if err != nil {
		return nil, translateError(err)
	}
	return created, nil
}

// GetSprint returns a sprint by ID.
func (s *Store) GetSprint(ctx context.Context, id int64) (*sprint.Sprint, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE id = $1`, id)

	sp, err := scanSprint(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sprint %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return sp, nil
}

// ListSprintsByProject returns all sprints of a project, oldest first.
func (s *Store) ListSprintsByProject(ctx context.Context, projectID int64) ([]sprint.Sprint, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+sprintColumns+` FROM sprints WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}
	return collectSprints(rows)
}

// ListActiveSprints returns every active sprint across all projects.
func (s *Store) ListActiveSprints(ctx context.Context) ([]sprint.Sprint, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+sprintColumns+` FROM sprints WHERE status = $1 ORDER BY id`, sprint.StatusActive)
	if err != nil {
		return nil, err
	}
	return collectSprints(rows)
}

func collectSprints(rows pgx.Rows) ([]sprint.Sprint, error) {
	defer rows.Close()

	var sprints []sprint.Sprint
	for rows.Next() {
		sp, err := scanSprint(rows)
		if err != nil {
			return nil, err
		}
		sprints = append(sprints, *sp)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return sprints, nil
}

// TransitionSprint atomically moves the sprint between statuses. The update
// only matches when the row still holds the expected status; a stale status
// means the sprint changed since the caller's read and maps to
// domain.ErrConflict. The partial unique index on active sprints rejects a
// second activation in the same project the same way.
func (s *Store) TransitionSprint(ctx context.Context, id int64, from, to sprint.Status) (*sprint.Sprint, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE sprints
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+sprintColumns, id, from, to)

	sp, err := scanSprint(row)
	if err == nil {
		return sp, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, translateError(err)
	}

	// No row matched: distinguish a missing sprint from a stale status.
	current, getErr := s.GetSprint(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("sprint %d is %s, expected %s: %w", id, current.Status, from, domain.ErrConflict)
}

// DeleteSprint clears the sprint reference on its issues and removes the
// sprint row in one transaction. The delete only matches non-active rows, so
// a sprint started concurrently after the caller's read is refused with
// domain.ErrConflict and the transaction rolls back. Issues are never
// deleted.
func (s *Store) DeleteSprint(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE issues SET sprint_id = NULL, updated_at = now() WHERE sprint_id = $1`, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`DELETE FROM sprints WHERE id = $1 AND status <> $2`, id, sprint.StatusActive)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			// No row matched: distinguish a missing sprint from an active one.
			var current sprint.Status
			err := tx.QueryRow(ctx, `SELECT status FROM sprints WHERE id = $1`, id).Scan(&current)
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("sprint %d: %w", id, domain.ErrNotFound)
			}
			if err != nil {
				return err
			}
			return fmt.Errorf("sprint %d is %s and cannot be deleted: %w", id, current, domain.ErrConflict)
		}
		return nil
	})
}
