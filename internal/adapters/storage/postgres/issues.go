package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/teamsuite/workflow-core/internal/domain"
	"github.com/teamsuite/workflow-core/internal/domain/issue"
)

const issueColumns = `id, project_id, sprint_id, key, title, description, status_id, priority,
	reporter_id, assignee_id, estimated_hours, actual_hours, due_date, created_at, updated_at`

func scanIssue(row sprintRow) (*issue.Issue, error) {
	var (
		iss        issue.Issue
		sprintID   sql.NullInt64
		assigneeID sql.NullInt64
		estimated  sql.NullFloat64
		actual     sql.NullFloat64
		due        sql.NullTime
	)
	err := row.Scan(&iss.ID, &iss.ProjectID, &sprintID, &iss.Key, &iss.Title, &iss.Description,
		&iss.StatusID, &iss.Priority, &iss.ReporterID, &assigneeID, &estimated, &actual, &due,
		&iss.CreatedAt, &iss.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if sprintID.Valid {
		iss.SprintID = &sprintID.Int64
	}
	if assigneeID.Valid {
		iss.AssigneeID = &assigneeID.Int64
	}
	if estimated.Valid {
		iss.EstimatedHours = &estimated.Float64
	}
	if actual.Valid {
		iss.ActualHours = &actual.Float64
	}
	if due.Valid {
		iss.DueDate = &due.Time
	}
	return &iss, nil
}

// CreateIssue inserts the issue, allocating the next project-scoped key from
// the project's counter inside one transaction. The counter row is locked by
// the UPDATE, so concurrent creates in the same project serialize and the
// sequence stays gap-free.
func (s *Store) CreateIssue(ctx context.Context, in *issue.Issue) (*issue.Issue, error) {
	var created *issue.Issue

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var (
			projectKey string
			seq        int64
		)
		err := tx.QueryRow(ctx, `
			UPDATE projects
			SET issue_seq = issue_seq + 1, updated_at = now()
			WHERE id = $1
			RETURNING key, issue_seq`, in.ProjectID).Scan(&projectKey, &seq)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("project %d: %w", in.ProjectID, domain.ErrNotFound)
			}
			return err
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO issues (project_id, sprint_id, key, title, description, status_id,
				priority, reporter_id, assignee_id, estimated_hours, actual_hours, due_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING `+issueColumns,
			in.ProjectID, in.SprintID, projectKey+"-"+strconv.FormatInt(seq, 10),
			in.Title, in.Description, in.StatusID, in.Priority, in.ReporterID,
			in.AssigneeID, in.EstimatedHours, in.ActualHours, in.DueDate)

		created, err = scanIssue(row)
		return err
	})
	if err != nil {
		return nil, translateError(err)
	}
	return created, nil
}

// GetIssue returns an issue by ID.
func (s *Store) GetIssue(ctx context.Context, id int64) (*issue.Issue, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, id)

	iss, err := scanIssue(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("issue %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return iss, nil
}

// ListIssues returns issues matching the filter, ordered by ID (which is
// also key order within a project).
func (s *Store) ListIssues(ctx context.Context, f issue.Filter) ([]issue.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE 1=1`
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.ProjectID != nil {
		query += ` AND project_id = ` + arg(*f.ProjectID)
	}
	if f.Backlog {
		query += ` AND sprint_id IS NULL`
	}
	if f.SprintID != nil {
		query += ` AND sprint_id = ` + arg(*f.SprintID)
	}
	if f.StatusID != nil {
		query += ` AND status_id = ` + arg(*f.StatusID)
	}
	if f.AssigneeID != nil {
		query += ` AND assignee_id = ` + arg(*f.AssigneeID)
	}
	if f.Priority != "" {
		query += ` AND priority = ` + arg(f.Priority)
	}
	query += ` ORDER BY id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []issue.Issue
	for rows.Next() {
		iss, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, *iss)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return issues, nil
}

// UpdateIssue persists the issue's mutable fields. The sprint and project
// references of the stored row are preserved.
func (s *Store) UpdateIssue(ctx context.Context, in *issue.Issue) (*issue.Issue, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE issues
		SET title = $2, description = $3, status_id = $4, priority = $5, assignee_id = $6,
			estimated_hours = $7, actual_hours = $8, due_date = $9, updated_at = now()
		WHERE id = $1
		RETURNING `+issueColumns,
		in.ID, in.Title, in.Description, in.StatusID, in.Priority, in.AssigneeID,
		in.EstimatedHours, in.ActualHours, in.DueDate)

	updated, err := scanIssue(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("issue %d: %w", in.ID, domain.ErrNotFound)
		}
		return nil, translateError(err)
	}
	return updated, nil
}

// SetIssueSprint sets (or clears, with nil) the issue's sprint reference.
func (s *Store) SetIssueSprint(ctx context.Context, issueID int64, sprintID *int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE issues SET sprint_id = $2, updated_at = now() WHERE id = $1`, issueID, sprintID)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("issue %d: %w", issueID, domain.ErrNotFound)
	}
	return nil
}
