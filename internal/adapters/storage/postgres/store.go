// Package postgres provides the pgx-backed implementation of the storage
// ports. Invariants that are check-then-act races in application code are
// pushed into the database: a partial unique index admits at most one active
// sprint per project, and issue keys come from a per-project counter
// incremented inside the insert transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamsuite/workflow-core/internal/adapters/storage/postgres/migrations"
	"github.com/teamsuite/workflow-core/internal/domain"
	"github.com/teamsuite/workflow-core/internal/domain/membership"
	"github.com/teamsuite/workflow-core/internal/domain/project"
	"github.com/teamsuite/workflow-core/internal/domain/status"
	"github.com/teamsuite/workflow-core/internal/platform/config"
	"github.com/teamsuite/workflow-core/internal/ports"
)

// Compile-time check that Store implements the full persistence port.
var _ ports.Store = (*Store)(nil)

// Store is a pgx connection pool with the workflow schema applied.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to postgres and applies embedded migrations.
func New(ctx context.Context, cfg config.PostgresConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.applyMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "postgres" }

// HealthCheck implements ports.HealthChecker by pinging the pool.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) applyMigrations(ctx context.Context) error {
	entries, err := migrations.Files.ReadDir(".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		sqlBytes, err := fs.ReadFile(migrations.Files, entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := s.pool.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// GetProject returns a project by ID.
func (s *Store) GetProject(ctx context.Context, id int64) (*project.Project, error) {
	var p project.Project
	err := s.pool.QueryRow(ctx, `
		SELECT id, key, name, status, owner_id, created_at, updated_at
		FROM projects
		WHERE id = $1`, id).
		Scan(&p.ID, &p.Key, &p.Name, &p.Status, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// GetMembership returns the membership for a (project, user) pair.
func (s *Store) GetMembership(ctx context.Context, projectID, userID int64) (*membership.Membership, error) {
	var m membership.Membership
	err := s.pool.QueryRow(ctx, `
		SELECT project_id, user_id, role, created_at
		FROM memberships
		WHERE project_id = $1 AND user_id = $2`, projectID, userID).
		Scan(&m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("membership of user %d in project %d: %w", userID, projectID, domain.ErrNotFound)
		}
		return nil, err
	}
	return &m, nil
}

// ListMemberships returns all memberships of a project, ordered by user ID.
func (s *Store) ListMemberships(ctx context.Context, projectID int64) ([]membership.Membership, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT project_id, user_id, role, created_at
		FROM memberships
		WHERE project_id = $1
		ORDER BY user_id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []membership.Membership
	for rows.Next() {
		var m membership.Membership
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return members, nil
}

// StatusCatalog returns the ordered catalog snapshot.
func (s *Store) StatusCatalog(ctx context.Context) (status.Catalog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, order_index
		FROM statuses
		ORDER BY order_index`)
	if err != nil {
		return status.Catalog{}, err
	}
	defer rows.Close()

	var entries []status.Status
	for rows.Next() {
		var st status.Status
		if err := rows.Scan(&st.ID, &st.Name, &st.OrderIndex); err != nil {
			return status.Catalog{}, err
		}
		entries = append(entries, st)
	}
	if rows.Err() != nil {
		return status.Catalog{}, rows.Err()
	}
	return status.NewCatalog(entries), nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// translateError maps postgres constraint violations onto the domain error
// taxonomy: unique violations (duplicate issue key, second active sprint)
// become Conflict, foreign-key violations become NotFound.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrConflict)
		case "23503":
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrNotFound)
		}
	}
	return err
}
