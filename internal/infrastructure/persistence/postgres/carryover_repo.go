package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/resulthub/academic-results-hub/internal/domain/carryover"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CARRYOVER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const carryoverColumns = `
	id, matric, course_code, originating_session, original_level,
	is_cleared, cleared_session, cleared_result_id, created_at, updated_at
`

// CarryoverRepository implements carryover.Repository for PostgreSQL.
// The partial unique index idx_carryovers_one_open backs the ledger's
// single-open-record invariant against concurrent writers.
type CarryoverRepository struct {
	q Querier
}

// NewCarryoverRepository creates a new CarryoverRepository over the pool.
func NewCarryoverRepository(conn *Connection) *CarryoverRepository {
	return &CarryoverRepository{q: conn}
}

// NewCarryoverRepositoryWithQuerier creates a repository bound to the given
// querier, typically a transaction.
func NewCarryoverRepositoryWithQuerier(q Querier) *CarryoverRepository {
	return &CarryoverRepository{q: q}
}

// Create persists a new carryover.
func (r *CarryoverRepository) Create(ctx context.Context, c *carryover.Carryover) error {
	query := `
		INSERT INTO carryovers (
			id, matric, course_code, originating_session, original_level,
			is_cleared, cleared_session, cleared_result_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.Exec(ctx, query,
		c.ID,
		c.Matric.String(),
		c.CourseCode.String(),
		c.OriginatingSession.String(),
		int(c.OriginalLevel),
		c.IsCleared,
		c.ClearedSession.String(),
		nullableID(c.ClearedResultID),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrCarryoverDuplicate
		}
		return fmt.Errorf("failed to create carryover: %w", err)
	}

	return nil
}

// Update persists changes to an existing carryover.
func (r *CarryoverRepository) Update(ctx context.Context, c *carryover.Carryover) error {
	query := `
		UPDATE carryovers SET
			is_cleared = $1,
			cleared_session = $2,
			cleared_result_id = $3,
			updated_at = $4
		WHERE id = $5
	`

	tag, err := r.q.Exec(ctx, query,
		c.IsCleared,
		c.ClearedSession.String(),
		nullableID(c.ClearedResultID),
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update carryover: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrCarryoverNotFound
	}

	return nil
}

// GetOpen returns the open carryover for a (matric, course).
func (r *CarryoverRepository) GetOpen(ctx context.Context, matric shared.Matric, courseCode shared.CourseCode) (*carryover.Carryover, error) {
	query := `
		SELECT ` + carryoverColumns + `
		FROM carryovers
		WHERE matric = $1 AND course_code = $2 AND NOT is_cleared
	`
	return scanCarryover(r.q.QueryRow(ctx, query, matric.String(), courseCode.String()))
}

// GetLatest returns the most recent carryover for a (matric, course),
// regardless of state.
func (r *CarryoverRepository) GetLatest(ctx context.Context, matric shared.Matric, courseCode shared.CourseCode) (*carryover.Carryover, error) {
	query := `
		SELECT ` + carryoverColumns + `
		FROM carryovers
		WHERE matric = $1 AND course_code = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanCarryover(r.q.QueryRow(ctx, query, matric.String(), courseCode.String()))
}

// GetClearedByResult returns the carryover cleared by the given result.
func (r *CarryoverRepository) GetClearedByResult(ctx context.Context, resultID string) (*carryover.Carryover, error) {
	query := `
		SELECT ` + carryoverColumns + `
		FROM carryovers
		WHERE cleared_result_id = $1 AND is_cleared
	`
	return scanCarryover(r.q.QueryRow(ctx, query, resultID))
}

// ListOutstanding returns all open carryovers of a student.
func (r *CarryoverRepository) ListOutstanding(ctx context.Context, matric shared.Matric) ([]*carryover.Carryover, error) {
	query := `
		SELECT ` + carryoverColumns + `
		FROM carryovers
		WHERE matric = $1 AND NOT is_cleared
		ORDER BY originating_session, course_code
	`
	rows, err := r.q.Query(ctx, query, matric.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list outstanding carryovers: %w", err)
	}
	defer rows.Close()

	return scanCarryovers(rows)
}

// ListByMatric returns all carryovers of a student.
func (r *CarryoverRepository) ListByMatric(ctx context.Context, matric shared.Matric) ([]*carryover.Carryover, error) {
	query := `
		SELECT ` + carryoverColumns + `
		FROM carryovers
		WHERE matric = $1
		ORDER BY originating_session, course_code
	`
	rows, err := r.q.Query(ctx, query, matric.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list carryovers: %w", err)
	}
	defer rows.Close()

	return scanCarryovers(rows)
}

// nullableID maps an empty string to NULL for UUID columns.
func nullableID(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}

func scanCarryover(row pgx.Row) (*carryover.Carryover, error) {
	var (
		c               carryover.Carryover
		matric          string
		courseCode      string
		origSession     string
		level           int
		clearedSession  string
		clearedResultID *string
	)

	err := row.Scan(
		&c.ID,
		&matric,
		&courseCode,
		&origSession,
		&level,
		&c.IsCleared,
		&clearedSession,
		&clearedResultID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCarryoverNotFound
		}
		return nil, fmt.Errorf("failed to scan carryover: %w", err)
	}

	c.Matric = shared.Matric(matric)
	c.CourseCode = shared.CourseCode(courseCode)
	c.OriginatingSession = shared.Session(origSession)
	c.OriginalLevel = shared.Level(level)
	c.ClearedSession = shared.Session(clearedSession)
	if clearedResultID != nil {
		c.ClearedResultID = *clearedResultID
	}

	return &c, nil
}

func scanCarryovers(rows pgx.Rows) ([]*carryover.Carryover, error) {
	var out []*carryover.Carryover
	for rows.Next() {
		c, err := scanCarryover(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
