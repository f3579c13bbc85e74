package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/resulthub/academic-results-hub/internal/domain/audit"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ALTERATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const alterationColumns = `
	id, result_id, matric, course_code, session, alteration_type,
	before_ca, before_exam, before_total, before_grade,
	after_ca, after_exam, after_total, after_grade,
	actor_id, actor_name, actor_role,
	ip_address, device, browser, os, location, device_name,
	created_at
`

// AlterationRepository implements audit.Repository for PostgreSQL.
// Append-only: the only write is INSERT.
type AlterationRepository struct {
	q Querier
}

// NewAlterationRepository creates a new AlterationRepository over the pool.
func NewAlterationRepository(conn *Connection) *AlterationRepository {
	return &AlterationRepository{q: conn}
}

// NewAlterationRepositoryWithQuerier creates a repository bound to the
// given querier, typically a transaction.
func NewAlterationRepositoryWithQuerier(q Querier) *AlterationRepository {
	return &AlterationRepository{q: q}
}

// Append persists a new alteration record.
func (r *AlterationRepository) Append(ctx context.Context, rec *audit.AlterationRecord) error {
	query := `
		INSERT INTO result_alterations (
			id, result_id, matric, course_code, session, alteration_type,
			before_ca, before_exam, before_total, before_grade,
			after_ca, after_exam, after_total, after_grade,
			actor_id, actor_name, actor_role,
			ip_address, device, browser, os, location, device_name,
			created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17,
			$18, $19, $20, $21, $22, $23,
			$24
		)
	`

	_, err := r.q.Exec(ctx, query,
		rec.ID,
		rec.ResultID,
		rec.Matric.String(),
		rec.CourseCode.String(),
		rec.Session.String(),
		string(rec.Type),
		rec.Before.CAScore,
		rec.Before.ExamScore,
		rec.Before.TotalScore,
		rec.Before.Grade,
		rec.After.CAScore,
		rec.After.ExamScore,
		rec.After.TotalScore,
		rec.After.Grade,
		rec.ActorID,
		rec.ActorName,
		rec.ActorRole.String(),
		rec.Context.IPAddress,
		rec.Context.Device,
		rec.Context.Browser,
		rec.Context.OS,
		rec.Context.Location,
		rec.Context.DeviceName,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append alteration record: %w", err)
	}

	return nil
}

// ListByResult returns the alteration history of one result, oldest first.
func (r *AlterationRepository) ListByResult(ctx context.Context, resultID string) ([]*audit.AlterationRecord, error) {
	query := `
		SELECT ` + alterationColumns + `
		FROM result_alterations
		WHERE result_id = $1
		ORDER BY created_at
	`
	rows, err := r.q.Query(ctx, query, resultID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alterations by result: %w", err)
	}
	defer rows.Close()

	return scanAlterations(rows)
}

// ListByMatric returns alterations affecting a student's results, newest
// first, paginated.
func (r *AlterationRepository) ListByMatric(ctx context.Context, matric shared.Matric, p shared.Pagination) ([]*audit.AlterationRecord, error) {
	query := `
		SELECT ` + alterationColumns + `
		FROM result_alterations
		WHERE matric = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.q.Query(ctx, query, matric.String(), p.Limit(), p.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list alterations by matric: %w", err)
	}
	defer rows.Close()

	return scanAlterations(rows)
}

// ListByActor returns alterations performed by an actor, newest first,
// paginated.
func (r *AlterationRepository) ListByActor(ctx context.Context, actorID string, p shared.Pagination) ([]*audit.AlterationRecord, error) {
	query := `
		SELECT ` + alterationColumns + `
		FROM result_alterations
		WHERE actor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.q.Query(ctx, query, actorID, p.Limit(), p.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list alterations by actor: %w", err)
	}
	defer rows.Close()

	return scanAlterations(rows)
}

func scanAlteration(row pgx.Row) (*audit.AlterationRecord, error) {
	var (
		rec            audit.AlterationRecord
		matric         string
		courseCode     string
		session        string
		alterationType string
		actorRole      string
	)

	err := row.Scan(
		&rec.ID,
		&rec.ResultID,
		&matric,
		&courseCode,
		&session,
		&alterationType,
		&rec.Before.CAScore,
		&rec.Before.ExamScore,
		&rec.Before.TotalScore,
		&rec.Before.Grade,
		&rec.After.CAScore,
		&rec.After.ExamScore,
		&rec.After.TotalScore,
		&rec.After.Grade,
		&rec.ActorID,
		&rec.ActorName,
		&actorRole,
		&rec.Context.IPAddress,
		&rec.Context.Device,
		&rec.Context.Browser,
		&rec.Context.OS,
		&rec.Context.Location,
		&rec.Context.DeviceName,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan alteration record: %w", err)
	}

	rec.Matric = shared.Matric(matric)
	rec.CourseCode = shared.CourseCode(courseCode)
	rec.Session = shared.Session(session)
	rec.Type = audit.AlterationType(alterationType)
	rec.ActorRole = shared.Role(actorRole)

	return &rec, nil
}

func scanAlterations(rows pgx.Rows) ([]*audit.AlterationRecord, error) {
	var out []*audit.AlterationRecord
	for rows.Next() {
		rec, err := scanAlteration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
