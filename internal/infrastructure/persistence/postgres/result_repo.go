package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/resulthub/academic-results-hub/internal/domain/grading"
	"github.com/resulthub/academic-results-hub/internal/domain/result"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESULT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const resultColumns = `
	id, matric, course_code, session, semester, level,
	ca_score, exam_score, total_score, grade, grade_point,
	is_carryover, is_locked, locked_by, locked_at, unlocked_by, unlocked_at,
	created_at, updated_at
`

// ResultRepository implements result.Repository for PostgreSQL.
// It is written against Querier so the unit of work can rebind it to a
// transaction.
type ResultRepository struct {
	q Querier
}

// NewResultRepository creates a new ResultRepository over the pool.
func NewResultRepository(conn *Connection) *ResultRepository {
	return &ResultRepository{q: conn}
}

// NewResultRepositoryWithQuerier creates a repository bound to the given
// querier, typically a transaction.
func NewResultRepositoryWithQuerier(q Querier) *ResultRepository {
	return &ResultRepository{q: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create persists a new result.
func (r *ResultRepository) Create(ctx context.Context, res *result.Result) error {
	query := `
		INSERT INTO results (
			id, matric, course_code, session, semester, level,
			ca_score, exam_score, total_score, grade, grade_point,
			is_carryover, is_locked, locked_by, locked_at, unlocked_by, unlocked_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.q.Exec(ctx, query,
		res.ID,
		res.Matric.String(),
		res.CourseCode.String(),
		res.Session.String(),
		int(res.Semester),
		int(res.Level),
		res.CAScore,
		res.ExamScore,
		res.TotalScore,
		res.Grade.String(),
		res.GradePoint.Float64(),
		res.IsCarryover,
		res.IsLocked,
		res.LockedBy,
		res.LockedAt,
		res.UnlockedBy,
		res.UnlockedAt,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create result: %w", err)
	}

	return nil
}

// Update persists changes to an existing result.
func (r *ResultRepository) Update(ctx context.Context, res *result.Result) error {
	query := `
		UPDATE results SET
			ca_score = $1,
			exam_score = $2,
			total_score = $3,
			grade = $4,
			grade_point = $5,
			is_carryover = $6,
			is_locked = $7,
			locked_by = $8,
			locked_at = $9,
			unlocked_by = $10,
			unlocked_at = $11,
			updated_at = $12
		WHERE id = $13
	`

	tag, err := r.q.Exec(ctx, query,
		res.CAScore,
		res.ExamScore,
		res.TotalScore,
		res.Grade.String(),
		res.GradePoint.Float64(),
		res.IsCarryover,
		res.IsLocked,
		res.LockedBy,
		res.LockedAt,
		res.UnlockedBy,
		res.UnlockedAt,
		res.UpdatedAt,
		res.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrResultNotFound
	}

	return nil
}

// Delete removes a result.
func (r *ResultRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM results WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrResultNotFound
	}
	return nil
}

// GetByID returns a result by its ID.
func (r *ResultRepository) GetByID(ctx context.Context, id string) (*result.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results WHERE id = $1`
	return scanResult(r.q.QueryRow(ctx, query, id))
}

// GetByKey returns the result for a (matric, course, session) triple.
func (r *ResultRepository) GetByKey(ctx context.Context, matric shared.Matric, courseCode shared.CourseCode, session shared.Session) (*result.Result, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM results
		WHERE matric = $1 AND course_code = $2 AND session = $3
	`
	return scanResult(r.q.QueryRow(ctx, query, matric.String(), courseCode.String(), session.String()))
}

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

// ListByCourseSession returns all results for a course in a session.
func (r *ResultRepository) ListByCourseSession(ctx context.Context, courseCode shared.CourseCode, session shared.Session) ([]*result.Result, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM results
		WHERE course_code = $1 AND session = $2
		ORDER BY matric
	`
	rows, err := r.q.Query(ctx, query, courseCode.String(), session.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list results by course: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// ListByMatric returns a student's results, optionally scoped to a session.
func (r *ResultRepository) ListByMatric(ctx context.Context, matric shared.Matric, session shared.Session) ([]*result.Result, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM results
		WHERE matric = $1 AND ($2 = '' OR session = $2)
		ORDER BY session, semester, course_code
	`
	rows, err := r.q.Query(ctx, query, matric.String(), session.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list results by matric: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// ListFailingBySession returns all failing results recorded in a session.
func (r *ResultRepository) ListFailingBySession(ctx context.Context, session shared.Session) ([]*result.Result, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM results
		WHERE session = $1 AND grade_point = 0
		ORDER BY matric, course_code
	`
	rows, err := r.q.Query(ctx, query, session.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list failing results: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Lock State
// ─────────────────────────────────────────────────────────────────────────────

// CountLockState returns total and locked result counts for a (course, session).
func (r *ResultRepository) CountLockState(ctx context.Context, courseCode shared.CourseCode, session shared.Session) (int, int, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_locked)
		FROM results
		WHERE course_code = $1 AND session = $2
	`

	var total, locked int
	err := r.q.QueryRow(ctx, query, courseCode.String(), session.String()).Scan(&total, &locked)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count lock state: %w", err)
	}
	return total, locked, nil
}

// LockAll locks every unlocked result for the (course, session).
func (r *ResultRepository) LockAll(ctx context.Context, courseCode shared.CourseCode, session shared.Session, actorID string) (result.LockCounts, error) {
	query := `
		UPDATE results SET
			is_locked = TRUE,
			locked_by = $1,
			locked_at = NOW(),
			unlocked_by = '',
			unlocked_at = NULL
		WHERE course_code = $2 AND session = $3 AND NOT is_locked
	`

	tag, err := r.q.Exec(ctx, query, actorID, courseCode.String(), session.String())
	if err != nil {
		return result.LockCounts{}, fmt.Errorf("failed to lock results: %w", err)
	}

	total, locked, err := r.CountLockState(ctx, courseCode, session)
	if err != nil {
		return result.LockCounts{}, err
	}

	return result.LockCounts{
		Changed: int(tag.RowsAffected()),
		Total:   total,
		Locked:  locked,
	}, nil
}

// UnlockAll unlocks every locked result for the (course, session).
func (r *ResultRepository) UnlockAll(ctx context.Context, courseCode shared.CourseCode, session shared.Session, actorID string) (result.LockCounts, error) {
	query := `
		UPDATE results SET
			is_locked = FALSE,
			unlocked_by = $1,
			unlocked_at = NOW()
		WHERE course_code = $2 AND session = $3 AND is_locked
	`

	tag, err := r.q.Exec(ctx, query, actorID, courseCode.String(), session.String())
	if err != nil {
		return result.LockCounts{}, fmt.Errorf("failed to unlock results: %w", err)
	}

	total, locked, err := r.CountLockState(ctx, courseCode, session)
	if err != nil {
		return result.LockCounts{}, err
	}

	return result.LockCounts{
		Changed: int(tag.RowsAffected()),
		Total:   total,
		Locked:  locked,
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func scanResult(row pgx.Row) (*result.Result, error) {
	var (
		res        result.Result
		matric     string
		courseCode string
		session    string
		semester   int
		level      int
		grade      string
		gradePoint float64
	)

	err := row.Scan(
		&res.ID,
		&matric,
		&courseCode,
		&session,
		&semester,
		&level,
		&res.CAScore,
		&res.ExamScore,
		&res.TotalScore,
		&grade,
		&gradePoint,
		&res.IsCarryover,
		&res.IsLocked,
		&res.LockedBy,
		&res.LockedAt,
		&res.UnlockedBy,
		&res.UnlockedAt,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to scan result: %w", err)
	}

	res.Matric = shared.Matric(matric)
	res.CourseCode = shared.CourseCode(courseCode)
	res.Session = shared.Session(session)
	res.Semester = shared.Semester(semester)
	res.Level = shared.Level(level)
	res.Grade = grading.Grade(grade)
	res.GradePoint = grading.Point(gradePoint)

	return &res, nil
}

func scanResults(rows pgx.Rows) ([]*result.Result, error) {
	var out []*result.Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
