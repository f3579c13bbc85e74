package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/resulthub/academic-results-hub/internal/domain/course"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const courseColumns = `
	code, title, credit_unit, degree_type, level, semester, department,
	is_approved, approved_by, approved_at, created_at, updated_at
`

// CourseRepository implements course.Repository for PostgreSQL.
type CourseRepository struct {
	q Querier
}

// NewCourseRepository creates a new CourseRepository over the pool.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{q: conn}
}

// NewCourseRepositoryWithQuerier creates a repository bound to the given
// querier, typically a transaction.
func NewCourseRepositoryWithQuerier(q Querier) *CourseRepository {
	return &CourseRepository{q: q}
}

// GetByCode returns a course by its code.
func (r *CourseRepository) GetByCode(ctx context.Context, code shared.CourseCode) (*course.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE code = $1`
	return scanCourse(r.q.QueryRow(ctx, query, code.String()))
}

// Update persists changes to a course.
func (r *CourseRepository) Update(ctx context.Context, c *course.Course) error {
	query := `
		UPDATE courses SET
			title = $1,
			credit_unit = $2,
			degree_type = $3,
			level = $4,
			semester = $5,
			department = $6,
			is_approved = $7,
			approved_by = $8,
			approved_at = $9,
			updated_at = $10
		WHERE code = $11
	`

	tag, err := r.q.Exec(ctx, query,
		c.Title,
		c.CreditUnit,
		c.DegreeType.String(),
		int(c.Level),
		int(c.Semester),
		c.Department,
		c.IsApproved,
		c.ApprovedBy,
		c.ApprovedAt,
		c.UpdatedAt,
		c.Code.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrCourseNotFound
	}

	return nil
}

// ListByDepartment returns all courses in a department.
func (r *CourseRepository) ListByDepartment(ctx context.Context, department string) ([]*course.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE department = $1
		ORDER BY code
	`
	rows, err := r.q.Query(ctx, query, department)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses by department: %w", err)
	}
	defer rows.Close()

	var out []*course.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// IsAssigned reports whether the lecturer appears on the roster for the
// (course, session).
func (r *CourseRepository) IsAssigned(ctx context.Context, code shared.CourseCode, session shared.Session, lecturerID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM course_assignments
			WHERE course_code = $1 AND session = $2 AND lecturer_id = $3
		)
	`

	var assigned bool
	err := r.q.QueryRow(ctx, query, code.String(), session.String(), lecturerID).Scan(&assigned)
	if err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return assigned, nil
}

// Assign adds a lecturer to the roster for the (course, session).
// Re-assigning is a no-op.
func (r *CourseRepository) Assign(ctx context.Context, a course.Assignment) error {
	query := `
		INSERT INTO course_assignments (course_code, session, lecturer_id, assigned_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (course_code, session, lecturer_id) DO NOTHING
	`

	_, err := r.q.Exec(ctx, query,
		a.CourseCode.String(),
		a.Session.String(),
		a.LecturerID,
		a.AssignedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to assign lecturer: %w", err)
	}
	return nil
}

func scanCourse(row pgx.Row) (*course.Course, error) {
	var (
		c          course.Course
		code       string
		degreeType string
		level      int
		semester   int
	)

	err := row.Scan(
		&code,
		&c.Title,
		&c.CreditUnit,
		&degreeType,
		&level,
		&semester,
		&c.Department,
		&c.IsApproved,
		&c.ApprovedBy,
		&c.ApprovedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}

	c.Code = shared.CourseCode(code)
	c.DegreeType = shared.DegreeType(degreeType)
	c.Level = shared.Level(level)
	c.Semester = shared.Semester(semester)

	return &c, nil
}
