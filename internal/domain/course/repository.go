package course

import (
	"context"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// Repository defines persistence operations for the course catalogue
// and the lecturer assignment roster.
type Repository interface {
	// GetByCode returns a course by its code.
	// Returns shared.ErrCourseNotFound if no course exists.
	GetByCode(ctx context.Context, code shared.CourseCode) (*Course, error)

	// Update persists changes to a course (approval stamps).
	Update(ctx context.Context, c *Course) error

	// ListByDepartment returns all courses in a department.
	ListByDepartment(ctx context.Context, department string) ([]*Course, error)

	// IsAssigned reports whether the lecturer appears on the assignment
	// roster for the (course, session).
	IsAssigned(ctx context.Context, code shared.CourseCode, session shared.Session, lecturerID string) (bool, error)

	// Assign adds a lecturer to the roster for the (course, session).
	Assign(ctx context.Context, a Assignment) error
}
