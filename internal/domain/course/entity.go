// Package course models the course catalogue entry consumed by the
// results workflow: credit unit, degree type, the lecturer assignment
// roster, and the final-approval state.
package course

import (
	"time"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// Course is one catalogue entry. Results reference courses by code; the
// approval flags here are mutated only by the final-approval operation.
type Course struct {
	Code       shared.CourseCode
	Title      string
	CreditUnit int
	DegreeType shared.DegreeType
	Level      shared.Level
	Semester   shared.Semester
	Department string

	IsApproved bool
	ApprovedBy string
	ApprovedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FinalApprove stamps the course as finally approved. Returns
// ErrCourseAlreadyApproved if approval was already granted; there is no
// modeled transition that reverses it.
func (c *Course) FinalApprove(actorID string) error {
	if c.IsApproved {
		return shared.ErrCourseAlreadyApproved
	}
	now := time.Now()
	c.IsApproved = true
	c.ApprovedBy = actorID
	c.ApprovedAt = &now
	c.UpdatedAt = now
	return nil
}

// Assignment links a lecturer to a course for a session.
type Assignment struct {
	CourseCode shared.CourseCode
	Session    shared.Session
	LecturerID string
	AssignedAt time.Time
}

// Authorize decides whether the actor may operate on this course's
// results. Lecturers must appear on the assignment roster; level
// advisers are scoped to their level, heads of department to their
// department, administrators everywhere.
func (c *Course) Authorize(actor shared.Actor, assigned bool) error {
	switch actor.Role {
	case shared.RoleAdmin:
		return nil
	case shared.RoleHOD:
		if actor.Department != "" && actor.Department != c.Department {
			return shared.ErrNotDepartmentScope
		}
		return nil
	case shared.RoleLevelAdviser:
		if actor.Level != 0 && actor.Level != c.Level {
			return shared.ErrNotAssignedToCourse
		}
		return nil
	case shared.RoleLecturer:
		if !assigned {
			return shared.ErrNotAssignedToCourse
		}
		return nil
	}
	return shared.ErrForbidden
}
