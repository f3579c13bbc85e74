package result

import (
	"context"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// LockCounts reports how a course-wide lock state change landed.
type LockCounts struct {
	Changed int // results whose lock flag flipped in this call
	Total   int // all results for the (course, session)
	Locked  int // locked results after the call
}

// Repository defines persistence operations for results.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Create persists a new result.
	// Returns shared.ErrAlreadyExists if a result already exists for the
	// (matric, course, session) triple.
	Create(ctx context.Context, res *Result) error

	// Update persists changes to an existing result.
	Update(ctx context.Context, res *Result) error

	// Delete removes a result. The caller is responsible for rejecting
	// deletion of locked results before calling.
	Delete(ctx context.Context, id string) error

	// GetByID returns a result by its ID.
	// Returns shared.ErrResultNotFound if no result exists.
	GetByID(ctx context.Context, id string) (*Result, error)

	// GetByKey returns the result for a (matric, course, session) triple.
	// Returns shared.ErrResultNotFound if no result exists.
	GetByKey(ctx context.Context, matric shared.Matric, courseCode shared.CourseCode, session shared.Session) (*Result, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Queries
	// ─────────────────────────────────────────────────────────────────────────

	// ListByCourseSession returns all results for a course in a session.
	ListByCourseSession(ctx context.Context, courseCode shared.CourseCode, session shared.Session) ([]*Result, error)

	// ListByMatric returns a student's results, optionally scoped to one
	// session (empty session means full history).
	ListByMatric(ctx context.Context, matric shared.Matric, session shared.Session) ([]*Result, error)

	// ListFailingBySession returns all failing results recorded in a session.
	// Used by the session sweep that opens carryovers.
	ListFailingBySession(ctx context.Context, session shared.Session) ([]*Result, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Lock State
	// ─────────────────────────────────────────────────────────────────────────

	// CountLockState returns total and locked result counts for a
	// (course, session).
	CountLockState(ctx context.Context, courseCode shared.CourseCode, session shared.Session) (total, locked int, err error)

	// LockAll locks every unlocked result for the (course, session),
	// stamping the actor. Already-locked rows are left untouched.
	LockAll(ctx context.Context, courseCode shared.CourseCode, session shared.Session, actorID string) (LockCounts, error)

	// UnlockAll unlocks every locked result for the (course, session),
	// stamping the actor.
	UnlockAll(ctx context.Context, courseCode shared.CourseCode, session shared.Session, actorID string) (LockCounts, error)
}
