// Package result contains the scored-result aggregate: score validation,
// the lock state machine, and the snapshot type consumed by the audit log.
package result

import (
	"time"

	"github.com/google/uuid"

	"github.com/resulthub/academic-results-hub/internal/domain/grading"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// Score bounds. CA (continuous assessment) contributes up to 30 marks,
// the exam up to 70, so totals land in [0,100].
const (
	MinCAScore   = 0.0
	MaxCAScore   = 30.0
	MinExamScore = 0.0
	MaxExamScore = 70.0
)

// Result is one scored outcome for a (student, course, session) triple.
// Exactly one row exists per triple: the first submission creates it and
// later submissions mutate it while unlocked.
type Result struct {
	ID         string
	Matric     shared.Matric
	CourseCode shared.CourseCode
	Session    shared.Session
	Semester   shared.Semester
	Level      shared.Level

	CAScore    float64
	ExamScore  float64
	TotalScore float64
	Grade      grading.Grade
	GradePoint grading.Point

	IsCarryover bool

	IsLocked   bool
	LockedBy   string
	LockedAt   *time.Time
	UnlockedBy string
	UnlockedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateScores checks the CA and exam components against their bounds.
// Both components are checked so a caller gets one error per bad field
// rather than stopping at the first.
func ValidateScores(caScore, examScore float64) []error {
	var errs []error
	if caScore < MinCAScore || caScore > MaxCAScore {
		errs = append(errs, shared.ErrCAScoreOutOfRange)
	}
	if examScore < MinExamScore || examScore > MaxExamScore {
		errs = append(errs, shared.ErrExamScoreOutOfRange)
	}
	return errs
}

// New creates a result from validated scores and a resolved grade.
func New(matric shared.Matric, courseCode shared.CourseCode, session shared.Session, semester shared.Semester, level shared.Level, caScore, examScore float64, res grading.Resolution) (*Result, error) {
	if errs := ValidateScores(caScore, examScore); len(errs) > 0 {
		return nil, errs[0]
	}
	now := time.Now()
	return &Result{
		ID:         uuid.New().String(),
		Matric:     matric,
		CourseCode: courseCode,
		Session:    session,
		Semester:   semester,
		Level:      level,
		CAScore:    caScore,
		ExamScore:  examScore,
		TotalScore: caScore + examScore,
		Grade:      res.Grade,
		GradePoint: res.Point,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ApplyScores overwrites the score components and resolved grade of an
// existing result. Rejects locked results; the caller handles override
// authority before calling.
func (r *Result) ApplyScores(caScore, examScore float64, res grading.Resolution) error {
	if r.IsLocked {
		return shared.ErrResultIsLocked
	}
	if errs := ValidateScores(caScore, examScore); len(errs) > 0 {
		return errs[0]
	}
	r.CAScore = caScore
	r.ExamScore = examScore
	r.TotalScore = caScore + examScore
	r.Grade = res.Grade
	r.GradePoint = res.Point
	r.UpdatedAt = time.Now()
	return nil
}

// IsPassing reports whether the result carries a passing grade point.
func (r *Result) IsPassing() bool {
	return r.GradePoint > 0
}

// IsFailing reports whether the result carries a failing grade point.
func (r *Result) IsFailing() bool {
	return !r.IsPassing()
}

// Lock marks the result immutable, stamping who locked it and when.
// Locking an already-locked result is a no-op so a course-wide lock can
// skip rows locked in an earlier pass.
func (r *Result) Lock(actorID string) bool {
	if r.IsLocked {
		return false
	}
	now := time.Now()
	r.IsLocked = true
	r.LockedBy = actorID
	r.LockedAt = &now
	r.UnlockedBy = ""
	r.UnlockedAt = nil
	r.UpdatedAt = now
	return true
}

// Unlock lifts the lock, stamping who unlocked it and when. Returns false
// if the result was not locked.
func (r *Result) Unlock(actorID string) bool {
	if !r.IsLocked {
		return false
	}
	now := time.Now()
	r.IsLocked = false
	r.UnlockedBy = actorID
	r.UnlockedAt = &now
	r.UpdatedAt = now
	return true
}

// CanBeDeletedBy reports whether the actor may remove this result.
// A locked result requires unlock authority; the rest of the staff must
// have the lock lifted first.
func (r *Result) CanBeDeletedBy(actor shared.Actor) bool {
	if r.IsLocked && !actor.CanUnlockResults() {
		return false
	}
	return actor.CanEnterScores()
}

// Snapshot captures the auditable fields of a result at a point in time.
// Passed by value into the audit log so later edits to the result cannot
// alter a recorded snapshot.
type Snapshot struct {
	CAScore    float64
	ExamScore  float64
	TotalScore float64
	Grade      string
}

// Snap returns the current auditable state of the result.
func (r *Result) Snap() Snapshot {
	return Snapshot{
		CAScore:    r.CAScore,
		ExamScore:  r.ExamScore,
		TotalScore: r.TotalScore,
		Grade:      r.Grade.String(),
	}
}
