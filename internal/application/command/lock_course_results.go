package command

import (
	"context"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOCK COURSE RESULTS COMMAND
// Lecturer approval: locks every unlocked result for a (course, session)
// so scores can no longer be edited by ordinary actors.
// ══════════════════════════════════════════════════════════════════════════════

// LockCourseResultsCommand locks all results for a course in a session.
type LockCourseResultsCommand struct {
	CourseCode    string
	Session       string
	Actor         shared.Actor
	CorrelationID string
}

// Validate validates the command.
func (c LockCourseResultsCommand) Validate() error {
	if _, err := shared.NewCourseCode(c.CourseCode); err != nil {
		return err
	}
	if _, err := shared.NewSession(c.Session); err != nil {
		return err
	}
	if !c.Actor.IsValid() {
		return shared.NewDomainError("command", "LockCourseResults", shared.ErrInvalidInput, "actor is required")
	}
	return nil
}

// LockCourseResultsResult reports how the lock landed.
type LockCourseResultsResult struct {
	Locked int // results locked by this call
	Total  int // all results for the (course, session)
	Events []shared.Event
}

// LockCourseResultsHandler handles the LockCourseResultsCommand.
type LockCourseResultsHandler struct {
	uow            UnitOfWork
	eventPublisher shared.EventPublisher
}

// NewLockCourseResultsHandler creates a new LockCourseResultsHandler.
func NewLockCourseResultsHandler(uow UnitOfWork, eventPublisher shared.EventPublisher) *LockCourseResultsHandler {
	return &LockCourseResultsHandler{uow: uow, eventPublisher: eventPublisher}
}

// Handle executes the lock. Only the lecturer assigned to the course, or
// an actor with oversight scope, may lock; at least one result must
// exist. Already-locked results are left untouched.
func (h *LockCourseResultsHandler) Handle(ctx context.Context, cmd LockCourseResultsCommand) (*LockCourseResultsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	courseCode := shared.CourseCode(cmd.CourseCode)
	session := shared.Session(cmd.Session)

	out := &LockCourseResultsResult{}
	err := h.uow.Do(ctx, func(ctx context.Context, repos Repos) error {
		crs, err := repos.Courses.GetByCode(ctx, courseCode)
		if err != nil {
			return err
		}

		assigned := false
		if cmd.Actor.IsLecturer() {
			assigned, err = repos.Courses.IsAssigned(ctx, courseCode, session, cmd.Actor.ID)
			if err != nil {
				return err
			}
		}
		if err := crs.Authorize(cmd.Actor, assigned); err != nil {
			return err
		}

		total, _, err := repos.Results.CountLockState(ctx, courseCode, session)
		if err != nil {
			return err
		}
		if total == 0 {
			return shared.ErrNoResultsToLock
		}

		counts, err := repos.Results.LockAll(ctx, courseCode, session, cmd.Actor.ID)
		if err != nil {
			return err
		}

		out.Locked = counts.Changed
		out.Total = counts.Total
		out.Events = append(out.Events,
			shared.NewCourseLockStateEvent(shared.EventCourseLocked, courseCode.String(), session.String(), counts.Changed, counts.Total, cmd.Actor.ID, cmd.Actor.Role.String()),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, event := range out.Events {
		_ = h.eventPublisher.Publish(event)
	}
	return out, nil
}
