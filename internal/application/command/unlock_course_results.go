package command

import (
	"context"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNLOCK COURSE RESULTS COMMAND
// Lifts the approval lock so scores can be corrected. Reserved for the
// head of department and administrators.
// ══════════════════════════════════════════════════════════════════════════════

// UnlockCourseResultsCommand unlocks all locked results for a course in
// a session.
type UnlockCourseResultsCommand struct {
	CourseCode    string
	Session       string
	Actor         shared.Actor
	CorrelationID string
}

// Validate validates the command.
func (c UnlockCourseResultsCommand) Validate() error {
	if _, err := shared.NewCourseCode(c.CourseCode); err != nil {
		return err
	}
	if _, err := shared.NewSession(c.Session); err != nil {
		return err
	}
	if !c.Actor.IsValid() {
		return shared.NewDomainError("command", "UnlockCourseResults", shared.ErrInvalidInput, "actor is required")
	}
	return nil
}

// UnlockCourseResultsResult reports how the unlock landed.
type UnlockCourseResultsResult struct {
	Unlocked int
	Total    int
	Events   []shared.Event
}

// UnlockCourseResultsHandler handles the UnlockCourseResultsCommand.
type UnlockCourseResultsHandler struct {
	uow            UnitOfWork
	eventPublisher shared.EventPublisher
}

// NewUnlockCourseResultsHandler creates a new UnlockCourseResultsHandler.
func NewUnlockCourseResultsHandler(uow UnitOfWork, eventPublisher shared.EventPublisher) *UnlockCourseResultsHandler {
	return &UnlockCourseResultsHandler{uow: uow, eventPublisher: eventPublisher}
}

// Handle executes the unlock. Requires top authority and at least one
// locked result.
func (h *UnlockCourseResultsHandler) Handle(ctx context.Context, cmd UnlockCourseResultsCommand) (*UnlockCourseResultsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if !cmd.Actor.CanUnlockResults() {
		return nil, shared.NewDomainError("command", "UnlockCourseResults", shared.ErrForbidden, "only the head of department may unlock results")
	}

	courseCode := shared.CourseCode(cmd.CourseCode)
	session := shared.Session(cmd.Session)

	out := &UnlockCourseResultsResult{}
	err := h.uow.Do(ctx, func(ctx context.Context, repos Repos) error {
		crs, err := repos.Courses.GetByCode(ctx, courseCode)
		if err != nil {
			return err
		}
		if err := crs.Authorize(cmd.Actor, false); err != nil {
			return err
		}

		_, locked, err := repos.Results.CountLockState(ctx, courseCode, session)
		if err != nil {
			return err
		}
		if locked == 0 {
			return shared.ErrNothingToUnlock
		}

		counts, err := repos.Results.UnlockAll(ctx, courseCode, session, cmd.Actor.ID)
		if err != nil {
			return err
		}

		out.Unlocked = counts.Changed
		out.Total = counts.Total
		out.Events = append(out.Events,
			shared.NewCourseLockStateEvent(shared.EventCourseUnlocked, courseCode.String(), session.String(), counts.Changed, counts.Total, cmd.Actor.ID, cmd.Actor.Role.String()),
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
