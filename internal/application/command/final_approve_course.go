package command

import (
	"context"
	"fmt"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FINAL APPROVE COURSE COMMAND
// The last gate: once every result for the (course, session) is locked,
// top authority stamps the course as officially final. No modeled
// transition reverses it.
// ══════════════════════════════════════════════════════════════════════════════

// FinalApproveCourseCommand grants final approval for a course's results.
type FinalApproveCourseCommand struct {
	CourseCode    string
	Session       string
	Actor         shared.Actor
	CorrelationID string
}

// Validate validates the command.
func (c FinalApproveCourseCommand) Validate() error {
	if _, err := shared.NewCourseCode(c.CourseCode); err != nil {
		return err
	}
	if _, err := shared.NewSession(c.Session); err != nil {
		return err
	}
	if !c.Actor.IsValid() {
		return shared.NewDomainError("command", "FinalApproveCourse", shared.ErrInvalidInput, "actor is required")
	}
	return nil
}

// FinalApproveCourseResult reports the approval outcome.
type FinalApproveCourseResult struct {
	Locked int
	Total  int
	Events []shared.Event
}

// FinalApproveCourseHandler handles the FinalApproveCourseCommand.
type FinalApproveCourseHandler struct {
	uow            UnitOfWork
	eventPublisher shared.EventPublisher
}

// NewFinalApproveCourseHandler creates a new FinalApproveCourseHandler.
func NewFinalApproveCourseHandler(uow UnitOfWork, eventPublisher shared.EventPublisher) *FinalApproveCourseHandler {
	return &FinalApproveCourseHandler{uow: uow, eventPublisher: eventPublisher}
}

// Handle executes the final approval. The check is strict: every result
// must be locked, and any gap is reported with the exact count.
func (h *FinalApproveCourseHandler) Handle(ctx context.Context, cmd FinalApproveCourseCommand) (*FinalApproveCourseResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if !cmd.Actor.CanFinalApprove() {
		return nil, shared.NewDomainError("command", "FinalApproveCourse", shared.ErrForbidden, "only the head of department may grant final approval")
	}

	courseCode := shared.CourseCode(cmd.CourseCode)
	session := shared.Session(cmd.Session)

	out := &FinalApproveCourseResult{}
	err := h.uow.Do(ctx, func(ctx context.Context, repos Repos) error {
		crs, err := repos.Courses.GetByCode(ctx, courseCode)
		if err != nil {
			return err
		}
		if err := crs.Authorize(cmd.Actor, false); err != nil {
			return err
		}

		total, locked, err := repos.Results.CountLockState(ctx, courseCode, session)
		if err != nil {
			return err
		}
		out.Locked = locked
		out.Total = total

		if total == 0 {
			return shared.ErrNoResultsToLock
		}
		if locked != total {
			return shared.NewDomainError("command", "FinalApproveCourse", shared.ErrInvalidState,
				fmt.Sprintf("only %d of %d results are locked; all results must be locked before final approval", locked, total))
		}

		if err := crs.FinalApprove(cmd.Actor.ID); err != nil {
			return err
		}
		if err := repos.Courses.Update(ctx, crs); err != nil {
			return err
		}

		out.Events = append(out.Events,
			shared.NewCourseLockStateEvent(shared.EventCourseFinalApproved, courseCode.String(), session.String(), 0, total, cmd.Actor.ID, cmd.Actor.Role.String()),
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
