package command

import (
	"context"

	"github.com/resulthub/academic-results-hub/internal/domain/audit"
	"github.com/resulthub/academic-results-hub/internal/domain/carryover"
	"github.com/resulthub/academic-results-hub/internal/domain/result"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE RESULT COMMAND
// Removes a mistakenly entered result. Locked results are deletable only
// by actors with unlock authority; everyone else must have the lock
// lifted first.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteResultCommand removes one result by ID.
type DeleteResultCommand struct {
	ResultID      string
	Actor         shared.Actor
	Context       audit.RequestContext
	CorrelationID string
}

// Validate validates the command.
func (c DeleteResultCommand) Validate() error {
	if c.ResultID == "" {
		return shared.NewDomainError("command", "DeleteResult", shared.ErrEmptyValue, "result ID is required")
	}
	if !c.Actor.IsValid() {
		return shared.NewDomainError("command", "DeleteResult", shared.ErrInvalidInput, "actor is required")
	}
	return nil
}

// DeleteResultResult contains the outcome of a deletion.
type DeleteResultResult struct {
	Events []shared.Event
}

// DeleteResultHandler handles the DeleteResultCommand.
type DeleteResultHandler struct {
	uow            UnitOfWork
	eventPublisher shared.EventPublisher
}

// NewDeleteResultHandler creates a new DeleteResultHandler.
func NewDeleteResultHandler(uow UnitOfWork, eventPublisher shared.EventPublisher) *DeleteResultHandler {
	return &DeleteResultHandler{uow: uow, eventPublisher: eventPublisher}
}

// Handle executes the deletion. A carryover opened by the deleted result
// would reference a gone row, so a failing result's open carryover is
// left in place; a carryover cleared by the deleted result is reopened.
func (h *DeleteResultHandler) Handle(ctx context.Context, cmd DeleteResultCommand) (*DeleteResultResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	out := &DeleteResultResult{}
	err := h.uow.Do(ctx, func(ctx context.Context, repos Repos) error {
		res, err := repos.Results.GetByID(ctx, cmd.ResultID)
		if err != nil {
			return err
		}
		if res.IsLocked && !cmd.Actor.CanUnlockResults() {
			return shared.ErrResultIsLocked
		}

		assigned := false
		crs, err := repos.Courses.GetByCode(ctx, res.CourseCode)
		if err != nil {
			return err
		}
		if cmd.Actor.IsLecturer() {
			assigned, err = repos.Courses.IsAssigned(ctx, res.CourseCode, res.Session, cmd.Actor.ID)
			if err != nil {
				return err
			}
		}
		if err := crs.Authorize(cmd.Actor, assigned); err != nil {
			return err
		}

		if err := repos.Results.Delete(ctx, res.ID); err != nil {
			return err
		}

		// a clearance granted by the deleted result is no longer valid
		ledger := carryover.NewLedger(repos.Carryovers)
		ledgerEvents, err := ledger.ReverseClearance(ctx, res.ID)
		if err != nil {
			return err
		}

		record := audit.NewRecord(audit.AlterationDelete, res, res.Snap(), result.Snapshot{}, cmd.Actor, cmd.Context)
		if err := repos.Alterations.Append(ctx, record); err != nil {
			return err
		}

		out.Events = append(out.Events,
			shared.NewResultDeletedEvent(res.ID, res.Matric.String(), res.CourseCode.String(), res.Session.String(), cmd.Actor.ID),
		)
		out.Events = append(out.Events, ledgerEvents...)
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
