package command

import (
	"context"

	"github.com/resulthub/academic-results-hub/internal/domain/carryover"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCAN SESSION COMMAND
// End-of-session sweep: walks every failing result recorded in a session
// and makes sure a carryover is open for each. Safe to run repeatedly -
// the (matric, course, originating session) uniqueness constraint and the
// ledger's open-check make the sweep idempotent.
// ══════════════════════════════════════════════════════════════════════════════

// ScanSessionCommand sweeps one session for unopened carryovers.
type ScanSessionCommand struct {
	Session       string
	Actor         shared.Actor
	CorrelationID string
}

// Validate validates the command.
func (c ScanSessionCommand) Validate() error {
	if _, err := shared.NewSession(c.Session); err != nil {
		return err
	}
	if !c.Actor.IsValid() {
		return shared.NewDomainError("command", "ScanSession", shared.ErrInvalidInput, "actor is required")
	}
	return nil
}

// ScanSessionResult reports the sweep outcome.
type ScanSessionResult struct {
	ResultsScanned   int
	CarryoversOpened int
	Events           []shared.Event
}

// ScanSessionHandler handles the ScanSessionCommand.
type ScanSessionHandler struct {
	uow            UnitOfWork
	eventPublisher shared.EventPublisher
}

// NewScanSessionHandler creates a new ScanSessionHandler.
func NewScanSessionHandler(uow UnitOfWork, eventPublisher shared.EventPublisher) *ScanSessionHandler {
	return &ScanSessionHandler{uow: uow, eventPublisher: eventPublisher}
}

// Handle executes the sweep. Requires oversight scope: a lecturer cannot
// sweep a whole session.
func (h *ScanSessionHandler) Handle(ctx context.Context, cmd ScanSessionCommand) (*ScanSessionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if !cmd.Actor.OversightScope() {
		return nil, shared.NewDomainError("command", "ScanSession", shared.ErrForbidden, "session sweeps require department oversight")
	}

	session := shared.Session(cmd.Session)

	out := &ScanSessionResult{}
	err := h.uow.Do(ctx, func(ctx context.Context, repos Repos) error {
		failing, err := repos.Results.ListFailingBySession(ctx, session)
		if err != nil {
			return err
		}
		out.ResultsScanned = len(failing)

		ledger := carryover.NewLedger(repos.Carryovers)
		for _, res := range failing {
			events, err := ledger.Apply(ctx, carryover.Fact{
				ResultID:   res.ID,
				Matric:     res.Matric,
				CourseCode: res.CourseCode,
				Session:    res.Session,
				Level:      res.Level,
				Failing:    true,
			})
			if err != nil {
				return err
			}
			for _, e := range events {
				if e.EventType() == shared.EventCarryoverOpened || e.EventType() == shared.EventCarryoverReopened {
					out.CarryoversOpened++
				}
			}
			out.Events = append(out.Events, events...)
		}

		out.Events = append(out.Events,
			shared.NewSessionScanCompletedEvent(session.String(), out.ResultsScanned, out.CarryoversOpened),
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
