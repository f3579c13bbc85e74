package command

import (
	"context"
	"fmt"

	"github.com/resulthub/academic-results-hub/internal/domain/audit"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT RESULT BATCH COMMAND
// Bulk score entry, e.g. from a spreadsheet import. Rows are validated
// independently: malformed rows are collected as errors and do not block
// their siblings. All valid rows then commit in a single transaction, so
// a storage failure rolls back the whole batch.
// ══════════════════════════════════════════════════════════════════════════════

// ResultRow is one score row inside a batch.
type ResultRow struct {
	Matric       string
	CAScore      float64
	ExamScore    float64
	StudentLevel int
}

// SubmitResultBatchCommand contains a batch of score rows for one
// (course, session).
type SubmitResultBatchCommand struct {
	CourseCode    string
	Session       string
	Rows          []ResultRow
	Actor         shared.Actor
	Context       audit.RequestContext
	CorrelationID string
}

// Validate validates the batch envelope; individual rows are validated
// per-row by the handler.
func (c SubmitResultBatchCommand) Validate() error {
	if _, err := shared.NewCourseCode(c.CourseCode); err != nil {
		return err
	}
	if _, err := shared.NewSession(c.Session); err != nil {
		return err
	}
	if !c.Actor.IsValid() {
		return shared.NewDomainError("command", "SubmitResultBatch", shared.ErrInvalidInput, "actor is required")
	}
	if len(c.Rows) == 0 {
		return shared.NewDomainError("command", "SubmitResultBatch", shared.ErrEmptyValue, "batch contains no rows")
	}
	return nil
}

// RowError ties a collected error to its row index and matric.
type RowError struct {
	Index  int
	Matric string
	Err    error
}

// Error implements the error interface.
func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Index, e.Matric, e.Err)
}

// SubmitResultBatchResult contains the outcome of a batch submission.
type SubmitResultBatchResult struct {
	TotalRows    int
	CreatedCount int
	UpdatedCount int
	RowErrors    []RowError
	Events       []shared.Event
}

// SubmitResultBatchHandler handles batch score submissions by reusing
// the single-row upsert inside one shared transaction.
type SubmitResultBatchHandler struct {
	uow            UnitOfWork
	upsert         *UpsertResultHandler
	eventPublisher shared.EventPublisher
}

// NewSubmitResultBatchHandler creates a new SubmitResultBatchHandler.
func NewSubmitResultBatchHandler(uow UnitOfWork, upsert *UpsertResultHandler, eventPublisher shared.EventPublisher) *SubmitResultBatchHandler {
	return &SubmitResultBatchHandler{
		uow:            uow,
		upsert:         upsert,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the batch submission.
func (h *SubmitResultBatchHandler) Handle(ctx context.Context, cmd SubmitResultBatchCommand) (*SubmitResultBatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	out := &SubmitResultBatchResult{TotalRows: len(cmd.Rows)}

	// phase 1: per-row validation, nothing persisted yet
	valid := make([]int, 0, len(cmd.Rows))
	for i, row := range cmd.Rows {
		rowCmd := h.rowCommand(cmd, row)
		if err := rowCmd.Validate(); err != nil {
			out.RowErrors = append(out.RowErrors, RowError{Index: i, Matric: row.Matric, Err: err})
			continue
		}
		valid = append(valid, i)
	}

	if len(valid) == 0 {
		return out, nil
	}

	// phase 2: all valid rows in one transaction
	err := h.uow.Do(ctx, func(ctx context.Context, repos Repos) error {
		for _, i := range valid {
			row := cmd.Rows[i]
			rowCmd := h.rowCommand(cmd, row)
			rowOut := &UpsertResultResult{}

			if err := h.upsert.handleInTx(ctx, repos, rowCmd, rowOut); err != nil {
				// locked rows are a business rejection, not a batch failure
				if shared.IsLocked(err) || shared.IsPermission(err) {
					out.RowErrors = append(out.RowErrors, RowError{Index: i, Matric: row.Matric, Err: err})
					continue
				}
				return err
			}

			if rowOut.Created {
				out.CreatedCount++
			} else {
				out.UpdatedCount++
			}
			out.Events = append(out.Events, rowOut.Events...)
		}
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

func (h *SubmitResultBatchHandler) rowCommand(cmd SubmitResultBatchCommand, row ResultRow) UpsertResultCommand {
	return UpsertResultCommand{
		Matric:        row.Matric,
		CourseCode:    cmd.CourseCode,
		Session:       cmd.Session,
		CAScore:       row.CAScore,
		ExamScore:     row.ExamScore,
		StudentLevel:  row.StudentLevel,
		Actor:         cmd.Actor,
		Context:       cmd.Context,
		CorrelationID: cmd.CorrelationID,
	}
}
