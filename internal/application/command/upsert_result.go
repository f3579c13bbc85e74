package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/resulthub/academic-results-hub/internal/domain/audit"
	"github.com/resulthub/academic-results-hub/internal/domain/carryover"
	"github.com/resulthub/academic-results-hub/internal/domain/grading"
	"github.com/resulthub/academic-results-hub/internal/domain/result"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPSERT RESULT COMMAND
// Central write path for scores: validates, resolves the grade, upserts the
// result, drives the carryover ledger, and appends an audit record as one
// atomic unit.
// ══════════════════════════════════════════════════════════════════════════════

// UpsertResultCommand contains one score submission.
type UpsertResultCommand struct {
	// Matric identifies the student.
	Matric string

	// CourseCode identifies the course.
	CourseCode string

	// Session is the academic session, e.g. "2023/2024".
	Session string

	// CAScore is the continuous assessment component [0,30].
	CAScore float64

	// ExamScore is the examination component [0,70].
	ExamScore float64

	// StudentLevel is the student's current programme level, stamped on
	// newly opened carryovers.
	StudentLevel int

	// Actor is the authenticated staff member submitting the score.
	Actor shared.Actor

	// Context is the best-effort request metadata for the audit record.
	Context audit.RequestContext

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c UpsertResultCommand) Validate() error {
	if _, err := shared.NewMatric(c.Matric); err != nil {
		return err
	}
	if _, err := shared.NewCourseCode(c.CourseCode); err != nil {
		return err
	}
	if _, err := shared.NewSession(c.Session); err != nil {
		return err
	}
	if !c.Actor.IsValid() {
		return shared.NewDomainError("command", "UpsertResult", shared.ErrInvalidInput, "actor is required")
	}
	if errs := result.ValidateScores(c.CAScore, c.ExamScore); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// UpsertResultResult contains the outcome of a score submission.
type UpsertResultResult struct {
	Result  *result.Result
	Created bool
	Events  []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// UpsertResultHandler handles the UpsertResultCommand.
type UpsertResultHandler struct {
	uow            UnitOfWork
	tables         grading.TableProvider
	eventPublisher shared.EventPublisher
}

// NewUpsertResultHandler creates a new UpsertResultHandler.
func NewUpsertResultHandler(uow UnitOfWork, tables grading.TableProvider, eventPublisher shared.EventPublisher) *UpsertResultHandler {
	return &UpsertResultHandler{
		uow:            uow,
		tables:         tables,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the upsert. Events are published only after the
// transaction commits.
func (h *UpsertResultHandler) Handle(ctx context.Context, cmd UpsertResultCommand) (*UpsertResultResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	out := &UpsertResultResult{}
	err := h.uow.Do(ctx, func(ctx context.Context, repos Repos) error {
		return h.handleInTx(ctx, repos, cmd, out)
	})
	if err != nil {
		return nil, err
	}

	for _, event := range out.Events {
		_ = h.eventPublisher.Publish(event)
	}
	return out, nil
}

// handleInTx runs the upsert against transaction-bound repositories. The
// batch handler calls it directly so many rows share one transaction.
func (h *UpsertResultHandler) handleInTx(ctx context.Context, repos Repos, cmd UpsertResultCommand, out *UpsertResultResult) error {
	matric := shared.Matric(cmd.Matric)
	courseCode := shared.CourseCode(cmd.CourseCode)
	session := shared.Session(cmd.Session)

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

	table, err := h.tables.TableFor(ctx, crs.DegreeType)
	if err != nil {
		// missing configuration degrades to the default table
		if !shared.IsConfiguration(err) {
			return err
		}
		table = grading.Table{}
	}
	resolution := grading.Resolve(cmd.CAScore+cmd.ExamScore, table)

	// пересдача: по этой паре (студент, курс) уже висит долг из прошлой сессии
	retake := false
	open, err := repos.Carryovers.GetOpen(ctx, matric, courseCode)
	switch {
	case err == nil:
		retake = open.OriginatingSession != session
	case errors.Is(err, shared.ErrNotFound):
	default:
		return err
	}

	existing, err := repos.Results.GetByKey(ctx, matric, courseCode, session)
	switch {
	case err == nil:
		return h.update(ctx, repos, cmd, existing, retake, resolution, out)
	case errors.Is(err, shared.ErrNotFound):
		return h.create(ctx, repos, cmd, matric, courseCode, session, crs.Semester, retake, resolution, out)
	default:
		return err
	}
}

func (h *UpsertResultHandler) create(
	ctx context.Context,
	repos Repos,
	cmd UpsertResultCommand,
	matric shared.Matric,
	courseCode shared.CourseCode,
	session shared.Session,
	semester shared.Semester,
	retake bool,
	resolution grading.Resolution,
	out *UpsertResultResult,
) error {
	level := shared.Level(cmd.StudentLevel)
	res, err := result.New(matric, courseCode, session, semester, level, cmd.CAScore, cmd.ExamScore, resolution)
	if err != nil {
		return err
	}
	res.IsCarryover = retake
	if err := repos.Results.Create(ctx, res); err != nil {
		return err
	}

	ledgerEvents, err := h.driveLedger(ctx, repos, cmd, res)
	if err != nil {
		return err
	}

	record := audit.NewRecord(audit.AlterationCreate, res, result.Snapshot{}, res.Snap(), cmd.Actor, cmd.Context)
	if err := repos.Alterations.Append(ctx, record); err != nil {
		return fmt.Errorf("upsert_result: failed to append audit record: %w", err)
	}

	out.Result = res
	out.Created = true
	out.Events = append(out.Events,
		shared.NewResultChangedEvent(res.ID, matric.String(), courseCode.String(), session.String(), res.TotalScore, res.GradePoint.Float64(), res.Grade.String(), true, cmd.Actor.ID),
	)
	out.Events = append(out.Events, ledgerEvents...)
	return nil
}

func (h *UpsertResultHandler) update(
	ctx context.Context,
	repos Repos,
	cmd UpsertResultCommand,
	res *result.Result,
	retake bool,
	resolution grading.Resolution,
	out *UpsertResultResult,
) error {
	if res.IsLocked && !cmd.Actor.CanUnlockResults() {
		return shared.ErrResultIsLocked
	}
	wasRetake := res.IsCarryover
	res.IsCarryover = retake

	before := res.Snap()
	wasLocked := res.IsLocked
	if wasLocked {
		// override authority edits through the lock without lifting it
		res.IsLocked = false
	}
	err := res.ApplyScores(cmd.CAScore, cmd.ExamScore, resolution)
	res.IsLocked = wasLocked
	if err != nil {
		return err
	}

	// повторная отправка тех же баллов ничего не меняет и не пишет в журнал
	if res.Snap() == before && res.IsCarryover == wasRetake {
		out.Result = res
		out.Created = false
		return nil
	}

	if err := repos.Results.Update(ctx, res); err != nil {
		return err
	}

	ledgerEvents, err := h.driveLedger(ctx, repos, cmd, res)
	if err != nil {
		return err
	}

	record := audit.NewRecord(audit.AlterationUpdate, res, before, res.Snap(), cmd.Actor, cmd.Context)
	if err := repos.Alterations.Append(ctx, record); err != nil {
		return fmt.Errorf("upsert_result: failed to append audit record: %w", err)
	}

	out.Result = res
	out.Created = false
	out.Events = append(out.Events,
		shared.NewResultChangedEvent(res.ID, res.Matric.String(), res.CourseCode.String(), res.Session.String(), res.TotalScore, res.GradePoint.Float64(), res.Grade.String(), false, cmd.Actor.ID),
	)
	out.Events = append(out.Events, ledgerEvents...)
	return nil
}

func (h *UpsertResultHandler) driveLedger(ctx context.Context, repos Repos, cmd UpsertResultCommand, res *result.Result) ([]shared.Event, error) {
	ledger := carryover.NewLedger(repos.Carryovers)
	return ledger.Apply(ctx, carryover.Fact{
		ResultID:   res.ID,
		Matric:     res.Matric,
		CourseCode: res.CourseCode,
		Session:    res.Session,
		Level:      shared.Level(cmd.StudentLevel),
		Failing:    res.IsFailing(),
	})
}
