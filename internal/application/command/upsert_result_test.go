package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resulthub/academic-results-hub/internal/domain/audit"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

func upsertCmd(actor shared.Actor, ca, exam float64) UpsertResultCommand {
	return UpsertResultCommand{
		Matric:       "SCI/CSC/19/1234",
		CourseCode:   "CSC301",
		Session:      "2023/2024",
		CAScore:      ca,
		ExamScore:    exam,
		StudentLevel: 300,
		Actor:        actor,
	}
}

func TestUpsertResult_CreatePassing(t *testing.T) {
	env := newTestEnv()
	h := env.upsertHandler()

	out, err := h.Handle(context.Background(), upsertCmd(lecturerActor, 25, 50))
	require.NoError(t, err)

	assert.True(t, out.Created)
	assert.Equal(t, 75.0, out.Result.TotalScore)
	assert.Equal(t, "A", out.Result.Grade.String())

	// one CREATE audit record
	records, err := env.audits.ListByResult(context.Background(), out.Result.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, audit.AlterationCreate, records[0].Type)
	assert.Equal(t, 0.0, records[0].Before.TotalScore)
	assert.Equal(t, 75.0, records[0].After.TotalScore)

	// passing score opens no carryover
	assert.Empty(t, env.carryovers.records)

	assert.Len(t, env.publisher.byType(shared.EventResultCreated), 1)
}

func TestUpsertResult_CreateFailingOpensCarryover(t *testing.T) {
	env := newTestEnv()
	h := env.upsertHandler()

	out, err := h.Handle(context.Background(), upsertCmd(lecturerActor, 10, 20))
	require.NoError(t, err)
	assert.Equal(t, "F", out.Result.Grade.String())

	require.Len(t, env.carryovers.records, 1)
	c := env.carryovers.records[0]
	assert.True(t, c.IsOpen())
	assert.Equal(t, shared.Session("2023/2024"), c.OriginatingSession)
	assert.Equal(t, shared.Level(300), c.OriginalLevel)

	assert.Len(t, env.publisher.byType(shared.EventCarryoverOpened), 1)
}

func TestUpsertResult_UpdateEditsInPlace(t *testing.T) {
	env := newTestEnv()
	h := env.upsertHandler()
	ctx := context.Background()

	first, err := h.Handle(ctx, upsertCmd(lecturerActor, 10, 20))
	require.NoError(t, err)

	second, err := h.Handle(ctx, upsertCmd(lecturerActor, 25, 45))
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Result.ID, second.Result.ID)
	assert.Equal(t, 70.0, second.Result.TotalScore)

	// CREATE then UPDATE in the audit trail
	records, err := env.audits.ListByResult(ctx, first.Result.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, audit.AlterationUpdate, records[1].Type)
	assert.Equal(t, 30.0, records[1].Before.TotalScore)
	assert.Equal(t, 70.0, records[1].After.TotalScore)

	// the fail-then-pass edit cleared the carryover
	require.Len(t, env.carryovers.records, 1)
	assert.False(t, env.carryovers.records[0].IsOpen())
}

func TestUpsertResult_ValidationRejectedWithoutAudit(t *testing.T) {
	env := newTestEnv()
	h := env.upsertHandler()

	_, err := h.Handle(context.Background(), upsertCmd(lecturerActor, 31, 50))
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))

	// a rejected submission leaves no trace
	assert.Empty(t, env.audits.records)
	assert.Empty(t, env.results.results)
	assert.Empty(t, env.publisher.events)
}

func TestUpsertResult_ResubmitSameScoresSkipsAudit(t *testing.T) {
	env := newTestEnv()
	h := env.upsertHandler()
	ctx := context.Background()

	_, err := h.Handle(ctx, upsertCmd(lecturerActor, 25, 50))
	require.NoError(t, err)
	auditCountBefore := len(env.audits.records)
	eventCountBefore := len(env.publisher.events)

	out, err := h.Handle(ctx, upsertCmd(lecturerActor, 25, 50))
	require.NoError(t, err)
	assert.False(t, out.Created)
	assert.Equal(t, 75.0, out.Result.TotalScore)

	// идентичные баллы — ни записи в журнал, ни событий
	assert.Len(t, env.audits.records, auditCountBefore)
	assert.Len(t, env.publisher.events, eventCountBefore)
}

func TestUpsertResult_UnassignedLecturerForbidden(t *testing.T) {
	env := newTestEnv()
	h := env.upsertHandler()

	_, err := h.Handle(context.Background(), upsertCmd(strangerActor, 20, 40))
	require.Error(t, err)
	assert.True(t, shared.IsPermission(err))
	assert.Empty(t, env.audits.records)
}

func TestUpsertResult_LockedRejectedForLecturer(t *testing.T) {
	env := newTestEnv()
	h := env.upsertHandler()
	ctx := context.Background()

	out, err := h.Handle(ctx, upsertCmd(lecturerActor, 20, 40))
	require.NoError(t, err)
	out.Result.Lock("lect-1")
	auditCountBefore := len(env.audits.records)

	_, err = h.Handle(ctx, upsertCmd(lecturerActor, 25, 45))
	require.Error(t, err)
	assert.True(t, shared.IsLocked(err))

	// the blocked edit appends nothing
	assert.Len(t, env.audits.records, auditCountBefore)
	assert.Equal(t, 60.0, out.Result.TotalScore)
}

func TestUpsertResult_OverrideAuthorityEditsThroughLock(t *testing.T) {
	env := newTestEnv()
	h := env.upsertHandler()
	ctx := context.Background()

	out, err := h.Handle(ctx, upsertCmd(lecturerActor, 20, 40))
	require.NoError(t, err)
	out.Result.Lock("lect-1")

	hodOut, err := h.Handle(ctx, upsertCmd(hodActor, 25, 45))
	require.NoError(t, err)
	assert.Equal(t, 70.0, hodOut.Result.TotalScore)
	assert.True(t, hodOut.Result.IsLocked, "the lock survives an override edit")
}

func TestUpsertResult_RetakeUnderOpenCarryoverIsFlagged(t *testing.T) {
	env := newTestEnv()
	h := env.upsertHandler()
	ctx := context.Background()

	// провал в 2023/2024 открывает долг; сам провал — не пересдача
	failOut, err := h.Handle(ctx, upsertCmd(lecturerActor, 10, 20))
	require.NoError(t, err)
	assert.False(t, failOut.Result.IsCarryover)
	require.Len(t, env.carryovers.records, 1)

	// результат следующей сессии под открытым долгом помечается
	retake := upsertCmd(lecturerActor, 25, 45)
	retake.Session = "2024/2025"
	env.courses.assignments = append(env.courses.assignments, env.courses.assignments[0])
	env.courses.assignments[1].Session = "2024/2025"
	retakeOut, err := h.Handle(ctx, retake)
	require.NoError(t, err)
	assert.True(t, retakeOut.Result.IsCarryover)
}

func TestUpsertResult_FailPassFailKeepsOneCarryoverRecord(t *testing.T) {
	env := newTestEnv()
	h := env.upsertHandler()
	ctx := context.Background()

	_, err := h.Handle(ctx, upsertCmd(lecturerActor, 10, 20))
	require.NoError(t, err)

	_, err = h.Handle(ctx, upsertCmd(lecturerActor, 25, 45))
	require.NoError(t, err)

	_, err = h.Handle(ctx, upsertCmd(lecturerActor, 5, 25))
	require.NoError(t, err)

	require.Len(t, env.carryovers.records, 1)
	assert.True(t, env.carryovers.records[0].IsOpen())
	assert.Len(t, env.publisher.byType(shared.EventCarryoverReopened), 1)
}
