package carryover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// fakeRepo — репозиторий в памяти, повторяющий контракт уникальности
// (матрикул, курс, сессия происхождения).
type fakeRepo struct {
	records []*Carryover
}

func (f *fakeRepo) Create(_ context.Context, c *Carryover) error {
	for _, existing := range f.records {
		if existing.Matric == c.Matric && existing.CourseCode == c.CourseCode && existing.OriginatingSession == c.OriginatingSession {
			return shared.ErrCarryoverDuplicate
		}
	}
	f.records = append(f.records, c)
	return nil
}

func (f *fakeRepo) Update(_ context.Context, c *Carryover) error {
	for i, existing := range f.records {
		if existing.ID == c.ID {
			f.records[i] = c
			return nil
		}
	}
	return shared.ErrCarryoverNotFound
}

func (f *fakeRepo) GetOpen(_ context.Context, matric shared.Matric, courseCode shared.CourseCode) (*Carryover, error) {
	for _, c := range f.records {
		if c.Matric == matric && c.CourseCode == courseCode && c.IsOpen() {
			return c, nil
		}
	}
	return nil, shared.ErrCarryoverNotFound
}

func (f *fakeRepo) GetLatest(_ context.Context, matric shared.Matric, courseCode shared.CourseCode) (*Carryover, error) {
	var latest *Carryover
	for _, c := range f.records {
		if c.Matric == matric && c.CourseCode == courseCode {
			latest = c
		}
	}
	if latest == nil {
		return nil, shared.ErrCarryoverNotFound
	}
	return latest, nil
}

func (f *fakeRepo) GetClearedByResult(_ context.Context, resultID string) (*Carryover, error) {
	for _, c := range f.records {
		if c.ClearedBy(resultID) {
			return c, nil
		}
	}
	return nil, shared.ErrCarryoverNotFound
}

func (f *fakeRepo) ListOutstanding(_ context.Context, matric shared.Matric) ([]*Carryover, error) {
	var out []*Carryover
	for _, c := range f.records {
		if c.Matric == matric && c.IsOpen() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByMatric(_ context.Context, matric shared.Matric) ([]*Carryover, error) {
	var out []*Carryover
	for _, c := range f.records {
		if c.Matric == matric {
			out = append(out, c)
		}
	}
	return out, nil
}

func failingFact(resultID string) Fact {
	return Fact{
		ResultID:   resultID,
		Matric:     "SCI/CSC/19/1234",
		CourseCode: "CSC301",
		Session:    "2023/2024",
		Level:      300,
		Failing:    true,
	}
}

func passingFact(resultID string, session shared.Session) Fact {
	f := failingFact(resultID)
	f.Failing = false
	f.Session = session
	return f
}

func TestLedger_FailingOpensCarryover(t *testing.T) {
	repo := &fakeRepo{}
	ledger := NewLedger(repo)

	events, err := ledger.Apply(context.Background(), failingFact("res-1"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, shared.EventCarryoverOpened, events[0].EventType())

	open, err := repo.GetOpen(context.Background(), "SCI/CSC/19/1234", "CSC301")
	require.NoError(t, err)
	assert.Equal(t, shared.Session("2023/2024"), open.OriginatingSession)
	assert.Equal(t, shared.Level(300), open.OriginalLevel)
}

func TestLedger_RepeatedFailingIsIdempotent(t *testing.T) {
	repo := &fakeRepo{}
	ledger := NewLedger(repo)
	ctx := context.Background()

	_, err := ledger.Apply(ctx, failingFact("res-1"))
	require.NoError(t, err)

	// тот же провал обработан повторно - дубликата не появляется
	events, err := ledger.Apply(ctx, failingFact("res-1"))
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Len(t, repo.records, 1)
}

func TestLedger_PassingClearsOpenCarryover(t *testing.T) {
	repo := &fakeRepo{}
	ledger := NewLedger(repo)
	ctx := context.Background()

	_, err := ledger.Apply(ctx, failingFact("res-1"))
	require.NoError(t, err)

	events, err := ledger.Apply(ctx, passingFact("res-2", "2024/2025"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, shared.EventCarryoverCleared, events[0].EventType())

	cleared, err := repo.GetClearedByResult(ctx, "res-2")
	require.NoError(t, err)
	assert.True(t, cleared.IsCleared)
	assert.Equal(t, shared.Session("2024/2025"), cleared.ClearedSession)
}

func TestLedger_PassingWithoutOpenIsNoop(t *testing.T) {
	repo := &fakeRepo{}
	ledger := NewLedger(repo)

	events, err := ledger.Apply(context.Background(), passingFact("res-1", "2023/2024"))
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Empty(t, repo.records)
}

func TestLedger_FailPassFailReusesSingleRecord(t *testing.T) {
	repo := &fakeRepo{}
	ledger := NewLedger(repo)
	ctx := context.Background()

	// провал -> открытие
	_, err := ledger.Apply(ctx, failingFact("res-1"))
	require.NoError(t, err)

	// пересдача -> закрытие
	_, err = ledger.Apply(ctx, passingFact("res-2", "2024/2025"))
	require.NoError(t, err)

	// пересдача исправлена обратно на провал -> переоткрытие той же записи
	events, err := ledger.Apply(ctx, failingFact("res-2"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, shared.EventCarryoverReopened, events[0].EventType())

	require.Len(t, repo.records, 1, "должна существовать ровно одна запись")
	record := repo.records[0]
	assert.True(t, record.IsOpen())
	assert.Empty(t, record.ClearedResultID)
	assert.Empty(t, record.ClearedSession)
	assert.Equal(t, shared.Session("2023/2024"), record.OriginatingSession)
}

func TestLedger_RegistrationGap(t *testing.T) {
	repo := &fakeRepo{}
	ledger := NewLedger(repo)
	ctx := context.Background()

	_, err := ledger.Apply(ctx, failingFact("res-1"))
	require.NoError(t, err)

	fact2 := failingFact("res-2")
	fact2.CourseCode = "CSC305"
	_, err = ledger.Apply(ctx, fact2)
	require.NoError(t, err)

	missing, err := ledger.RegistrationGap(ctx, "SCI/CSC/19/1234", []shared.CourseCode{"CSC301", "CSC401"})
	require.NoError(t, err)
	assert.Equal(t, []shared.CourseCode{"CSC305"}, missing)
}

func TestCarryover_ClearTwiceRejected(t *testing.T) {
	c := Open("SCI/CSC/19/1234", "CSC301", "2023/2024", 300)

	require.NoError(t, c.Clear("2024/2025", "res-2"))
	err := c.Clear("2024/2025", "res-3")
	assert.ErrorIs(t, err, shared.ErrStateTransition)
}
