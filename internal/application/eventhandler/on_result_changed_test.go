package eventhandler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resulthub/academic-results-hub/internal/domain/carryover"
	"github.com/resulthub/academic-results-hub/internal/domain/course"
	"github.com/resulthub/academic-results-hub/internal/domain/grading"
	"github.com/resulthub/academic-results-hub/internal/domain/result"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
	"github.com/resulthub/academic-results-hub/internal/domain/transcript"
)

type stubResultRepo struct {
	result.Repository
	results []*result.Result
}

func (s *stubResultRepo) ListByMatric(_ context.Context, matric shared.Matric, session shared.Session) ([]*result.Result, error) {
	var out []*result.Result
	for _, r := range s.results {
		if r.Matric == matric && (session == "" || r.Session == session) {
			out = append(out, r)
		}
	}
	return out, nil
}

type stubCarryoverRepo struct {
	carryover.Repository
	open []*carryover.Carryover
}

func (s *stubCarryoverRepo) ListOutstanding(_ context.Context, matric shared.Matric) ([]*carryover.Carryover, error) {
	var out []*carryover.Carryover
	for _, c := range s.open {
		if c.Matric == matric {
			out = append(out, c)
		}
	}
	return out, nil
}

type stubCourseRepo struct {
	course.Repository
	units map[shared.CourseCode]int
}

func (s *stubCourseRepo) GetByCode(_ context.Context, code shared.CourseCode) (*course.Course, error) {
	u, ok := s.units[code]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	return &course.Course{Code: code, CreditUnit: u}, nil
}

type memStandingStore struct {
	saved       map[shared.Matric]transcript.Standing
	invalidated []shared.Matric
}

func newMemStandingStore() *memStandingStore {
	return &memStandingStore{saved: make(map[shared.Matric]transcript.Standing)}
}

func (s *memStandingStore) Save(_ context.Context, st transcript.Standing) error {
	s.saved[st.Matric] = st
	return nil
}

func (s *memStandingStore) Get(_ context.Context, matric shared.Matric) (*transcript.Standing, error) {
	st, ok := s.saved[matric]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &st, nil
}

func (s *memStandingStore) Invalidate(_ context.Context, matric shared.Matric) error {
	delete(s.saved, matric)
	s.invalidated = append(s.invalidated, matric)
	return nil
}

func mustResult(t *testing.T, matric, code, session string, ca, exam float64) *result.Result {
	t.Helper()
	res, err := result.New(shared.Matric(matric), shared.CourseCode(code), shared.Session(session), shared.FirstSemester, 300, ca, exam, grading.ResolveDefault(ca+exam))
	require.NoError(t, err)
	return res
}

func TestOnResultChanged_RebuildsStanding(t *testing.T) {
	resRepo := &stubResultRepo{results: []*result.Result{
		mustResult(t, "SCI/CSC/19/1234", "CSC301", "2023/2024", 25, 50), // A, 5
		mustResult(t, "SCI/CSC/19/1234", "CSC302", "2023/2024", 10, 20), // F, 0
	}}
	carryRepo := &stubCarryoverRepo{open: []*carryover.Carryover{
		carryover.Open("SCI/CSC/19/1234", "CSC302", "2023/2024", 300),
	}}
	courseRepo := &stubCourseRepo{units: map[shared.CourseCode]int{
		"CSC301": 3,
		"CSC302": 2,
	}}
	store := newMemStandingStore()

	h := NewOnResultChangedHandler(resRepo, carryRepo, courseRepo, store, nil, DefaultStandingProjectionConfig())

	event := shared.NewResultChangedEvent("res-1", "SCI/CSC/19/1234", "CSC302", "2023/2024", 30, 0, "F", false, "lect-1")
	require.NoError(t, h.Handle(event))

	st, ok := store.saved["SCI/CSC/19/1234"]
	require.True(t, ok)
	// (5*3 + 0*2) / 5 = 3.00
	assert.Equal(t, 3.0, st.CGPA)
	assert.Equal(t, transcript.SecondClassLower, st.ClassOfDegree)
	assert.Equal(t, 3, st.CreditsPassed)
	assert.Equal(t, 2, st.CreditsFailed)
	assert.Equal(t, 2, st.TotalResults)
	assert.Equal(t, 1, st.OpenCarryovers)
	assert.False(t, st.UpdatedAt.IsZero())

	// академическая история: одна сессия с ремаркой по накопленному CGPA
	require.Len(t, st.Sessions, 1)
	assert.Equal(t, shared.Session("2023/2024"), st.Sessions[0].Session)
	assert.Equal(t, 3.0, st.Sessions[0].CGPA)
	assert.Equal(t, transcript.RemarkGoodStanding, st.Sessions[0].Remark)
	assert.Equal(t, transcript.RemarkGoodStanding, st.Remark())
}

func TestOnResultChanged_CarryoverEventAlsoRebuilds(t *testing.T) {
	store := newMemStandingStore()
	h := NewOnResultChangedHandler(&stubResultRepo{}, &stubCarryoverRepo{}, &stubCourseRepo{}, store, nil, DefaultStandingProjectionConfig())

	event := shared.NewCarryoverTransitionEvent(shared.EventCarryoverCleared, "co-1", "SCI/CSC/19/1234", "CSC302", "2022/2023", "2023/2024")
	require.NoError(t, h.Handle(event))

	st, ok := store.saved["SCI/CSC/19/1234"]
	require.True(t, ok)
	assert.Equal(t, 0.0, st.CGPA)
	assert.Equal(t, 0, st.OpenCarryovers)
}

func TestOnResultChanged_IgnoresForeignEvents(t *testing.T) {
	store := newMemStandingStore()
	h := NewOnResultChangedHandler(&stubResultRepo{}, &stubCarryoverRepo{}, &stubCourseRepo{}, store, nil, DefaultStandingProjectionConfig())

	event := shared.NewCourseLockStateEvent(shared.EventCourseLocked, "CSC301", "2023/2024", 3, 3, "hod-1", "hod")
	require.NoError(t, h.Handle(event))
	assert.Empty(t, store.saved)
}
