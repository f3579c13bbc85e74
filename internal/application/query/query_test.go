package query

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
)

// ─────────────────────────────────────────────────────────────────────────
// fakes
// ─────────────────────────────────────────────────────────────────────────

type stubCarryoverRepo struct {
	carryover.Repository
	records []*carryover.Carryover
}

func (s *stubCarryoverRepo) ListOutstanding(_ context.Context, matric shared.Matric) ([]*carryover.Carryover, error) {
	var out []*carryover.Carryover
	for _, c := range s.records {
		if c.Matric == matric && c.IsOpen() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubCarryoverRepo) ListByMatric(_ context.Context, matric shared.Matric) ([]*carryover.Carryover, error) {
	var out []*carryover.Carryover
	for _, c := range s.records {
		if c.Matric == matric {
			out = append(out, c)
		}
	}
	return out, nil
}

type stubResultRepo struct {
	result.Repository
	results []*result.Result
}

func (s *stubResultRepo) GetByKey(_ context.Context, matric shared.Matric, courseCode shared.CourseCode, session shared.Session) (*result.Result, error) {
	for _, r := range s.results {
		if r.Matric == matric && r.CourseCode == courseCode && r.Session == session {
			return r, nil
		}
	}
	return nil, shared.ErrResultNotFound
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

type stubCourseRepo struct {
	course.Repository
	courses map[shared.CourseCode]*course.Course
	err     error
}

func (s *stubCourseRepo) GetByCode(_ context.Context, code shared.CourseCode) (*course.Course, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.courses[code]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	return c, nil
}

func mustResult(t *testing.T, matric, code, session string, ca, exam float64) *result.Result {
	t.Helper()
	res, err := result.New(shared.Matric(matric), shared.CourseCode(code), shared.Session(session), shared.FirstSemester, 300, ca, exam, grading.ResolveDefault(ca+exam))
	require.NoError(t, err)
	return res
}

// ─────────────────────────────────────────────────────────────────────────
// tests
// ─────────────────────────────────────────────────────────────────────────

func TestGetOutstandingCarryovers(t *testing.T) {
	open := carryover.Open("SCI/CSC/19/1234", "CSC301", "2022/2023", 200)
	cleared := carryover.Open("SCI/CSC/19/1234", "CSC205", "2021/2022", 200)
	require.NoError(t, cleared.Clear("2022/2023", "res-9"))
	repo := &stubCarryoverRepo{records: []*carryover.Carryover{open, cleared}}

	h := NewGetOutstandingCarryoversHandler(repo)

	out, err := h.Handle(context.Background(), GetOutstandingCarryoversQuery{Matric: "SCI/CSC/19/1234"})
	require.NoError(t, err)
	require.Len(t, out.Carryovers, 1)
	assert.Equal(t, "CSC301", out.Carryovers[0].CourseCode)
	assert.Equal(t, 1, out.OpenCount)

	out, err = h.Handle(context.Background(), GetOutstandingCarryoversQuery{Matric: "SCI/CSC/19/1234", IncludeCleared: true})
	require.NoError(t, err)
	assert.Len(t, out.Carryovers, 2)
	assert.Equal(t, 1, out.OpenCount)
}

func TestCheckCarryoverCoverage(t *testing.T) {
	openA := carryover.Open("SCI/CSC/19/1234", "CSC301", "2022/2023", 200)
	openB := carryover.Open("SCI/CSC/19/1234", "CSC205", "2022/2023", 200)
	carryRepo := &stubCarryoverRepo{records: []*carryover.Carryover{openA, openB}}

	// score already recorded for CSC301 in the current session
	resRepo := &stubResultRepo{results: []*result.Result{
		mustResult(t, "SCI/CSC/19/1234", "CSC301", "2023/2024", 20, 40),
	}}

	h := NewCheckCarryoverCoverageHandler(carryRepo, resRepo)
	out, err := h.Handle(context.Background(), CheckCarryoverCoverageQuery{
		Matric:            "SCI/CSC/19/1234",
		Session:           "2023/2024",
		RegisteredCourses: []string{"CSC301", "CSC401"},
	})
	require.NoError(t, err)

	assert.False(t, out.RegistrationCovered)
	assert.Equal(t, []string{"CSC205"}, out.MissingRegistrations)
	assert.False(t, out.AllScored)
	assert.Equal(t, []string{"CSC205"}, out.MissingScores)
}

func TestGetTranscriptSummary(t *testing.T) {
	resRepo := &stubResultRepo{results: []*result.Result{
		mustResult(t, "SCI/CSC/19/1234", "CSC301", "2023/2024", 25, 50), // A, 5
		mustResult(t, "SCI/CSC/19/1234", "CSC302", "2023/2024", 20, 40), // B, 4
		mustResult(t, "SCI/CSC/19/1234", "CSC201", "2022/2023", 10, 20), // F, 0
	}}
	courseRepo := &stubCourseRepo{courses: map[shared.CourseCode]*course.Course{
		"CSC301": {Code: "CSC301", CreditUnit: 3},
		"CSC302": {Code: "CSC302", CreditUnit: 3},
		"CSC201": {Code: "CSC201", CreditUnit: 2},
	}}

	h := NewGetTranscriptSummaryHandler(resRepo, courseRepo)
	out, err := h.Handle(context.Background(), GetTranscriptSummaryQuery{
		Matric:  "SCI/CSC/19/1234",
		Session: "2023/2024",
	})
	require.NoError(t, err)

	// window: (5*3 + 4*3)/6 = 4.50; cumulative: 27/8 ≈ 3.38
	assert.Equal(t, 4.50, out.SessionGPA)
	assert.Equal(t, 3.38, out.CGPA)
	assert.Equal(t, 6, out.Credits.Passed)
	assert.Equal(t, 2, out.Credits.Failed)
	assert.Equal(t, "Second Class Honours (Lower Division)", out.ClassOfDegree)
	assert.Len(t, out.Lines, 3)
}

func TestGetTranscriptSummary_UnknownCourseWeighsZero(t *testing.T) {
	resRepo := &stubResultRepo{results: []*result.Result{
		mustResult(t, "SCI/CSC/19/1234", "CSC301", "2023/2024", 25, 50),
		mustResult(t, "SCI/CSC/19/1234", "GST999", "2023/2024", 20, 40),
	}}
	courseRepo := &stubCourseRepo{courses: map[shared.CourseCode]*course.Course{
		"CSC301": {Code: "CSC301", CreditUnit: 3},
	}}

	h := NewGetTranscriptSummaryHandler(resRepo, courseRepo)
	out, err := h.Handle(context.Background(), GetTranscriptSummaryQuery{Matric: "SCI/CSC/19/1234"})
	require.NoError(t, err)

	// курс без карточки не участвует в весе: 5*3/3
	assert.Equal(t, 5.00, out.CGPA)
}

func TestGetTranscriptSummary_CourseLookupFailurePropagates(t *testing.T) {
	resRepo := &stubResultRepo{results: []*result.Result{
		mustResult(t, "SCI/CSC/19/1234", "CSC301", "2023/2024", 25, 50),
	}}
	dbErr := shared.WrapError("course", "GetByCode", shared.ErrTimeout, "query timed out", context.DeadlineExceeded)
	courseRepo := &stubCourseRepo{err: dbErr}

	h := NewGetTranscriptSummaryHandler(resRepo, courseRepo)
	_, err := h.Handle(context.Background(), GetTranscriptSummaryQuery{Matric: "SCI/CSC/19/1234"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrTimeout)
}

func TestGetTranscriptSummary_EmptyHistory(t *testing.T) {
	h := NewGetTranscriptSummaryHandler(&stubResultRepo{}, &stubCourseRepo{})

	out, err := h.Handle(context.Background(), GetTranscriptSummaryQuery{Matric: "SCI/CSC/19/1234"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.CGPA)
	assert.Equal(t, "Fail", out.ClassOfDegree)
	assert.Empty(t, out.Lines)
}

func TestGetAlterationHistory_SelectorRequired(t *testing.T) {
	h := NewGetAlterationHistoryHandler(nil)

	_, err := h.Handle(context.Background(), GetAlterationHistoryQuery{})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(context.Background(), GetAlterationHistoryQuery{ResultID: "r1", ActorID: "a1"})
	assert.True(t, shared.IsValidation(err))
}
