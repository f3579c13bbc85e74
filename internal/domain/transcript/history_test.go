package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

func TestRemarkFor(t *testing.T) {
	tests := []struct {
		cgpa       float64
		hasResults bool
		want       Remark
	}{
		{4.20, true, RemarkGoodStanding},
		{1.50, true, RemarkGoodStanding},
		{1.49, true, RemarkProbation},
		{1.00, true, RemarkProbation},
		{0.99, true, RemarkAtRisk},
		{0.00, true, RemarkAtRisk},
		{0.00, false, RemarkNoResults},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RemarkFor(tt.cgpa, tt.hasResults), "cgpa=%.2f", tt.cgpa)
	}
}

func TestHistory_Empty(t *testing.T) {
	assert.Nil(t, History(nil))
}

func TestHistory_PerSessionBreakdown(t *testing.T) {
	entries := []Entry{
		// 2022/2023: тяжёлый год - 1cu A в первом семестре, 3cu F во втором
		{CourseCode: "CSC201", Session: "2022/2023", Semester: shared.FirstSemester, CreditUnit: 1, GradePoint: 5, Grade: "A"},
		{CourseCode: "CSC202", Session: "2022/2023", Semester: shared.SecondSemester, CreditUnit: 3, GradePoint: 0, Grade: "F"},
		// 2023/2024: выправился
		{CourseCode: "CSC301", Session: "2023/2024", Semester: shared.FirstSemester, CreditUnit: 3, GradePoint: 5, Grade: "A"},
		{CourseCode: "CSC302", Session: "2023/2024", Semester: shared.SecondSemester, CreditUnit: 3, GradePoint: 4, Grade: "B"},
	}

	history := History(entries)
	require.Len(t, history, 2)

	first := history[0]
	assert.Equal(t, shared.Session("2022/2023"), first.Session)
	assert.Equal(t, 5.00, first.FirstSemesterGPA)
	assert.Equal(t, 0.00, first.SecondSemesterGPA)
	assert.Equal(t, 1.25, first.SessionGPA) // 5/4
	assert.Equal(t, 1.25, first.CGPA)
	assert.Equal(t, CreditSummary{Passed: 1, Failed: 3, Total: 4}, first.Credits)
	assert.Equal(t, RemarkProbation, first.Remark)

	second := history[1]
	assert.Equal(t, shared.Session("2023/2024"), second.Session)
	assert.Equal(t, 4.50, second.SessionGPA) // 27/6
	assert.Equal(t, 3.20, second.CGPA)       // 32/10
	assert.Equal(t, RemarkGoodStanding, second.Remark)
}

func TestStanding_RemarkTracksLatestSession(t *testing.T) {
	s := Standing{}
	assert.Equal(t, RemarkNoResults, s.Remark())

	s.Sessions = History([]Entry{
		{Session: "2022/2023", Semester: shared.FirstSemester, CreditUnit: 3, GradePoint: 0, Grade: "F"},
		{Session: "2023/2024", Semester: shared.FirstSemester, CreditUnit: 3, GradePoint: 5, Grade: "A"},
	})
	require.Len(t, s.Sessions, 2)
	assert.Equal(t, s.Sessions[1].Remark, s.Remark())
	assert.Equal(t, RemarkGoodStanding, s.Remark())
}
