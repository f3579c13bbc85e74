package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGPA_Empty(t *testing.T) {
	assert.Equal(t, 0.0, GPA(nil))
	assert.Equal(t, 0.0, GPA([]Entry{}))
}

func TestGPA_WeightedAverage(t *testing.T) {
	// 3cu at 5.0 + 2cu at 2.0 + 1cu at 0.0 = (15+4+0)/6 ≈ 3.17
	entries := []Entry{
		{CourseCode: "CSC301", CreditUnit: 3, GradePoint: 5, Grade: "A"},
		{CourseCode: "CSC302", CreditUnit: 2, GradePoint: 2, Grade: "D"},
		{CourseCode: "CSC303", CreditUnit: 1, GradePoint: 0, Grade: "F"},
	}

	assert.Equal(t, 3.17, GPA(entries))
}

func TestGPA_ExactTwo(t *testing.T) {
	entries := []Entry{
		{CreditUnit: 2, GradePoint: 3, Grade: "C"},
		{CreditUnit: 2, GradePoint: 1, Grade: "E"},
	}

	assert.Equal(t, 2.00, GPA(entries))
}

func TestGPA_ZeroCreditUnits(t *testing.T) {
	entries := []Entry{{CreditUnit: 0, GradePoint: 5}}
	assert.Equal(t, 0.0, GPA(entries))
}

func TestCredits_Partition(t *testing.T) {
	entries := []Entry{
		{CreditUnit: 3, GradePoint: 5},
		{CreditUnit: 2, GradePoint: 0},
		{CreditUnit: 2, GradePoint: 1},
		{CreditUnit: 3, GradePoint: 0},
	}

	s := Credits(entries)
	assert.Equal(t, 5, s.Passed)
	assert.Equal(t, 5, s.Failed)
	assert.Equal(t, 10, s.Total)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, FirstClass, Classify(4.50))
	assert.Equal(t, FirstClass, Classify(5.00))
	assert.Equal(t, SecondClassUpper, Classify(4.49))
	assert.Equal(t, SecondClassUpper, Classify(3.50))
	assert.Equal(t, SecondClassLower, Classify(3.49))
	assert.Equal(t, SecondClassLower, Classify(2.40))
	assert.Equal(t, ThirdClass, Classify(2.39))
	assert.Equal(t, ThirdClass, Classify(1.50))
	assert.Equal(t, PassDegree, Classify(1.49))
	assert.Equal(t, PassDegree, Classify(1.00))
	assert.Equal(t, FailDegree, Classify(0.99))
	assert.Equal(t, FailDegree, Classify(0.0))
}

func TestSummarize(t *testing.T) {
	entries := []Entry{
		{CreditUnit: 3, GradePoint: 5, Grade: "A"},
		{CreditUnit: 3, GradePoint: 4, Grade: "B"},
	}

	s := Summarize(entries)
	assert.Equal(t, 4.50, s.GPA)
	assert.Equal(t, 6, s.Credits.Passed)
	assert.Equal(t, 0, s.Credits.Failed)
	assert.Equal(t, FirstClass, s.Class)
}
