// Package transcript computes GPA, credit-unit summaries, and degree
// classification from scored results. All functions are pure: the same
// inputs always produce the same outputs, so a live preview and a final
// exported document can share one code path.
package transcript

import (
	"math"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// Entry is one scored course as consumed by the aggregator. Callers scope
// the entry slice to whatever window they want: one semester, one session,
// or the full academic history for a CGPA.
type Entry struct {
	CourseCode shared.CourseCode
	Session    shared.Session
	Semester   shared.Semester
	CreditUnit int
	GradePoint float64
	Grade      string
}

// IsPassed reports whether the entry carries a passing grade point.
func (e Entry) IsPassed() bool {
	return e.GradePoint > 0
}

// GPA computes the grade point average over the given entries:
// Σ(grade_point × credit_unit) / Σ(credit_unit), rounded to 2 decimal
// places. Returns 0.00 for an empty slice.
func GPA(entries []Entry) float64 {
	if len(entries) == 0 {
		return 0.0
	}

	var qualityPoints float64
	var creditUnits int
	for _, e := range entries {
		qualityPoints += e.GradePoint * float64(e.CreditUnit)
		creditUnits += e.CreditUnit
	}

	if creditUnits == 0 {
		return 0.0
	}

	return round2(qualityPoints / float64(creditUnits))
}

// CGPA computes the cumulative GPA. It is the same calculation as GPA
// applied to the caller's full result history.
func CGPA(entries []Entry) float64 {
	return GPA(entries)
}

// CreditSummary partitions total credit units into passed and failed.
type CreditSummary struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

// Credits summarizes credit units over the given entries. A course counts
// as passed when its grade point is above zero.
func Credits(entries []Entry) CreditSummary {
	var s CreditSummary
	for _, e := range entries {
		if e.IsPassed() {
			s.Passed += e.CreditUnit
		} else {
			s.Failed += e.CreditUnit
		}
	}
	s.Total = s.Passed + s.Failed
	return s
}

// ClassOfDegree is the honours classification derived from a CGPA.
type ClassOfDegree string

const (
	FirstClass       ClassOfDegree = "First Class Honours"
	SecondClassUpper ClassOfDegree = "Second Class Honours (Upper Division)"
	SecondClassLower ClassOfDegree = "Second Class Honours (Lower Division)"
	ThirdClass       ClassOfDegree = "Third Class Honours"
	PassDegree       ClassOfDegree = "Pass"
	FailDegree       ClassOfDegree = "Fail"
)

// String returns the string representation.
func (c ClassOfDegree) String() string {
	return string(c)
}

// Classify maps a CGPA to its class of degree.
func Classify(cgpa float64) ClassOfDegree {
	switch {
	case cgpa >= 4.50:
		return FirstClass
	case cgpa >= 3.50:
		return SecondClassUpper
	case cgpa >= 2.40:
		return SecondClassLower
	case cgpa >= 1.50:
		return ThirdClass
	case cgpa >= 1.00:
		return PassDegree
	default:
		return FailDegree
	}
}

// Summary bundles everything a transcript page needs for one window.
type Summary struct {
	GPA     float64       `json:"gpa"`
	Credits CreditSummary `json:"credits"`
	Class   ClassOfDegree `json:"class_of_degree"`
}

// Summarize computes the full summary for the given entries.
func Summarize(entries []Entry) Summary {
	gpa := GPA(entries)
	return Summary{
		GPA:     gpa,
		Credits: Credits(entries),
		Class:   Classify(gpa),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
