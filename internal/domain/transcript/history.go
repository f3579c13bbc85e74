package transcript

import (
	"sort"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// Remark — итог академического положения студента за сессию.
// Порог считается по накопленному CGPA на конец этой сессии.
type Remark string

const (
	RemarkGoodStanding Remark = "Good Standing"
	RemarkProbation    Remark = "Probation"
	RemarkAtRisk       Remark = "At Risk"
	RemarkNoResults    Remark = "No Results"
)

// String returns the string representation.
func (r Remark) String() string {
	return string(r)
}

// RemarkFor maps a running CGPA to its standing remark. hasResults guards
// the degenerate zero-entry window.
func RemarkFor(cgpa float64, hasResults bool) Remark {
	if !hasResults {
		return RemarkNoResults
	}
	switch {
	case cgpa >= 1.50:
		return RemarkGoodStanding
	case cgpa >= 1.00:
		return RemarkProbation
	default:
		return RemarkAtRisk
	}
}

// SessionStanding — строка академической истории: один студент, одна
// сессия. CGPA здесь накопленный, с учётом всех сессий по эту включительно.
type SessionStanding struct {
	Session           shared.Session `json:"session"`
	FirstSemesterGPA  float64        `json:"first_semester_gpa"`
	SecondSemesterGPA float64        `json:"second_semester_gpa"`
	SessionGPA        float64        `json:"session_gpa"`
	CGPA              float64        `json:"cgpa"`
	Credits           CreditSummary  `json:"credits"`
	Remark            Remark         `json:"remark"`
}

// History строит академическую историю по всем записям студента:
// по строке на сессию, в хронологическом порядке. Метки сессий вида
// "2023/2024" сортируются лексикографически, что совпадает с хронологией.
func History(entries []Entry) []SessionStanding {
	if len(entries) == 0 {
		return nil
	}

	bySession := make(map[shared.Session][]Entry)
	for _, e := range entries {
		bySession[e.Session] = append(bySession[e.Session], e)
	}

	sessions := make([]string, 0, len(bySession))
	for s := range bySession {
		sessions = append(sessions, s.String())
	}
	sort.Strings(sessions)

	history := make([]SessionStanding, 0, len(sessions))
	var cumulative []Entry
	for _, label := range sessions {
		session := shared.Session(label)
		window := bySession[session]

		var firstSem, secondSem []Entry
		for _, e := range window {
			if e.Semester == shared.FirstSemester {
				firstSem = append(firstSem, e)
			} else {
				secondSem = append(secondSem, e)
			}
		}

		cumulative = append(cumulative, window...)
		cgpa := CGPA(cumulative)

		history = append(history, SessionStanding{
			Session:           session,
			FirstSemesterGPA:  GPA(firstSem),
			SecondSemesterGPA: GPA(secondSem),
			SessionGPA:        GPA(window),
			CGPA:              cgpa,
			Credits:           Credits(window),
			Remark:            RemarkFor(cgpa, len(window) > 0),
		})
	}
	return history
}
