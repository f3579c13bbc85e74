package query

import (
	"context"
	"errors"

	"github.com/resulthub/academic-results-hub/internal/domain/course"
	"github.com/resulthub/academic-results-hub/internal/domain/result"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
	"github.com/resulthub/academic-results-hub/internal/domain/transcript"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET TRANSCRIPT SUMMARY QUERY
// Builds the GPA view of a student: per-window GPA, cumulative GPA,
// credit-unit totals, and the class of degree. The same pure aggregator
// backs both this live view and any exported document.
// ══════════════════════════════════════════════════════════════════════════════

// GetTranscriptSummaryQuery contains the query parameters.
type GetTranscriptSummaryQuery struct {
	// Matric identifies the student.
	Matric string

	// Session scopes the window GPA; empty means cumulative only.
	Session string
}

// Validate validates the query.
func (q *GetTranscriptSummaryQuery) Validate() error {
	if _, err := shared.NewMatric(q.Matric); err != nil {
		return err
	}
	if q.Session != "" {
		if _, err := shared.NewSession(q.Session); err != nil {
			return err
		}
	}
	return nil
}

// ResultLineDTO is one scored course on the transcript.
type ResultLineDTO struct {
	CourseCode string  `json:"course_code"`
	Session    string  `json:"session"`
	Semester   int     `json:"semester"`
	CreditUnit int     `json:"credit_unit"`
	TotalScore float64 `json:"total_score"`
	Grade      string  `json:"grade"`
	GradePoint float64 `json:"grade_point"`
	IsLocked   bool    `json:"is_locked"`
}

// TranscriptSummaryDTO is the aggregate view.
type TranscriptSummaryDTO struct {
	Matric        string                   `json:"matric"`
	Session       string                   `json:"session,omitempty"`
	SessionGPA    float64                  `json:"session_gpa"`
	CGPA          float64                  `json:"cgpa"`
	Credits       transcript.CreditSummary `json:"credits"`
	ClassOfDegree string                   `json:"class_of_degree"`
	Lines         []ResultLineDTO          `json:"lines"`
}

// GetTranscriptSummaryHandler handles the query.
type GetTranscriptSummaryHandler struct {
	resultRepo result.Repository
	courseRepo course.Repository
}

// NewGetTranscriptSummaryHandler creates a new handler.
func NewGetTranscriptSummaryHandler(resultRepo result.Repository, courseRepo course.Repository) *GetTranscriptSummaryHandler {
	return &GetTranscriptSummaryHandler{
		resultRepo: resultRepo,
		courseRepo: courseRepo,
	}
}

// Handle executes the query.
func (h *GetTranscriptSummaryHandler) Handle(ctx context.Context, q GetTranscriptSummaryQuery) (*TranscriptSummaryDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	matric := shared.Matric(q.Matric)

	all, err := h.resultRepo.ListByMatric(ctx, matric, "")
	if err != nil {
		return nil, err
	}

	allEntries := make([]transcript.Entry, 0, len(all))
	var windowEntries []transcript.Entry
	lines := make([]ResultLineDTO, 0, len(all))

	for _, res := range all {
		// нет карточки курса - идёт с нулевым весом; остальные ошибки наверх
		creditUnit := 0
		crs, err := h.courseRepo.GetByCode(ctx, res.CourseCode)
		switch {
		case err == nil:
			creditUnit = crs.CreditUnit
		case !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}

		entry := transcript.Entry{
			CourseCode: res.CourseCode,
			Session:    res.Session,
			Semester:   res.Semester,
			CreditUnit: creditUnit,
			GradePoint: res.GradePoint.Float64(),
			Grade:      res.Grade.String(),
		}
		allEntries = append(allEntries, entry)
		if q.Session != "" && res.Session == shared.Session(q.Session) {
			windowEntries = append(windowEntries, entry)
		}

		lines = append(lines, ResultLineDTO{
			CourseCode: res.CourseCode.String(),
			Session:    res.Session.String(),
			Semester:   res.Semester.Int(),
			CreditUnit: creditUnit,
			TotalScore: res.TotalScore,
			Grade:      res.Grade.String(),
			GradePoint: res.GradePoint.Float64(),
			IsLocked:   res.IsLocked,
		})
	}

	cgpa := transcript.CGPA(allEntries)
	dto := &TranscriptSummaryDTO{
		Matric:        matric.String(),
		Session:       q.Session,
		CGPA:          cgpa,
		Credits:       transcript.Credits(allEntries),
		ClassOfDegree: transcript.Classify(cgpa).String(),
		Lines:         lines,
	}
	if q.Session != "" {
		dto.SessionGPA = transcript.GPA(windowEntries)
	} else {
		dto.SessionGPA = cgpa
	}
	return dto, nil
}
