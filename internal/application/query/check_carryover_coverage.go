package query

import (
	"context"
	"errors"

	"github.com/resulthub/academic-results-hub/internal/domain/carryover"
	"github.com/resulthub/academic-results-hub/internal/domain/result"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECK CARRYOVER COVERAGE QUERY
// Две проверки перед выпуском студента на новую сессию:
//   1) покрывает ли регистрация курсов все открытые задолженности;
//   2) по всем ли открытым задолженностям уже проставлен балл в текущей
//      сессии.
// ══════════════════════════════════════════════════════════════════════════════

// CheckCarryoverCoverageQuery содержит параметры проверки.
type CheckCarryoverCoverageQuery struct {
	// Matric - матрикул студента.
	Matric string

	// Session - текущая сессия.
	Session string

	// RegisteredCourses - коды курсов, на которые студент записан.
	RegisteredCourses []string
}

// Validate проверяет корректность параметров.
func (q *CheckCarryoverCoverageQuery) Validate() error {
	if _, err := shared.NewMatric(q.Matric); err != nil {
		return err
	}
	if _, err := shared.NewSession(q.Session); err != nil {
		return err
	}
	return nil
}

// CheckCarryoverCoverageResult содержит результат проверки.
type CheckCarryoverCoverageResult struct {
	Matric string `json:"matric"`

	// MissingRegistrations - задолженности, не покрытые регистрацией.
	MissingRegistrations []string `json:"missing_registrations"`

	// MissingScores - задолженности без балла в текущей сессии.
	MissingScores []string `json:"missing_scores"`

	// RegistrationCovered - регистрация покрывает все задолженности.
	RegistrationCovered bool `json:"registration_covered"`

	// AllScored - по всем задолженностям есть балл в текущей сессии.
	AllScored bool `json:"all_scored"`
}

// CheckCarryoverCoverageHandler обрабатывает проверку.
type CheckCarryoverCoverageHandler struct {
	carryoverRepo carryover.Repository
	resultRepo    result.Repository
}

// NewCheckCarryoverCoverageHandler создаёт обработчик.
func NewCheckCarryoverCoverageHandler(carryoverRepo carryover.Repository, resultRepo result.Repository) *CheckCarryoverCoverageHandler {
	return &CheckCarryoverCoverageHandler{
		carryoverRepo: carryoverRepo,
		resultRepo:    resultRepo,
	}
}

// Handle выполняет проверку.
func (h *CheckCarryoverCoverageHandler) Handle(ctx context.Context, q CheckCarryoverCoverageQuery) (*CheckCarryoverCoverageResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	matric := shared.Matric(q.Matric)
	session := shared.Session(q.Session)

	registered := make([]shared.CourseCode, 0, len(q.RegisteredCourses))
	for _, code := range q.RegisteredCourses {
		registered = append(registered, shared.CourseCode(code))
	}

	ledger := carryover.NewLedger(h.carryoverRepo)
	missing, err := ledger.RegistrationGap(ctx, matric, registered)
	if err != nil {
		return nil, err
	}

	outstanding, err := h.carryoverRepo.ListOutstanding(ctx, matric)
	if err != nil {
		return nil, err
	}

	out := &CheckCarryoverCoverageResult{Matric: matric.String()}
	for _, code := range missing {
		out.MissingRegistrations = append(out.MissingRegistrations, code.String())
	}

	for _, c := range outstanding {
		_, err := h.resultRepo.GetByKey(ctx, matric, c.CourseCode, session)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				out.MissingScores = append(out.MissingScores, c.CourseCode.String())
				continue
			}
			return nil, err
		}
	}

	out.RegistrationCovered = len(out.MissingRegistrations) == 0
	out.AllScored = len(out.MissingScores) == 0
	return out, nil
}
