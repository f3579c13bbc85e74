// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/resulthub/academic-results-hub/internal/domain/carryover"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET OUTSTANDING CARRYOVERS QUERY
// Возвращает открытые задолженности студента - курсы, которые нужно
// пересдать, с сессией и уровнем первоначального провала.
// ══════════════════════════════════════════════════════════════════════════════

// GetOutstandingCarryoversQuery содержит параметры запроса.
type GetOutstandingCarryoversQuery struct {
	// Matric - матрикул студента.
	Matric string

	// IncludeCleared - включить также закрытые задолженности.
	IncludeCleared bool
}

// Validate проверяет корректность параметров.
func (q *GetOutstandingCarryoversQuery) Validate() error {
	if _, err := shared.NewMatric(q.Matric); err != nil {
		return err
	}
	return nil
}

// CarryoverDTO - одна задолженность для слоя представления.
type CarryoverDTO struct {
	ID                 string `json:"id"`
	CourseCode         string `json:"course_code"`
	OriginatingSession string `json:"originating_session"`
	OriginalLevel      int    `json:"original_level"`
	IsCleared          bool   `json:"is_cleared"`
	ClearedSession     string `json:"cleared_session,omitempty"`
}

// GetOutstandingCarryoversResult содержит результат запроса.
type GetOutstandingCarryoversResult struct {
	Matric     string         `json:"matric"`
	Carryovers []CarryoverDTO `json:"carryovers"`
	OpenCount  int            `json:"open_count"`
}

// GetOutstandingCarryoversHandler обрабатывает запрос.
type GetOutstandingCarryoversHandler struct {
	carryoverRepo carryover.Repository
}

// NewGetOutstandingCarryoversHandler создаёт обработчик.
func NewGetOutstandingCarryoversHandler(carryoverRepo carryover.Repository) *GetOutstandingCarryoversHandler {
	return &GetOutstandingCarryoversHandler{carryoverRepo: carryoverRepo}
}

// Handle выполняет запрос.
func (h *GetOutstandingCarryoversHandler) Handle(ctx context.Context, q GetOutstandingCarryoversQuery) (*GetOutstandingCarryoversResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	matric := shared.Matric(q.Matric)

	var (
		records []*carryover.Carryover
		err     error
	)
	if q.IncludeCleared {
		records, err = h.carryoverRepo.ListByMatric(ctx, matric)
	} else {
		records, err = h.carryoverRepo.ListOutstanding(ctx, matric)
	}
	if err != nil {
		return nil, err
	}

	result := &GetOutstandingCarryoversResult{
		Matric:     matric.String(),
		Carryovers: make([]CarryoverDTO, 0, len(records)),
	}
	for _, c := range records {
		result.Carryovers = append(result.Carryovers, CarryoverDTO{
			ID:                 c.ID,
			CourseCode:         c.CourseCode.String(),
			OriginatingSession: c.OriginatingSession.String(),
			OriginalLevel:      c.OriginalLevel.Int(),
			IsCleared:          c.IsCleared,
			ClearedSession:     c.ClearedSession.String(),
		})
		if c.IsOpen() {
			result.OpenCount++
		}
	}
	return result, nil
}
