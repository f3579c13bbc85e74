package transcript

import (
	"context"
	"time"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// Standing is the denormalized academic position of one student: the
// numbers an adviser wants on screen without re-reading the whole result
// history. It is a projection, rebuilt whenever a result or carryover
// changes, and may lag the write model briefly.
type Standing struct {
	Matric         shared.Matric `json:"matric"`
	CGPA           float64       `json:"cgpa"`
	ClassOfDegree  ClassOfDegree `json:"class_of_degree"`
	CreditsPassed  int           `json:"credits_passed"`
	CreditsFailed  int           `json:"credits_failed"`
	TotalResults   int           `json:"total_results"`
	OpenCarryovers int           `json:"open_carryovers"`

	// Sessions — академическая история: строка на сессию с семестровыми
	// GPA, накопленным CGPA и ремаркой о положении студента.
	Sessions []SessionStanding `json:"sessions,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Remark возвращает ремарку последней сессии в истории.
func (s Standing) Remark() Remark {
	if len(s.Sessions) == 0 {
		return RemarkNoResults
	}
	return s.Sessions[len(s.Sessions)-1].Remark
}

// StandingStore persists the standing projection.
//
// Реализация живёт в infrastructure-слое (Redis). Отсутствие записи
// не является ошибкой: проекция лениво перестраивается при следующем
// событии.
type StandingStore interface {
	// Save сохраняет проекцию студента.
	Save(ctx context.Context, standing Standing) error

	// Get возвращает проекцию студента или shared.ErrNotFound.
	Get(ctx context.Context, matric shared.Matric) (*Standing, error)

	// Invalidate удаляет проекцию студента.
	Invalidate(ctx context.Context, matric shared.Matric) error
}
