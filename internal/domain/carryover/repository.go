package carryover

import (
	"context"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// Repository определяет операции хранения задолженностей.
// Уникальность (матрикул, курс, сессия происхождения) обеспечивается
// хранилищем, а не логикой дедупликации снаружи.
type Repository interface {
	// Create сохраняет новую задолженность.
	// Возвращает shared.ErrCarryoverDuplicate при нарушении уникальности.
	Create(ctx context.Context, c *Carryover) error

	// Update сохраняет изменения существующей задолженности.
	Update(ctx context.Context, c *Carryover) error

	// GetOpen возвращает открытую задолженность по (матрикул, курс).
	// Возвращает shared.ErrCarryoverNotFound, если открытой записи нет.
	GetOpen(ctx context.Context, matric shared.Matric, courseCode shared.CourseCode) (*Carryover, error)

	// GetLatest возвращает последнюю по времени задолженность по
	// (матрикул, курс) независимо от состояния.
	// Возвращает shared.ErrCarryoverNotFound, если записей нет.
	GetLatest(ctx context.Context, matric shared.Matric, courseCode shared.CourseCode) (*Carryover, error)

	// GetClearedByResult возвращает задолженность, закрытую указанным
	// результатом. Возвращает shared.ErrCarryoverNotFound, если такой нет.
	GetClearedByResult(ctx context.Context, resultID string) (*Carryover, error)

	// ListOutstanding возвращает все открытые задолженности студента.
	ListOutstanding(ctx context.Context, matric shared.Matric) ([]*Carryover, error)

	// ListByMatric возвращает все задолженности студента.
	ListByMatric(ctx context.Context, matric shared.Matric) ([]*Carryover, error)
}
