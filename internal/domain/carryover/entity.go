// Package carryover содержит реестр академических задолженностей.
// Задолженность открывается при провале курса, закрывается при успешной
// пересдаче и открывается заново, если закрывший её результат позже
// исправлен обратно на провальный.
package carryover

import (
	"time"

	"github.com/google/uuid"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Carryover — обязательство студента пересдать проваленный курс.
// Ключ записи: (матрикул, курс, сессия происхождения). Для пары
// (матрикул, курс) в любой момент может быть открыта максимум одна
// запись; повторный провал переоткрывает существующую запись, а не
// создаёт дубликат.
type Carryover struct {
	ID                 string
	Matric             shared.Matric
	CourseCode         shared.CourseCode
	OriginatingSession shared.Session
	OriginalLevel      shared.Level

	IsCleared       bool
	ClearedSession  shared.Session
	ClearedResultID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open создаёт новую открытую задолженность.
func Open(matric shared.Matric, courseCode shared.CourseCode, session shared.Session, level shared.Level) *Carryover {
	now := time.Now()
	return &Carryover{
		ID:                 uuid.New().String(),
		Matric:             matric,
		CourseCode:         courseCode,
		OriginatingSession: session,
		OriginalLevel:      level,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// IsOpen возвращает true, если задолженность ещё не закрыта.
func (c *Carryover) IsOpen() bool {
	return !c.IsCleared
}

// Clear закрывает задолженность, фиксируя сессию и результат пересдачи.
// Возвращает ErrCarryoverNotOpen, если запись уже закрыта.
func (c *Carryover) Clear(session shared.Session, resultID string) error {
	if c.IsCleared {
		return shared.ErrCarryoverNotOpen
	}
	c.IsCleared = true
	c.ClearedSession = session
	c.ClearedResultID = resultID
	c.UpdatedAt = time.Now()
	return nil
}

// Reopen открывает закрытую задолженность заново, стирая ссылки на
// закрывшую её пересдачу. Вызывается, когда закрывший результат позже
// исправлен на провальный. Возвращает ErrCarryoverNotCleared, если
// запись и так открыта.
func (c *Carryover) Reopen() error {
	if !c.IsCleared {
		return shared.ErrCarryoverNotCleared
	}
	c.IsCleared = false
	c.ClearedSession = ""
	c.ClearedResultID = ""
	c.UpdatedAt = time.Now()
	return nil
}

// ClearedBy возвращает true, если задолженность закрыта указанным
// результатом.
func (c *Carryover) ClearedBy(resultID string) bool {
	return c.IsCleared && c.ClearedResultID == resultID
}
