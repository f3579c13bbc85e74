// Package eventhandler содержит обработчики доменных событий.
// Эти обработчики реализуют event-driven архитектуру и связывают
// различные части системы через асинхронные события.
//
// Философия: запись результата — это команда; всё, что должно
// произойти "вокруг" записи (проекции, кеши), реагирует на события
// и никогда не задерживает саму транзакцию.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resulthub/academic-results-hub/internal/domain/carryover"
	"github.com/resulthub/academic-results-hub/internal/domain/course"
	"github.com/resulthub/academic-results-hub/internal/domain/result"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
	"github.com/resulthub/academic-results-hub/internal/domain/transcript"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON RESULT CHANGED HANDLER
// Перестраивает проекцию академического положения студента после
// любого изменения результата или задолженности.
//
// Проекция — это кеш для чтения: CGPA, класс диплома, кредиты и число
// открытых задолженностей. Источник истины — всегда сами результаты.
// ═══════════════════════════════════════════════════════════════════════════

// OnResultChangedHandler перестраивает Standing-проекцию студента.
type OnResultChangedHandler struct {
	resultRepo    result.Repository
	carryoverRepo carryover.Repository
	courseRepo    course.Repository
	store         transcript.StandingStore

	logger *slog.Logger

	config StandingProjectionConfig
}

// StandingProjectionConfig содержит конфигурацию обработчика.
type StandingProjectionConfig struct {
	// RebuildTimeout — максимальное время на одну перестройку проекции.
	RebuildTimeout time.Duration

	// InvalidateOnError — удалять ли устаревшую проекцию, если
	// перестройка не удалась. Лучше пустой кеш, чем неверные цифры.
	InvalidateOnError bool
}

// DefaultStandingProjectionConfig возвращает конфигурацию по умолчанию.
func DefaultStandingProjectionConfig() StandingProjectionConfig {
	return StandingProjectionConfig{
		RebuildTimeout:    10 * time.Second,
		InvalidateOnError: true,
	}
}

// NewOnResultChangedHandler создаёт новый обработчик.
func NewOnResultChangedHandler(
	resultRepo result.Repository,
	carryoverRepo carryover.Repository,
	courseRepo course.Repository,
	store transcript.StandingStore,
	logger *slog.Logger,
	config StandingProjectionConfig,
) *OnResultChangedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnResultChangedHandler{
		resultRepo:    resultRepo,
		carryoverRepo: carryoverRepo,
		courseRepo:    courseRepo,
		store:         store,
		logger:        logger.With("handler", "on_result_changed"),
		config:        config,
	}
}

// EventTypes возвращает типы событий, которые интересуют обработчик.
func (h *OnResultChangedHandler) EventTypes() []shared.EventType {
	return []shared.EventType{
		shared.EventResultCreated,
		shared.EventResultUpdated,
		shared.EventResultDeleted,
		shared.EventCarryoverOpened,
		shared.EventCarryoverCleared,
		shared.EventCarryoverReopened,
	}
}

// Register подписывает обработчик на все его типы событий.
func (h *OnResultChangedHandler) Register(bus shared.EventSubscriber) error {
	for _, et := range h.EventTypes() {
		if err := bus.Subscribe(et, h.Handle); err != nil {
			return fmt.Errorf("subscribe %s: %w", et, err)
		}
	}
	return nil
}

// Handle обрабатывает событие. Реализует shared.EventHandler.
func (h *OnResultChangedHandler) Handle(event shared.Event) error {
	matric, ok := h.matricOf(event)
	if !ok {
		h.logger.Warn("event carries no matric, skipping",
			"event_type", event.EventType(),
		)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.RebuildTimeout)
	defer cancel()

	if err := h.rebuild(ctx, matric); err != nil {
		h.logger.Error("failed to rebuild standing projection",
			"matric", matric,
			"event_type", event.EventType(),
			"error", err,
		)

		if h.config.InvalidateOnError {
			if ierr := h.store.Invalidate(ctx, matric); ierr != nil {
				h.logger.Warn("failed to invalidate stale standing",
					"matric", matric,
					"error", ierr,
				)
			}
		}
		return fmt.Errorf("rebuild standing for %s: %w", matric, err)
	}

	h.logger.Debug("standing projection rebuilt",
		"matric", matric,
		"event_type", event.EventType(),
	)
	return nil
}

// matricOf извлекает матрикул из поддерживаемых типов событий.
func (h *OnResultChangedHandler) matricOf(event shared.Event) (shared.Matric, bool) {
	switch e := event.(type) {
	case shared.ResultChangedEvent:
		return shared.Matric(e.Matric), true
	case shared.ResultDeletedEvent:
		return shared.Matric(e.Matric), true
	case shared.CarryoverTransitionEvent:
		return shared.Matric(e.Matric), true
	default:
		return "", false
	}
}

// rebuild пересчитывает проекцию с нуля по текущим результатам.
func (h *OnResultChangedHandler) rebuild(ctx context.Context, matric shared.Matric) error {
	results, err := h.resultRepo.ListByMatric(ctx, matric, "")
	if err != nil {
		return fmt.Errorf("list results: %w", err)
	}

	entries := make([]transcript.Entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, transcript.Entry{
			CourseCode: r.CourseCode,
			Session:    r.Session,
			Semester:   r.Semester,
			CreditUnit: h.creditUnitOf(ctx, r.CourseCode),
			GradePoint: r.GradePoint.Float64(),
			Grade:      r.Grade.String(),
		})
	}

	open, err := h.carryoverRepo.ListOutstanding(ctx, matric)
	if err != nil {
		return fmt.Errorf("list outstanding carryovers: %w", err)
	}

	summary := transcript.Summarize(entries)
	standing := transcript.Standing{
		Matric:         matric,
		CGPA:           summary.GPA,
		ClassOfDegree:  summary.Class,
		CreditsPassed:  summary.Credits.Passed,
		CreditsFailed:  summary.Credits.Failed,
		TotalResults:   len(results),
		OpenCarryovers: len(open),
		Sessions:       transcript.History(entries),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := h.store.Save(ctx, standing); err != nil {
		return fmt.Errorf("save standing: %w", err)
	}
	return nil
}

// creditUnitOf возвращает кредиты курса; 0, если курс не найден.
// Неизвестный курс не должен ронять всю проекцию.
func (h *OnResultChangedHandler) creditUnitOf(ctx context.Context, code shared.CourseCode) int {
	crs, err := h.courseRepo.GetByCode(ctx, code)
	if err != nil {
		h.logger.Warn("course lookup failed during projection rebuild",
			"course_code", code,
			"error", err,
		)
		return 0
	}
	return crs.CreditUnit
}
