package carryover

import (
	"context"
	"errors"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// Fact — сведения о созданном или изменённом результате, на которые
// реагирует реестр. Реестру не нужен сам агрегат результата, только
// факты о нём.
type Fact struct {
	ResultID   string
	Matric     shared.Matric
	CourseCode shared.CourseCode
	Session    shared.Session
	Level      shared.Level
	Failing    bool
}

// Ledger — доменный сервис переходов задолженностей. Единственный
// владелец жизненного цикла записей: никакой другой компонент не
// создаёт и не изменяет задолженности напрямую.
type Ledger struct {
	repo Repository
}

// NewLedger создаёт реестр поверх переданного репозитория. Для
// атомарных операций передаётся репозиторий, привязанный к транзакции.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// Apply применяет факт об изменении результата к реестру и возвращает
// доменные события о выполненных переходах.
//
// Провальный результат: если открытой задолженности нет, открывается
// новая; если существует закрытая запись по той же паре (матрикул,
// курс), она переоткрывается вместо создания дубликата.
//
// Проходной результат: открытая задолженность закрывается с фиксацией
// сессии и результата пересдачи. Если открытой записи нет, перехода
// не происходит.
func (l *Ledger) Apply(ctx context.Context, f Fact) ([]shared.Event, error) {
	if f.Failing {
		return l.applyFailing(ctx, f)
	}
	return l.applyPassing(ctx, f)
}

func (l *Ledger) applyFailing(ctx context.Context, f Fact) ([]shared.Event, error) {
	_, err := l.repo.GetOpen(ctx, f.Matric, f.CourseCode)
	if err == nil {
		// задолженность уже открыта - дубликат не создаём
		return nil, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	latest, err := l.repo.GetLatest(ctx, f.Matric, f.CourseCode)
	switch {
	case err == nil && latest.IsCleared:
		if reopenErr := latest.Reopen(); reopenErr != nil {
			return nil, reopenErr
		}
		if updateErr := l.repo.Update(ctx, latest); updateErr != nil {
			return nil, updateErr
		}
		return []shared.Event{
			shared.NewCarryoverTransitionEvent(shared.EventCarryoverReopened, latest.ID, f.Matric.String(), f.CourseCode.String(), latest.OriginatingSession.String(), ""),
		}, nil

	case err != nil && !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	opened := Open(f.Matric, f.CourseCode, f.Session, f.Level)
	if createErr := l.repo.Create(ctx, opened); createErr != nil {
		if errors.Is(createErr, shared.ErrAlreadyExists) {
			// гонка с параллельным открытием - запись уже есть
			return nil, nil
		}
		return nil, createErr
	}
	return []shared.Event{
		shared.NewCarryoverTransitionEvent(shared.EventCarryoverOpened, opened.ID, f.Matric.String(), f.CourseCode.String(), f.Session.String(), ""),
	}, nil
}

func (l *Ledger) applyPassing(ctx context.Context, f Fact) ([]shared.Event, error) {
	open, err := l.repo.GetOpen(ctx, f.Matric, f.CourseCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if clearErr := open.Clear(f.Session, f.ResultID); clearErr != nil {
		return nil, clearErr
	}
	if updateErr := l.repo.Update(ctx, open); updateErr != nil {
		return nil, updateErr
	}
	return []shared.Event{
		shared.NewCarryoverTransitionEvent(shared.EventCarryoverCleared, open.ID, f.Matric.String(), f.CourseCode.String(), open.OriginatingSession.String(), f.Session.String()),
	}, nil
}

// ReverseClearance переоткрывает задолженность, закрытую указанным
// результатом. Вызывается при удалении результата пересдачи: его
// клиренс больше не действителен. Если результат ничего не закрывал,
// перехода не происходит.
func (l *Ledger) ReverseClearance(ctx context.Context, resultID string) ([]shared.Event, error) {
	cleared, err := l.repo.GetClearedByResult(ctx, resultID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if reopenErr := cleared.Reopen(); reopenErr != nil {
		return nil, reopenErr
	}
	if updateErr := l.repo.Update(ctx, cleared); updateErr != nil {
		return nil, updateErr
	}
	return []shared.Event{
		shared.NewCarryoverTransitionEvent(shared.EventCarryoverReopened, cleared.ID, cleared.Matric.String(), cleared.CourseCode.String(), cleared.OriginatingSession.String(), ""),
	}, nil
}

// RegistrationGap возвращает коды курсов с открытыми задолженностями,
// которых нет среди зарегистрированных на текущую сессию курсов.
func (l *Ledger) RegistrationGap(ctx context.Context, matric shared.Matric, registered []shared.CourseCode) ([]shared.CourseCode, error) {
	outstanding, err := l.repo.ListOutstanding(ctx, matric)
	if err != nil {
		return nil, err
	}

	registeredSet := make(map[shared.CourseCode]struct{}, len(registered))
	for _, code := range registered {
		registeredSet[code] = struct{}{}
	}

	var missing []shared.CourseCode
	for _, c := range outstanding {
		if _, ok := registeredSet[c.CourseCode]; !ok {
			missing = append(missing, c.CourseCode)
		}
	}
	return missing, nil
}
