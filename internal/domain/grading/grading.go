// Package grading содержит логику преобразования баллов в оценки.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package grading

import (
	"context"
	"sort"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Grade представляет буквенную оценку (A, B, C, D, E, F).
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
	GradeF Grade = "F"
)

// String возвращает строковое представление оценки.
func (g Grade) String() string {
	return string(g)
}

// IsPassing возвращает true, если оценка проходная.
// Проходной считается любая оценка с баллом выше нуля.
func (g Grade) IsPassing() bool {
	return g != GradeF && g != ""
}

// Point представляет балл оценки (grade point, 0-5).
type Point float64

// IsValid проверяет, что балл в допустимом диапазоне.
func (p Point) IsValid() bool {
	return p >= 0 && p <= 5
}

// Float64 возвращает числовое значение балла.
func (p Point) Float64() float64 {
	return float64(p)
}

// IsPassing возвращает true, если балл проходной (больше нуля).
func (p Point) IsPassing() bool {
	return p > 0
}

// ══════════════════════════════════════════════════════════════════════════════
// BAND / TABLE
// ══════════════════════════════════════════════════════════════════════════════

// Band описывает один диапазон баллов: [MinScore, MaxScore] -> (Grade, Point).
type Band struct {
	MinScore float64
	MaxScore float64
	Grade    Grade
	Point    Point
}

// Contains проверяет, попадает ли балл в диапазон (границы включительно).
func (b Band) Contains(score float64) bool {
	return score >= b.MinScore && score <= b.MaxScore
}

// Table — упорядоченный набор диапазонов для одного типа программы.
// Диапазоны по контракту непрерывны и не пересекаются; резолвер это
// не проверяет.
type Table struct {
	DegreeType shared.DegreeType
	Bands      []Band
}

// IsEmpty возвращает true, если таблица не содержит диапазонов.
func (t Table) IsEmpty() bool {
	return len(t.Bands) == 0
}

// Sorted возвращает копию таблицы с диапазонами по убыванию MinScore.
// Порядок важен только для предсказуемости вывода, не для корректности.
func (t Table) Sorted() Table {
	bands := make([]Band, len(t.Bands))
	copy(bands, t.Bands)
	sort.Slice(bands, func(i, j int) bool {
		return bands[i].MinScore > bands[j].MinScore
	})
	return Table{DegreeType: t.DegreeType, Bands: bands}
}

// DefaultTable возвращает стандартную таблицу оценок.
// Используется, когда для типа программы не настроены свои диапазоны.
func DefaultTable() Table {
	return Table{
		Bands: []Band{
			{MinScore: 70, MaxScore: 100, Grade: GradeA, Point: 5},
			{MinScore: 60, MaxScore: 69, Grade: GradeB, Point: 4},
			{MinScore: 50, MaxScore: 59, Grade: GradeC, Point: 3},
			{MinScore: 45, MaxScore: 49, Grade: GradeD, Point: 2},
			{MinScore: 40, MaxScore: 44, Grade: GradeE, Point: 1},
			{MinScore: 0, MaxScore: 39, Grade: GradeF, Point: 0},
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RESOLVER
// ══════════════════════════════════════════════════════════════════════════════

// Resolution — результат разрешения балла в оценку.
type Resolution struct {
	Grade Grade
	Point Point
}

// failSafe — безопасный результат по умолчанию: если таблица настроена
// с разрывами и ни один диапазон не подошёл, студент получает F/0,
// а не ошибку.
var failSafe = Resolution{Grade: GradeF, Point: 0}

// Resolve преобразует итоговый балл [0,100] в оценку по переданной таблице.
// Пустая таблица означает, что для типа программы нет своих диапазонов -
// используется стандартная таблица. Чистая функция без побочных эффектов.
func Resolve(score float64, table Table) Resolution {
	if table.IsEmpty() {
		table = DefaultTable()
	}
	for _, band := range table.Bands {
		if band.Contains(score) {
			return Resolution{Grade: band.Grade, Point: band.Point}
		}
	}
	return failSafe
}

// ResolveDefault преобразует балл по стандартной таблице.
func ResolveDefault(score float64) Resolution {
	return Resolve(score, DefaultTable())
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// TableProvider отдаёт таблицу оценок для типа программы.
// Реализация может читать из БД или кэша; отсутствие настроенной
// таблицы не является ошибкой - вернётся пустая таблица.
type TableProvider interface {
	TableFor(ctx context.Context, degreeType shared.DegreeType) (Table, error)
}
