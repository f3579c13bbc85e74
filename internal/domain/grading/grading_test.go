package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDefault_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		grade Grade
		point Point
	}{
		{100, GradeA, 5},
		{75, GradeA, 5},
		{70, GradeA, 5},
		{69, GradeB, 4},
		{65, GradeB, 4},
		{60, GradeB, 4},
		{59, GradeC, 3},
		{55, GradeC, 3},
		{50, GradeC, 3},
		{49, GradeD, 2},
		{47, GradeD, 2},
		{45, GradeD, 2},
		{44, GradeE, 1},
		{42, GradeE, 1},
		{40, GradeE, 1},
		{39, GradeF, 0},
		{30, GradeF, 0},
		{0, GradeF, 0},
	}

	for _, tc := range cases {
		res := ResolveDefault(tc.score)
		assert.Equal(t, tc.grade, res.Grade, "score %.0f", tc.score)
		assert.Equal(t, tc.point, res.Point, "score %.0f", tc.score)
	}
}

func TestResolve_CustomTable(t *testing.T) {
	// Postgraduate-style table with a higher pass mark.
	table := Table{
		DegreeType: "MSC",
		Bands: []Band{
			{MinScore: 70, MaxScore: 100, Grade: GradeA, Point: 5},
			{MinScore: 60, MaxScore: 69, Grade: GradeB, Point: 4},
			{MinScore: 50, MaxScore: 59, Grade: GradeC, Point: 3},
			{MinScore: 0, MaxScore: 49, Grade: GradeF, Point: 0},
		},
	}

	res := Resolve(55, table)
	assert.Equal(t, GradeC, res.Grade)

	res = Resolve(45, table)
	assert.Equal(t, GradeF, res.Grade)
	assert.Equal(t, Point(0), res.Point)
}

func TestResolve_EmptyTableFallsBackToDefault(t *testing.T) {
	res := Resolve(72, Table{DegreeType: "PGD"})
	assert.Equal(t, GradeA, res.Grade)
	assert.Equal(t, Point(5), res.Point)
}

func TestResolve_TableGapResolvesToFailSafe(t *testing.T) {
	// Malformed table leaves 50-59 uncovered.
	table := Table{
		Bands: []Band{
			{MinScore: 60, MaxScore: 100, Grade: GradeA, Point: 5},
			{MinScore: 0, MaxScore: 49, Grade: GradeF, Point: 0},
		},
	}

	res := Resolve(55, table)
	assert.Equal(t, GradeF, res.Grade)
	assert.Equal(t, Point(0), res.Point)
}

func TestGrade_IsPassing(t *testing.T) {
	assert.True(t, GradeA.IsPassing())
	assert.True(t, GradeE.IsPassing())
	assert.False(t, GradeF.IsPassing())
	assert.False(t, Grade("").IsPassing())
}

func TestTable_Sorted(t *testing.T) {
	table := Table{
		Bands: []Band{
			{MinScore: 0, MaxScore: 39, Grade: GradeF},
			{MinScore: 70, MaxScore: 100, Grade: GradeA},
			{MinScore: 40, MaxScore: 44, Grade: GradeE},
		},
	}

	sorted := table.Sorted()
	assert.Equal(t, GradeA, sorted.Bands[0].Grade)
	assert.Equal(t, GradeE, sorted.Bands[1].Grade)
	assert.Equal(t, GradeF, sorted.Bands[2].Grade)
	// original untouched
	assert.Equal(t, GradeF, table.Bands[0].Grade)
}
