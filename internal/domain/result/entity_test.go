package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resulthub/academic-results-hub/internal/domain/grading"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

func newTestResult(t *testing.T, ca, exam float64) *Result {
	t.Helper()
	res, err := New("SCI/CSC/19/1234", "CSC301", "2023/2024", shared.FirstSemester, 300, ca, exam, grading.ResolveDefault(ca+exam))
	require.NoError(t, err)
	return res
}

func TestValidateScores(t *testing.T) {
	assert.Empty(t, ValidateScores(0, 0))
	assert.Empty(t, ValidateScores(30, 70))
	assert.Empty(t, ValidateScores(15.5, 42))

	errs := ValidateScores(31, 50)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], shared.ErrValueOutOfRange)

	errs = ValidateScores(-1, 71)
	assert.Len(t, errs, 2)
}

func TestNew_ComputesTotalAndGrade(t *testing.T) {
	res := newTestResult(t, 25, 50)
	assert.Equal(t, 75.0, res.TotalScore)
	assert.Equal(t, grading.GradeA, res.Grade)
	assert.Equal(t, grading.Point(5), res.GradePoint)
	assert.True(t, res.IsPassing())
	assert.False(t, res.IsLocked)
	assert.NotEmpty(t, res.ID)
}

func TestApplyScores_RejectsLocked(t *testing.T) {
	res := newTestResult(t, 10, 20)
	res.Lock("hod-1")

	err := res.ApplyScores(20, 50, grading.ResolveDefault(70))
	assert.ErrorIs(t, err, shared.ErrResultLocked)
	assert.Equal(t, 30.0, res.TotalScore)
}

func TestApplyScores_UpdatesGrade(t *testing.T) {
	res := newTestResult(t, 10, 20)
	assert.True(t, res.IsFailing())

	err := res.ApplyScores(25, 45, grading.ResolveDefault(70))
	require.NoError(t, err)
	assert.Equal(t, 70.0, res.TotalScore)
	assert.Equal(t, grading.GradeA, res.Grade)
	assert.True(t, res.IsPassing())
}

func TestLockUnlock_Stamps(t *testing.T) {
	res := newTestResult(t, 20, 40)

	assert.True(t, res.Lock("lect-1"))
	assert.True(t, res.IsLocked)
	assert.Equal(t, "lect-1", res.LockedBy)
	require.NotNil(t, res.LockedAt)

	// second lock is a no-op
	assert.False(t, res.Lock("lect-2"))
	assert.Equal(t, "lect-1", res.LockedBy)

	assert.True(t, res.Unlock("hod-1"))
	assert.False(t, res.IsLocked)
	assert.Equal(t, "hod-1", res.UnlockedBy)
	require.NotNil(t, res.UnlockedAt)

	assert.False(t, res.Unlock("hod-1"))
}

func TestCanBeDeletedBy(t *testing.T) {
	res := newTestResult(t, 20, 40)
	lecturer := shared.Actor{ID: "lect-1", Role: shared.RoleLecturer}
	hod := shared.Actor{ID: "hod-1", Role: shared.RoleHOD}

	assert.True(t, res.CanBeDeletedBy(lecturer))

	res.Lock("lect-1")
	assert.False(t, res.CanBeDeletedBy(lecturer))
	assert.True(t, res.CanBeDeletedBy(hod), "unlock authority deletes through the lock")
}

func TestSnap_IsDetached(t *testing.T) {
	res := newTestResult(t, 20, 40)
	before := res.Snap()

	_ = res.ApplyScores(25, 50, grading.ResolveDefault(75))

	assert.Equal(t, 60.0, before.TotalScore)
	assert.Equal(t, "B", before.Grade)
	assert.Equal(t, 75.0, res.Snap().TotalScore)
}
