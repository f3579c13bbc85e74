package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

func testCourse() *Course {
	return &Course{
		Code:       "CSC301",
		Title:      "Operating Systems",
		CreditUnit: 3,
		DegreeType: shared.DegreeBSc,
		Level:      300,
		Semester:   shared.FirstSemester,
		Department: "Computer Science",
	}
}

func TestFinalApprove(t *testing.T) {
	c := testCourse()

	require.NoError(t, c.FinalApprove("hod-1"))
	assert.True(t, c.IsApproved)
	assert.Equal(t, "hod-1", c.ApprovedBy)
	require.NotNil(t, c.ApprovedAt)

	err := c.FinalApprove("hod-2")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Equal(t, "hod-1", c.ApprovedBy)
}

func TestAuthorize(t *testing.T) {
	c := testCourse()

	lecturer := shared.Actor{ID: "l1", Role: shared.RoleLecturer}
	assert.NoError(t, c.Authorize(lecturer, true))
	assert.ErrorIs(t, c.Authorize(lecturer, false), shared.ErrForbidden)

	adviser := shared.Actor{ID: "a1", Role: shared.RoleLevelAdviser, Level: 300}
	assert.NoError(t, c.Authorize(adviser, false))

	wrongLevel := shared.Actor{ID: "a2", Role: shared.RoleLevelAdviser, Level: 400}
	assert.ErrorIs(t, c.Authorize(wrongLevel, false), shared.ErrForbidden)

	hod := shared.Actor{ID: "h1", Role: shared.RoleHOD, Department: "Computer Science"}
	assert.NoError(t, c.Authorize(hod, false))

	otherHOD := shared.Actor{ID: "h2", Role: shared.RoleHOD, Department: "Mathematics"}
	assert.ErrorIs(t, c.Authorize(otherHOD, false), shared.ErrForbidden)

	admin := shared.Actor{ID: "adm", Role: shared.RoleAdmin}
	assert.NoError(t, c.Authorize(admin, false))
}
