package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resulthub/academic-results-hub/internal/domain/grading"
	"github.com/resulthub/academic-results-hub/internal/domain/result"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

func TestRequestContext_Normalize(t *testing.T) {
	rc := RequestContext{IPAddress: "10.0.0.1", Browser: "Firefox"}.Normalize()

	assert.Equal(t, "10.0.0.1", rc.IPAddress)
	assert.Equal(t, "Firefox", rc.Browser)
	assert.Equal(t, Unknown, rc.Device)
	assert.Equal(t, Unknown, rc.OS)
	assert.Equal(t, Unknown, rc.Location)
	assert.Equal(t, Unknown, rc.DeviceName)
}

func TestNewRecord(t *testing.T) {
	res, err := result.New("SCI/CSC/19/1234", "CSC301", "2023/2024", shared.FirstSemester, 300, 20, 45, grading.ResolveDefault(65))
	require.NoError(t, err)

	before := res.Snap()
	require.NoError(t, res.ApplyScores(25, 50, grading.ResolveDefault(75)))
	after := res.Snap()

	actor := shared.Actor{ID: "lect-1", Name: "A. Bello", Role: shared.RoleLecturer}
	rec := NewRecord(AlterationUpdate, res, before, after, actor, RequestContext{})

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, res.ID, rec.ResultID)
	assert.Equal(t, 65.0, rec.Before.TotalScore)
	assert.Equal(t, "B", rec.Before.Grade)
	assert.Equal(t, 75.0, rec.After.TotalScore)
	assert.Equal(t, "A", rec.After.Grade)
	assert.Equal(t, shared.RoleLecturer, rec.ActorRole)
	assert.Equal(t, Unknown, rec.Context.IPAddress)
	assert.True(t, rec.Changed())
}

func TestRecord_ChangedDetectsNoopUpdate(t *testing.T) {
	res, err := result.New("SCI/CSC/19/1234", "CSC301", "2023/2024", shared.FirstSemester, 300, 20, 45, grading.ResolveDefault(65))
	require.NoError(t, err)

	snap := res.Snap()
	actor := shared.Actor{ID: "lect-1", Role: shared.RoleLecturer}

	same := NewRecord(AlterationUpdate, res, snap, snap, actor, RequestContext{})
	assert.False(t, same.Changed())

	created := NewRecord(AlterationCreate, res, result.Snapshot{}, snap, actor, RequestContext{})
	assert.True(t, created.Changed())
}
