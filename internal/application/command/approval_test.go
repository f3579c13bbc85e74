package command

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

func seedResults(t *testing.T, env *testEnv, matrics ...string) {
	t.Helper()
	h := env.upsertHandler()
	for _, matric := range matrics {
		cmd := upsertCmd(lecturerActor, 20, 40)
		cmd.Matric = matric
		_, err := h.Handle(context.Background(), cmd)
		require.NoError(t, err)
	}
}

func TestLockCourseResults(t *testing.T) {
	env := newTestEnv()
	seedResults(t, env, "SCI/CSC/19/1001", "SCI/CSC/19/1002", "SCI/CSC/19/1003")
	h := NewLockCourseResultsHandler(env.uow, env.publisher)

	out, err := h.Handle(context.Background(), LockCourseResultsCommand{
		CourseCode: "CSC301",
		Session:    "2023/2024",
		Actor:      lecturerActor,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Locked)
	assert.Equal(t, 3, out.Total)
	assert.Len(t, env.publisher.byType(shared.EventCourseLocked), 1)

	// a second lock touches nothing
	out, err = h.Handle(context.Background(), LockCourseResultsCommand{
		CourseCode: "CSC301",
		Session:    "2023/2024",
		Actor:      lecturerActor,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Locked)
	assert.Equal(t, 3, out.Total)
}

func TestLockCourseResults_UnassignedLecturerForbidden(t *testing.T) {
	env := newTestEnv()
	seedResults(t, env, "SCI/CSC/19/1001")
	h := NewLockCourseResultsHandler(env.uow, env.publisher)

	_, err := h.Handle(context.Background(), LockCourseResultsCommand{
		CourseCode: "CSC301",
		Session:    "2023/2024",
		Actor:      strangerActor,
	})
	assert.True(t, shared.IsPermission(err))
}

func TestLockCourseResults_EmptyCourseRejected(t *testing.T) {
	env := newTestEnv()
	h := NewLockCourseResultsHandler(env.uow, env.publisher)

	_, err := h.Handle(context.Background(), LockCourseResultsCommand{
		CourseCode: "CSC301",
		Session:    "2023/2024",
		Actor:      lecturerActor,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestUnlockCourseResults(t *testing.T) {
	env := newTestEnv()
	seedResults(t, env, "SCI/CSC/19/1001", "SCI/CSC/19/1002")
	ctx := context.Background()

	lock := NewLockCourseResultsHandler(env.uow, env.publisher)
	_, err := lock.Handle(ctx, LockCourseResultsCommand{CourseCode: "CSC301", Session: "2023/2024", Actor: lecturerActor})
	require.NoError(t, err)

	unlock := NewUnlockCourseResultsHandler(env.uow, env.publisher)

	// lecturers may not unlock
	_, err = unlock.Handle(ctx, UnlockCourseResultsCommand{CourseCode: "CSC301", Session: "2023/2024", Actor: lecturerActor})
	assert.True(t, shared.IsPermission(err))

	out, err := unlock.Handle(ctx, UnlockCourseResultsCommand{CourseCode: "CSC301", Session: "2023/2024", Actor: hodActor})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Unlocked)

	// nothing left to unlock
	_, err = unlock.Handle(ctx, UnlockCourseResultsCommand{CourseCode: "CSC301", Session: "2023/2024", Actor: hodActor})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestFinalApproveCourse_StrictLockCount(t *testing.T) {
	env := newTestEnv()
	seedResults(t, env, "SCI/CSC/19/1001", "SCI/CSC/19/1002", "SCI/CSC/19/1003")
	ctx := context.Background()

	// lock only two of three by hand
	locked := 0
	for _, res := range env.results.results {
		if locked == 2 {
			break
		}
		res.Lock("lect-1")
		locked++
	}

	h := NewFinalApproveCourseHandler(env.uow, env.publisher)
	_, err := h.Handle(ctx, FinalApproveCourseCommand{CourseCode: "CSC301", Session: "2023/2024", Actor: hodActor})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.True(t, strings.Contains(err.Error(), "2 of 3"), "gap must be reported with the count: %v", err)

	// lock the last one and approve
	for _, res := range env.results.results {
		res.Lock("lect-1")
	}
	out, err := h.Handle(ctx, FinalApproveCourseCommand{CourseCode: "CSC301", Session: "2023/2024", Actor: hodActor})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Total)

	crs, err := env.courses.GetByCode(ctx, "CSC301")
	require.NoError(t, err)
	assert.True(t, crs.IsApproved)
	assert.Equal(t, hodActor.ID, crs.ApprovedBy)
	assert.Len(t, env.publisher.byType(shared.EventCourseFinalApproved), 1)

	// approval is terminal
	_, err = h.Handle(ctx, FinalApproveCourseCommand{CourseCode: "CSC301", Session: "2023/2024", Actor: hodActor})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestFinalApproveCourse_LecturerForbidden(t *testing.T) {
	env := newTestEnv()
	h := NewFinalApproveCourseHandler(env.uow, env.publisher)

	_, err := h.Handle(context.Background(), FinalApproveCourseCommand{
		CourseCode: "CSC301",
		Session:    "2023/2024",
		Actor:      lecturerActor,
	})
	assert.True(t, shared.IsPermission(err))
}
