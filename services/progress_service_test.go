package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mwangikibui/cert_track/models"
	"github.com/stretchr/testify/require"
)

func TestOverallProgressRounding(t *testing.T) {
	cases := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 6, 17},
		{5, 8, 63},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, OverallProgress(tc.completed, tc.total),
			"completed=%d total=%d", tc.completed, tc.total)
	}
}

func TestGetModuleProgressDefaultsWhenUntouched(t *testing.T) {
	setupTestDB(t)

	progress, status := GetModuleProgress(uuid.New(), uuid.New())
	require.Equal(t, 0, progress)
	require.Equal(t, models.ModuleNotStarted, status)
}

func TestMarkModuleCompletedIsIdempotentAndMonotonic(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	track, modules := createTrack(t, 3)
	enrollLearner(t, learner, track)

	overall, err := MarkModuleCompleted(learner.ID, modules[0].ID)
	require.NoError(t, err)
	require.Equal(t, 33, overall)

	// Re-marking a completed module changes nothing.
	overall, err = MarkModuleCompleted(learner.ID, modules[0].ID)
	require.NoError(t, err)
	require.Equal(t, 33, overall)

	overall, err = MarkModuleCompleted(learner.ID, modules[1].ID)
	require.NoError(t, err)
	require.Equal(t, 67, overall)

	overall, err = MarkModuleCompleted(learner.ID, modules[2].ID)
	require.NoError(t, err)
	require.Equal(t, 100, overall)
}

func TestPartialProgressDoesNotCountTowardOverall(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	track, modules := createTrack(t, 3)
	enrollLearner(t, learner, track)

	completeAllModules(t, learner, modules[:2])

	overall, err := SetModuleProgress(learner.ID, modules[2].ID, 50)
	require.NoError(t, err)
	require.Equal(t, 67, overall, "a half-done module is not a completed module")

	progress, status := GetModuleProgress(learner.ID, modules[2].ID)
	require.Equal(t, 50, progress)
	require.Equal(t, models.ModuleInProgress, status)

	// Progress never moves backwards.
	overall, err = SetModuleProgress(learner.ID, modules[2].ID, 20)
	require.NoError(t, err)
	require.Equal(t, 67, overall)

	progress, _ = GetModuleProgress(learner.ID, modules[2].ID)
	require.Equal(t, 50, progress)
}

func TestSetModuleProgressErrors(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	_, modules := createTrack(t, 1)

	_, err := MarkModuleCompleted(learner.ID, uuid.New())
	require.ErrorIs(t, err, ErrModuleNotFound)

	_, err = MarkModuleCompleted(learner.ID, modules[0].ID)
	require.ErrorIs(t, err, ErrNotEnrolled)
}
