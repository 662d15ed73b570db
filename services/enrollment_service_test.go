package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/models"
	"github.com/stretchr/testify/require"
)

func TestEnrollCreatesRecordWithTrackBudget(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	track, _ := createTrack(t, 2)

	enrollment, err := Enroll(learner.ID, track.ID)
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentActive, enrollment.Status)
	require.Equal(t, models.ExamNotAttempted, enrollment.ExamStatus)
	require.Equal(t, track.RegularAttempts, enrollment.RemainingRegular)
	require.Equal(t, 0, enrollment.RemainingAddon)
}

func TestEnrollIsIdempotentPerLearnerAndTrack(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	track, _ := createTrack(t, 1)

	first, err := Enroll(learner.ID, track.ID)
	require.NoError(t, err)

	second, err := Enroll(learner.ID, track.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, database.DB.Model(&models.Enrollment{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestEnrollUnknownTrack(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)

	_, err := Enroll(learner.ID, uuid.New())
	require.ErrorIs(t, err, ErrTrackNotFound)
}
