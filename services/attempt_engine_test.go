package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/models"
	"github.com/stretchr/testify/require"
)

func TestScoreAnswers(t *testing.T) {
	key := []int{1, 3, 2, 0}

	require.Equal(t, 75, ScoreAnswers([]int{1, -1, 2, 0}, key), "unanswered counts as wrong")
	require.Equal(t, 100, ScoreAnswers([]int{1, 3, 2, 0}, key))
	require.Equal(t, 0, ScoreAnswers([]int{-1, -1, -1, -1}, key))
	require.Equal(t, 0, ScoreAnswers(nil, nil))
	require.Equal(t, 33, ScoreAnswers([]int{2, 0, -1}, []int{2, 1, 0}))
}

// correctOptionsByID maps each question of a created test to its answer key
// entry, so tests stay valid regardless of the order questions are preloaded
// in.
func correctOptionsByID(test models.MockTest) map[uuid.UUID]int {
	byID := make(map[uuid.UUID]int, len(test.Questions))
	for _, q := range test.Questions {
		byID[q.ID] = q.CorrectOption
	}
	return byID
}

func TestSubmitAttemptScoresAndPersistsOnce(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	test := createMockTest(t, []int{1, 3, 2, 0}, 70)
	key := correctOptionsByID(test)

	view, err := StartAttempt(learner.ID, test.ID)
	require.NoError(t, err)
	require.Len(t, view.Questions, 4)
	require.Equal(t, []int{-1, -1, -1, -1}, view.Answers)

	// Answer three questions correctly, leave the one keyed on option 3
	// unanswered.
	for i, q := range view.Questions {
		if key[q.ID] == 3 {
			continue
		}
		require.NoError(t, SelectAnswer(learner.ID, view.AttemptID, i, key[q.ID]))
	}

	result, err := SubmitAttempt(learner.ID, view.AttemptID)
	require.NoError(t, err)
	require.Equal(t, 75, result.Score)
	require.True(t, result.Passed)
	require.False(t, result.AutoSubmitted)

	// A duplicate submit returns the identical result without writing a
	// second record.
	again, err := SubmitAttempt(learner.ID, view.AttemptID)
	require.NoError(t, err)
	require.Equal(t, result, again)

	var attempts []models.TestAttempt
	require.NoError(t, database.DB.Find(&attempts).Error)
	require.Len(t, attempts, 1)
	require.Equal(t, 75, attempts[0].Score)
	require.True(t, attempts[0].Passed)
	require.False(t, attempts[0].AutoSubmit)

	var answers []models.AttemptAnswer
	require.NoError(t, database.DB.Where("test_attempt_id = ?", view.AttemptID).Find(&answers).Error)
	require.Len(t, answers, 4)
	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		} else {
			require.Equal(t, -1, a.SelectedOption)
		}
	}
	require.Equal(t, 3, correct)
}

func TestSelectAnswerAfterFinalizeIsRejected(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	test := createMockTest(t, []int{0, 1}, 50)

	view, err := StartAttempt(learner.ID, test.ID)
	require.NoError(t, err)

	_, err = SubmitAttempt(learner.ID, view.AttemptID)
	require.NoError(t, err)

	err = SelectAnswer(learner.ID, view.AttemptID, 0, 0)
	require.ErrorIs(t, err, ErrAttemptFinalized)
}

func TestAutoSubmitWinsOverLateManualSubmit(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	test := createMockTest(t, []int{0, 1}, 50)
	key := correctOptionsByID(test)

	view, err := StartAttempt(learner.ID, test.ID)
	require.NoError(t, err)
	for i, q := range view.Questions {
		require.NoError(t, SelectAnswer(learner.ID, view.AttemptID, i, key[q.ID]))
	}

	// The timer fires first; the learner's submit arrives after and must
	// get the auto-submitted result back.
	autoSubmit(view.AttemptID)

	result, err := SubmitAttempt(learner.ID, view.AttemptID)
	require.NoError(t, err)
	require.Equal(t, 100, result.Score)
	require.True(t, result.AutoSubmitted)

	var count int64
	require.NoError(t, database.DB.Model(&models.TestAttempt{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestStartAttemptResumesRunningAttempt(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	test := createMockTest(t, []int{2, 2, 2}, 70)

	first, err := StartAttempt(learner.ID, test.ID)
	require.NoError(t, err)
	require.False(t, first.Resumed)
	require.NoError(t, SelectAnswer(learner.ID, first.AttemptID, 1, 2))

	second, err := StartAttempt(learner.ID, test.ID)
	require.NoError(t, err)
	require.True(t, second.Resumed)
	require.Equal(t, first.AttemptID, second.AttemptID)
	require.Equal(t, []int{-1, 2, -1}, second.Answers)
	require.WithinDuration(t, first.Deadline, second.Deadline, time.Second)

	// Index i must still mean the same question, or the saved answers (and
	// any later SelectAnswer) would pair with the wrong ones.
	for i := range first.Questions {
		require.Equal(t, first.Questions[i].ID, second.Questions[i].ID)
	}
}

func TestAttemptLookupErrors(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	test := createMockTest(t, []int{0}, 50)

	_, err := StartAttempt(learner.ID, uuid.New())
	require.ErrorIs(t, err, ErrTestNotFound)

	view, err := StartAttempt(learner.ID, test.ID)
	require.NoError(t, err)

	// Another learner cannot touch this attempt.
	stranger := createLearner(t)
	require.ErrorIs(t, SelectAnswer(stranger.ID, view.AttemptID, 0, 0), ErrAttemptNotFound)
	_, err = SubmitAttempt(stranger.ID, view.AttemptID)
	require.ErrorIs(t, err, ErrAttemptNotFound)

	_, err = SubmitAttempt(learner.ID, uuid.New())
	require.ErrorIs(t, err, ErrAttemptNotFound)
}
