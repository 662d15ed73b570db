package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/models"
	"github.com/stretchr/testify/require"
)

func TestExamEligibilityRequiresFullProgress(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	track, modules := createTrack(t, 3)
	enrollLearner(t, learner, track)

	completeAllModules(t, learner, modules[:2])

	elig, err := ExamEligibility(learner.ID, track.ID)
	require.NoError(t, err)
	require.False(t, elig.CanAttempt)
	require.Equal(t, 67, elig.OverallProgress)
	require.Equal(t, ErrProgressTooLow.Error(), elig.Reason)

	_, err = RecordExamResult(learner.ID, track.ID, false)
	require.ErrorIs(t, err, ErrProgressTooLow)

	completeAllModules(t, learner, modules[2:])

	elig, err = ExamEligibility(learner.ID, track.ID)
	require.NoError(t, err)
	require.True(t, elig.CanAttempt)
	require.Empty(t, elig.Reason)
	require.Equal(t, 2, elig.RemainingRegular)
}

func TestFailedExamsConsumeBudgetThenExhaust(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	track, modules := createTrack(t, 2)
	enrollLearner(t, learner, track)
	completeAllModules(t, learner, modules)

	outcome, err := RecordExamResult(learner.ID, track.ID, false)
	require.NoError(t, err)
	require.Equal(t, models.ExamFailed, outcome.ExamStatus)
	require.Equal(t, 1, outcome.RemainingRegular)

	outcome, err = RecordExamResult(learner.ID, track.ID, false)
	require.NoError(t, err)
	require.Equal(t, 0, outcome.RemainingRegular)
	require.Equal(t, 0, outcome.RemainingAddon)

	_, err = RecordExamResult(learner.ID, track.ID, false)
	require.ErrorIs(t, err, ErrAttemptsExhausted)

	elig, err := ExamEligibility(learner.ID, track.ID)
	require.NoError(t, err)
	require.False(t, elig.CanAttempt)
	require.Equal(t, "you have 0 attempts remaining, purchase more to continue", elig.Reason)
}

func TestAddonAttemptsReenableFailedLearner(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	track, modules := createTrack(t, 2)
	enrollLearner(t, learner, track)
	completeAllModules(t, learner, modules)

	for i := 0; i < 2; i++ {
		_, err := RecordExamResult(learner.ID, track.ID, false)
		require.NoError(t, err)
	}

	enrollment, err := AddAddonAttempts(learner.ID, track.ID, 3, nil)
	require.NoError(t, err)
	require.Equal(t, 0, enrollment.RemainingRegular)
	require.Equal(t, 3, enrollment.RemainingAddon)
	require.Equal(t, models.ExamFailed, enrollment.ExamStatus, "a purchase leaves the stored exam status alone")

	// The replenished budget is what moves the learner back to ready.
	view, err := CertificationStatus(learner.ID, track.ID)
	require.NoError(t, err)
	require.Equal(t, StateReadyForExam, view.State)

	// Addon attempts are consumed once regular ones are gone.
	outcome, err := RecordExamResult(learner.ID, track.ID, false)
	require.NoError(t, err)
	require.Equal(t, 0, outcome.RemainingRegular)
	require.Equal(t, 2, outcome.RemainingAddon)

	outcome, err = RecordExamResult(learner.ID, track.ID, true)
	require.NoError(t, err)
	require.True(t, outcome.Passed)
	require.NotNil(t, outcome.Certificate)
}

func TestPassingIssuesCertificateAndFreezesBudget(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	track, modules := createTrack(t, 2)
	enrollLearner(t, learner, track)
	completeAllModules(t, learner, modules)

	outcome, err := RecordExamResult(learner.ID, track.ID, true)
	require.NoError(t, err)
	require.Equal(t, models.ExamPassed, outcome.ExamStatus)
	require.Equal(t, 2, outcome.RemainingRegular, "a pass does not consume an attempt")
	require.NotNil(t, outcome.Certificate)
	require.True(t, strings.HasPrefix(outcome.Certificate.Number, "CT-"))
	require.WithinDuration(t, time.Now().AddDate(track.ValidityYears, 0, 0), outcome.Certificate.ExpiresAt, time.Minute)

	// No further sittings, and no buying attempts, while certified.
	_, err = RecordExamResult(learner.ID, track.ID, false)
	require.ErrorIs(t, err, ErrAlreadyCertified)
	_, err = AddAddonAttempts(learner.ID, track.ID, 1, nil)
	require.ErrorIs(t, err, ErrAlreadyCertified)

	var certCount int64
	require.NoError(t, database.DB.Model(&models.Certificate{}).Count(&certCount).Error)
	require.EqualValues(t, 1, certCount)
}

func TestExpiredEnrollmentCannotSitExam(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	track, modules := createTrack(t, 1)
	enrollment := enrollLearner(t, learner, track)
	completeAllModules(t, learner, modules)

	expireEnrollment(t, enrollment, 24*time.Hour)

	_, err := RecordExamResult(learner.ID, track.ID, false)
	require.ErrorIs(t, err, ErrEnrollmentInactive)

	// The expiry was detected at read time and persisted.
	var stored models.Enrollment
	require.NoError(t, database.DB.First(&stored, "id = ?", enrollment.ID).Error)
	require.Equal(t, models.EnrollmentExpired, stored.Status)
}

func TestAddAddonAttemptsRejectsBadInput(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	track, _ := createTrack(t, 1)
	enrollLearner(t, learner, track)

	_, err := AddAddonAttempts(learner.ID, track.ID, 0, nil)
	require.Error(t, err)
	_, err = AddAddonAttempts(learner.ID, track.ID, -2, nil)
	require.Error(t, err)

	stranger := createLearner(t)
	_, err = AddAddonAttempts(stranger.ID, track.ID, 1, nil)
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func TestReplayedPaymentReferenceDoesNotCreditTwice(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	track, _ := createTrack(t, 1)
	enrollLearner(t, learner, track)

	paymentFor := func(reference string) *models.Payment {
		return &models.Payment{
			ID:        uuid.New(),
			LearnerID: learner.ID,
			Reference: reference,
			Amount:    5000,
			Currency:  "KES",
			Purpose:   models.PaymentPurposeAddonAttempts,
			Quantity:  3,
		}
	}

	enrollment, err := AddAddonAttempts(learner.ID, track.ID, 3, paymentFor("REF-1"))
	require.NoError(t, err)
	require.Equal(t, 3, enrollment.RemainingAddon)

	// Replaying the same reference aborts the whole transition.
	_, err = AddAddonAttempts(learner.ID, track.ID, 3, paymentFor("REF-1"))
	require.ErrorIs(t, err, ErrDuplicatePayment)

	var stored models.Enrollment
	require.NoError(t, database.DB.First(&stored, "id = ?", enrollment.ID).Error)
	require.Equal(t, 3, stored.RemainingAddon, "the replay credited nothing")

	var paymentCount int64
	require.NoError(t, database.DB.Model(&models.Payment{}).Count(&paymentCount).Error)
	require.EqualValues(t, 1, paymentCount)

	// A fresh reference credits normally.
	enrollment, err = AddAddonAttempts(learner.ID, track.ID, 3, paymentFor("REF-2"))
	require.NoError(t, err)
	require.Equal(t, 6, enrollment.RemainingAddon)
}
