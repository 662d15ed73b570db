package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/models"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestCertificateStatusDateBoundaries(t *testing.T) {
	// Issued 2023-01-15 with three years of validity.
	expiresAt := day(2026, time.January, 15)

	cases := []struct {
		today      time.Time
		wantStatus string
		wantDays   int
	}{
		{day(2025, time.October, 14), models.CertificateActive, 93},
		{day(2025, time.October, 15), models.CertificateExpiringSoon, 92},
		{day(2025, time.November, 1), models.CertificateExpiringSoon, 75},
		{day(2026, time.January, 15), models.CertificateExpiringSoon, 0},
		{day(2026, time.January, 16), models.CertificateExpired, -1},
		{day(2026, time.March, 1), models.CertificateExpired, -45},
	}
	for _, tc := range cases {
		status, days := CertificateStatus(expiresAt, tc.today)
		require.Equal(t, tc.wantStatus, status, "today=%s", tc.today.Format("2006-01-02"))
		require.Equal(t, tc.wantDays, days, "today=%s", tc.today.Format("2006-01-02"))
	}
}

func TestDeriveState(t *testing.T) {
	today := day(2026, time.June, 1)
	valid := &models.Certificate{ExpiresAt: day(2028, time.June, 1)}
	lapsed := &models.Certificate{ExpiresAt: day(2026, time.January, 1)}

	enrolled := func(examStatus string) *models.Enrollment {
		return &models.Enrollment{Status: models.EnrollmentActive, ExamStatus: examStatus}
	}
	replenished := func(examStatus string) *models.Enrollment {
		e := enrolled(examStatus)
		e.RemainingAddon = 2
		return e
	}

	cases := []struct {
		name       string
		enrollment *models.Enrollment
		overall    int
		latest     *models.Certificate
		certCount  int
		want       CertificationState
	}{
		{"no enrollment", nil, 0, nil, 0, StateNotEnrolled},
		{"fresh enrollment", enrolled(models.ExamNotAttempted), 0, nil, 0, StateEnrolled},
		{"partway through", enrolled(models.ExamNotAttempted), 40, nil, 0, StateInProgress},
		{"all modules done", enrolled(models.ExamNotAttempted), 100, nil, 0, StateReadyForExam},
		{"failed, no certificate", enrolled(models.ExamFailed), 100, nil, 0, StateExamFailed},
		{"failed, attempts purchased", replenished(models.ExamFailed), 100, nil, 0, StateReadyForExam},
		{"passed, certificate valid", enrolled(models.ExamPassed), 100, valid, 1, StateCertified},
		{"certificate lapsed", enrolled(models.ExamNotAttempted), 100, lapsed, 1, StateExpired},
		{"lapsed then failed retake", enrolled(models.ExamFailed), 100, lapsed, 1, StateExamFailed},
		{"reissued certificate valid", enrolled(models.ExamNotAttempted), 100, valid, 2, StateReissued},
	}
	for _, tc := range cases {
		got := DeriveState(tc.enrollment, tc.overall, 100, tc.latest, tc.certCount, today)
		require.Equal(t, tc.want, got, tc.name)
	}
}

func TestCertificationStatusThroughTheLifecycle(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	track, modules := createTrack(t, 2)

	view, err := CertificationStatus(learner.ID, track.ID)
	require.NoError(t, err)
	require.Equal(t, StateNotEnrolled, view.State)

	enrollLearner(t, learner, track)
	view, err = CertificationStatus(learner.ID, track.ID)
	require.NoError(t, err)
	require.Equal(t, StateEnrolled, view.State)
	require.Equal(t, 2, view.RemainingRegular)

	completeAllModules(t, learner, modules[:1])
	view, err = CertificationStatus(learner.ID, track.ID)
	require.NoError(t, err)
	require.Equal(t, StateInProgress, view.State)
	require.Equal(t, 50, view.OverallProgress)

	completeAllModules(t, learner, modules[1:])
	view, err = CertificationStatus(learner.ID, track.ID)
	require.NoError(t, err)
	require.Equal(t, StateReadyForExam, view.State)

	_, err = RecordExamResult(learner.ID, track.ID, false)
	require.NoError(t, err)
	view, err = CertificationStatus(learner.ID, track.ID)
	require.NoError(t, err)
	require.Equal(t, StateExamFailed, view.State)

	_, err = RecordExamResult(learner.ID, track.ID, true)
	require.NoError(t, err)
	view, err = CertificationStatus(learner.ID, track.ID)
	require.NoError(t, err)
	require.Equal(t, StateCertified, view.State)
	require.NotNil(t, view.Certificate)
	require.Equal(t, models.CertificateActive, view.Certificate.Status)
	require.InDelta(t, 365*track.ValidityYears, view.Certificate.DaysUntilExpiry, 2)

	_, err = CertificationStatus(learner.ID, uuid.New())
	require.ErrorIs(t, err, ErrTrackNotFound)
}

func TestCertificationStatusHealsMissingCertificate(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	track, modules := createTrack(t, 1)
	enrollment := enrollLearner(t, learner, track)
	completeAllModules(t, learner, modules)

	// A passed exam whose certificate write was lost.
	require.NoError(t, database.DB.Model(&models.Enrollment{}).Where("id = ?", enrollment.ID).
		Update("exam_status", models.ExamPassed).Error)

	view, err := CertificationStatus(learner.ID, track.ID)
	require.NoError(t, err)
	require.Equal(t, StateCertified, view.State)
	require.NotNil(t, view.Certificate)

	var count int64
	require.NoError(t, database.DB.Model(&models.Certificate{}).
		Where("enrollment_id = ?", enrollment.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestReissueCertificate(t *testing.T) {
	setupTestDB(t)
	learner := createLearner(t)
	track, modules := createTrack(t, 1)
	enrollLearner(t, learner, track)
	completeAllModules(t, learner, modules)

	// Nothing to reissue before any certificate exists.
	_, err := ReissueCertificate(learner.ID, track.ID, nil)
	require.ErrorIs(t, err, ErrNoCertificate)

	outcome, err := RecordExamResult(learner.ID, track.ID, true)
	require.NoError(t, err)

	// A still-valid certificate cannot be reissued.
	_, err = ReissueCertificate(learner.ID, track.ID, nil)
	require.ErrorIs(t, err, ErrCertificateNotLapsed)

	// Lapse the certificate, then reissue.
	require.NoError(t, database.DB.Model(&models.Certificate{}).Where("id = ?", outcome.Certificate.ID).
		Updates(map[string]interface{}{
			"issued_at":  time.Now().AddDate(-3, 0, -1),
			"expires_at": time.Now().AddDate(0, 0, -1),
		}).Error)

	view, err := CertificationStatus(learner.ID, track.ID)
	require.NoError(t, err)
	require.Equal(t, StateExpired, view.State)

	issued, err := ReissueCertificate(learner.ID, track.ID, nil)
	require.NoError(t, err)
	require.NotEqual(t, outcome.Certificate.Number, issued.Number)

	view, err = CertificationStatus(learner.ID, track.ID)
	require.NoError(t, err)
	require.Equal(t, StateReissued, view.State)
	require.Equal(t, issued.Number, view.Certificate.Number, "the latest certificate is the current one")
	require.Equal(t, models.ExamNotAttempted, view.ExamStatus)
	require.Equal(t, track.ReissueAttempts, view.RemainingRegular)
	require.Equal(t, 0, view.RemainingAddon)
}
