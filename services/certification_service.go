package services

import (
	"log"
	"time"

	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/models"
	"github.com/mwangikibui/cert_track/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CertificationState is the single authoritative status every surface reads;
// no caller recomputes it locally.
type CertificationState string

const (
	StateNotEnrolled  CertificationState = "not_enrolled"
	StateEnrolled     CertificationState = "enrolled"
	StateInProgress   CertificationState = "in_progress"
	StateReadyForExam CertificationState = "ready_for_exam"
	StateExamFailed   CertificationState = "exam_failed"
	StateCertified    CertificationState = "certified"
	StateExpired      CertificationState = "expired"
	StateReissued     CertificationState = "reissued"
)

type CertificateView struct {
	Number          string    `json:"number"`
	IssuedAt        time.Time `json:"issued_at"`
	ExpiresAt       time.Time `json:"expires_at"`
	Status          string    `json:"status"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
	DocumentURL     *string   `json:"document_url,omitempty"`
	BadgeURL        *string   `json:"badge_url,omitempty"`
}

type CertificationView struct {
	TrackID          uuid.UUID          `json:"track_id"`
	TrackName        string             `json:"track_name"`
	State            CertificationState `json:"state"`
	EnrollmentStatus string             `json:"enrollment_status,omitempty"`
	OverallProgress  int                `json:"overall_progress"`
	ExamStatus       string             `json:"exam_status,omitempty"`
	RemainingRegular int                `json:"remaining_regular"`
	RemainingAddon   int                `json:"remaining_addon"`
	Certificate      *CertificateView   `json:"certificate,omitempty"`
}

// DeriveState computes the certification state as a pure function of the
// learner's records and the reference day. Certificate dates win over the
// stored exam status so a reissued (exam status reset) learner still shows as
// certified while the new certificate is valid.
func DeriveState(enrollment *models.Enrollment, overall, threshold int, latest *models.Certificate, certCount int, today time.Time) CertificationState {
	if enrollment == nil {
		return StateNotEnrolled
	}

	if latest != nil {
		status, _ := CertificateStatus(latest.ExpiresAt, today)
		if status != models.CertificateExpired {
			if certCount > 1 {
				return StateReissued
			}
			return StateCertified
		}
		if enrollment.ExamStatus == models.ExamFailed {
			return failedState(enrollment)
		}
		return StateExpired
	}

	switch enrollment.ExamStatus {
	case models.ExamPassed:
		// Certificate missing for a passed exam; CertificationStatus
		// self-heals before deriving, so this is the honest answer.
		return StateCertified
	case models.ExamFailed:
		return failedState(enrollment)
	}

	switch {
	case overall >= threshold:
		return StateReadyForExam
	case overall > 0:
		return StateInProgress
	default:
		return StateEnrolled
	}
}

// failedState resolves a failed exam status at derive time. An addon purchase
// does not rewrite the stored status; holding purchased attempts is what
// makes the learner ready for the exam again.
func failedState(enrollment *models.Enrollment) CertificationState {
	if enrollment.RemainingAddon > 0 {
		return StateReadyForExam
	}
	return StateExamFailed
}

// CertificationStatus assembles the one view of a learner's standing on a
// track that every UI surface consumes. A passed exam with no certificate row
// is repaired here by lazily issuing the missing certificate.
func CertificationStatus(learnerID, trackID uuid.UUID) (*CertificationView, error) {
	var track models.CertificationTrack
	if err := database.DB.First(&track, "id = ?", trackID).Error; err != nil {
		return nil, ErrTrackNotFound
	}

	var enrollment models.Enrollment
	err := database.DB.Preload("Track").Preload("Learner").
		Where("learner_id = ? AND track_id = ?", learnerID, trackID).
		First(&enrollment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &CertificationView{TrackID: trackID, TrackName: track.Name, State: StateNotEnrolled}, nil
		}
		return nil, err
	}
	refreshEnrollmentStatus(database.DB, &enrollment)

	overall, err := TrackProgress(database.DB, learnerID, trackID)
	if err != nil {
		return nil, err
	}

	latest, certCount, err := certificateHistory(database.DB, enrollment.ID)
	if err != nil {
		return nil, err
	}

	if enrollment.ExamStatus == models.ExamPassed && latest == nil {
		latest, err = healMissingCertificate(&enrollment)
		if err != nil {
			return nil, err
		}
		certCount = 1
	}

	view := &CertificationView{
		TrackID:          trackID,
		TrackName:        track.Name,
		State:            DeriveState(&enrollment, overall, track.EligibilityThreshold, latest, certCount, time.Now()),
		EnrollmentStatus: enrollment.Status,
		OverallProgress:  overall,
		ExamStatus:       enrollment.ExamStatus,
		RemainingRegular: enrollment.RemainingRegular,
		RemainingAddon:   enrollment.RemainingAddon,
	}

	if latest != nil {
		status, days := CertificateStatus(latest.ExpiresAt, time.Now())
		view.Certificate = &CertificateView{
			Number:          latest.Number,
			IssuedAt:        latest.IssuedAt,
			ExpiresAt:       latest.ExpiresAt,
			Status:          status,
			DaysUntilExpiry: days,
			DocumentURL:     latest.DocumentURL,
			BadgeURL:        latest.BadgeURL,
		}
	}

	return view, nil
}

// ReissueCertificate runs the paid reissue transition: a fresh certificate
// with a new validity window, plus a reset exam status and the track's
// reissue attempt budget for the next certification cycle. The verified
// payment, when given, is recorded in the same transaction before anything is
// issued, so a replayed reference aborts the whole reissue.
func ReissueCertificate(learnerID, trackID uuid.UUID, payment *models.Payment) (*models.Certificate, error) {
	var issued *models.Certificate
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		enrollment, err := loadEnrollment(tx, learnerID, trackID)
		if err != nil {
			return err
		}

		if payment != nil {
			payment.EnrollmentID = enrollment.ID
			if err := recordPayment(tx, payment); err != nil {
				return err
			}
		}

		latest, err := LatestCertificate(tx, enrollment.ID)
		if err != nil {
			return err
		}
		if latest == nil {
			return ErrNoCertificate
		}
		if status, _ := CertificateStatus(latest.ExpiresAt, time.Now()); status != models.CertificateExpired {
			return ErrCertificateNotLapsed
		}

		issued, err = IssueCertificate(tx, enrollment, &enrollment.Track)
		if err != nil {
			return err
		}

		enrollment.ExamStatus = models.ExamNotAttempted
		enrollment.RemainingRegular = enrollment.Track.ReissueAttempts
		enrollment.RemainingAddon = 0
		return tx.Save(enrollment).Error
	})
	if err != nil {
		return nil, err
	}

	go FinishCertificateArtifacts(issued.ID)
	websocket.Push(learnerID, "certificate_issued", map[string]interface{}{
		"track_id":           trackID.String(),
		"certificate_number": issued.Number,
		"reissue":            true,
	})
	return issued, nil
}

func certificateHistory(tx *gorm.DB, enrollmentID uuid.UUID) (*models.Certificate, int, error) {
	var count int64
	if err := tx.Model(&models.Certificate{}).Where("enrollment_id = ?", enrollmentID).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, 0, nil
	}
	latest, err := LatestCertificate(tx, enrollmentID)
	if err != nil {
		return nil, 0, err
	}
	return latest, int(count), nil
}

func healMissingCertificate(enrollment *models.Enrollment) (*models.Certificate, error) {
	log.Printf("⚠️ Enrollment %s passed the exam but has no certificate, issuing one now", enrollment.ID)

	var issued *models.Certificate
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		issued, err = IssueCertificate(tx, enrollment, &enrollment.Track)
		return err
	})
	if err != nil {
		return nil, err
	}

	go FinishCertificateArtifacts(issued.ID)
	return issued, nil
}
