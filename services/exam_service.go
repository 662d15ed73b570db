package services

import (
	"fmt"
	"log"
	"time"

	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/models"
	"github.com/mwangikibui/cert_track/notifications"
	"github.com/mwangikibui/cert_track/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Eligibility struct {
	CanAttempt       bool   `json:"can_attempt"`
	Reason           string `json:"reason,omitempty"`
	OverallProgress  int    `json:"overall_progress"`
	RemainingRegular int    `json:"remaining_regular"`
	RemainingAddon   int    `json:"remaining_addon"`
	ExamStatus       string `json:"exam_status"`
}

type ExamOutcome struct {
	Passed           bool                `json:"passed"`
	ExamStatus       string              `json:"exam_status"`
	RemainingRegular int                 `json:"remaining_regular"`
	RemainingAddon   int                 `json:"remaining_addon"`
	Certificate      *models.Certificate `json:"certificate,omitempty"`
}

// ExamEligibility answers whether the learner may sit the final exam right
// now, and why not otherwise. This is the same guard RecordExamResult applies
// before mutating anything, so the UI and the transition can never disagree.
func ExamEligibility(learnerID, trackID uuid.UUID) (*Eligibility, error) {
	enrollment, err := loadEnrollment(database.DB, learnerID, trackID)
	if err != nil {
		return nil, err
	}
	refreshEnrollmentStatus(database.DB, enrollment)

	overall, err := TrackProgress(database.DB, learnerID, trackID)
	if err != nil {
		return nil, err
	}

	cert, err := LatestCertificate(database.DB, enrollment.ID)
	if err != nil {
		return nil, err
	}

	elig := &Eligibility{
		OverallProgress:  overall,
		RemainingRegular: enrollment.RemainingRegular,
		RemainingAddon:   enrollment.RemainingAddon,
		ExamStatus:       enrollment.ExamStatus,
	}

	if reason := attemptGuard(enrollment, overall, cert, time.Now()); reason != nil {
		elig.Reason = reason.Error()
		return elig, nil
	}
	elig.CanAttempt = true
	return elig, nil
}

// attemptGuard is the precondition for consuming a final-exam attempt. It
// runs before any proctoring side effect is triggered; a non-nil return means
// the transition is refused with no state touched.
func attemptGuard(enrollment *models.Enrollment, overall int, cert *models.Certificate, now time.Time) error {
	if enrollment.Status != models.EnrollmentActive && enrollment.Status != models.EnrollmentAdmin {
		return ErrEnrollmentInactive
	}
	if enrollment.ExamStatus == models.ExamPassed {
		return ErrAlreadyCertified
	}
	if cert != nil {
		if status, _ := CertificateStatus(cert.ExpiresAt, now); status != models.CertificateExpired {
			return ErrAlreadyCertified
		}
	}
	if enrollment.RemainingRegular+enrollment.RemainingAddon <= 0 {
		return ErrAttemptsExhausted
	}
	if overall < enrollment.Track.EligibilityThreshold {
		return ErrProgressTooLow
	}
	return nil
}

// RecordExamResult applies the outcome of one final-exam sitting. A pass
// freezes the budget and issues the certificate in the same transaction; a
// fail consumes one attempt, regular before addon.
func RecordExamResult(learnerID, trackID uuid.UUID, passed bool) (*ExamOutcome, error) {
	var outcome ExamOutcome
	var enrollment *models.Enrollment

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		enrollment, err = loadEnrollment(tx, learnerID, trackID)
		if err != nil {
			return err
		}
		refreshEnrollmentStatus(tx, enrollment)

		overall, err := TrackProgress(tx, learnerID, trackID)
		if err != nil {
			return err
		}

		cert, err := LatestCertificate(tx, enrollment.ID)
		if err != nil {
			return err
		}

		if err := attemptGuard(enrollment, overall, cert, time.Now()); err != nil {
			return err
		}

		if passed {
			enrollment.ExamStatus = models.ExamPassed
			issued, err := IssueCertificate(tx, enrollment, &enrollment.Track)
			if err != nil {
				return err
			}
			outcome.Certificate = issued
		} else {
			enrollment.ExamStatus = models.ExamFailed
			if enrollment.RemainingRegular > 0 {
				enrollment.RemainingRegular--
			} else {
				enrollment.RemainingAddon--
			}
		}

		return tx.Save(enrollment).Error
	})
	if err != nil {
		return nil, err
	}

	outcome.Passed = passed
	outcome.ExamStatus = enrollment.ExamStatus
	outcome.RemainingRegular = enrollment.RemainingRegular
	outcome.RemainingAddon = enrollment.RemainingAddon

	if passed && outcome.Certificate != nil {
		go FinishCertificateArtifacts(outcome.Certificate.ID)
		go notifications.SendEmail(enrollment.Learner.FullName, enrollment.Learner.Email,
			"Congratulations, you are certified!",
			fmt.Sprintf("<h1>Congratulations!</h1><p>You passed the %s exam. Your certificate number is <b>%s</b>, valid until %s.</p>",
				enrollment.Track.Name, outcome.Certificate.Number, outcome.Certificate.ExpiresAt.Format("January 2, 2006")))
	} else if !passed && outcome.RemainingRegular+outcome.RemainingAddon == 0 {
		go notifications.SendEmail(enrollment.Learner.FullName, enrollment.Learner.Email,
			"Exam attempts exhausted",
			fmt.Sprintf("<h1>Exam Result</h1><p>You did not pass the %s exam and have 0 attempts remaining. Purchase additional attempts to continue.</p>",
				enrollment.Track.Name))
	}

	data := map[string]interface{}{
		"track_id":          trackID.String(),
		"passed":            passed,
		"remaining_regular": outcome.RemainingRegular,
		"remaining_addon":   outcome.RemainingAddon,
	}
	if outcome.Certificate != nil {
		data["certificate_number"] = outcome.Certificate.Number
	}
	websocket.Push(learnerID, "exam_result_recorded", data)

	return &outcome, nil
}

// AddAddonAttempts credits purchased attempts. The payment row, when given,
// is inserted in the same transaction before the credit, so redeeming a
// reference twice aborts the whole transition. The stored exam status is
// never touched; a replenished budget is what moves a failed learner back to
// ready_for_exam at derive time.
func AddAddonAttempts(learnerID, trackID uuid.UUID, quantity int, payment *models.Payment) (*models.Enrollment, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	var enrollment *models.Enrollment
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		enrollment, err = loadEnrollment(tx, learnerID, trackID)
		if err != nil {
			return err
		}

		if enrollment.ExamStatus == models.ExamPassed {
			return ErrAlreadyCertified
		}

		if payment != nil {
			payment.EnrollmentID = enrollment.ID
			if err := recordPayment(tx, payment); err != nil {
				return err
			}
		}

		enrollment.RemainingAddon += quantity
		return tx.Save(enrollment).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Credited %d addon attempts to learner %s on track %s", quantity, learnerID, trackID)
	websocket.Push(learnerID, "attempts_credited", map[string]interface{}{
		"track_id":          trackID.String(),
		"remaining_regular": enrollment.RemainingRegular,
		"remaining_addon":   enrollment.RemainingAddon,
	})
	return enrollment, nil
}

func loadEnrollment(tx *gorm.DB, learnerID, trackID uuid.UUID) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := tx.Preload("Track").Preload("Learner").
		Where("learner_id = ? AND track_id = ?", learnerID, trackID).
		First(&enrollment).Error
	if err != nil {
		return nil, ErrNotEnrolled
	}
	return &enrollment, nil
}

// refreshEnrollmentStatus performs the read-time expiry detection: an active
// enrollment whose expiry date has passed is flipped to expired and persisted
// before any decision is taken on it.
func refreshEnrollmentStatus(tx *gorm.DB, enrollment *models.Enrollment) {
	if enrollment.Status != models.EnrollmentActive || enrollment.ExpiresAt == nil {
		return
	}
	if time.Now().After(*enrollment.ExpiresAt) {
		enrollment.Status = models.EnrollmentExpired
		if err := tx.Model(&models.Enrollment{}).Where("id = ?", enrollment.ID).
			Update("status", models.EnrollmentExpired).Error; err != nil {
			log.Printf("🔥 Failed to persist expired status for enrollment %s: %v", enrollment.ID, err)
		}
	}
}
