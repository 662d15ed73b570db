package services

import (
	"time"

	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/models"
	"github.com/mwangikibui/cert_track/notifications"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enroll creates the learner's enrollment in a track, seeding the final-exam
// attempt budget from the track's configuration. Enrolling twice returns the
// existing record untouched.
func Enroll(learnerID, trackID uuid.UUID) (*models.Enrollment, error) {
	var track models.CertificationTrack
	if err := database.DB.First(&track, "id = ?", trackID).Error; err != nil {
		return nil, ErrTrackNotFound
	}

	var existing models.Enrollment
	err := database.DB.Where("learner_id = ? AND track_id = ?", learnerID, trackID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	enrollment := models.Enrollment{
		ID:               uuid.New(),
		LearnerID:        learnerID,
		TrackID:          trackID,
		Status:           models.EnrollmentActive,
		EnrolledAt:       time.Now(),
		RemainingRegular: track.RegularAttempts,
		ExamStatus:       models.ExamNotAttempted,
	}
	if err := database.DB.Create(&enrollment).Error; err != nil {
		return nil, err
	}

	var learner models.User
	if err := database.DB.First(&learner, "id = ?", learnerID).Error; err == nil {
		go notifications.SendEmail(learner.FullName, learner.Email,
			"Welcome to "+track.Name,
			"<h1>Welcome!</h1><p>You are now enrolled in <b>"+track.Name+"</b>. Work through the course modules to unlock the final exam.</p>")
	}

	return &enrollment, nil
}
