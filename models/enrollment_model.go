package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EnrollmentActive    = "active"
	EnrollmentSuspended = "suspended"
	EnrollmentExpired   = "expired"
	EnrollmentAdmin     = "admin"
)

const (
	ExamNotAttempted  = "not_attempted"
	ExamPassed        = "passed"
	ExamFailed        = "failed"
	ExamNotApplicable = "not_applicable"
)

// Enrollment ties a learner to a certification track. It also carries the
// learner's final-exam attempt budget, initialized from the track at
// enrollment time. Enrollments are never hard-deleted; their status is the
// whole lifecycle.
type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_learner_track" json:"learner_id"`
	TrackID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_learner_track" json:"track_id"`

	Status     string     `gorm:"size:20;not null;default:'active'" json:"status"`
	EnrolledAt time.Time  `gorm:"not null" json:"enrolled_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`

	RemainingRegular int    `gorm:"not null;default:0" json:"remaining_regular"`
	RemainingAddon   int    `gorm:"not null;default:0" json:"remaining_addon"`
	ExamStatus       string `gorm:"size:20;not null;default:'not_attempted'" json:"exam_status"`

	Learner User               `gorm:"foreignkey:LearnerID" json:"-"`
	Track   CertificationTrack `gorm:"foreignkey:TrackID" json:"track,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
