package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CertificateActive       = "active"
	CertificateExpiringSoon = "expiring_soon"
	CertificateExpired      = "expired"
)

// Certificate rows are immutable apart from the externally produced
// DocumentURL/BadgeURL. A reissue creates a new row; the current certificate
// for an enrollment is the most recently issued one.
type Certificate struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EnrollmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"enrollment_id"`
	LearnerID    uuid.UUID `gorm:"type:uuid;not null;index" json:"learner_id"`
	TrackID      uuid.UUID `gorm:"type:uuid;not null" json:"track_id"`

	Number    string    `gorm:"size:40;not null;unique" json:"number"`
	IssuedAt  time.Time `gorm:"not null" json:"issued_at"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`

	DocumentURL *string `gorm:"type:text" json:"document_url,omitempty"`
	BadgeURL    *string `gorm:"type:text" json:"badge_url,omitempty"`

	Learner User               `gorm:"foreignkey:LearnerID" json:"-"`
	Track   CertificationTrack `gorm:"foreignkey:TrackID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
