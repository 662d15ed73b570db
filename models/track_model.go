package models

import (
	"time"

	"github.com/google/uuid"
)

// CertificationTrack defines one certification program: its curriculum,
// exam rules and certificate validity window.
type CertificationTrack struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"size:255;not null;unique" json:"name"`
	Description string    `gorm:"type:text" json:"description"`

	ValidityYears        int `gorm:"not null;default:3" json:"validity_years"`
	PassingScore         int `gorm:"not null;default:70" json:"passing_score"`
	RegularAttempts      int `gorm:"not null;default:2" json:"regular_attempts"`
	ReissueAttempts      int `gorm:"not null;default:3" json:"reissue_attempts"`
	EligibilityThreshold int `gorm:"not null;default:100" json:"eligibility_threshold"`

	Modules []CourseModule `gorm:"foreignkey:TrackID" json:"modules,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
