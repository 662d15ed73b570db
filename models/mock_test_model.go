package models

import (
	"time"

	"github.com/google/uuid"
)

type MockTest struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	TrackID         *uuid.UUID `gorm:"type:uuid;index" json:"track_id,omitempty"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	DurationMinutes int        `gorm:"not null" json:"duration_minutes"`
	PassingScore    int        `gorm:"not null;default:70" json:"passing_score"`

	Questions []*Question `gorm:"many2many:mock_test_questions;" json:"questions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
