package models

import (
	"time"

	"github.com/google/uuid"
)

type CourseModule struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TrackID     uuid.UUID `gorm:"type:uuid;not null;index" json:"track_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Position    int       `gorm:"not null;default:0" json:"position"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
