package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ModuleNotStarted = "not_started"
	ModuleInProgress = "in_progress"
	ModuleCompleted  = "completed"
)

// ModuleProgress is created on a learner's first interaction with a module.
// Status is completed iff progress is 100.
type ModuleProgress struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_learner_module" json:"learner_id"`
	ModuleID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_learner_module" json:"module_id"`
	TrackID   uuid.UUID `gorm:"type:uuid;not null;index" json:"track_id"`

	Progress int    `gorm:"not null;default:0" json:"progress"`
	Status   string `gorm:"size:20;not null;default:'not_started'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
