package models

import (
	"time"

	"github.com/google/uuid"
)

// TestAttempt is only written once the attempt is finalized; in-progress
// answers live in memory inside the attempt engine.
type TestAttempt struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	LearnerID  uuid.UUID `gorm:"type:uuid;not null;index" json:"learner_id"`
	MockTestID uuid.UUID `gorm:"type:uuid;not null;index" json:"mock_test_id"`

	StartedAt   time.Time `gorm:"not null" json:"started_at"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
	Score       int       `gorm:"not null" json:"score"`
	Passed      bool      `gorm:"not null" json:"passed"`
	AutoSubmit  bool      `gorm:"not null;default:false" json:"auto_submit"`

	Answers []AttemptAnswer `gorm:"foreignkey:TestAttemptID" json:"answers,omitempty"`

	Learner  User     `gorm:"foreignkey:LearnerID" json:"-"`
	MockTest MockTest `gorm:"foreignkey:MockTestID" json:"-"`
}
