package models

import "github.com/google/uuid"

// SelectedOption is -1 when the question was left unanswered.
type AttemptAnswer struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TestAttemptID uuid.UUID `gorm:"type:uuid;not null;index" json:"test_attempt_id"`
	QuestionID    uuid.UUID `gorm:"type:uuid;not null" json:"question_id"`

	QuestionIndex  int  `gorm:"not null" json:"question_index"`
	SelectedOption int  `gorm:"not null;default:-1" json:"selected_option"`
	IsCorrect      bool `gorm:"not null" json:"is_correct"`
}
