package models

import "github.com/google/uuid"

// Options is a JSON-encoded array of option texts; CorrectOption is the
// zero-based index into it.
type Question struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	QuestionText  string    `gorm:"type:text;not null" json:"question_text"`
	Options       string    `gorm:"type:text;not null" json:"options"`
	CorrectOption int       `gorm:"not null" json:"-"`
}
