package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentPurposeAddonAttempts = "addon_attempts"
	PaymentPurposeReissue       = "reissue"
)

// Payment records a gateway transaction that has already been verified
// externally; the reference must be unique so a transaction can only be
// redeemed once.
type Payment struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	LearnerID    uuid.UUID `gorm:"type:uuid;not null;index" json:"learner_id"`
	EnrollmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"enrollment_id"`

	Reference string  `gorm:"size:100;not null;unique" json:"reference"`
	Amount    float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency  string  `gorm:"size:10;not null" json:"currency"`
	Purpose   string  `gorm:"size:30;not null" json:"purpose"`
	Quantity  int     `gorm:"not null;default:0" json:"quantity"`

	CreatedAt time.Time `json:"created_at"`
}
