package services

import (
	"github.com/mwangikibui/cert_track/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// recordPayment inserts the verified payment inside the caller's transaction.
// A reference that was already redeemed aborts the transaction, so the paid
// transition it funds never runs twice. The unique index on reference backs
// this up against concurrent redemptions.
func recordPayment(tx *gorm.DB, payment *models.Payment) error {
	var count int64
	if err := tx.Model(&models.Payment{}).Where("reference = ?", payment.Reference).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicatePayment
	}

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return tx.Create(payment).Error
}
