package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/middleware"
	"github.com/mwangikibui/cert_track/models"
	"github.com/mwangikibui/cert_track/payments"
	"github.com/mwangikibui/cert_track/services"
)

type AddonPurchaseRequest struct {
	TrackID          string `json:"track_id" validate:"required,uuid4"`
	Quantity         int    `json:"quantity" validate:"required,gt=0"`
	PaymentReference string `json:"payment_reference" validate:"required"`
}

// PurchaseAddonAttempts verifies the gateway payment, then records it and
// credits the attempts in one transaction. A reference can only be redeemed
// once; replaying one aborts the credit.
func PurchaseAddonAttempts(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	var req AddonPurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	trackID, err := uuid.Parse(req.TrackID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid track id"})
	}

	verified, err := payments.VerifyReference(req.PaymentReference)
	if err != nil {
		if errors.Is(err, payments.ErrPaymentNotConfirmed) {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not verify payment"})
	}

	payment := models.Payment{
		ID:        uuid.New(),
		LearnerID: learnerID,
		Reference: verified.Reference,
		Amount:    verified.Amount,
		Currency:  verified.Currency,
		Purpose:   models.PaymentPurposeAddonAttempts,
		Quantity:  req.Quantity,
	}
	enrollment, err := services.AddAddonAttempts(learnerID, trackID, req.Quantity, &payment)
	if err != nil {
		return mapServiceError(c, err, "Failed to credit attempts")
	}

	return c.JSON(fiber.Map{
		"message":           "Attempts credited successfully",
		"remaining_regular": enrollment.RemainingRegular,
		"remaining_addon":   enrollment.RemainingAddon,
	})
}

type ReissueRequest struct {
	TrackID          string `json:"track_id" validate:"required,uuid4"`
	PaymentReference string `json:"payment_reference" validate:"required"`
}

// ReissueCertificate verifies the reissue payment and runs the reissue
// transition: a fresh certificate plus a reset exam budget for the new cycle.
func ReissueCertificate(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	var req ReissueRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	trackID, err := uuid.Parse(req.TrackID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid track id"})
	}

	verified, err := payments.VerifyReference(req.PaymentReference)
	if err != nil {
		if errors.Is(err, payments.ErrPaymentNotConfirmed) {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not verify payment"})
	}

	payment := models.Payment{
		ID:        uuid.New(),
		LearnerID: learnerID,
		Reference: verified.Reference,
		Amount:    verified.Amount,
		Currency:  verified.Currency,
		Purpose:   models.PaymentPurposeReissue,
	}
	cert, err := services.ReissueCertificate(learnerID, trackID, &payment)
	if err != nil {
		return mapServiceError(c, err, "Failed to reissue certificate")
	}

	return c.Status(fiber.StatusCreated).JSON(cert)
}

func ListMyPayments(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	var history []models.Payment
	database.DB.Where("learner_id = ?", learnerID).Order("created_at DESC").Find(&history)
	return c.JSON(history)
}
