package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/middleware"
	"github.com/mwangikibui/cert_track/models"
	"github.com/mwangikibui/cert_track/services"
)

type certificateResponse struct {
	Number          string  `json:"number"`
	TrackName       string  `json:"track_name"`
	IssuedAt        string  `json:"issued_at"`
	ExpiresAt       string  `json:"expires_at"`
	Status          string  `json:"status"`
	DaysUntilExpiry int     `json:"days_until_expiry"`
	DocumentURL     *string `json:"document_url,omitempty"`
	BadgeURL        *string `json:"badge_url,omitempty"`
}

func toCertificateResponse(cert models.Certificate, trackName string) certificateResponse {
	status, days := services.CertificateStatus(cert.ExpiresAt, time.Now())
	return certificateResponse{
		Number:          cert.Number,
		TrackName:       trackName,
		IssuedAt:        cert.IssuedAt.Format("2006-01-02"),
		ExpiresAt:       cert.ExpiresAt.Format("2006-01-02"),
		Status:          status,
		DaysUntilExpiry: days,
		DocumentURL:     cert.DocumentURL,
		BadgeURL:        cert.BadgeURL,
	}
}

func ListMyCertificates(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	var certs []models.Certificate
	if err := database.DB.Preload("Track").Where("learner_id = ?", learnerID).Order("issued_at DESC").Find(&certs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	responses := make([]certificateResponse, len(certs))
	for i, cert := range certs {
		responses[i] = toCertificateResponse(cert, cert.Track.Name)
	}
	return c.JSON(responses)
}

// VerifyCertificate is the public lookup employers use: certificate number in,
// validity out. No authentication required.
func VerifyCertificate(c *fiber.Ctx) error {
	number := c.Params("number")

	var cert models.Certificate
	err := database.DB.Preload("Track").Preload("Learner").Where("number = ?", number).First(&cert).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Certificate not found"})
	}

	status, days := services.CertificateStatus(cert.ExpiresAt, time.Now())
	return c.JSON(fiber.Map{
		"number":            cert.Number,
		"holder":            cert.Learner.FullName,
		"track":             cert.Track.Name,
		"issued_at":         cert.IssuedAt.Format("2006-01-02"),
		"expires_at":        cert.ExpiresAt.Format("2006-01-02"),
		"status":            status,
		"days_until_expiry": days,
		"valid":             status != models.CertificateExpired,
	})
}
