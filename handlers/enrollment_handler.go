package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/middleware"
	"github.com/mwangikibui/cert_track/models"
	"github.com/mwangikibui/cert_track/services"
)

func EnrollInTrack(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	trackID, err := uuid.Parse(c.Params("trackId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid track id"})
	}

	enrollment, err := services.Enroll(learnerID, trackID)
	if err != nil {
		if errors.Is(err, services.ErrTrackNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to enroll"})
	}

	return c.Status(fiber.StatusCreated).JSON(enrollment)
}

// ListMyEnrollments returns every enrollment together with its derived
// certification view, so the dashboard never recomputes status client-side.
func ListMyEnrollments(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	var enrollments []models.Enrollment
	if err := database.DB.Preload("Track").Where("learner_id = ?", learnerID).Find(&enrollments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	type EnrollmentView struct {
		Enrollment    models.Enrollment           `json:"enrollment"`
		Certification *services.CertificationView `json:"certification"`
	}

	views := make([]EnrollmentView, 0, len(enrollments))
	for _, enrollment := range enrollments {
		certification, err := services.CertificationStatus(learnerID, enrollment.TrackID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to derive certification status"})
		}
		views = append(views, EnrollmentView{Enrollment: enrollment, Certification: certification})
	}

	return c.JSON(views)
}
