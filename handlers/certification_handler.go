package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mwangikibui/cert_track/middleware"
	"github.com/mwangikibui/cert_track/services"
)

func mapServiceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case services.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case services.IsPrecondition(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
	}
}

func GetCertificationStatus(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	trackID, err := uuid.Parse(c.Params("trackId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid track id"})
	}

	view, err := services.CertificationStatus(learnerID, trackID)
	if err != nil {
		return mapServiceError(c, err, "Failed to derive certification status")
	}
	return c.JSON(view)
}

func GetExamEligibility(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	trackID, err := uuid.Parse(c.Params("trackId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid track id"})
	}

	eligibility, err := services.ExamEligibility(learnerID, trackID)
	if err != nil {
		return mapServiceError(c, err, "Failed to check exam eligibility")
	}
	return c.JSON(eligibility)
}

type ExamResultRequest struct {
	LearnerID string `json:"learner_id" validate:"required,uuid4"`
	TrackID   string `json:"track_id" validate:"required,uuid4"`
	Passed    *bool  `json:"passed" validate:"required"`
}

// RecordExamResult receives the outcome of a proctored final-exam sitting.
// Only admin credentials (the proctoring integration) may post results.
func RecordExamResult(c *fiber.Ctx) error {
	var req ExamResultRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	learnerID, err := uuid.Parse(req.LearnerID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid learner id"})
	}
	trackID, err := uuid.Parse(req.TrackID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid track id"})
	}

	outcome, err := services.RecordExamResult(learnerID, trackID, *req.Passed)
	if err != nil {
		if errors.Is(err, services.ErrNotEnrolled) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return mapServiceError(c, err, "Failed to record exam result")
	}

	return c.JSON(outcome)
}
