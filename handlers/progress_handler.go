package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/middleware"
	"github.com/mwangikibui/cert_track/services"
)

func GetModuleProgress(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	moduleID, err := uuid.Parse(c.Params("moduleId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid module id"})
	}

	progress, status := services.GetModuleProgress(learnerID, moduleID)
	return c.JSON(fiber.Map{"progress": progress, "status": status})
}

func GetTrackProgress(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	trackID, err := uuid.Parse(c.Params("trackId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid track id"})
	}

	overall, err := services.TrackProgress(database.DB, learnerID, trackID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute progress"})
	}
	return c.JSON(fiber.Map{"overall_progress": overall})
}

func MarkModuleCompleted(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	moduleID, err := uuid.Parse(c.Params("moduleId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid module id"})
	}

	overall, err := services.MarkModuleCompleted(learnerID, moduleID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrModuleNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrNotEnrolled):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update progress"})
		}
	}

	return c.JSON(fiber.Map{"overall_progress": overall})
}

type ProgressUpdateRequest struct {
	Progress int `json:"progress" validate:"gte=0,lte=100"`
}

// UpdateModuleProgress records partial progress from content consumption
// (video position, pages read). Module status flips to completed only at 100.
func UpdateModuleProgress(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	moduleID, err := uuid.Parse(c.Params("moduleId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid module id"})
	}

	var req ProgressUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	overall, err := services.SetModuleProgress(learnerID, moduleID, req.Progress)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrModuleNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrNotEnrolled):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update progress"})
		}
	}

	return c.JSON(fiber.Map{"overall_progress": overall})
}
