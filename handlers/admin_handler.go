package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/models"
	"gorm.io/gorm"
)

type TrackRequest struct {
	Name                 string `json:"name" validate:"required"`
	Description          string `json:"description"`
	ValidityYears        int    `json:"validity_years" validate:"required,gt=0"`
	PassingScore         int    `json:"passing_score" validate:"required,gt=0,lte=100"`
	RegularAttempts      int    `json:"regular_attempts" validate:"required,gt=0"`
	ReissueAttempts      int    `json:"reissue_attempts" validate:"required,gt=0"`
	EligibilityThreshold int    `json:"eligibility_threshold" validate:"gte=0,lte=100"`
}

func CreateTrack(c *fiber.Ctx) error {
	var req TrackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	track := models.CertificationTrack{
		ID:                   uuid.New(),
		Name:                 req.Name,
		Description:          req.Description,
		ValidityYears:        req.ValidityYears,
		PassingScore:         req.PassingScore,
		RegularAttempts:      req.RegularAttempts,
		ReissueAttempts:      req.ReissueAttempts,
		EligibilityThreshold: req.EligibilityThreshold,
	}
	if track.EligibilityThreshold == 0 {
		track.EligibilityThreshold = 100
	}

	if err := database.DB.Create(&track).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create track"})
	}

	return c.Status(fiber.StatusCreated).JSON(track)
}

func ListTracks(c *fiber.Ctx) error {
	var tracks []models.CertificationTrack
	database.DB.Preload("Modules", func(db *gorm.DB) *gorm.DB {
		return db.Order("course_modules.position ASC")
	}).Find(&tracks)
	return c.JSON(tracks)
}

func GetTrack(c *fiber.Ctx) error {
	trackID := c.Params("trackId")
	var track models.CertificationTrack
	err := database.DB.Preload("Modules", func(db *gorm.DB) *gorm.DB {
		return db.Order("course_modules.position ASC")
	}).First(&track, "id = ?", trackID).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Track not found"})
	}
	return c.JSON(track)
}

func UpdateTrack(c *fiber.Ctx) error {
	trackID := c.Params("trackId")
	var track models.CertificationTrack
	if err := database.DB.First(&track, "id = ?", trackID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Track not found"})
	}

	var req TrackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	track.Name = req.Name
	track.Description = req.Description
	track.ValidityYears = req.ValidityYears
	track.PassingScore = req.PassingScore
	track.RegularAttempts = req.RegularAttempts
	track.ReissueAttempts = req.ReissueAttempts
	if req.EligibilityThreshold > 0 {
		track.EligibilityThreshold = req.EligibilityThreshold
	}
	database.DB.Save(&track)

	return c.JSON(track)
}

type ModuleRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Position    int    `json:"position" validate:"gte=0"`
}

func CreateModule(c *fiber.Ctx) error {
	trackID := c.Params("trackId")
	var track models.CertificationTrack
	if err := database.DB.First(&track, "id = ?", trackID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Track not found"})
	}

	var req ModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	module := models.CourseModule{
		ID:          uuid.New(),
		TrackID:     track.ID,
		Title:       req.Title,
		Description: req.Description,
		Position:    req.Position,
	}
	if err := database.DB.Create(&module).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create module"})
	}

	return c.Status(fiber.StatusCreated).JSON(module)
}

func UpdateModule(c *fiber.Ctx) error {
	moduleID := c.Params("moduleId")
	var module models.CourseModule
	if err := database.DB.First(&module, "id = ?", moduleID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Module not found"})
	}

	var req ModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	module.Title = req.Title
	module.Description = req.Description
	module.Position = req.Position
	database.DB.Save(&module)

	return c.JSON(module)
}

func DeleteModule(c *fiber.Ctx) error {
	moduleID := c.Params("moduleId")
	result := database.DB.Delete(&models.CourseModule{}, "id = ?", moduleID)

	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete module"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Module not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func ListUsers(c *fiber.Ctx) error {
	var users []models.User
	database.DB.Order("created_at DESC").Find(&users)
	return c.JSON(users)
}

func ManageUser(c *fiber.Ctx) error {
	type MgtRequest struct {
		IsActive *bool `json:"is_active" validate:"required"`
	}

	var req MgtRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID := c.Params("userId")
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	user.IsActive = *req.IsActive
	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}

	return c.JSON(user)
}

func ListEnrollments(c *fiber.Ctx) error {
	var enrollments []models.Enrollment
	query := database.DB.Preload("Learner").Preload("Track").Order("created_at DESC")
	if trackID := c.Query("track_id"); trackID != "" {
		query = query.Where("track_id = ?", trackID)
	}
	query.Find(&enrollments)
	return c.JSON(enrollments)
}

// ManageEnrollment lets an admin suspend/restore an enrollment or set its
// expiry date. Enrollments are never deleted.
func ManageEnrollment(c *fiber.Ctx) error {
	type MgtRequest struct {
		Status    string     `json:"status" validate:"omitempty,oneof=active suspended expired admin"`
		ExpiresAt *time.Time `json:"expires_at"`
	}

	var req MgtRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	enrollmentID := c.Params("enrollmentId")
	var enrollment models.Enrollment
	if err := database.DB.First(&enrollment, "id = ?", enrollmentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found"})
	}

	if req.ExpiresAt != nil {
		if req.ExpiresAt.Before(enrollment.EnrolledAt) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Expiry date cannot be before the enrollment date"})
		}
		enrollment.ExpiresAt = req.ExpiresAt
	}
	if req.Status != "" {
		enrollment.Status = req.Status
	}

	if err := database.DB.Save(&enrollment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update enrollment"})
	}

	return c.JSON(enrollment)
}
