package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/middleware"
	"github.com/mwangikibui/cert_track/models"
	"github.com/mwangikibui/cert_track/services"
	"gorm.io/gorm"
)

type QuestionRequest struct {
	QuestionText  string   `json:"question_text" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2"`
	CorrectOption int      `json:"correct_option" validate:"gte=0"`
}

func CreateQuestion(c *fiber.Ctx) error {
	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.CorrectOption >= len(req.Options) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "correct_option is out of range"})
	}

	optionsJSON, err := json.Marshal(req.Options)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid options"})
	}

	question := models.Question{
		ID:            uuid.New(),
		QuestionText:  req.QuestionText,
		Options:       string(optionsJSON),
		CorrectOption: req.CorrectOption,
	}

	if err := database.DB.Create(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create question"})
	}

	return c.Status(fiber.StatusCreated).JSON(question)
}

func ListQuestions(c *fiber.Ctx) error {
	var questions []models.Question
	database.DB.Find(&questions)
	return c.JSON(questions)
}

func GetQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")
	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	return c.JSON(question)
}

func UpdateQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")
	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.CorrectOption >= len(req.Options) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "correct_option is out of range"})
	}

	optionsJSON, err := json.Marshal(req.Options)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid options"})
	}

	question.QuestionText = req.QuestionText
	question.Options = string(optionsJSON)
	question.CorrectOption = req.CorrectOption
	database.DB.Save(&question)

	return c.JSON(question)
}

func DeleteQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")
	result := database.DB.Delete(&models.Question{}, "id = ?", questionID)

	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete question"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type MockTestRequest struct {
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description"`
	TrackID         *string  `json:"track_id"`
	DurationMinutes int      `json:"duration_minutes" validate:"required,gt=0"`
	PassingScore    int      `json:"passing_score" validate:"required,gt=0,lte=100"`
	QuestionIDs     []string `json:"question_ids" validate:"required,min=1"`
}

func CreateMockTest(c *fiber.Ctx) error {
	var req MockTestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var questions []*models.Question
	if err := database.DB.Where("id IN ?", req.QuestionIDs).Find(&questions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to find questions"})
	}
	if len(questions) != len(req.QuestionIDs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "One or more provided question IDs are invalid"})
	}

	mockTest := models.MockTest{
		ID:              uuid.New(),
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		PassingScore:    req.PassingScore,
		Questions:       questions,
	}
	if req.TrackID != nil {
		trackID, err := uuid.Parse(*req.TrackID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid track_id"})
		}
		mockTest.TrackID = &trackID
	}

	if err := database.DB.Create(&mockTest).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create mock test"})
	}

	return c.Status(fiber.StatusCreated).JSON(mockTest)
}

func ListMockTests(c *fiber.Ctx) error {
	var tests []models.MockTest
	database.DB.Preload("Questions").Find(&tests)
	return c.JSON(tests)
}

func GetMockTest(c *fiber.Ctx) error {
	testID := c.Params("testId")
	var test models.MockTest
	if err := database.DB.Preload("Questions").First(&test, "id = ?", testID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mock test not found"})
	}
	return c.JSON(test)
}

func UpdateMockTest(c *fiber.Ctx) error {
	testID := c.Params("testId")
	var req MockTestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var mockTest models.MockTest
	if err := database.DB.First(&mockTest, "id = ?", testID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mock test not found"})
	}

	var newQuestions []*models.Question
	if err := database.DB.Where("id IN ?", req.QuestionIDs).Find(&newQuestions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to find new questions"})
	}
	if len(newQuestions) != len(req.QuestionIDs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "One or more new question IDs are invalid"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		mockTest.Title = req.Title
		mockTest.Description = req.Description
		mockTest.DurationMinutes = req.DurationMinutes
		mockTest.PassingScore = req.PassingScore

		if err := tx.Save(&mockTest).Error; err != nil {
			return err
		}

		if err := tx.Model(&mockTest).Association("Questions").Replace(newQuestions); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update mock test"})
	}

	return c.Status(fiber.StatusOK).JSON(mockTest)
}

func DeleteMockTest(c *fiber.Ctx) error {
	testID := c.Params("testId")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var mockTest models.MockTest
		if err := tx.Preload("Questions").First(&mockTest, "id = ?", testID).Error; err != nil {
			return err
		}
		if err := tx.Model(&mockTest).Association("Questions").Clear(); err != nil {
			return err
		}
		if err := tx.Delete(&mockTest).Error; err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete mock test"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func StudentListMockTests(c *fiber.Ctx) error {
	var tests []models.MockTest
	query := database.DB.Select("id", "track_id", "title", "description", "duration_minutes", "passing_score", "created_at")
	if trackID := c.Query("track_id"); trackID != "" {
		query = query.Where("track_id = ?", trackID)
	}
	query.Find(&tests)
	return c.JSON(tests)
}

func StartTestAttempt(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	testID, err := uuid.Parse(c.Params("testId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid test id"})
	}

	view, err := services.StartAttempt(learnerID, testID)
	if err != nil {
		if errors.Is(err, services.ErrTestNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to start test attempt"})
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

type SelectAnswerRequest struct {
	QuestionIndex int `json:"question_index" validate:"gte=0"`
	OptionIndex   int `json:"option_index" validate:"gte=-1"`
}

func SelectAttemptAnswer(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	attemptID, err := uuid.Parse(c.Params("attemptId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attempt id"})
	}

	var req SelectAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := services.SelectAnswer(learnerID, attemptID, req.QuestionIndex, req.OptionIndex); err != nil {
		switch {
		case errors.Is(err, services.ErrAttemptNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrAttemptFinalized):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func SubmitTestAttempt(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	attemptID, err := uuid.Parse(c.Params("attemptId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attempt id"})
	}

	result, err := services.SubmitAttempt(learnerID, attemptID)
	if err != nil {
		if errors.Is(err, services.ErrAttemptNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save results"})
	}

	return c.JSON(fiber.Map{
		"message": "Test submitted successfully",
		"score":   result.Score,
		"passed":  result.Passed,
	})
}

func ListMyTestAttempts(c *fiber.Ctx) error {
	learnerID := middleware.UserID(c)

	var attempts []models.TestAttempt
	database.DB.Where("learner_id = ?", learnerID).Order("completed_at DESC").Find(&attempts)
	return c.JSON(attempts)
}
