package services

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Each test gets its own named in-memory database so pooled connections all
// see the same data.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.CertificationTrack{},
		&models.CourseModule{},
		&models.Enrollment{},
		&models.ModuleProgress{},
		&models.Question{},
		&models.MockTest{},
		&models.TestAttempt{},
		&models.AttemptAnswer{},
		&models.Certificate{},
		&models.Payment{},
	)
	require.NoError(t, err)

	database.DB = db
}

func createLearner(t *testing.T) models.User {
	t.Helper()

	learner := models.User{
		ID:       uuid.New(),
		FullName: "Jane Learner",
		Email:    fmt.Sprintf("%s@example.com", uuid.New().String()[:8]),
		Password: "hashed",
	}
	require.NoError(t, database.DB.Create(&learner).Error)
	return learner
}

func createTrack(t *testing.T, moduleCount int) (models.CertificationTrack, []models.CourseModule) {
	t.Helper()

	track := models.CertificationTrack{
		ID:                   uuid.New(),
		Name:                 fmt.Sprintf("Track %s", uuid.New().String()[:8]),
		ValidityYears:        3,
		PassingScore:         70,
		RegularAttempts:      2,
		ReissueAttempts:      3,
		EligibilityThreshold: 100,
	}
	require.NoError(t, database.DB.Create(&track).Error)

	modules := make([]models.CourseModule, moduleCount)
	for i := range modules {
		modules[i] = models.CourseModule{
			ID:       uuid.New(),
			TrackID:  track.ID,
			Title:    fmt.Sprintf("Module %d", i+1),
			Position: i,
		}
		require.NoError(t, database.DB.Create(&modules[i]).Error)
	}
	return track, modules
}

func enrollLearner(t *testing.T, learner models.User, track models.CertificationTrack) models.Enrollment {
	t.Helper()

	enrollment, err := Enroll(learner.ID, track.ID)
	require.NoError(t, err)
	return *enrollment
}

func completeAllModules(t *testing.T, learner models.User, modules []models.CourseModule) {
	t.Helper()

	for _, module := range modules {
		_, err := MarkModuleCompleted(learner.ID, module.ID)
		require.NoError(t, err)
	}
}

// createMockTest builds a test whose questions' correct options are exactly
// answerKey, in order.
func createMockTest(t *testing.T, answerKey []int, passingScore int) models.MockTest {
	t.Helper()

	questions := make([]*models.Question, len(answerKey))
	for i, correct := range answerKey {
		options, err := json.Marshal([]string{"Option A", "Option B", "Option C", "Option D"})
		require.NoError(t, err)
		questions[i] = &models.Question{
			ID:            uuid.New(),
			QuestionText:  fmt.Sprintf("Question %d", i+1),
			Options:       string(options),
			CorrectOption: correct,
		}
	}

	test := models.MockTest{
		ID:              uuid.New(),
		Title:           "Practice Exam",
		DurationMinutes: 30,
		PassingScore:    passingScore,
		Questions:       questions,
	}
	require.NoError(t, database.DB.Create(&test).Error)
	return test
}

func expireEnrollment(t *testing.T, enrollment models.Enrollment, ago time.Duration) {
	t.Helper()

	past := time.Now().Add(-ago)
	require.NoError(t, database.DB.Model(&models.Enrollment{}).Where("id = ?", enrollment.ID).
		Updates(map[string]interface{}{"enrolled_at": past.Add(-time.Hour), "expires_at": past}).Error)
}
