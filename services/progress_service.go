package services

import (
	"errors"
	"math"

	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/models"
	"github.com/mwangikibui/cert_track/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OverallProgress is the single definition of course completion: the rounded
// percentage of fully completed modules. Partially completed modules do not
// count until they hit 100.
func OverallProgress(completedModules, totalModules int) int {
	if totalModules == 0 {
		return 0
	}
	return int(math.Round(float64(completedModules) / float64(totalModules) * 100))
}

// GetModuleProgress never fails: a learner who has not touched a module
// simply has zero progress.
func GetModuleProgress(learnerID, moduleID uuid.UUID) (int, string) {
	var record models.ModuleProgress
	err := database.DB.Where("learner_id = ? AND module_id = ?", learnerID, moduleID).First(&record).Error
	if err != nil {
		return 0, models.ModuleNotStarted
	}
	return record.Progress, record.Status
}

// TrackProgress recomputes the overall percentage for a learner's track from
// its module records; it is never read from a stored column.
func TrackProgress(tx *gorm.DB, learnerID, trackID uuid.UUID) (int, error) {
	var totalModules int64
	if err := tx.Model(&models.CourseModule{}).Where("track_id = ?", trackID).Count(&totalModules).Error; err != nil {
		return 0, err
	}

	var completedModules int64
	err := tx.Model(&models.ModuleProgress{}).
		Where("learner_id = ? AND track_id = ? AND status = ?", learnerID, trackID, models.ModuleCompleted).
		Count(&completedModules).Error
	if err != nil {
		return 0, err
	}

	return OverallProgress(int(completedModules), int(totalModules)), nil
}

// MarkModuleCompleted sets a module to 100/completed and returns the
// recomputed overall progress. Re-marking a completed module is a no-op that
// returns the same value.
func MarkModuleCompleted(learnerID, moduleID uuid.UUID) (int, error) {
	return SetModuleProgress(learnerID, moduleID, 100)
}

// SetModuleProgress records a content-consumption update for one module and
// returns the recomputed overall track progress. Progress on a module never
// moves backwards.
func SetModuleProgress(learnerID, moduleID uuid.UUID, percent int) (int, error) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	var module models.CourseModule
	if err := database.DB.First(&module, "id = ?", moduleID).Error; err != nil {
		return 0, ErrModuleNotFound
	}

	var enrollment models.Enrollment
	err := database.DB.Where("learner_id = ? AND track_id = ?", learnerID, module.TrackID).First(&enrollment).Error
	if err != nil {
		return 0, ErrNotEnrolled
	}

	var overall int
	var changed bool
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var record models.ModuleProgress
		err := tx.Where("learner_id = ? AND module_id = ?", learnerID, moduleID).First(&record).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			record = models.ModuleProgress{
				ID:        uuid.New(),
				LearnerID: learnerID,
				ModuleID:  moduleID,
				TrackID:   module.TrackID,
			}
		}

		if percent > record.Progress {
			record.Progress = percent
			record.Status = moduleStatus(percent)
			if err := tx.Save(&record).Error; err != nil {
				return err
			}
			changed = true
		}

		overall, err = TrackProgress(tx, learnerID, module.TrackID)
		return err
	})
	if err != nil {
		return 0, err
	}

	if changed {
		websocket.Push(learnerID, "progress_updated", map[string]interface{}{
			"module_id":        moduleID.String(),
			"track_id":         module.TrackID.String(),
			"overall_progress": overall,
		})
	}

	return overall, nil
}

func moduleStatus(percent int) string {
	switch {
	case percent >= 100:
		return models.ModuleCompleted
	case percent > 0:
		return models.ModuleInProgress
	default:
		return models.ModuleNotStarted
	}
}
