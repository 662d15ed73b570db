package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/models"
	"github.com/mwangikibui/cert_track/notifications"
)

// Reminder emails go out when a certificate is exactly this many days from
// expiry. Certification status itself is derived at read time; these jobs are
// notification and bookkeeping only.
var reminderDays = []int{90, 30, 7}

func SendCertificateExpiryReminders() {
	log.Println("Running job: SendCertificateExpiryReminders...")

	for _, days := range reminderDays {
		target := time.Now().AddDate(0, 0, days)
		dayStart := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
		dayEnd := dayStart.AddDate(0, 0, 1)

		var certs []models.Certificate
		err := database.DB.
			Preload("Learner").
			Preload("Track").
			Where("expires_at >= ? AND expires_at < ?", dayStart, dayEnd).
			Find(&certs).Error
		if err != nil {
			log.Printf("Error checking for expiring certificates: %v", err)
			continue
		}

		for _, cert := range certs {
			log.Printf("Sending %d-day expiry reminder for certificate %s", days, cert.Number)
			subject := fmt.Sprintf("Your %s certificate expires in %d days", cert.Track.Name, days)
			body := fmt.Sprintf(
				"<h1>Certificate Expiry Reminder</h1><p>Hi %s,</p><p>Your certificate <b>%s</b> for %s expires on %s. Reissue it to keep your certification active.</p>",
				cert.Learner.FullName, cert.Number, cert.Track.Name, cert.ExpiresAt.Format("January 2, 2006"),
			)
			go notifications.SendEmail(cert.Learner.FullName, cert.Learner.Email, subject, body)
		}
	}
}

// SweepExpiredEnrollments flips active enrollments whose expiry date has
// passed. The same detection happens lazily on read; the sweep just keeps
// admin listings honest for learners who never come back.
func SweepExpiredEnrollments() {
	log.Println("Running job: SweepExpiredEnrollments...")

	result := database.DB.Model(&models.Enrollment{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.EnrollmentActive, time.Now()).
		Update("status", models.EnrollmentExpired)
	if result.Error != nil {
		log.Printf("Error sweeping expired enrollments: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("✅ Marked %d enrollments as expired", result.RowsAffected)
	}
}
