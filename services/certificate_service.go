package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/mwangikibui/cert_track/configs"
	"github.com/mwangikibui/cert_track/badges"
	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/models"
	"github.com/mwangikibui/cert_track/utils"
	"gorm.io/gorm"
)

// A certificate counts as expiring_soon within this many months of expiry.
const expiringSoonMonths = 3

// CertificateStatus derives a certificate's display status purely from its
// expiry date and a reference day; nothing is stored. It also returns the
// exact number of days until expiry (negative once past).
func CertificateStatus(expiresAt, today time.Time) (string, int) {
	expiry := truncateToDay(expiresAt)
	day := truncateToDay(today)
	daysUntilExpiry := int(expiry.Sub(day).Hours() / 24)

	switch {
	case day.After(expiry):
		return models.CertificateExpired, daysUntilExpiry
	case !day.Before(expiry.AddDate(0, -expiringSoonMonths, 0)):
		return models.CertificateExpiringSoon, daysUntilExpiry
	default:
		return models.CertificateActive, daysUntilExpiry
	}
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IssueCertificate creates the certificate row for an enrollment inside the
// caller's transaction. Validity runs from today for the track's configured
// number of years. Rendering the PDF and requesting the external badge happen
// later, outside the transaction.
func IssueCertificate(tx *gorm.DB, enrollment *models.Enrollment, track *models.CertificationTrack) (*models.Certificate, error) {
	number, err := utils.GenerateCertificateNumber(tx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cert := models.Certificate{
		ID:           uuid.New(),
		EnrollmentID: enrollment.ID,
		LearnerID:    enrollment.LearnerID,
		TrackID:      track.ID,
		Number:       number,
		IssuedAt:     now,
		ExpiresAt:    now.AddDate(track.ValidityYears, 0, 0),
	}
	if err := tx.Create(&cert).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

// LatestCertificate returns the current (most recently issued) certificate
// for an enrollment, or nil if none exists.
func LatestCertificate(tx *gorm.DB, enrollmentID uuid.UUID) (*models.Certificate, error) {
	var cert models.Certificate
	err := tx.Where("enrollment_id = ?", enrollmentID).Order("issued_at DESC").First(&cert).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &cert, nil
}

// FinishCertificateArtifacts renders the certificate PDF, uploads it, and
// requests the external badge, storing whichever URLs come back. Meant to run
// in a goroutine after the issuing transaction commits; failures are logged
// and retried on the next issuance-free pass, never surfaced to the learner.
func FinishCertificateArtifacts(certID uuid.UUID) {
	var cert models.Certificate
	if err := database.DB.Preload("Learner").Preload("Track").First(&cert, "id = ?", certID).Error; err != nil {
		log.Printf("🔥 Certificate %s vanished before artifact generation: %v", certID, err)
		return
	}

	if cert.DocumentURL == nil {
		html, err := renderCertificateHTML(&cert)
		if err != nil {
			log.Printf("🔥 Failed to render certificate HTML for %s: %v", cert.Number, err)
		} else if pdf, err := renderPDF(html); err != nil {
			log.Printf("🔥 Failed to render certificate PDF for %s: %v", cert.Number, err)
		} else if url, err := uploadCertificatePDF(pdf, &cert); err != nil {
			log.Printf("🔥 Failed to upload certificate PDF for %s: %v", cert.Number, err)
		} else {
			database.DB.Model(&cert).Update("document_url", url)
		}
	}

	if cert.BadgeURL == nil {
		badgeURL, err := badges.RequestBadge(cert.Learner.FullName, cert.Learner.Email, cert.Track.Name, cert.Number, cert.ExpiresAt)
		if err != nil {
			log.Printf("🔥 Badge issuance request failed for %s: %v", cert.Number, err)
		} else if badgeURL != "" {
			database.DB.Model(&cert).Update("badge_url", badgeURL)
		}
	}
}

func renderCertificateHTML(cert *models.Certificate) (string, error) {
	tmpl, err := template.ParseFiles("templates/certificate.html")
	if err != nil {
		return "", err
	}

	data := struct {
		LearnerName       string
		TrackName         string
		CertificateNumber string
		IssuedDate        string
		ExpiryDate        string
	}{
		LearnerName:       cert.Learner.FullName,
		TrackName:         cert.Track.Name,
		CertificateNumber: cert.Number,
		IssuedDate:        cert.IssuedAt.Format("January 2, 2006"),
		ExpiryDate:        cert.ExpiresAt.Format("January 2, 2006"),
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func renderPDF(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadCertificatePDF(fileBytes []byte, cert *models.Certificate) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("certificates/%s", cert.Number),
		Folder:       "cert_track_certificates",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
