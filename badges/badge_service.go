package badges

import (
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	config "github.com/mwangikibui/cert_track/configs"
)

// The badge platform (Credly-style) owns the issuance protocol; we only send
// the issuance request and keep the accept URL it hands back.

type badgeRequest struct {
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	BadgeTemplate  string `json:"badge_template"`
	IssuedTo       string `json:"issued_to"`
	ExpiresAt      string `json:"expires_at"`
}

type badgeResponse struct {
	Data struct {
		ID        string `json:"id"`
		AcceptURL string `json:"accept_badge_url"`
		State     string `json:"state"`
	} `json:"data"`
}

// RequestBadge asks the external platform to issue a badge for a certificate
// and returns the accept URL, or "" when the platform accepted the request
// but has not produced a URL yet.
func RequestBadge(learnerName, learnerEmail, trackName, certificateNumber string, expiresAt time.Time) (string, error) {
	baseURL := config.Config("BADGE_API_URL")
	apiKey := config.Config("BADGE_API_KEY")
	if baseURL == "" || apiKey == "" {
		log.Println("⚠️ Badge platform not configured, skipping badge issuance.")
		return "", nil
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json").
		SetBasicAuth(apiKey, "")

	var result badgeResponse
	resp, err := client.R().
		SetBody(badgeRequest{
			RecipientName:  learnerName,
			RecipientEmail: learnerEmail,
			BadgeTemplate:  trackName,
			IssuedTo:       certificateNumber,
			ExpiresAt:      expiresAt.Format(time.RFC3339),
		}).
		SetResult(&result).
		Post("/v1/badges")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("badge platform returned %s: %s", resp.Status(), resp.String())
	}

	log.Printf("✅ Badge issuance requested for certificate %s (state %s)", certificateNumber, result.Data.State)
	return result.Data.AcceptURL, nil
}
