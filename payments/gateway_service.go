package payments

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	config "github.com/mwangikibui/cert_track/configs"
)

// The payment gateway confirms transactions out of band; the backend only
// verifies a reference the client hands over after checkout. Addon-attempt
// purchases and certificate reissues both go through this check before any
// state transition runs.

var ErrPaymentNotConfirmed = errors.New("payment has not been confirmed, please try again shortly")

type VerifiedPayment struct {
	Reference string
	Amount    float64
	Currency  string
}

type gatewayResponse struct {
	Status string `json:"status"`
	Data   struct {
		Reference string  `json:"reference"`
		Amount    float64 `json:"amount"`
		Currency  string  `json:"currency"`
		Status    string  `json:"status"`
	} `json:"data"`
}

// VerifyReference asks the gateway whether the transaction went through.
func VerifyReference(reference string) (*VerifiedPayment, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, errors.New("payment reference is required")
	}

	baseURL := config.Config("PAYMENT_API_URL")
	secretKey := config.Config("PAYMENT_SECRET_KEY")
	if baseURL == "" || secretKey == "" {
		return nil, errors.New("payment gateway is not configured")
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetAuthToken(secretKey)

	var result gatewayResponse
	resp, err := client.R().
		SetResult(&result).
		SetPathParam("reference", reference).
		Get("/transaction/verify/{reference}")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("payment gateway returned %s: %s", resp.Status(), resp.String())
	}

	if result.Data.Status != "success" {
		log.Printf("Payment %s not confirmed yet (status %q)", reference, result.Data.Status)
		return nil, ErrPaymentNotConfirmed
	}

	return &VerifiedPayment{
		Reference: result.Data.Reference,
		Amount:    result.Data.Amount,
		Currency:  result.Data.Currency,
	}, nil
}
