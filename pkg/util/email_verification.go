package util

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// EmailVerificationResult is the outcome of an external deliverability check
type EmailVerificationResult struct {
	Deliverable bool   `json:"deliverable"`
	Reason      string `json:"reason,omitempty"`
}

// EmailVerifier checks whether an address can actually receive mail.
// Implementations are pluggable; a nil verifier skips the check entirely.
type EmailVerifier interface {
	VerifyEmail(email string) (*EmailVerificationResult, error)
}

// HunterEmailVerifier verifies deliverability via the hunter.io API
type HunterEmailVerifier struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewHunterEmailVerifier(apiKey, baseURL string) *HunterEmailVerifier {
	return &HunterEmailVerifier{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type hunterResponse struct {
	Data struct {
		Status string `json:"status"` // valid, invalid, accept_all, unknown
		Result string `json:"result"` // deliverable, undeliverable, risky
	} `json:"data"`
	Errors []struct {
		Details string `json:"details"`
	} `json:"errors"`
}

// VerifyEmail checks deliverability for an address.
// Without an API key the check auto-passes so local development works offline.
func (v *HunterEmailVerifier) VerifyEmail(email string) (*EmailVerificationResult, error) {
	if v.apiKey == "" {
		return &EmailVerificationResult{Deliverable: true, Reason: "verification skipped (no API key)"}, nil
	}

	endpoint := fmt.Sprintf("%s?email=%s&api_key=%s", v.baseURL, url.QueryEscape(email), v.apiKey)
	resp, err := v.client.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("email verification request failed: %w", err)
	}
	defer resp.Body.Close()

	var body hunterResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode email verification response: %w", err)
	}

	if len(body.Errors) > 0 {
		return nil, fmt.Errorf("email verification provider error: %s", body.Errors[0].Details)
	}

	if body.Data.Result == "undeliverable" {
		return &EmailVerificationResult{
			Deliverable: false,
			Reason:      fmt.Sprintf("address reported %s (%s)", body.Data.Result, body.Data.Status),
		}, nil
	}

	return &EmailVerificationResult{Deliverable: true}, nil
}
