package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OutboundEmail is the delivery API request body.
type OutboundEmail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// DeliveryError is a non-2xx answer from the delivery API.
type DeliveryError struct {
	StatusCode int
	Message    string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("email delivery rejected: status=%d message=%s", e.StatusCode, e.Message)
}

type Mailer interface {
	// Send returns the delivery API's JSON body on success.
	Send(ctx context.Context, email OutboundEmail) (json.RawMessage, error)
}

type resendMailer struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewResendMailer talks to a Resend-compatible API at apiURL.
func NewResendMailer(apiURL, apiKey string) Mailer {
	return &resendMailer{
		apiURL: strings.TrimRight(apiURL, "/"),
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (m *resendMailer) Send(ctx context.Context, email OutboundEmail) (json.RawMessage, error) {
	payload, err := json.Marshal(email)
	if err != nil {
		return nil, fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read email response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, &DeliveryError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("email response is not JSON")
	}
	return body, nil
}
