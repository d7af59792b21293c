package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type party struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      party   `json:"sender"`
	To          []party `json:"to"`
	Subject     string  `json:"subject"`
	HTMLContent string  `json:"htmlContent"`
}

// BrevoMailer posts transactional messages to a Brevo-compatible
// /smtp/email endpoint authenticated with an api-key header.
type BrevoMailer struct {
	baseURL     string
	apiKey      string
	senderName  string
	senderEmail string
	client      *http.Client
}

func NewBrevoMailer(baseURL, apiKey, senderName, senderEmail string) *BrevoMailer {
	return &BrevoMailer{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		senderName:  senderName,
		senderEmail: senderEmail,
		client:      &http.Client{Timeout: 20 * time.Second},
	}
}

func (m *BrevoMailer) SendValidationCode(ctx context.Context, toEmail, toName, code string) error {
	body := sendRequest{
		Sender:  party{Name: m.senderName, Email: m.senderEmail},
		To:      []party{{Email: toEmail, Name: toName}},
		Subject: "Validation code",
		HTMLContent: fmt.Sprintf(
			"<html><head></head><body><hr><p>Code: %s</p><hr></body></html>", code),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("mail payload error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/smtp/email", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("mail request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail send error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail send error: unexpected status %d", resp.StatusCode)
	}

	return nil
}
