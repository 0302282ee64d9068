package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultAPIURL = "https://api.brevo.com/v3/smtp/email"

// Mailer dispatches password-reset OTP codes.
type Mailer interface {
	SendOTP(ctx context.Context, toEmail, name, otp string) error
}

// BrevoClient sends transactional email through the Brevo API.
type BrevoClient struct {
	apiKey     string
	fromEmail  string
	fromName   string
	apiURL     string
	httpClient *http.Client
	configured bool
}

// NewBrevoClient builds the client; it is marked configured only when all
// credentials are present.
func NewBrevoClient(apiKey, fromEmail, fromName string) *BrevoClient {
	c := &BrevoClient{
		apiURL:     defaultAPIURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if apiKey != "" && fromEmail != "" && fromName != "" {
		c.apiKey = apiKey
		c.fromEmail = fromEmail
		c.fromName = fromName
		c.configured = true
	}
	return c
}

// IsConfigured reports whether the client holds working credentials.
func (c *BrevoClient) IsConfigured() bool {
	return c.configured
}

type sendEmailReq struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HtmlContent string              `json:"htmlContent"`
}

// SendOTP emails a password-reset code.
func (c *BrevoClient) SendOTP(ctx context.Context, toEmail, name, otp string) error {
	subject := "Password Reset OTP"
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your password reset OTP is <b>%s</b>. It is valid for 5 minutes.</p>",
		name, otp,
	)
	return c.send(ctx, toEmail, subject, html)
}

func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if !c.configured {
		return fmt.Errorf("brevo client not configured, email to %s skipped", toEmail)
	}
	if toEmail == "" || subject == "" || html == "" {
		return errors.New("toEmail, subject, and html content cannot be empty")
	}

	reqBody := sendEmailReq{
		Sender:      map[string]string{"email": c.fromEmail, "name": c.fromName},
		To:          []map[string]string{{"email": toEmail}},
		Subject:     subject,
		HtmlContent: html,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal email request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request for Brevo: %w", err)
	}
	httpReq.Header.Set("api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("brevo send email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorBody map[string]interface{}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errorBody); decodeErr != nil {
			return fmt.Errorf("brevo API error: status %d, failed to decode error body: %v", resp.StatusCode, decodeErr)
		}
		return fmt.Errorf("brevo API error: status %d, body: %v", resp.StatusCode, errorBody)
	}
	return nil
}
