package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	config "github.com/anjiri1684/tutor_connect/configs"
	"github.com/rs/zerolog/log"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// Mailer delivers one HTML email.
type Mailer interface {
	Send(ctx context.Context, toName, toEmail, subject, htmlContent string) error
}

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string

	endpoint string
	client   *http.Client
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// NewMailerFromEnv builds the mailer from BREVO_API_KEY, EMAIL_SENDER and
// EMAIL_SENDER_NAME.
func NewMailerFromEnv() Mailer {
	return NewMailer(config.Config("BREVO_API_KEY"), config.Config("EMAIL_SENDER"), config.Config("EMAIL_SENDER_NAME"))
}

// NewMailer returns a Brevo mailer, or a LogMailer when Brevo is not configured.
func NewMailer(apiKey, senderEmail, senderName string) Mailer {
	if apiKey == "" || senderEmail == "" || senderName == "" {
		log.Warn().Msg("⚠️ Email service not configured. Missing API Key, Sender Email, or Sender Name.")
		return LogMailer{}
	}
	log.Info().Str("sender", senderEmail).Msg("✅ Email service initialized successfully.")
	return &BrevoService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
		endpoint:    brevoEndpoint,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *BrevoService) Send(ctx context.Context, toName, toEmail, subject, htmlContent string) error {
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:strings.Index(toEmail, "@")]
	}

	payload := brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("failed to send email via Brevo: status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	log.Info().Str("to", toEmail).Str("subject", subject).Msg("✅ Email sent successfully")
	return nil
}

// LogMailer only logs what would have been sent.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, toName, toEmail, subject, _ string) error {
	log.Info().Str("to", toEmail).Str("name", toName).Str("subject", subject).Msg("email not sent, mailer disabled")
	return nil
}
