package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SMSWebhook posts text messages as JSON to an HTTP gateway.
type SMSWebhook struct {
	client *http.Client
	url    string
	token  string
}

type smsRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// NewSMSWebhook creates an SMSWebhook. token is sent as a bearer token when set.
func NewSMSWebhook(url, token string, timeout time.Duration) *SMSWebhook {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SMSWebhook{
		client: &http.Client{Timeout: timeout},
		url:    url,
		token:  token,
	}
}

func (s *SMSWebhook) SendSMS(ctx context.Context, phone, text string) error {
	payload, err := json.Marshal(smsRequest{To: phone, Message: text})
	if err != nil {
		return fmt.Errorf("failed to encode sms: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "gofunds-notifier/1.0")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
