package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Dialer is the part of gomail.Dialer used by EmailSender.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPConfig holds SMTP settings.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// EmailSender sends plain-text email over SMTP.
type EmailSender struct {
	dialer Dialer
	from   string
	name   string
}

// NewEmailSender creates an EmailSender dialing the configured SMTP server.
func NewEmailSender(cfg SMTPConfig) *EmailSender {
	return NewEmailSenderWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.FromAddress, cfg.FromName)
}

// NewEmailSenderWithDialer creates an EmailSender using the given dialer.
func NewEmailSenderWithDialer(dialer Dialer, from, name string) *EmailSender {
	return &EmailSender{dialer: dialer, from: from, name: name}
}

// SendEmail sends one message. gomail has no context support, so ctx only bounds the wait.
func (s *EmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	if s.name != "" {
		m.SetAddressHeader("From", s.from, s.name)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}
