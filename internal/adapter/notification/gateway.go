// Package notification delivers customer notifications over email and SMS.
package notification

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/gofunds/internal/domain"
)

// EmailChannel sends a single email.
type EmailChannel interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSChannel sends a single text message.
type SMSChannel interface {
	SendSMS(ctx context.Context, phone, text string) error
}

// Gateway implements usecase.NotificationGateway by sending the email and the SMS of a
// notification concurrently. Either channel may be nil.
type Gateway struct {
	email  EmailChannel
	sms    SMSChannel
	logger zerolog.Logger
}

// NewGateway creates a new Gateway.
func NewGateway(email EmailChannel, sms SMSChannel, logger zerolog.Logger) *Gateway {
	return &Gateway{email: email, sms: sms, logger: logger}
}

func (g *Gateway) SendSubscriptionConfirmation(ctx context.Context, n domain.Notification) error {
	return g.send(ctx, n, subscriptionMessage(n))
}

func (g *Gateway) SendCancellationConfirmation(ctx context.Context, n domain.Notification) error {
	return g.send(ctx, n, cancellationMessage(n))
}

// send returns the joined errors of every channel that failed.
func (g *Gateway) send(ctx context.Context, n domain.Notification, msg Message) error {
	var (
		eg       errgroup.Group
		emailErr error
		smsErr   error
	)

	if g.email != nil && n.Email != "" {
		eg.Go(func() error {
			emailErr = g.email.SendEmail(ctx, n.Email, msg.Subject, msg.Body)
			return nil
		})
	}
	if g.sms != nil && n.Phone != "" {
		eg.Go(func() error {
			smsErr = g.sms.SendSMS(ctx, n.Phone, msg.SMS)
			return nil
		})
	}
	_ = eg.Wait()

	if err := errors.Join(emailErr, smsErr); err != nil {
		return err
	}

	g.logger.Debug().Str("reference", n.Reference).Str("subject", msg.Subject).Msg("notification delivered")
	return nil
}
