package notification

import (
	"context"

	"github.com/rs/zerolog"
)

// LogChannel writes notifications to the log instead of delivering them.
// It satisfies both EmailChannel and SMSChannel.
type LogChannel struct {
	logger zerolog.Logger
}

// NewLogChannel creates a new LogChannel.
func NewLogChannel(logger zerolog.Logger) *LogChannel {
	return &LogChannel{logger: logger}
}

func (l *LogChannel) SendEmail(_ context.Context, to, subject, body string) error {
	l.logger.Info().
		Str("channel", "email").
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("email sent")
	return nil
}

func (l *LogChannel) SendSMS(_ context.Context, phone, text string) error {
	l.logger.Info().
		Str("channel", "sms").
		Str("to", phone).
		Str("text", text).
		Msg("sms sent")
	return nil
}
