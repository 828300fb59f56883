package notification

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type stubDialer struct {
	sent  []*gomail.Message
	err   error
	block chan struct{}
}

func (d *stubDialer) DialAndSend(m ...*gomail.Message) error {
	if d.block != nil {
		<-d.block
	}
	d.sent = append(d.sent, m...)
	return d.err
}

func TestEmailSender_SendEmail(t *testing.T) {
	d := &stubDialer{}
	s := NewEmailSenderWithDialer(d, "noreply@ceibafunds.com", "CeibaFunds")

	require.NoError(t, s.SendEmail(context.Background(), "ana@example.com", "Hello", "Body text"))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"ana@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Hello"}, m.GetHeader("Subject"))
	assert.Contains(t, m.GetHeader("From")[0], "noreply@ceibafunds.com")

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Body text")
}

func TestEmailSender_DialError(t *testing.T) {
	s := NewEmailSenderWithDialer(&stubDialer{err: errors.New("connection refused")}, "noreply@ceibafunds.com", "")

	err := s.SendEmail(context.Background(), "ana@example.com", "Hello", "Body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestEmailSender_ContextDeadline(t *testing.T) {
	d := &stubDialer{block: make(chan struct{})}
	defer close(d.block)
	s := NewEmailSenderWithDialer(d, "noreply@ceibafunds.com", "")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := s.SendEmail(ctx, "ana@example.com", "Hello", "Body")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
