package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gofunds/internal/domain"
)

type sentEmail struct{ to, subject, body string }

type fakeChannel struct {
	mu     sync.Mutex
	emails []sentEmail
	sms    []string
	err    error
}

func (f *fakeChannel) SendEmail(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, sentEmail{to, subject, body})
	return f.err
}

func (f *fakeChannel) SendSMS(_ context.Context, phone, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sms = append(f.sms, phone+": "+text)
	return f.err
}

func sampleNotification() domain.Notification {
	return domain.Notification{
		OccurredAt:   time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Email:        "ana@example.com",
		Phone:        "+573001234567",
		CustomerName: "Ana Gomez",
		FundName:     "FPV_BTG_PACTUAL_RECAUDADORA",
		Reference:    "01ARZ3ND",
		Amount:       decimal.NewFromInt(1250000),
	}
}

func TestGateway_SubscriptionConfirmation(t *testing.T) {
	email := &fakeChannel{}
	sms := &fakeChannel{}
	g := NewGateway(email, sms, zerolog.Nop())

	require.NoError(t, g.SendSubscriptionConfirmation(context.Background(), sampleNotification()))

	require.Len(t, email.emails, 1)
	sent := email.emails[0]
	assert.Equal(t, "ana@example.com", sent.to)
	assert.Equal(t, "Fund Subscription Confirmation", sent.subject)
	assert.Contains(t, sent.body, "Dear Ana Gomez,")
	assert.Contains(t, sent.body, "- Amount: $1,250,000.00 COP")
	assert.Contains(t, sent.body, "- Date: 2024-03-15 10:30:00 UTC")
	assert.Contains(t, sent.body, "CeibaFunds Team")

	require.Len(t, sms.sms, 1)
	assert.Equal(t,
		"+573001234567: CeibaFunds: Your subscription to FPV_BTG_PACTUAL_RECAUDADORA for $1,250,000.00 COP has been confirmed. Reference: 01ARZ3ND",
		sms.sms[0])
}

func TestGateway_CancellationConfirmation(t *testing.T) {
	ch := &fakeChannel{}
	g := NewGateway(ch, ch, zerolog.Nop())

	n := sampleNotification()
	n.Amount = decimal.RequireFromString("75000.5")
	require.NoError(t, g.SendCancellationConfirmation(context.Background(), n))

	require.Len(t, ch.emails, 1)
	assert.Equal(t, "Fund Subscription Cancellation Confirmation", ch.emails[0].subject)
	assert.Contains(t, ch.emails[0].body, "- Refund Amount: $75,000.50 COP")
	assert.Contains(t, ch.emails[0].body, "credited to your account balance")

	require.Len(t, ch.sms, 1)
	assert.True(t, strings.HasSuffix(ch.sms[0], "Refund of $75,000.50 COP processed. Reference: 01ARZ3ND"))
}

func TestGateway_JoinsChannelErrors(t *testing.T) {
	emailErr := errors.New("smtp down")
	smsErr := errors.New("gateway down")
	g := NewGateway(&fakeChannel{err: emailErr}, &fakeChannel{err: smsErr}, zerolog.Nop())

	err := g.SendSubscriptionConfirmation(context.Background(), sampleNotification())
	require.Error(t, err)
	assert.ErrorIs(t, err, emailErr)
	assert.ErrorIs(t, err, smsErr)
}

func TestGateway_OneChannelFailing(t *testing.T) {
	sms := &fakeChannel{}
	g := NewGateway(&fakeChannel{err: errors.New("smtp down")}, sms, zerolog.Nop())

	err := g.SendSubscriptionConfirmation(context.Background(), sampleNotification())
	assert.EqualError(t, err, "smtp down")
	// the other channel still ran
	assert.Len(t, sms.sms, 1)
}

func TestGateway_SkipsMissingChannelsAndContacts(t *testing.T) {
	email := &fakeChannel{}
	g := NewGateway(email, nil, zerolog.Nop())

	n := sampleNotification()
	require.NoError(t, g.SendSubscriptionConfirmation(context.Background(), n))
	assert.Len(t, email.emails, 1)

	n.Email = ""
	require.NoError(t, g.SendSubscriptionConfirmation(context.Background(), n))
	assert.Len(t, email.emails, 1)
}

func TestLogChannel(t *testing.T) {
	var buf strings.Builder
	l := NewLogChannel(zerolog.New(&buf))

	require.NoError(t, l.SendEmail(context.Background(), "ana@example.com", "subject", "body"))
	require.NoError(t, l.SendSMS(context.Background(), "+573001234567", "hello"))

	out := buf.String()
	assert.Contains(t, out, `"channel":"email"`)
	assert.Contains(t, out, `"channel":"sms"`)
	assert.Contains(t, out, `"to":"+573001234567"`)
}
