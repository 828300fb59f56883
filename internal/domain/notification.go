package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NotificationKind selects the message template.
type NotificationKind string

const (
	NotificationSubscriptionConfirmation NotificationKind = "subscription_confirmation"
	NotificationCancellationConfirmation NotificationKind = "cancellation_confirmation"
)

// NotificationStatus tracks an outbox job. Sent and failed are terminal.
type NotificationStatus string

const (
	NotificationStatusPending    NotificationStatus = "pending"
	NotificationStatusProcessing NotificationStatus = "processing"
	NotificationStatusSent       NotificationStatus = "sent"
	NotificationStatusFailed     NotificationStatus = "failed"
)

// Notification is the payload handed to the delivery gateway.
type Notification struct {
	OccurredAt   time.Time       `json:"occurred_at"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	CustomerName string          `json:"customer_name"`
	FundName     string          `json:"fund_name"`
	Reference    string          `json:"reference"`
	Amount       decimal.Decimal `json:"amount"`
}

// NotificationJob is a pending delivery written in the same unit of work as the state change.
type NotificationJob struct {
	CreatedAt      time.Time
	ProcessedAt    *time.Time
	ID             string
	Kind           NotificationKind
	CustomerID     string
	SubscriptionID string
	Status         NotificationStatus
	LastError      string
	Payload        Notification
	Attempts       int
}

// NewNotificationJob builds a pending job for the given state change.
func NewNotificationJob(id string, kind NotificationKind, customer Customer, fund Fund, sub Subscription, now time.Time) NotificationJob {
	return NotificationJob{
		ID:             id,
		Kind:           kind,
		CustomerID:     customer.ID,
		SubscriptionID: sub.ID,
		Status:         NotificationStatusPending,
		CreatedAt:      now,
		Payload: Notification{
			Email:        customer.Email,
			Phone:        customer.Phone,
			CustomerName: customer.FullName(),
			FundName:     fund.Name,
			Amount:       sub.Amount,
			Reference:    ReferenceCode(sub.ID),
			OccurredAt:   now,
		},
	}
}

// ReferenceCode derives the short uppercase code quoted to the customer.
func ReferenceCode(id string) string {
	const size = 8
	if len(id) > size {
		id = id[len(id)-size:]
	}
	return strings.ToUpper(id)
}
