package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription is a customer's open position in a fund.
// It moves once, irreversibly, from active to cancelled.
type Subscription struct {
	SubscribedAt time.Time
	CancelledAt  *time.Time
	ID           string
	CustomerID   string
	FundID       string
	Status       SubscriptionStatus
	Amount       decimal.Decimal
}

// NewSubscription builds an active subscription.
func NewSubscription(id, customerID, fundID string, amount decimal.Decimal, now time.Time) (Subscription, error) {
	switch {
	case strings.TrimSpace(id) == "":
		return Subscription{}, Validation("subscription id cannot be empty")
	case strings.TrimSpace(customerID) == "":
		return Subscription{}, Validation("customer id cannot be empty")
	case strings.TrimSpace(fundID) == "":
		return Subscription{}, Validation("fund id cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return Subscription{}, Validation("subscription amount must be greater than zero")
	}

	return Subscription{
		ID:           id,
		CustomerID:   customerID,
		FundID:       fundID,
		Amount:       amount,
		SubscribedAt: now,
		Status:       SubscriptionStatusActive,
	}, nil
}

// IsActive holds iff the status is active and no cancellation date is set.
func (s Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive && s.CancelledAt == nil
}

// Cancel returns the cancelled subscription.
func (s Subscription) Cancel(now time.Time) (Subscription, error) {
	if s.Status == SubscriptionStatusCancelled {
		return s, &Error{Kind: KindAlreadyCancelled, Entity: EntitySubscription, ID: s.ID}
	}

	next := s
	next.Status = SubscriptionStatusCancelled
	next.CancelledAt = &now
	return next, nil
}

// Duration is the time the position has been (or was) open.
func (s Subscription) Duration(now time.Time) time.Duration {
	end := now
	if s.CancelledAt != nil {
		end = *s.CancelledAt
	}
	return end.Sub(s.SubscribedAt)
}
