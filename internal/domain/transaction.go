package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeSubscription TransactionType = "subscription"
	TransactionTypeCancellation TransactionType = "cancellation"
	TransactionTypeDeposit      TransactionType = "deposit"
	TransactionTypeWithdrawal   TransactionType = "withdrawal"
)

// IsValid checks the type is one of the known values.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeSubscription, TransactionTypeCancellation,
		TransactionTypeDeposit, TransactionTypeWithdrawal:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusFailed     TransactionStatus = "failed"
)

// Transaction is an append-only ledger entry documenting one balance movement.
// Amount is always the magnitude; the direction follows from Type.
type Transaction struct {
	CreatedAt      time.Time
	FundID         *string
	SubscriptionID *string
	ID             string
	CustomerID     string
	Type           TransactionType
	Description    string
	Status         TransactionStatus
	Amount         decimal.Decimal
}

// NewTransactionParams are the inputs for NewTransaction.
type NewTransactionParams struct {
	ID             string
	CustomerID     string
	FundID         string
	SubscriptionID string
	Type           TransactionType
	Description    string
	Amount         decimal.Decimal
}

// NewTransaction builds a completed ledger entry.
func NewTransaction(p NewTransactionParams, now time.Time) (Transaction, error) {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return Transaction{}, Validation("transaction id cannot be empty")
	case strings.TrimSpace(p.CustomerID) == "":
		return Transaction{}, Validation("customer id cannot be empty")
	case !p.Type.IsValid():
		return Transaction{}, Validation("invalid transaction type %q", p.Type)
	}
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return Transaction{}, Validation("transaction amount must be greater than zero")
	}

	return Transaction{
		ID:             p.ID,
		CustomerID:     p.CustomerID,
		FundID:         optional(p.FundID),
		SubscriptionID: optional(p.SubscriptionID),
		Type:           p.Type,
		Amount:         p.Amount,
		Description:    p.Description,
		CreatedAt:      now,
		Status:         TransactionStatusCompleted,
	}, nil
}

// NewProcessingTransaction builds an entry awaiting asynchronous settlement.
func NewProcessingTransaction(p NewTransactionParams, now time.Time) (Transaction, error) {
	t, err := NewTransaction(p, now)
	if err != nil {
		return Transaction{}, err
	}
	t.Status = TransactionStatusProcessing
	return t, nil
}

// Complete settles a processing entry.
func (t Transaction) Complete() (Transaction, error) {
	if t.Status != TransactionStatusProcessing {
		return t, Validation("transaction %s is %s, not processing", t.ID, t.Status)
	}

	next := t
	next.Status = TransactionStatusCompleted
	return next, nil
}

// Fail marks a processing entry as failed, recording the reason in the description.
func (t Transaction) Fail(reason string) (Transaction, error) {
	if t.Status != TransactionStatusProcessing {
		return t, Validation("transaction %s is %s, not processing", t.ID, t.Status)
	}

	next := t
	next.Status = TransactionStatusFailed
	next.Description = t.Description + " - Failed: " + reason
	return next, nil
}

// BalanceEffect is the signed change this entry applied to the customer balance.
func (t Transaction) BalanceEffect() decimal.Decimal {
	switch t.Type {
	case TransactionTypeSubscription, TransactionTypeWithdrawal:
		return t.Amount.Neg()
	default:
		return t.Amount
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
