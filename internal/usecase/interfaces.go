package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gofunds/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// CustomerRepository defines data access for customers.
type CustomerRepository interface {
	Create(ctx context.Context, tx Transaction, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	// Update persists customer if the stored version still equals customer.Version,
	// then advances customer.Version. A stale version yields domain.ErrVersionConflict.
	Update(ctx context.Context, tx Transaction, customer *domain.Customer) error
	List(ctx context.Context, limit, offset int) ([]*domain.Customer, error)
}

// FundRepository defines data access for funds.
type FundRepository interface {
	Create(ctx context.Context, fund *domain.Fund) error
	Update(ctx context.Context, fund *domain.Fund) error
	GetByID(ctx context.Context, id string) (*domain.Fund, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Fund, error)
}

// SubscriptionRepository defines data access for subscriptions.
type SubscriptionRepository interface {
	// Create fails with domain.ErrDuplicateActiveSubscription when the customer already
	// holds an active subscription to the fund.
	Create(ctx context.Context, tx Transaction, sub *domain.Subscription) error
	GetByID(ctx context.Context, id string) (*domain.Subscription, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Subscription, error)
	Update(ctx context.Context, tx Transaction, sub *domain.Subscription) error
	HasActiveSubscription(ctx context.Context, tx Transaction, customerID, fundID string) (bool, error)
	ListByCustomer(ctx context.Context, customerID string, activeOnly bool) ([]*domain.Subscription, error)
}

// TransactionRepository defines data access for the append-only ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	// GetHistory returns entries newest first. A non-empty cursor restricts the page to
	// entries older than the cursor entry.
	GetHistory(ctx context.Context, customerID string, pageSize int, cursor string) ([]*domain.Transaction, error)
	ListBySubscription(ctx context.Context, subscriptionID string) ([]*domain.Transaction, error)
}

// CustomerLedgerTotals are the per-customer aggregates used by reconciliation.
type CustomerLedgerTotals struct {
	CustomerID          string
	Balance             decimal.Decimal
	LedgerBalance       decimal.Decimal
	ActiveSubscriptions decimal.Decimal
	NetSubscribed       decimal.Decimal
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	CustomerTotals(ctx context.Context) ([]*CustomerLedgerTotals, error)
}

// NotificationOutbox stores notification jobs written in the same unit of work as the
// state change they announce.
type NotificationOutbox interface {
	Enqueue(ctx context.Context, tx Transaction, job *domain.NotificationJob) error
	// ClaimPending moves up to limit pending jobs to processing and returns them.
	// Concurrent claimers never receive the same job.
	ClaimPending(ctx context.Context, limit int) ([]*domain.NotificationJob, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id, reason string, at time.Time) error
	// ReleaseStale returns jobs claimed before olderThan to pending.
	ReleaseStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// NotificationGateway delivers customer notifications.
type NotificationGateway interface {
	SendSubscriptionConfirmation(ctx context.Context, n domain.Notification) error
	SendCancellationConfirmation(ctx context.Context, n domain.Notification) error
}

// NotificationSignal wakes the notification dispatcher after a commit.
type NotificationSignal interface {
	Notify()
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs a unit of work on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique, time-ordered IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyRecord is what an idempotency key currently holds.
type IdempotencyRecord struct {
	Fingerprint string `json:"fingerprint"`
	Body        []byte `json:"body,omitempty"`
	StatusCode  int    `json:"status_code,omitempty"`
	Completed   bool   `json:"completed"`
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// Reserve claims key for a request with the given fingerprint. When the key is already
	// held it returns false and the stored record.
	Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (bool, *IdempotencyRecord, error)
	// Complete stores the final response under a reserved key.
	Complete(ctx context.Context, key string, record IdempotencyRecord, ttl time.Duration) error
	// Release drops a reservation so the request can be retried.
	Release(ctx context.Context, key string) error
}
