package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/infrastructure/postgres/generated"
	"github.com/iho/gofunds/internal/usecase"
)

// SubscriptionRepository implements usecase.SubscriptionRepository. The partial unique
// index on (customer_id, fund_id) WHERE status = 'active' backs the one-active-per-pair rule.
type SubscriptionRepository struct {
	queries *generated.Queries
}

// NewSubscriptionRepository creates a new SubscriptionRepository.
func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return newSubscriptionRepository(pool)
}

func newSubscriptionRepository(db generated.DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{queries: generated.New(db)}
}

func (r *SubscriptionRepository) Create(ctx context.Context, tx usecase.Transaction, sub *domain.Subscription) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	err = queries.CreateSubscription(ctx, generated.CreateSubscriptionParams{
		ID:           sub.ID,
		CustomerID:   sub.CustomerID,
		FundID:       sub.FundID,
		Amount:       decimalToNumeric(sub.Amount),
		Status:       string(sub.Status),
		SubscribedAt: timeToPgTimestamptz(sub.SubscribedAt),
		CancelledAt:  optionalTimestamptz(sub.CancelledAt),
	})
	if constraint, ok := uniqueViolation(err); ok && constraint == constraintActiveSubscription {
		return &domain.Error{Kind: domain.KindDuplicateActiveSubscription, Entity: domain.EntityFund, ID: sub.FundID}
	}
	return err
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	row, err := r.queries.GetSubscriptionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(domain.EntitySubscription, id)
		}
		return nil, err
	}

	return rowToSubscription(row), nil
}

func (r *SubscriptionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Subscription, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetSubscriptionByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(domain.EntitySubscription, id)
		}
		return nil, err
	}

	return rowToSubscription(row), nil
}

// Update persists the status transition of a subscription.
func (r *SubscriptionRepository) Update(ctx context.Context, tx usecase.Transaction, sub *domain.Subscription) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	affected, err := queries.UpdateSubscriptionStatus(ctx, generated.UpdateSubscriptionStatusParams{
		ID:          sub.ID,
		Status:      string(sub.Status),
		CancelledAt: optionalTimestamptz(sub.CancelledAt),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFound(domain.EntitySubscription, sub.ID)
	}
	return nil
}

func (r *SubscriptionRepository) HasActiveSubscription(ctx context.Context, tx usecase.Transaction, customerID, fundID string) (bool, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return false, err
	}

	return queries.HasActiveSubscription(ctx, generated.HasActiveSubscriptionParams{
		CustomerID: customerID,
		FundID:     fundID,
	})
}

func (r *SubscriptionRepository) ListByCustomer(ctx context.Context, customerID string, activeOnly bool) ([]*domain.Subscription, error) {
	var (
		rows []generated.Subscription
		err  error
	)
	if activeOnly {
		rows, err = r.queries.ListActiveSubscriptionsByCustomer(ctx, customerID)
	} else {
		rows, err = r.queries.ListSubscriptionsByCustomer(ctx, customerID)
	}
	if err != nil {
		return nil, err
	}

	subs := make([]*domain.Subscription, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, rowToSubscription(row))
	}

	return subs, nil
}

func rowToSubscription(row generated.Subscription) *domain.Subscription {
	return &domain.Subscription{
		ID:           row.ID,
		CustomerID:   row.CustomerID,
		FundID:       row.FundID,
		Amount:       numericToDecimal(row.Amount),
		Status:       domain.SubscriptionStatus(row.Status),
		SubscribedAt: row.SubscribedAt.Time,
		CancelledAt:  timestamptzPtr(row.CancelledAt),
	}
}
