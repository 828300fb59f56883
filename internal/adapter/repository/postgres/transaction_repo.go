package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/infrastructure/postgres/generated"
	"github.com/iho/gofunds/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository over the append-only
// transactions table.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return newTransactionRepository(pool)
}

func newTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create appends a ledger entry.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Transaction) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	return queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:             entry.ID,
		CustomerID:     entry.CustomerID,
		FundID:         textFromPtr(entry.FundID),
		SubscriptionID: textFromPtr(entry.SubscriptionID),
		Type:           string(entry.Type),
		Amount:         decimalToNumeric(entry.Amount),
		Description:    entry.Description,
		Status:         string(entry.Status),
		CreatedAt:      timeToPgTimestamptz(entry.CreatedAt),
	})
}

// GetByID retrieves a ledger entry by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(domain.EntityTransaction, id)
		}
		return nil, err
	}

	return rowToTransaction(row), nil
}

// GetHistory returns up to pageSize entries older than cursor, newest first.
func (r *TransactionRepository) GetHistory(ctx context.Context, customerID string, pageSize int, cursor string) ([]*domain.Transaction, error) {
	rows, err := r.queries.GetCustomerHistory(ctx, generated.GetCustomerHistoryParams{
		CustomerID: customerID,
		Cursor:     cursor,
		PageSize:   int32(pageSize),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

// ListBySubscription lists a subscription's entries oldest first.
func (r *TransactionRepository) ListBySubscription(ctx context.Context, subscriptionID string) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsBySubscription(ctx, pgtype.Text{String: subscriptionID, Valid: true})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

func rowsToTransactions(rows []generated.Transaction) []*domain.Transaction {
	entries := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToTransaction(row))
	}
	return entries
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:             row.ID,
		CustomerID:     row.CustomerID,
		FundID:         textPtr(row.FundID),
		SubscriptionID: textPtr(row.SubscriptionID),
		Type:           domain.TransactionType(row.Type),
		Amount:         numericToDecimal(row.Amount),
		Description:    row.Description,
		Status:         domain.TransactionStatus(row.Status),
		CreatedAt:      row.CreatedAt.Time,
	}
}
