package usecase

import (
	"context"

	"github.com/iho/gofunds/internal/domain"
)

// HistoryUseCase serves the customer transaction ledger.
type HistoryUseCase struct {
	customerRepo    CustomerRepository
	transactionRepo TransactionRepository
}

// NewHistoryUseCase creates a new HistoryUseCase.
func NewHistoryUseCase(customerRepo CustomerRepository, transactionRepo TransactionRepository) *HistoryUseCase {
	return &HistoryUseCase{
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
	}
}

// HistoryPage is one page of ledger entries, newest first.
// NextCursor is empty on the last page.
type HistoryPage struct {
	Entries    []*domain.Transaction
	NextCursor string
}

// GetHistory returns a page of a customer's ledger. cursor is the ID of the last entry
// of the previous page.
func (uc *HistoryUseCase) GetHistory(ctx context.Context, customerID string, pageSize int, cursor string) (*HistoryPage, error) {
	if _, err := uc.customerRepo.GetByID(ctx, customerID); err != nil {
		return nil, err
	}

	pageSize = domain.ValidatePageSize(pageSize)

	// one extra row tells whether another page exists
	entries, err := uc.transactionRepo.GetHistory(ctx, customerID, pageSize+1, cursor)
	if err != nil {
		return nil, err
	}

	page := &HistoryPage{Entries: entries}
	if len(entries) > pageSize {
		page.Entries = entries[:pageSize]
		page.NextCursor = page.Entries[pageSize-1].ID
	}

	return page, nil
}

// GetTransaction retrieves a ledger entry by ID.
func (uc *HistoryUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.transactionRepo.GetByID(ctx, id)
}

// ListSubscriptionTransactions lists the entries recorded for a subscription.
func (uc *HistoryUseCase) ListSubscriptionTransactions(ctx context.Context, subscriptionID string) ([]*domain.Transaction, error) {
	return uc.transactionRepo.ListBySubscription(ctx, subscriptionID)
}
