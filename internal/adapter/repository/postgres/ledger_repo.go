package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gofunds/internal/infrastructure/postgres/generated"
	"github.com/iho/gofunds/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepository(pool)
}

func newLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// CustomerTotals aggregates balances, ledger sums and open subscriptions per customer.
func (r *LedgerRepository) CustomerTotals(ctx context.Context) ([]*usecase.CustomerLedgerTotals, error) {
	rows, err := r.queries.GetCustomerLedgerTotals(ctx)
	if err != nil {
		return nil, err
	}

	totals := make([]*usecase.CustomerLedgerTotals, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, &usecase.CustomerLedgerTotals{
			CustomerID:          row.CustomerID,
			Balance:             numericToDecimal(row.Balance),
			LedgerBalance:       numericToDecimal(row.LedgerBalance),
			ActiveSubscriptions: numericToDecimal(row.ActiveSubscriptions),
			NetSubscribed:       numericToDecimal(row.NetSubscribed),
		})
	}

	return totals, nil
}
