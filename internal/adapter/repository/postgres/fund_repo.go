package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/infrastructure/postgres/generated"
)

// FundRepository implements usecase.FundRepository.
type FundRepository struct {
	queries *generated.Queries
}

// NewFundRepository creates a new FundRepository.
func NewFundRepository(pool *pgxpool.Pool) *FundRepository {
	return newFundRepository(pool)
}

func newFundRepository(db generated.DBTX) *FundRepository {
	return &FundRepository{queries: generated.New(db)}
}

// Create inserts a fund.
func (r *FundRepository) Create(ctx context.Context, fund *domain.Fund) error {
	err := r.queries.CreateFund(ctx, generated.CreateFundParams{
		ID:            fund.ID,
		Name:          fund.Name,
		Description:   fund.Description,
		Category:      string(fund.Category),
		MinimumAmount: decimalToNumeric(fund.MinimumAmount),
		Active:        fund.Active,
		CreatedAt:     timeToPgTimestamptz(fund.CreatedAt),
		UpdatedAt:     timeToPgTimestamptz(fund.UpdatedAt),
	})
	if _, ok := uniqueViolation(err); ok {
		return domain.Validation("fund %s already exists", fund.ID)
	}
	return err
}

// Update writes a fund's mutable fields.
func (r *FundRepository) Update(ctx context.Context, fund *domain.Fund) error {
	affected, err := r.queries.UpdateFund(ctx, generated.UpdateFundParams{
		ID:            fund.ID,
		Name:          fund.Name,
		Description:   fund.Description,
		MinimumAmount: decimalToNumeric(fund.MinimumAmount),
		Active:        fund.Active,
		UpdatedAt:     timeToPgTimestamptz(fund.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFound(domain.EntityFund, fund.ID)
	}
	return nil
}

// GetByID retrieves a fund by ID.
func (r *FundRepository) GetByID(ctx context.Context, id string) (*domain.Fund, error) {
	row, err := r.queries.GetFundByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(domain.EntityFund, id)
		}
		return nil, err
	}

	return rowToFund(row), nil
}

// List lists funds by name.
func (r *FundRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Fund, error) {
	var (
		rows []generated.Fund
		err  error
	)
	if activeOnly {
		rows, err = r.queries.ListActiveFunds(ctx)
	} else {
		rows, err = r.queries.ListFunds(ctx)
	}
	if err != nil {
		return nil, err
	}

	funds := make([]*domain.Fund, 0, len(rows))
	for _, row := range rows {
		funds = append(funds, rowToFund(row))
	}

	return funds, nil
}

func rowToFund(row generated.Fund) *domain.Fund {
	return &domain.Fund{
		ID:            row.ID,
		Name:          row.Name,
		Description:   row.Description,
		Category:      domain.FundCategory(row.Category),
		MinimumAmount: numericToDecimal(row.MinimumAmount),
		Active:        row.Active,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}
