package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gofunds/internal/domain"
)

// FundUseCase handles fund administration and lookups.
type FundUseCase struct {
	fundRepo FundRepository
	idGen    IDGenerator
	logger   zerolog.Logger
}

// NewFundUseCase creates a new FundUseCase.
func NewFundUseCase(fundRepo FundRepository, idGen IDGenerator) *FundUseCase {
	return &FundUseCase{
		fundRepo: fundRepo,
		idGen:    idGen,
		logger:   zerolog.Nop(),
	}
}

// WithLogger sets the logger.
func (uc *FundUseCase) WithLogger(l zerolog.Logger) *FundUseCase {
	uc.logger = l
	return uc
}

// CreateFundInput represents input for creating a fund.
type CreateFundInput struct {
	Name          string
	Description   string
	Category      domain.FundCategory
	MinimumAmount decimal.Decimal
}

// CreateFund creates a new active fund.
func (uc *FundUseCase) CreateFund(ctx context.Context, input CreateFundInput) (*domain.Fund, error) {
	fund, err := domain.NewFund(
		uc.idGen.Generate(),
		input.Name,
		input.Description,
		input.MinimumAmount,
		input.Category,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	if err := uc.fundRepo.Create(ctx, &fund); err != nil {
		return nil, err
	}

	uc.logger.Info().Str("fund_id", fund.ID).Str("name", fund.Name).Msg("fund created")

	return &fund, nil
}

// UpdateFundInput represents input for changing a fund's details.
type UpdateFundInput struct {
	Name          string
	Description   string
	MinimumAmount decimal.Decimal
}

// UpdateFund changes a fund's name, description and minimum amount.
// Existing subscriptions keep their amounts.
func (uc *FundUseCase) UpdateFund(ctx context.Context, id string, input UpdateFundInput) (*domain.Fund, error) {
	return uc.change(ctx, id, func(f domain.Fund) (domain.Fund, error) {
		return f.UpdateDetails(input.Name, input.Description, input.MinimumAmount)
	})
}

// ActivateFund reopens a fund to new subscriptions.
func (uc *FundUseCase) ActivateFund(ctx context.Context, id string) (*domain.Fund, error) {
	return uc.change(ctx, id, func(f domain.Fund) (domain.Fund, error) {
		return f.Activate(), nil
	})
}

// DeactivateFund closes a fund to new subscriptions. Active subscriptions stay cancellable.
func (uc *FundUseCase) DeactivateFund(ctx context.Context, id string) (*domain.Fund, error) {
	return uc.change(ctx, id, func(f domain.Fund) (domain.Fund, error) {
		return f.Deactivate(), nil
	})
}

func (uc *FundUseCase) change(ctx context.Context, id string, fn func(domain.Fund) (domain.Fund, error)) (*domain.Fund, error) {
	fund, err := uc.fundRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := fn(*fund)
	if err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := uc.fundRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

// GetFund retrieves a fund by ID.
func (uc *FundUseCase) GetFund(ctx context.Context, id string) (*domain.Fund, error) {
	return uc.fundRepo.GetByID(ctx, id)
}

// ListFunds lists funds, optionally only active ones.
func (uc *FundUseCase) ListFunds(ctx context.Context, activeOnly bool) ([]*domain.Fund, error) {
	return uc.fundRepo.List(ctx, activeOnly)
}
