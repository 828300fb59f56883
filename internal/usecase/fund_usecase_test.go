package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/usecase"
)

func TestFundUseCase_Lifecycle(t *testing.T) {
	env := newWorkflowEnv(t)
	uc := usecase.NewFundUseCase(env.funds, env.idGen)
	ctx := context.Background()

	fund, err := uc.CreateFund(ctx, usecase.CreateFundInput{
		Name:          "FPV_BTG_PACTUAL_ECOPETROL",
		Description:   "Pension fund",
		Category:      domain.FundCategoryConservativeFixedIncome,
		MinimumAmount: decimal.NewFromInt(125000),
	})
	require.NoError(t, err)
	assert.True(t, fund.Active)

	updated, err := uc.UpdateFund(ctx, fund.ID, usecase.UpdateFundInput{
		Name:          "FPV_BTG_PACTUAL_ECOPETROL",
		Description:   "Voluntary pension fund",
		MinimumAmount: decimal.NewFromInt(150000),
	})
	require.NoError(t, err)
	assert.True(t, updated.MinimumAmount.Equal(decimal.NewFromInt(150000)))

	deactivated, err := uc.DeactivateFund(ctx, fund.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	active, err := uc.ListFunds(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := uc.ListFunds(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	reactivated, err := uc.ActivateFund(ctx, fund.ID)
	require.NoError(t, err)
	assert.True(t, reactivated.Active)

	got, err := uc.GetFund(ctx, fund.ID)
	require.NoError(t, err)
	assert.Equal(t, "Voluntary pension fund", got.Description)
}

func TestFundUseCase_Rejections(t *testing.T) {
	env := newWorkflowEnv(t)
	uc := usecase.NewFundUseCase(env.funds, env.idGen)
	ctx := context.Background()

	_, err := uc.CreateFund(ctx, usecase.CreateFundInput{
		Name:          "",
		Category:      domain.FundCategoryAggressiveEquity,
		MinimumAmount: decimal.NewFromInt(1000),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.CreateFund(ctx, usecase.CreateFundInput{
		Name:          "DEUDAPRIVADA",
		Category:      domain.FundCategory("crypto"),
		MinimumAmount: decimal.NewFromInt(1000),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.CreateFund(ctx, usecase.CreateFundInput{
		Name:          "DEUDAPRIVADA",
		Category:      domain.FundCategoryAggressiveEquity,
		MinimumAmount: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.GetFund(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrFundNotFound)

	_, err = uc.DeactivateFund(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrFundNotFound)
}

func TestFundUseCase_DeactivatedFundBlocksSubscribeButNotCancel(t *testing.T) {
	env := newWorkflowEnv(t)
	env.seedCustomer(t, "cust-a", 500000)
	env.seedFund(t, "fund-a", 75000)
	funds := usecase.NewFundUseCase(env.funds, env.idGen)
	ctx := context.Background()

	sub, err := env.subscribe("cust-a", "fund-a", 100000)
	require.NoError(t, err)

	_, err = funds.DeactivateFund(ctx, "fund-a")
	require.NoError(t, err)

	env.seedCustomer(t, "cust-b", 500000)
	_, err = env.subscribe("cust-b", "fund-a", 100000)
	assert.ErrorIs(t, err, domain.ErrInactive)

	require.NoError(t, env.cancel(sub.ID, "cust-a"))
	assert.True(t, env.balance(t, "cust-a").Equal(decimal.NewFromInt(500000)))
}
