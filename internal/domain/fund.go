package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FundCategory is the risk profile of a fund.
type FundCategory string

const (
	FundCategoryConservativeFixedIncome FundCategory = "conservative_fixed_income"
	FundCategoryModerateMixed           FundCategory = "moderate_mixed"
	FundCategoryAggressiveEquity        FundCategory = "aggressive_equity"
)

var validCategories = map[FundCategory]bool{
	FundCategoryConservativeFixedIncome: true,
	FundCategoryModerateMixed:           true,
	FundCategoryAggressiveEquity:        true,
}

// IsValid checks the category is one of the known values.
func (c FundCategory) IsValid() bool {
	return validCategories[c]
}

// Fund is an investable product with a minimum contribution.
type Fund struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ID            string
	Name          string
	Description   string
	Category      FundCategory
	MinimumAmount decimal.Decimal
	Active        bool
}

// NewFund builds an active fund.
func NewFund(id, name, description string, minimumAmount decimal.Decimal, category FundCategory, now time.Time) (Fund, error) {
	if strings.TrimSpace(id) == "" {
		return Fund{}, Validation("fund id cannot be empty")
	}
	if err := validateFundDetails(name, minimumAmount); err != nil {
		return Fund{}, err
	}
	if !category.IsValid() {
		return Fund{}, Validation("invalid fund category %q", category)
	}

	return Fund{
		ID:            id,
		Name:          strings.TrimSpace(name),
		Description:   description,
		MinimumAmount: minimumAmount,
		Category:      category,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// UpdateDetails returns the fund with new name, description and minimum.
func (f Fund) UpdateDetails(name, description string, minimumAmount decimal.Decimal) (Fund, error) {
	if err := validateFundDetails(name, minimumAmount); err != nil {
		return f, err
	}

	next := f
	next.Name = strings.TrimSpace(name)
	next.Description = description
	next.MinimumAmount = minimumAmount
	return next, nil
}

// Activate returns an active copy.
func (f Fund) Activate() Fund {
	next := f
	next.Active = true
	return next
}

// Deactivate returns an inactive copy.
func (f Fund) Deactivate() Fund {
	next := f
	next.Active = false
	return next
}

func validateFundDetails(name string, minimumAmount decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return Validation("fund name cannot be empty")
	}
	if len(name) > MaxFundNameLength {
		return Validation("fund name cannot exceed %d characters", MaxFundNameLength)
	}
	if minimumAmount.LessThanOrEqual(decimal.Zero) {
		return Validation("minimum amount must be greater than zero")
	}
	return nil
}
