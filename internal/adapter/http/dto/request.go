package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/usecase"
)

const dateLayout = "2006-01-02"

// CreateCustomerRequest represents a request to register a customer.
type CreateCustomerRequest struct {
	FirstName      string           `json:"first_name"      validate:"required,max=100"`
	LastName       string           `json:"last_name"       validate:"required,max=100"`
	Email          string           `json:"email"           validate:"required,email,max=255"`
	Phone          string           `json:"phone"           validate:"required"`
	DateOfBirth    string           `json:"date_of_birth"   validate:"required,datetime=2006-01-02"`
	InitialBalance *decimal.Decimal `json:"initial_balance,omitempty" validate:"omitempty,non_negative_amount"`
}

// ToUseCaseInput converts to use case input. Call Validate first.
func (r *CreateCustomerRequest) ToUseCaseInput() usecase.CreateCustomerInput {
	dob, _ := time.Parse(dateLayout, r.DateOfBirth)
	return usecase.CreateCustomerInput{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		DateOfBirth:    dob,
		InitialBalance: r.InitialBalance,
	}
}

// UpdateProfileRequest represents a request to change a customer's personal data.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"required,max=100"`
	Phone     string `json:"phone"      validate:"required"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateProfileRequest) ToUseCaseInput() usecase.UpdateProfileInput {
	return usecase.UpdateProfileInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
	}
}

// AmountRequest carries a deposit or withdrawal amount.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"positive_amount"`
}

// CreateFundRequest represents a request to create a fund.
type CreateFundRequest struct {
	Name          string          `json:"name"           validate:"required,max=100"`
	Description   string          `json:"description"    validate:"max=500"`
	Category      string          `json:"category"       validate:"required,fund_category"`
	MinimumAmount decimal.Decimal `json:"minimum_amount" validate:"positive_amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateFundRequest) ToUseCaseInput() usecase.CreateFundInput {
	return usecase.CreateFundInput{
		Name:          r.Name,
		Description:   r.Description,
		Category:      domain.FundCategory(r.Category),
		MinimumAmount: r.MinimumAmount,
	}
}

// UpdateFundRequest represents a request to change a fund's details.
type UpdateFundRequest struct {
	Name          string          `json:"name"           validate:"required,max=100"`
	Description   string          `json:"description"    validate:"max=500"`
	MinimumAmount decimal.Decimal `json:"minimum_amount" validate:"positive_amount"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateFundRequest) ToUseCaseInput() usecase.UpdateFundInput {
	return usecase.UpdateFundInput{
		Name:          r.Name,
		Description:   r.Description,
		MinimumAmount: r.MinimumAmount,
	}
}

// SubscribeRequest represents a request to subscribe to a fund.
// CustomerID may be omitted when the caller is authenticated as a customer.
type SubscribeRequest struct {
	CustomerID string          `json:"customer_id"`
	FundID     string          `json:"fund_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount"  validate:"positive_amount"`
}

// ToUseCaseInput converts to use case input for the given customer.
func (r *SubscribeRequest) ToUseCaseInput(customerID string) usecase.SubscribeInput {
	return usecase.SubscribeInput{
		CustomerID: customerID,
		FundID:     r.FundID,
		Amount:     r.Amount,
	}
}

// CancelSubscriptionRequest names the requester when no token identifies it.
type CancelSubscriptionRequest struct {
	CustomerID string `json:"customer_id"`
}
