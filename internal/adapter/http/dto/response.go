package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/usecase"
)

// CustomerResponse represents a customer in API responses.
type CustomerResponse struct {
	ID          string          `json:"id"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	DateOfBirth string          `json:"date_of_birth"`
	Balance     decimal.Decimal `json:"balance"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
}

// CustomerFromDomain converts a domain customer to response.
func CustomerFromDomain(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		DateOfBirth: c.DateOfBirth.Format(dateLayout),
		Balance:     c.Balance,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		LastLoginAt: c.LastLoginAt,
	}
}

// CustomersFromDomain converts multiple customers.
func CustomersFromDomain(customers []*domain.Customer) []CustomerResponse {
	result := make([]CustomerResponse, len(customers))
	for i, c := range customers {
		result[i] = CustomerFromDomain(c)
	}
	return result
}

// FundResponse represents a fund in API responses.
type FundResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	MinimumAmount decimal.Decimal `json:"minimum_amount"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// FundFromDomain converts a domain fund to response.
func FundFromDomain(f *domain.Fund) FundResponse {
	return FundResponse{
		ID:            f.ID,
		Name:          f.Name,
		Description:   f.Description,
		Category:      string(f.Category),
		MinimumAmount: f.MinimumAmount,
		Active:        f.Active,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// FundsFromDomain converts multiple funds.
func FundsFromDomain(funds []*domain.Fund) []FundResponse {
	result := make([]FundResponse, len(funds))
	for i, f := range funds {
		result[i] = FundFromDomain(f)
	}
	return result
}

// SubscriptionResponse represents a subscription in API responses.
type SubscriptionResponse struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customer_id"`
	FundID       string          `json:"fund_id"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	SubscribedAt time.Time       `json:"subscribed_at"`
	CancelledAt  *time.Time      `json:"cancelled_at,omitempty"`
}

// SubscriptionFromDomain converts a domain subscription to response.
func SubscriptionFromDomain(s *domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:           s.ID,
		CustomerID:   s.CustomerID,
		FundID:       s.FundID,
		Amount:       s.Amount,
		Status:       string(s.Status),
		SubscribedAt: s.SubscribedAt,
		CancelledAt:  s.CancelledAt,
	}
}

// SubscriptionsFromDomain converts multiple subscriptions.
func SubscriptionsFromDomain(subs []*domain.Subscription) []SubscriptionResponse {
	result := make([]SubscriptionResponse, len(subs))
	for i, s := range subs {
		result[i] = SubscriptionFromDomain(s)
	}
	return result
}

// TransactionResponse represents a ledger entry in API responses.
type TransactionResponse struct {
	ID             string          `json:"id"`
	CustomerID     string          `json:"customer_id"`
	FundID         *string         `json:"fund_id,omitempty"`
	SubscriptionID *string         `json:"subscription_id,omitempty"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             t.ID,
		CustomerID:     t.CustomerID,
		FundID:         t.FundID,
		SubscriptionID: t.SubscriptionID,
		Type:           string(t.Type),
		Amount:         t.Amount,
		Description:    t.Description,
		Status:         string(t.Status),
		CreatedAt:      t.CreatedAt,
	}
}

// TransactionsFromDomain converts multiple transactions.
func TransactionsFromDomain(entries []*domain.Transaction) []TransactionResponse {
	result := make([]TransactionResponse, len(entries))
	for i, t := range entries {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// HistoryResponse is one page of a customer's ledger.
type HistoryResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextCursor   string                `json:"next_cursor,omitempty"`
}

// HistoryFromUseCase converts a history page.
func HistoryFromUseCase(p *usecase.HistoryPage) HistoryResponse {
	return HistoryResponse{
		Transactions: TransactionsFromDomain(p.Entries),
		NextCursor:   p.NextCursor,
	}
}

// DiscrepancyResponse is one customer that failed reconciliation.
type DiscrepancyResponse struct {
	CustomerID          string          `json:"customer_id"`
	RecordedBalance     decimal.Decimal `json:"recorded_balance"`
	LedgerBalance       decimal.Decimal `json:"ledger_balance"`
	BalanceDifference   decimal.Decimal `json:"balance_difference"`
	ActiveSubscriptions decimal.Decimal `json:"active_subscriptions"`
	NetSubscribed       decimal.Decimal `json:"net_subscribed"`
}

// ReconciliationResponse represents a reconciliation report.
type ReconciliationResponse struct {
	CheckedAt           time.Time             `json:"checked_at"`
	Consistent          bool                  `json:"consistent"`
	TotalCustomers      int                   `json:"total_customers"`
	ReconciledCustomers int                   `json:"reconciled_customers"`
	Discrepancies       []DiscrepancyResponse `json:"discrepancies"`
}

// ReconciliationFromUseCase converts a reconciliation report.
func ReconciliationFromUseCase(r *usecase.ReconciliationReport) ReconciliationResponse {
	discrepancies := make([]DiscrepancyResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = DiscrepancyResponse{
			CustomerID:          d.CustomerID,
			RecordedBalance:     d.RecordedBalance,
			LedgerBalance:       d.LedgerBalance,
			BalanceDifference:   d.BalanceDifference,
			ActiveSubscriptions: d.ActiveSubscriptions,
			NetSubscribed:       d.NetSubscribed,
		}
	}
	return ReconciliationResponse{
		CheckedAt:           r.CheckedAt,
		Consistent:          r.Consistent(),
		TotalCustomers:      r.TotalCustomers,
		ReconciledCustomers: r.ReconciledCustomers,
		Discrepancies:       discrepancies,
	}
}

// ListResponse wraps a list with its length.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// NewList builds a ListResponse.
func NewList[T any](items []T) ListResponse[T] {
	return ListResponse[T]{Items: items, Total: len(items)}
}

// TokenResponse carries an issued JWT.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
