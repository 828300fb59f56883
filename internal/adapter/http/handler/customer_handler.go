package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gofunds/internal/adapter/http/dto"
	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/usecase"
)

// CustomerService defines the behavior needed by CustomerHandler.
type CustomerService interface {
	CreateCustomer(ctx context.Context, input usecase.CreateCustomerInput) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, limit, offset int) ([]*domain.Customer, error)
	UpdateProfile(ctx context.Context, customerID string, input usecase.UpdateProfileInput) (*domain.Customer, error)
	Deposit(ctx context.Context, customerID string, amount decimal.Decimal) (*domain.Customer, error)
	Withdraw(ctx context.Context, customerID string, amount decimal.Decimal) (*domain.Customer, error)
	RecordLogin(ctx context.Context, customerID string) (*domain.Customer, error)
	SetActive(ctx context.Context, customerID string, active bool) (*domain.Customer, error)
}

// HistoryService defines the ledger queries needed by the handlers.
type HistoryService interface {
	GetHistory(ctx context.Context, customerID string, pageSize int, cursor string) (*usecase.HistoryPage, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListSubscriptionTransactions(ctx context.Context, subscriptionID string) ([]*domain.Transaction, error)
}

// CustomerHandler handles customer-related HTTP requests.
type CustomerHandler struct {
	responder
	customers     CustomerService
	subscriptions SubscriptionService
	history       HistoryService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customers CustomerService, subscriptions SubscriptionService, history HistoryService, opts ...Option) *CustomerHandler {
	return &CustomerHandler{
		responder:     newResponder(opts),
		customers:     customers,
		subscriptions: subscriptions,
		history:       history,
	}
}

// Create registers a customer.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCustomerRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	customer, err := h.customers.CreateCustomer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CustomerFromDomain(customer))
}

// Get retrieves a customer by ID.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := authorize(r, id); err != nil {
		h.fail(w, r, err)
		return
	}

	customer, err := h.customers.GetCustomer(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CustomerFromDomain(customer))
}

// List lists customers.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	customers, err := h.customers.ListCustomers(r.Context(), limit, offset)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewList(dto.CustomersFromDomain(customers)))
}

// UpdateProfile changes a customer's names and phone.
func (h *CustomerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := authorize(r, id); err != nil {
		h.fail(w, r, err)
		return
	}

	var req dto.UpdateProfileRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	customer, err := h.customers.UpdateProfile(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CustomerFromDomain(customer))
}

// Deposit credits a customer's balance.
func (h *CustomerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.moveCash(w, r, h.customers.Deposit)
}

// Withdraw debits a customer's balance.
func (h *CustomerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.moveCash(w, r, h.customers.Withdraw)
}

func (h *CustomerHandler) moveCash(w http.ResponseWriter, r *http.Request, op func(context.Context, string, decimal.Decimal) (*domain.Customer, error)) {
	id := chi.URLParam(r, "id")
	if err := authorize(r, id); err != nil {
		h.fail(w, r, err)
		return
	}

	var req dto.AmountRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	customer, err := op(r.Context(), id, req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CustomerFromDomain(customer))
}

// Login stamps the customer's last login time.
func (h *CustomerHandler) Login(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := authorize(r, id); err != nil {
		h.fail(w, r, err)
		return
	}

	customer, err := h.customers.RecordLogin(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CustomerFromDomain(customer))
}

// Activate re-enables a customer.
func (h *CustomerHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate disables a customer.
func (h *CustomerHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *CustomerHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	customer, err := h.customers.SetActive(r.Context(), chi.URLParam(r, "id"), active)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CustomerFromDomain(customer))
}

// Subscriptions lists a customer's subscriptions. ?active=true keeps only open ones.
func (h *CustomerHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := authorize(r, id); err != nil {
		h.fail(w, r, err)
		return
	}

	subs, err := h.subscriptions.ListCustomerSubscriptions(r.Context(), id, parseBoolQuery(r, "active", false))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewList(dto.SubscriptionsFromDomain(subs)))
}

// History returns a page of the customer's ledger, newest first.
func (h *CustomerHandler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := authorize(r, id); err != nil {
		h.fail(w, r, err)
		return
	}

	page, err := h.history.GetHistory(r.Context(), id, parseIntQuery(r, "limit", 20), r.URL.Query().Get("cursor"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HistoryFromUseCase(page))
}
