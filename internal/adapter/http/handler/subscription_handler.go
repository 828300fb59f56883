package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gofunds/internal/adapter/http/dto"
	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/usecase"
)

// SubscriptionService defines the behavior needed by SubscriptionHandler.
type SubscriptionService interface {
	Subscribe(ctx context.Context, input usecase.SubscribeInput) (*domain.Subscription, error)
	Cancel(ctx context.Context, input usecase.CancelInput) (*domain.Subscription, error)
	GetSubscription(ctx context.Context, id string) (*domain.Subscription, error)
	ListCustomerSubscriptions(ctx context.Context, customerID string, activeOnly bool) ([]*domain.Subscription, error)
}

// SubscriptionHandler handles the subscribe and cancel workflows.
type SubscriptionHandler struct {
	responder
	subscriptions SubscriptionService
	history       HistoryService
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptions SubscriptionService, history HistoryService, opts ...Option) *SubscriptionHandler {
	return &SubscriptionHandler{
		responder:     newResponder(opts),
		subscriptions: subscriptions,
		history:       history,
	}
}

// Create subscribes a customer to a fund.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.SubscribeRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	customerID, err := requester(r, req.CustomerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	sub, err := h.subscriptions.Subscribe(r.Context(), req.ToUseCaseInput(customerID))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SubscriptionFromDomain(sub))
}

// Get retrieves a subscription by ID.
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subscriptions.GetSubscription(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := authorize(r, sub.CustomerID); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SubscriptionFromDomain(sub))
}

// Cancel closes a subscription and refunds it. The body may be empty for token holders.
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.CancelSubscriptionRequest
	if err := decodeOptional(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	customerID, err := requester(r, req.CustomerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	sub, err := h.subscriptions.Cancel(r.Context(), usecase.CancelInput{SubscriptionID: id, CustomerID: customerID})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SubscriptionFromDomain(sub))
}

// Transactions lists the ledger entries of a subscription.
func (h *SubscriptionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := h.subscriptions.GetSubscription(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := authorize(r, sub.CustomerID); err != nil {
		h.fail(w, r, err)
		return
	}

	entries, err := h.history.ListSubscriptionTransactions(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewList(dto.TransactionsFromDomain(entries)))
}
