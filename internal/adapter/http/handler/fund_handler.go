package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gofunds/internal/adapter/http/dto"
	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/usecase"
)

// FundService defines the behavior needed by FundHandler.
type FundService interface {
	CreateFund(ctx context.Context, input usecase.CreateFundInput) (*domain.Fund, error)
	UpdateFund(ctx context.Context, id string, input usecase.UpdateFundInput) (*domain.Fund, error)
	ActivateFund(ctx context.Context, id string) (*domain.Fund, error)
	DeactivateFund(ctx context.Context, id string) (*domain.Fund, error)
	GetFund(ctx context.Context, id string) (*domain.Fund, error)
	ListFunds(ctx context.Context, activeOnly bool) ([]*domain.Fund, error)
}

// FundHandler handles fund-related HTTP requests.
type FundHandler struct {
	responder
	funds FundService
}

// NewFundHandler creates a new FundHandler.
func NewFundHandler(funds FundService, opts ...Option) *FundHandler {
	return &FundHandler{responder: newResponder(opts), funds: funds}
}

// Create creates a fund.
func (h *FundHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateFundRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	fund, err := h.funds.CreateFund(r.Context(), req.ToUseCaseInput())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.FundFromDomain(fund))
}

// List lists funds. Only active funds unless ?active=false.
func (h *FundHandler) List(w http.ResponseWriter, r *http.Request) {
	funds, err := h.funds.ListFunds(r.Context(), parseBoolQuery(r, "active", true))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewList(dto.FundsFromDomain(funds)))
}

// Get retrieves a fund by ID.
func (h *FundHandler) Get(w http.ResponseWriter, r *http.Request) {
	fund, err := h.funds.GetFund(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FundFromDomain(fund))
}

// Update changes a fund's details.
func (h *FundHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateFundRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	fund, err := h.funds.UpdateFund(r.Context(), chi.URLParam(r, "id"), req.ToUseCaseInput())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FundFromDomain(fund))
}

// Activate opens a fund for new subscriptions.
func (h *FundHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.funds.ActivateFund)
}

// Deactivate closes a fund to new subscriptions.
func (h *FundHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.funds.DeactivateFund)
}

func (h *FundHandler) toggle(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (*domain.Fund, error)) {
	fund, err := op(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FundFromDomain(fund))
}
