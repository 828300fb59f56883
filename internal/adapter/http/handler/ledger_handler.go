package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gofunds/internal/adapter/http/dto"
	"github.com/iho/gofunds/internal/usecase"
)

// ReconciliationService defines the behavior needed by LedgerHandler.
type ReconciliationService interface {
	GenerateReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// LedgerHandler serves ledger-wide queries.
type LedgerHandler struct {
	responder
	reconciliation ReconciliationService
	history        HistoryService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(reconciliation ReconciliationService, history HistoryService, opts ...Option) *LedgerHandler {
	return &LedgerHandler{
		responder:      newResponder(opts),
		reconciliation: reconciliation,
		history:        history,
	}
}

// Reconciliation checks every customer's balance against the ledger.
func (h *LedgerHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliation.GenerateReport(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(report))
}

// GetTransaction retrieves a ledger entry by ID.
func (h *LedgerHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	entry, err := h.history.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := authorize(r, entry.CustomerID); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(entry))
}
