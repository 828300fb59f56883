package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gofunds/internal/infrastructure/metrics"
)

// ReconciliationUseCase checks balances against the ledger.
type ReconciliationUseCase struct {
	ledgerRepo LedgerRepository
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(ledgerRepo LedgerRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		ledgerRepo: ledgerRepo,
		logger:     zerolog.Nop(),
	}
}

// WithMetrics enables Prometheus instrumentation.
func (uc *ReconciliationUseCase) WithMetrics(m *metrics.Metrics) *ReconciliationUseCase {
	uc.metrics = m
	return uc
}

// WithLogger sets the logger.
func (uc *ReconciliationUseCase) WithLogger(l zerolog.Logger) *ReconciliationUseCase {
	uc.logger = l
	return uc
}

// ReconciliationResult represents the result of a reconciliation check for one customer
type ReconciliationResult struct {
	CustomerID          string
	RecordedBalance     decimal.Decimal
	LedgerBalance       decimal.Decimal
	BalanceDifference   decimal.Decimal
	ActiveSubscriptions decimal.Decimal
	NetSubscribed       decimal.Decimal
	IsReconciled        bool
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	CheckedAt           time.Time
	Discrepancies       []*ReconciliationResult
	TotalCustomers      int
	ReconciledCustomers int
}

// Consistent reports whether every customer reconciled.
func (r *ReconciliationReport) Consistent() bool {
	return len(r.Discrepancies) == 0
}

// GenerateReport checks, per customer, that the balance equals the signed sum of the ledger
// and that open subscriptions equal subscribed minus cancelled entries.
func (uc *ReconciliationUseCase) GenerateReport(ctx context.Context) (*ReconciliationReport, error) {
	totals, err := uc.ledgerRepo.CustomerTotals(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalCustomers: len(totals),
		Discrepancies:  make([]*ReconciliationResult, 0),
		CheckedAt:      time.Now().UTC(),
	}

	for _, t := range totals {
		result := &ReconciliationResult{
			CustomerID:          t.CustomerID,
			RecordedBalance:     t.Balance,
			LedgerBalance:       t.LedgerBalance,
			BalanceDifference:   t.Balance.Sub(t.LedgerBalance),
			ActiveSubscriptions: t.ActiveSubscriptions,
			NetSubscribed:       t.NetSubscribed,
		}
		result.IsReconciled = result.BalanceDifference.IsZero() && t.ActiveSubscriptions.Equal(t.NetSubscribed)

		if result.IsReconciled {
			report.ReconciledCustomers++
			continue
		}

		report.Discrepancies = append(report.Discrepancies, result)
		uc.logger.Error().
			Str("customer_id", t.CustomerID).
			Str("balance", t.Balance.String()).
			Str("ledger_balance", t.LedgerBalance.String()).
			Str("active_subscriptions", t.ActiveSubscriptions.String()).
			Str("net_subscribed", t.NetSubscribed.String()).
			Msg("reconciliation discrepancy")
	}

	if uc.metrics != nil {
		outcome := "consistent"
		if !report.Consistent() {
			outcome = "inconsistent"
		}
		uc.metrics.ReconciliationRuns.WithLabelValues(outcome).Inc()
	}

	return report, nil
}
