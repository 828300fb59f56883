package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/gofunds/internal/domain"
)

var customerColumns = []string{
	"id", "first_name", "last_name", "email", "phone", "date_of_birth",
	"balance", "version", "active", "last_login_at", "created_at", "updated_at",
}

func TestCustomerRepositoryGetByID(t *testing.T) {
	pool := newMockPool(t)
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	pool.ExpectQuery("FROM customers WHERE id = \\$1").
		WithArgs("c-1").
		WillReturnRows(pool.NewRows(customerColumns).AddRow(
			"c-1", "Ana", "Gomez", "ana@example.com", "+573001234567", now.AddDate(-30, 0, 0),
			"450000.50", int64(3), true, nil, now, now,
		))

	customer, err := newCustomerRepository(pool).GetByID(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !customer.Balance.Equal(decimal.RequireFromString("450000.50")) {
		t.Fatalf("unexpected balance %s", customer.Balance)
	}
	if customer.Version != 3 || customer.LastLoginAt != nil {
		t.Fatalf("unexpected customer %+v", customer)
	}

	assertExpectations(t, pool)
}

func TestCustomerRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM customers WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := newCustomerRepository(pool).GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected customer not found, got %v", err)
	}
}

func TestCustomerRepositoryUpdateVersionConflict(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec("UPDATE customers").
		WithArgs("c-1", "Ana", "Gomez", "+573001234567", pgxmock.AnyArg(), true, pgxmock.AnyArg(), pgxmock.AnyArg(), int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	customer := &domain.Customer{
		ID: "c-1", FirstName: "Ana", LastName: "Gomez", Phone: "+573001234567",
		Balance: decimal.NewFromInt(100), Active: true, Version: 2,
	}

	err := newCustomerRepository(pool).Update(context.Background(), tx, customer)
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
	if customer.Version != 2 {
		t.Fatalf("version must not advance on conflict, got %d", customer.Version)
	}

	assertExpectations(t, pool)
}

func TestCustomerRepositoryUpdateAdvancesVersion(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec("UPDATE customers").
		WithArgs("c-1", "Ana", "Gomez", "+573001234567", pgxmock.AnyArg(), true, pgxmock.AnyArg(), pgxmock.AnyArg(), int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	customer := &domain.Customer{
		ID: "c-1", FirstName: "Ana", LastName: "Gomez", Phone: "+573001234567",
		Balance: decimal.NewFromInt(100), Active: true, Version: 2,
	}

	if err := newCustomerRepository(pool).Update(context.Background(), tx, customer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if customer.Version != 3 {
		t.Fatalf("expected version 3, got %d", customer.Version)
	}
}

func TestCustomerRepositoryCreateDuplicateEmail(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectQuery("INSERT INTO customers").
		WithArgs("c-2", pgxmock.AnyArg(), pgxmock.AnyArg(), "ana@example.com", pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: constraintCustomerEmail})

	customer := &domain.Customer{ID: "c-2", Email: "ana@example.com", Balance: decimal.Zero}
	err := newCustomerRepository(pool).Create(context.Background(), tx, customer)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubscriptionRepositoryCreateDuplicateActive(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec("INSERT INTO subscriptions").
		WithArgs("s-1", "c-1", "f-1", pgxmock.AnyArg(), "active", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: constraintActiveSubscription})

	sub, err := domain.NewSubscription("s-1", "c-1", "f-1", decimal.NewFromInt(100000), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = newSubscriptionRepository(pool).Create(context.Background(), tx, &sub)
	if !errors.Is(err, domain.ErrDuplicateActiveSubscription) {
		t.Fatalf("expected duplicate active subscription, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestSubscriptionRepositoryHasActive(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectQuery("SELECT EXISTS").
		WithArgs("c-1", "f-1").
		WillReturnRows(pool.NewRows([]string{"exists"}).AddRow(true))

	exists, err := newSubscriptionRepository(pool).HasActiveSubscription(context.Background(), tx, "c-1", "f-1")
	if err != nil || !exists {
		t.Fatalf("expected active subscription, got %v %v", exists, err)
	}
}

func TestTransactionRepositoryGetHistory(t *testing.T) {
	pool := newMockPool(t)
	now := time.Now().UTC()

	pool.ExpectQuery("FROM transactions").
		WithArgs("c-1", "01J0000000000000000000000Z", int32(3)).
		WillReturnRows(pool.NewRows([]string{
			"id", "customer_id", "fund_id", "subscription_id", "type", "amount", "description", "status", "created_at",
		}).
			AddRow("01J0000000000000000000000Y", "c-1", "f-1", "s-1", "cancellation", "75000", "Cancellation of subscription to fund X", "completed", now).
			AddRow("01J0000000000000000000000X", "c-1", nil, nil, "deposit", "500000", "Initial deposit", "completed", now))

	entries, err := newTransactionRepository(pool).GetHistory(context.Background(), "c-1", 3, "01J0000000000000000000000Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].SubscriptionID == nil || *entries[0].SubscriptionID != "s-1" {
		t.Fatalf("expected subscription reference on first entry")
	}
	if entries[1].FundID != nil {
		t.Fatalf("deposit must not reference a fund")
	}
	if !entries[0].BalanceEffect().Equal(decimal.NewFromInt(75000)) {
		t.Fatalf("unexpected balance effect %s", entries[0].BalanceEffect())
	}

	assertExpectations(t, pool)
}

func TestNotificationOutboxClaimPending(t *testing.T) {
	pool := newMockPool(t)
	now := time.Now().UTC()

	payload := []byte(`{"occurred_at":"2025-01-15T10:00:00Z","email":"ana@example.com","phone":"+573001234567","customer_name":"Ana Gomez","fund_name":"DEUDAPRIVADA","reference":"ABCD1234","amount":"75000"}`)

	pool.ExpectQuery("FOR UPDATE SKIP LOCKED").
		WithArgs(int32(10)).
		WillReturnRows(pool.NewRows([]string{
			"id", "kind", "customer_id", "subscription_id", "payload", "status", "attempts", "last_error", "created_at", "claimed_at", "processed_at",
		}).AddRow("n-1", "subscription_confirmation", "c-1", "s-1", payload, "processing", int32(1), "", now, now, nil))

	jobs, err := newNotificationOutbox(pool).ClaimPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	job := jobs[0]
	if job.Kind != domain.NotificationSubscriptionConfirmation || job.Status != domain.NotificationStatusProcessing {
		t.Fatalf("unexpected job %+v", job)
	}
	if job.Payload.FundName != "DEUDAPRIVADA" || !job.Payload.Amount.Equal(decimal.NewFromInt(75000)) {
		t.Fatalf("unexpected payload %+v", job.Payload)
	}
}

func TestNotificationOutboxMarkSentRequiresClaim(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectExec("UPDATE notification_jobs SET status = 'sent'").
		WithArgs("n-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := newNotificationOutbox(pool).MarkSent(context.Background(), "n-1", time.Now()); err == nil {
		t.Fatalf("expected error for unclaimed job")
	}
}

func TestNotificationOutboxReleaseStale(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectExec("SET status = 'pending'").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	released, err := newNotificationOutbox(pool).ReleaseStale(context.Background(), time.Now().Add(-time.Minute))
	if err != nil || released != 2 {
		t.Fatalf("expected 2 released jobs, got %d %v", released, err)
	}
}

func TestLedgerRepositoryCustomerTotals(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM customers c").
		WillReturnRows(pool.NewRows([]string{"customer_id", "balance", "ledger_balance", "active_subscriptions", "net_subscribed"}).
			AddRow("c-1", "425000", "425000", "75000", "75000"))

	totals, err := newLedgerRepository(pool).CustomerTotals(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(totals) != 1 || !totals[0].LedgerBalance.Equal(decimal.NewFromInt(425000)) {
		t.Fatalf("unexpected totals %+v", totals)
	}
}
