package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/infrastructure/metrics"
	"github.com/iho/gofunds/internal/usecase"
	"github.com/iho/gofunds/internal/usecase/mocks"
)

type subscriptionMocks struct {
	txManager     *mocks.MockTransactionManager
	tx            *mocks.MockTransaction
	customers     *mocks.MockCustomerRepository
	funds         *mocks.MockFundRepository
	subscriptions *mocks.MockSubscriptionRepository
	ledger        *mocks.MockTransactionRepository
	outbox        *mocks.MockNotificationOutbox
	idGen         *mocks.MockIDGenerator
	signal        *mocks.MockNotificationSignal
}

func newSubscriptionMocks(t *testing.T) (*subscriptionMocks, *usecase.SubscriptionUseCase) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := &subscriptionMocks{
		txManager:     mocks.NewMockTransactionManager(ctrl),
		tx:            mocks.NewMockTransaction(ctrl),
		customers:     mocks.NewMockCustomerRepository(ctrl),
		funds:         mocks.NewMockFundRepository(ctrl),
		subscriptions: mocks.NewMockSubscriptionRepository(ctrl),
		ledger:        mocks.NewMockTransactionRepository(ctrl),
		outbox:        mocks.NewMockNotificationOutbox(ctrl),
		idGen:         mocks.NewMockIDGenerator(ctrl),
		signal:        mocks.NewMockNotificationSignal(ctrl),
	}

	var seq atomic.Int64
	m.idGen.EXPECT().Generate().DoAndReturn(func() string {
		return fmt.Sprintf("id-%03d", seq.Add(1))
	}).AnyTimes()
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	uc := usecase.NewSubscriptionUseCase(m.txManager, m.customers, m.funds, m.subscriptions, m.ledger, m.outbox, m.idGen).
		WithSignal(m.signal)

	return m, uc
}

func activeCustomer(balance int64) *domain.Customer {
	return &domain.Customer{
		ID:        "cust-1",
		FirstName: "Ana",
		LastName:  "Gomez",
		Email:     "ana@example.com",
		Phone:     "+573001234567",
		Balance:   decimal.NewFromInt(balance),
		Active:    true,
		Version:   1,
	}
}

func activeFund(minimum int64) *domain.Fund {
	return &domain.Fund{
		ID:            "fund-1",
		Name:          "FPV_BTG_PACTUAL_RECAUDADORA",
		MinimumAmount: decimal.NewFromInt(minimum),
		Category:      domain.FundCategoryConservativeFixedIncome,
		Active:        true,
	}
}

func TestSubscriptionUseCase_Subscribe_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		amount    int64
		customer  func() (*domain.Customer, error)
		fund      func() (*domain.Fund, error)
		duplicate bool
		wantErr   error
	}{
		{
			name:     "customer not found",
			amount:   100000,
			customer: func() (*domain.Customer, error) { return nil, domain.NotFound(domain.EntityCustomer, "cust-1") },
			wantErr:  domain.ErrCustomerNotFound,
		},
		{
			name:   "customer inactive",
			amount: 100000,
			customer: func() (*domain.Customer, error) {
				c := activeCustomer(500000)
				c.Active = false
				return c, nil
			},
			wantErr: domain.ErrInactive,
		},
		{
			name:     "fund not found",
			amount:   100000,
			customer: func() (*domain.Customer, error) { return activeCustomer(500000), nil },
			fund:     func() (*domain.Fund, error) { return nil, domain.NotFound(domain.EntityFund, "fund-1") },
			wantErr:  domain.ErrFundNotFound,
		},
		{
			name:     "fund inactive",
			amount:   100000,
			customer: func() (*domain.Customer, error) { return activeCustomer(500000), nil },
			fund: func() (*domain.Fund, error) {
				f := activeFund(75000)
				f.Active = false
				return f, nil
			},
			wantErr: domain.ErrInactive,
		},
		{
			name:     "below minimum",
			amount:   50000,
			customer: func() (*domain.Customer, error) { return activeCustomer(500000), nil },
			fund:     func() (*domain.Fund, error) { return activeFund(75000), nil },
			wantErr:  domain.ErrBelowMinimum,
		},
		{
			name:     "insufficient funds",
			amount:   75000,
			customer: func() (*domain.Customer, error) { return activeCustomer(50000), nil },
			fund:     func() (*domain.Fund, error) { return activeFund(75000), nil },
			wantErr:  domain.ErrInsufficientFunds,
		},
		{
			name:      "duplicate active subscription",
			amount:    100000,
			customer:  func() (*domain.Customer, error) { return activeCustomer(500000), nil },
			fund:      func() (*domain.Fund, error) { return activeFund(75000), nil },
			duplicate: true,
			wantErr:   domain.ErrDuplicateActiveSubscription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, uc := newSubscriptionMocks(t)

			m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
			m.customers.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "cust-1").DoAndReturn(
				func(context.Context, usecase.Transaction, string) (*domain.Customer, error) { return tt.customer() },
			)
			if tt.fund != nil {
				m.funds.EXPECT().GetByID(gomock.Any(), "fund-1").DoAndReturn(
					func(context.Context, string) (*domain.Fund, error) { return tt.fund() },
				)
			}
			if errors.Is(tt.wantErr, domain.ErrDuplicateActiveSubscription) {
				m.subscriptions.EXPECT().HasActiveSubscription(gomock.Any(), m.tx, "cust-1", "fund-1").Return(tt.duplicate, nil)
			}
			// no Create/Update/Commit/Notify expectations: any such call fails the test

			sub, err := uc.Subscribe(context.Background(), usecase.SubscribeInput{
				CustomerID: "cust-1",
				FundID:     "fund-1",
				Amount:     decimal.NewFromInt(tt.amount),
			})

			require.Error(t, err)
			assert.Nil(t, sub)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSubscriptionUseCase_Subscribe_InputValidation(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.SubscribeInput
	}{
		{"missing customer", usecase.SubscribeInput{FundID: "fund-1", Amount: decimal.NewFromInt(100000)}},
		{"missing fund", usecase.SubscribeInput{CustomerID: "cust-1", Amount: decimal.NewFromInt(100000)}},
		{"zero amount", usecase.SubscribeInput{CustomerID: "cust-1", FundID: "fund-1"}},
		{"negative amount", usecase.SubscribeInput{CustomerID: "cust-1", FundID: "fund-1", Amount: decimal.NewFromInt(-5)}},
		{"above cap", usecase.SubscribeInput{CustomerID: "cust-1", FundID: "fund-1", Amount: decimal.NewFromInt(50000001)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, uc := newSubscriptionMocks(t)

			_, err := uc.Subscribe(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestSubscriptionUseCase_Subscribe_Success(t *testing.T) {
	m, uc := newSubscriptionMocks(t)
	customer := activeCustomer(1000000)
	fund := activeFund(75000)

	gomock.InOrder(
		m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil),
		m.customers.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, customer.ID).Return(customer, nil),
		m.funds.EXPECT().GetByID(gomock.Any(), fund.ID).Return(fund, nil),
		m.subscriptions.EXPECT().HasActiveSubscription(gomock.Any(), m.tx, customer.ID, fund.ID).Return(false, nil),
		m.subscriptions.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ usecase.Transaction, s *domain.Subscription) error {
				assert.True(t, s.IsActive())
				assert.True(t, s.Amount.Equal(decimal.NewFromInt(500000)))
				return nil
			}),
		m.customers.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ usecase.Transaction, c *domain.Customer) error {
				assert.True(t, c.Balance.Equal(decimal.NewFromInt(500000)), "balance %s", c.Balance)
				assert.Equal(t, int64(1), c.Version)
				return nil
			}),
		m.ledger.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ usecase.Transaction, e *domain.Transaction) error {
				assert.Equal(t, domain.TransactionTypeSubscription, e.Type)
				assert.Equal(t, domain.TransactionStatusCompleted, e.Status)
				assert.True(t, e.Amount.Equal(decimal.NewFromInt(500000)))
				return nil
			}),
		m.outbox.EXPECT().Enqueue(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ usecase.Transaction, j *domain.NotificationJob) error {
				assert.Equal(t, domain.NotificationSubscriptionConfirmation, j.Kind)
				assert.Equal(t, "Ana Gomez", j.Payload.CustomerName)
				assert.Equal(t, fund.Name, j.Payload.FundName)
				return nil
			}),
		m.tx.EXPECT().Commit(gomock.Any()).Return(nil),
		m.signal.EXPECT().Notify(),
	)

	sub, err := uc.Subscribe(context.Background(), usecase.SubscribeInput{
		CustomerID: customer.ID,
		FundID:     fund.ID,
		Amount:     decimal.NewFromInt(500000),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusActive, sub.Status)
	assert.True(t, customer.Balance.Equal(decimal.NewFromInt(1000000)), "loaded snapshot must not be mutated")
}

func TestSubscriptionUseCase_Subscribe_PersistenceFailureSkipsCommit(t *testing.T) {
	m, uc := newSubscriptionMocks(t)
	storageErr := errors.New("connection reset")

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.customers.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "cust-1").Return(activeCustomer(500000), nil)
	m.funds.EXPECT().GetByID(gomock.Any(), "fund-1").Return(activeFund(75000), nil)
	m.subscriptions.EXPECT().HasActiveSubscription(gomock.Any(), m.tx, "cust-1", "fund-1").Return(false, nil)
	m.subscriptions.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.customers.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.ledger.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(storageErr)
	// neither Enqueue, Commit nor Notify may run

	_, err := uc.Subscribe(context.Background(), usecase.SubscribeInput{
		CustomerID: "cust-1",
		FundID:     "fund-1",
		Amount:     decimal.NewFromInt(100000),
	})

	assert.ErrorIs(t, err, storageErr)
}

func TestSubscriptionUseCase_Subscribe_RetriesVersionConflict(t *testing.T) {
	m, uc := newSubscriptionMocks(t)
	uc.WithRetrier(conflictRetrier{attempts: 3})

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil).Times(2)
	m.customers.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "cust-1").DoAndReturn(
		func(context.Context, usecase.Transaction, string) (*domain.Customer, error) {
			return activeCustomer(500000), nil
		},
	).Times(2)
	m.funds.EXPECT().GetByID(gomock.Any(), "fund-1").Return(activeFund(75000), nil).Times(2)
	m.subscriptions.EXPECT().HasActiveSubscription(gomock.Any(), m.tx, "cust-1", "fund-1").Return(false, nil).Times(2)
	m.subscriptions.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil).Times(2)
	gomock.InOrder(
		m.customers.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).Return(domain.ErrVersionConflict),
		m.customers.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).Return(nil),
	)
	m.ledger.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.outbox.EXPECT().Enqueue(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.signal.EXPECT().Notify()

	_, err := uc.Subscribe(context.Background(), usecase.SubscribeInput{
		CustomerID: "cust-1",
		FundID:     "fund-1",
		Amount:     decimal.NewFromInt(100000),
	})

	require.NoError(t, err)
}

func TestSubscriptionUseCase_Cancel_Rejections(t *testing.T) {
	owned := func(status domain.SubscriptionStatus) *domain.Subscription {
		return &domain.Subscription{
			ID:         "sub-1",
			CustomerID: "cust-1",
			FundID:     "fund-1",
			Amount:     decimal.NewFromInt(100000),
			Status:     status,
		}
	}

	tests := []struct {
		name      string
		requester string
		sub       func() (*domain.Subscription, error)
		wantErr   error
	}{
		{
			name:      "subscription not found",
			requester: "cust-1",
			sub:       func() (*domain.Subscription, error) { return nil, domain.NotFound(domain.EntitySubscription, "sub-1") },
			wantErr:   domain.ErrSubscriptionNotFound,
		},
		{
			name:      "not the owner",
			requester: "cust-2",
			sub:       func() (*domain.Subscription, error) { return owned(domain.SubscriptionStatusActive), nil },
			wantErr:   domain.ErrUnauthorized,
		},
		{
			name:      "ownership is checked before status",
			requester: "cust-2",
			sub:       func() (*domain.Subscription, error) { return owned(domain.SubscriptionStatusCancelled), nil },
			wantErr:   domain.ErrUnauthorized,
		},
		{
			name:      "already cancelled",
			requester: "cust-1",
			sub:       func() (*domain.Subscription, error) { return owned(domain.SubscriptionStatusCancelled), nil },
			wantErr:   domain.ErrAlreadyCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, uc := newSubscriptionMocks(t)

			m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
			m.subscriptions.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "sub-1").DoAndReturn(
				func(context.Context, usecase.Transaction, string) (*domain.Subscription, error) { return tt.sub() },
			)

			_, err := uc.Cancel(context.Background(), usecase.CancelInput{SubscriptionID: "sub-1", CustomerID: tt.requester})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSubscriptionUseCase_Cancel_IntegrityViolation(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *subscriptionMocks)
	}{
		{
			name: "missing customer",
			setup: func(m *subscriptionMocks) {
				m.customers.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "cust-1").
					Return(nil, domain.NotFound(domain.EntityCustomer, "cust-1"))
			},
		},
		{
			name: "missing fund",
			setup: func(m *subscriptionMocks) {
				m.customers.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "cust-1").Return(activeCustomer(0), nil)
				m.funds.EXPECT().GetByID(gomock.Any(), "fund-1").Return(nil, domain.NotFound(domain.EntityFund, "fund-1"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, uc := newSubscriptionMocks(t)
			met := metrics.NewWithRegisterer(prometheus.NewRegistry())
			uc.WithMetrics(met)

			m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
			m.subscriptions.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "sub-1").Return(&domain.Subscription{
				ID:         "sub-1",
				CustomerID: "cust-1",
				FundID:     "fund-1",
				Amount:     decimal.NewFromInt(100000),
				Status:     domain.SubscriptionStatusActive,
			}, nil)
			tt.setup(m)

			_, err := uc.Cancel(context.Background(), usecase.CancelInput{SubscriptionID: "sub-1", CustomerID: "cust-1"})

			assert.ErrorIs(t, err, domain.ErrIntegrityViolation)
			assert.False(t, errors.Is(err, domain.ErrNotFound), "must not surface as an ordinary not-found")
			assert.Equal(t, 1.0, testutil.ToFloat64(met.IntegrityViolations))
		})
	}
}

func TestSubscriptionUseCase_Cancel_Success(t *testing.T) {
	m, uc := newSubscriptionMocks(t)
	customer := activeCustomer(500000)
	fund := activeFund(75000)
	sub := &domain.Subscription{
		ID:         "sub-1",
		CustomerID: customer.ID,
		FundID:     fund.ID,
		Amount:     decimal.NewFromInt(500000),
		Status:     domain.SubscriptionStatusActive,
	}

	gomock.InOrder(
		m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil),
		m.subscriptions.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, sub.ID).Return(sub, nil),
		m.customers.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, customer.ID).Return(customer, nil),
		m.funds.EXPECT().GetByID(gomock.Any(), fund.ID).Return(fund, nil),
		m.subscriptions.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ usecase.Transaction, s *domain.Subscription) error {
				assert.Equal(t, domain.SubscriptionStatusCancelled, s.Status)
				assert.NotNil(t, s.CancelledAt)
				return nil
			}),
		m.customers.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ usecase.Transaction, c *domain.Customer) error {
				assert.True(t, c.Balance.Equal(decimal.NewFromInt(1000000)), "balance %s", c.Balance)
				return nil
			}),
		m.ledger.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ usecase.Transaction, e *domain.Transaction) error {
				assert.Equal(t, domain.TransactionTypeCancellation, e.Type)
				assert.True(t, e.Amount.Equal(decimal.NewFromInt(500000)))
				return nil
			}),
		m.outbox.EXPECT().Enqueue(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ usecase.Transaction, j *domain.NotificationJob) error {
				assert.Equal(t, domain.NotificationCancellationConfirmation, j.Kind)
				return nil
			}),
		m.tx.EXPECT().Commit(gomock.Any()).Return(nil),
		m.signal.EXPECT().Notify(),
	)

	cancelled, err := uc.Cancel(context.Background(), usecase.CancelInput{SubscriptionID: sub.ID, CustomerID: customer.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
}

func TestSubscriptionUseCase_Cancel_RequiresIDs(t *testing.T) {
	_, uc := newSubscriptionMocks(t)

	_, err := uc.Cancel(context.Background(), usecase.CancelInput{SubscriptionID: "sub-1"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSubscriptionUseCase_RecordsRejectionMetrics(t *testing.T) {
	m, uc := newSubscriptionMocks(t)
	met := metrics.NewWithRegisterer(prometheus.NewRegistry())
	uc.WithMetrics(met)

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.customers.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "cust-1").Return(activeCustomer(500000), nil)
	m.funds.EXPECT().GetByID(gomock.Any(), "fund-1").Return(activeFund(75000), nil)

	_, err := uc.Subscribe(context.Background(), usecase.SubscribeInput{
		CustomerID: "cust-1",
		FundID:     "fund-1",
		Amount:     decimal.NewFromInt(1000),
	})

	require.ErrorIs(t, err, domain.ErrBelowMinimum)
	assert.Equal(t, 1.0, testutil.ToFloat64(met.WorkflowErrors.WithLabelValues("subscribe", "below_minimum")))
	assert.Equal(t, 0.0, testutil.ToFloat64(met.SubscriptionsCreated))
}

// conflictRetrier re-runs the operation while it fails with a version conflict.
type conflictRetrier struct {
	attempts int
}

func (r conflictRetrier) Retry(_ context.Context, op func() error) error {
	var err error
	for i := 0; i < r.attempts; i++ {
		if err = op(); !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
	}
	return err
}
