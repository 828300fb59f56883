package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/infrastructure/metrics"
)

const (
	workflowSubscribe = "subscribe"
	workflowCancel    = "cancel"
)

// SubscriptionUseCase runs the subscribe and cancel workflows.
type SubscriptionUseCase struct {
	txManager        TransactionManager
	customerRepo     CustomerRepository
	fundRepo         FundRepository
	subscriptionRepo SubscriptionRepository
	transactionRepo  TransactionRepository
	outbox           NotificationOutbox
	idGen            IDGenerator
	retrier          Retrier
	signal           NotificationSignal
	metrics          *metrics.Metrics
	logger           zerolog.Logger
	now              func() time.Time
}

// NewSubscriptionUseCase creates a new SubscriptionUseCase.
func NewSubscriptionUseCase(
	txManager TransactionManager,
	customerRepo CustomerRepository,
	fundRepo FundRepository,
	subscriptionRepo SubscriptionRepository,
	transactionRepo TransactionRepository,
	outbox NotificationOutbox,
	idGen IDGenerator,
) *SubscriptionUseCase {
	return &SubscriptionUseCase{
		txManager:        txManager,
		customerRepo:     customerRepo,
		fundRepo:         fundRepo,
		subscriptionRepo: subscriptionRepo,
		transactionRepo:  transactionRepo,
		outbox:           outbox,
		idGen:            idGen,
		retrier:          onceRetrier{},
		logger:           zerolog.Nop(),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// WithRetrier sets the retrier used around each unit of work.
func (uc *SubscriptionUseCase) WithRetrier(r Retrier) *SubscriptionUseCase {
	if r != nil {
		uc.retrier = r
	}
	return uc
}

// WithSignal sets the dispatcher wake-up called after commit.
func (uc *SubscriptionUseCase) WithSignal(s NotificationSignal) *SubscriptionUseCase {
	uc.signal = s
	return uc
}

// WithMetrics enables Prometheus instrumentation.
func (uc *SubscriptionUseCase) WithMetrics(m *metrics.Metrics) *SubscriptionUseCase {
	uc.metrics = m
	return uc
}

// WithLogger sets the logger.
func (uc *SubscriptionUseCase) WithLogger(l zerolog.Logger) *SubscriptionUseCase {
	uc.logger = l
	return uc
}

// SubscribeInput represents input for subscribing to a fund.
type SubscribeInput struct {
	CustomerID string
	FundID     string
	Amount     decimal.Decimal
}

// CancelInput represents input for cancelling a subscription.
// CustomerID is the requester and must own the subscription.
type CancelInput struct {
	SubscriptionID string
	CustomerID     string
}

// Subscribe debits the customer, opens a subscription and records the ledger entry atomically.
func (uc *SubscriptionUseCase) Subscribe(ctx context.Context, input SubscribeInput) (*domain.Subscription, error) {
	start := time.Now()

	if err := validateSubscribeInput(input); err != nil {
		uc.recordFailure(workflowSubscribe, err)
		return nil, err
	}

	var sub *domain.Subscription
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		sub, err = uc.subscribe(ctx, input)
		return err
	})
	if err != nil {
		uc.recordFailure(workflowSubscribe, err)
		return nil, err
	}

	uc.notify()

	if uc.metrics != nil {
		uc.metrics.SubscriptionsCreated.Inc()
		uc.metrics.NotificationsEnqueued.Inc()
		uc.metrics.SubscriptionAmount.Observe(sub.Amount.InexactFloat64())
		uc.metrics.WorkflowDuration.WithLabelValues(workflowSubscribe).Observe(time.Since(start).Seconds())
	}

	uc.logger.Info().
		Str("subscription_id", sub.ID).
		Str("customer_id", sub.CustomerID).
		Str("fund_id", sub.FundID).
		Str("amount", sub.Amount.String()).
		Msg("subscription created")

	return sub, nil
}

func (uc *SubscriptionUseCase) subscribe(ctx context.Context, input SubscribeInput) (*domain.Subscription, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	customer, err := uc.customerRepo.GetByIDForUpdate(txCtx, tx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.Active {
		return nil, domain.Inactive(domain.EntityCustomer, customer.ID)
	}

	fund, err := uc.fundRepo.GetByID(txCtx, input.FundID)
	if err != nil {
		return nil, err
	}
	if !fund.Active {
		return nil, domain.Inactive(domain.EntityFund, fund.ID)
	}

	if input.Amount.LessThan(fund.MinimumAmount) {
		return nil, &domain.Error{
			Kind:    domain.KindBelowMinimum,
			Entity:  domain.EntityFund,
			ID:      fund.ID,
			Message: fmt.Sprintf("minimum amount for fund %s is %s", fund.Name, fund.MinimumAmount.StringFixed(2)),
		}
	}

	if !customer.CanSubscribe(input.Amount) {
		return nil, &domain.Error{
			Kind:    domain.KindInsufficientFunds,
			Entity:  domain.EntityCustomer,
			ID:      customer.ID,
			Message: fmt.Sprintf("insufficient balance to subscribe to fund %s", fund.Name),
		}
	}

	exists, err := uc.subscriptionRepo.HasActiveSubscription(txCtx, tx, customer.ID, fund.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &domain.Error{Kind: domain.KindDuplicateActiveSubscription, Entity: domain.EntityFund, ID: fund.ID}
	}

	now := uc.now()

	sub, err := domain.NewSubscription(uc.idGen.Generate(), customer.ID, fund.ID, input.Amount, now)
	if err != nil {
		return nil, err
	}

	debited, err := customer.DeductBalance(input.Amount)
	if err != nil {
		return nil, err
	}
	debited.UpdatedAt = now

	entry, err := domain.NewTransaction(domain.NewTransactionParams{
		ID:             uc.idGen.Generate(),
		CustomerID:     customer.ID,
		FundID:         fund.ID,
		SubscriptionID: sub.ID,
		Type:           domain.TransactionTypeSubscription,
		Amount:         input.Amount,
		Description:    fmt.Sprintf("Subscription to fund %s", fund.Name),
	}, now)
	if err != nil {
		return nil, err
	}

	job := domain.NewNotificationJob(uc.idGen.Generate(), domain.NotificationSubscriptionConfirmation, debited, *fund, sub, now)

	if err := uc.subscriptionRepo.Create(txCtx, tx, &sub); err != nil {
		return nil, err
	}
	if err := uc.customerRepo.Update(txCtx, tx, &debited); err != nil {
		return nil, err
	}
	if err := uc.transactionRepo.Create(txCtx, tx, &entry); err != nil {
		return nil, err
	}
	if err := uc.outbox.Enqueue(txCtx, tx, &job); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &sub, nil
}

// Cancel closes an active subscription owned by the requester and refunds its amount.
// It returns the committed, cancelled subscription.
func (uc *SubscriptionUseCase) Cancel(ctx context.Context, input CancelInput) (*domain.Subscription, error) {
	start := time.Now()

	if strings.TrimSpace(input.SubscriptionID) == "" || strings.TrimSpace(input.CustomerID) == "" {
		err := domain.Validation("subscription id and customer id are required")
		uc.recordFailure(workflowCancel, err)
		return nil, err
	}

	var cancelled *domain.Subscription
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		cancelled, err = uc.cancel(ctx, input)
		return err
	})
	if err != nil {
		uc.recordFailure(workflowCancel, err)
		return nil, err
	}

	uc.notify()

	if uc.metrics != nil {
		uc.metrics.SubscriptionsCancelled.Inc()
		uc.metrics.NotificationsEnqueued.Inc()
		uc.metrics.WorkflowDuration.WithLabelValues(workflowCancel).Observe(time.Since(start).Seconds())
	}

	uc.logger.Info().
		Str("subscription_id", cancelled.ID).
		Str("customer_id", cancelled.CustomerID).
		Str("refund", cancelled.Amount.String()).
		Msg("subscription cancelled")

	return cancelled, nil
}

func (uc *SubscriptionUseCase) cancel(ctx context.Context, input CancelInput) (*domain.Subscription, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	sub, err := uc.subscriptionRepo.GetByIDForUpdate(txCtx, tx, input.SubscriptionID)
	if err != nil {
		return nil, err
	}

	if sub.CustomerID != input.CustomerID {
		return nil, &domain.Error{Kind: domain.KindUnauthorized, Entity: domain.EntitySubscription, ID: sub.ID}
	}

	if !sub.IsActive() {
		return nil, &domain.Error{Kind: domain.KindAlreadyCancelled, Entity: domain.EntitySubscription, ID: sub.ID}
	}

	customer, err := uc.customerRepo.GetByIDForUpdate(txCtx, tx, sub.CustomerID)
	if err != nil {
		return nil, uc.danglingReference(sub, domain.EntityCustomer, sub.CustomerID, err)
	}

	fund, err := uc.fundRepo.GetByID(txCtx, sub.FundID)
	if err != nil {
		return nil, uc.danglingReference(sub, domain.EntityFund, sub.FundID, err)
	}

	now := uc.now()

	closed, err := sub.Cancel(now)
	if err != nil {
		return nil, err
	}

	refunded, err := customer.AddBalance(sub.Amount)
	if err != nil {
		return nil, err
	}
	refunded.UpdatedAt = now

	entry, err := domain.NewTransaction(domain.NewTransactionParams{
		ID:             uc.idGen.Generate(),
		CustomerID:     customer.ID,
		FundID:         fund.ID,
		SubscriptionID: sub.ID,
		Type:           domain.TransactionTypeCancellation,
		Amount:         sub.Amount,
		Description:    fmt.Sprintf("Cancellation of subscription to fund %s", fund.Name),
	}, now)
	if err != nil {
		return nil, err
	}

	job := domain.NewNotificationJob(uc.idGen.Generate(), domain.NotificationCancellationConfirmation, refunded, *fund, closed, now)

	if err := uc.subscriptionRepo.Update(txCtx, tx, &closed); err != nil {
		return nil, err
	}
	if err := uc.customerRepo.Update(txCtx, tx, &refunded); err != nil {
		return nil, err
	}
	if err := uc.transactionRepo.Create(txCtx, tx, &entry); err != nil {
		return nil, err
	}
	if err := uc.outbox.Enqueue(txCtx, tx, &job); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &closed, nil
}

// danglingReference turns a missing customer or fund behind an existing subscription into
// an integrity violation. Other errors pass through.
func (uc *SubscriptionUseCase) danglingReference(sub *domain.Subscription, entity domain.Entity, id string, err error) error {
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.IntegrityViolations.Inc()
	}

	uc.logger.Error().
		Str("subscription_id", sub.ID).
		Str("entity", string(entity)).
		Str("entity_id", id).
		Msg("integrity violation: subscription references a missing record")

	return domain.IntegrityViolation(entity, id, "referenced by subscription "+sub.ID+" does not exist")
}

// GetSubscription retrieves a subscription by ID.
func (uc *SubscriptionUseCase) GetSubscription(ctx context.Context, id string) (*domain.Subscription, error) {
	return uc.subscriptionRepo.GetByID(ctx, id)
}

// ListCustomerSubscriptions lists a customer's subscriptions, optionally only active ones.
func (uc *SubscriptionUseCase) ListCustomerSubscriptions(ctx context.Context, customerID string, activeOnly bool) ([]*domain.Subscription, error) {
	if _, err := uc.customerRepo.GetByID(ctx, customerID); err != nil {
		return nil, err
	}

	return uc.subscriptionRepo.ListByCustomer(ctx, customerID, activeOnly)
}

func (uc *SubscriptionUseCase) notify() {
	if uc.signal != nil {
		uc.signal.Notify()
	}
}

func (uc *SubscriptionUseCase) recordFailure(workflow string, err error) {
	if uc.metrics != nil {
		uc.metrics.WorkflowErrors.WithLabelValues(workflow, domain.KindOf(err).String()).Inc()
	}

	if domain.KindOf(err) == domain.KindUnknown {
		uc.logger.Error().Err(err).Str("workflow", workflow).Msg("workflow failed")
		return
	}

	uc.logger.Debug().Err(err).Str("workflow", workflow).Msg("workflow rejected")
}

func validateSubscribeInput(input SubscribeInput) error {
	if strings.TrimSpace(input.CustomerID) == "" {
		return domain.Validation("customer id is required")
	}
	if strings.TrimSpace(input.FundID) == "" {
		return domain.Validation("fund id is required")
	}
	return domain.ValidateSubscriptionAmount(input.Amount)
}

// onceRetrier runs the operation a single time.
type onceRetrier struct{}

func (onceRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}
