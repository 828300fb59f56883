package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/infrastructure/metrics"
)

// CustomerUseCase handles customer registration and cash movements.
type CustomerUseCase struct {
	txManager       TransactionManager
	customerRepo    CustomerRepository
	transactionRepo TransactionRepository
	idGen           IDGenerator
	retrier         Retrier
	metrics         *metrics.Metrics
	logger          zerolog.Logger
}

// NewCustomerUseCase creates a new CustomerUseCase.
func NewCustomerUseCase(
	txManager TransactionManager,
	customerRepo CustomerRepository,
	transactionRepo TransactionRepository,
	idGen IDGenerator,
) *CustomerUseCase {
	return &CustomerUseCase{
		txManager:       txManager,
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
		idGen:           idGen,
		retrier:         onceRetrier{},
		logger:          zerolog.Nop(),
	}
}

// WithRetrier sets the retrier used around each unit of work.
func (uc *CustomerUseCase) WithRetrier(r Retrier) *CustomerUseCase {
	if r != nil {
		uc.retrier = r
	}
	return uc
}

// WithMetrics enables Prometheus instrumentation.
func (uc *CustomerUseCase) WithMetrics(m *metrics.Metrics) *CustomerUseCase {
	uc.metrics = m
	return uc
}

// WithLogger sets the logger.
func (uc *CustomerUseCase) WithLogger(l zerolog.Logger) *CustomerUseCase {
	uc.logger = l
	return uc
}

// CreateCustomerInput represents input for registering a customer.
// A nil InitialBalance means domain.DefaultInitialBalance.
type CreateCustomerInput struct {
	DateOfBirth    time.Time
	InitialBalance *decimal.Decimal
	FirstName      string
	LastName       string
	Email          string
	Phone          string
}

// CreateCustomer registers a customer and records the opening balance as a deposit.
func (uc *CustomerUseCase) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error) {
	balance := domain.DefaultInitialBalance
	if input.InitialBalance != nil {
		balance = *input.InitialBalance
	}

	now := time.Now().UTC()

	customer, err := domain.NewCustomer(domain.NewCustomerParams{
		ID:             uc.idGen.Generate(),
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		Phone:          input.Phone,
		DateOfBirth:    input.DateOfBirth,
		InitialBalance: balance,
	}, now)
	if err != nil {
		return nil, err
	}

	existing, err := uc.customerRepo.GetByEmail(ctx, customer.Email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.Validation("a customer with email %s already exists", customer.Email)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	err = uc.retrier.Retry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := uc.customerRepo.Create(txCtx, tx, &customer); err != nil {
			return err
		}

		if customer.Balance.IsPositive() {
			entry, err := domain.NewTransaction(domain.NewTransactionParams{
				ID:          uc.idGen.Generate(),
				CustomerID:  customer.ID,
				Type:        domain.TransactionTypeDeposit,
				Amount:      customer.Balance,
				Description: "Initial deposit",
			}, now)
			if err != nil {
				return err
			}
			if err := uc.transactionRepo.Create(txCtx, tx, &entry); err != nil {
				return err
			}
		}

		return tx.Commit(txCtx)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CustomersCreated.Inc()
	}

	uc.logger.Info().Str("customer_id", customer.ID).Msg("customer created")

	return &customer, nil
}

// GetCustomer retrieves a customer by ID.
func (uc *CustomerUseCase) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return uc.customerRepo.GetByID(ctx, id)
}

// ListCustomers retrieves customers with pagination.
func (uc *CustomerUseCase) ListCustomers(ctx context.Context, limit, offset int) ([]*domain.Customer, error) {
	if offset < 0 {
		offset = 0
	}
	return uc.customerRepo.List(ctx, domain.ValidatePageSize(limit), offset)
}

// Deposit credits a customer's balance.
func (uc *CustomerUseCase) Deposit(ctx context.Context, customerID string, amount decimal.Decimal) (*domain.Customer, error) {
	return uc.move(ctx, customerID, amount, domain.TransactionTypeDeposit)
}

// Withdraw debits a customer's balance.
func (uc *CustomerUseCase) Withdraw(ctx context.Context, customerID string, amount decimal.Decimal) (*domain.Customer, error) {
	return uc.move(ctx, customerID, amount, domain.TransactionTypeWithdrawal)
}

func (uc *CustomerUseCase) move(ctx context.Context, customerID string, amount decimal.Decimal, typ domain.TransactionType) (*domain.Customer, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	var updated domain.Customer
	err := uc.retrier.Retry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		customer, err := uc.customerRepo.GetByIDForUpdate(txCtx, tx, customerID)
		if err != nil {
			return err
		}
		if !customer.Active {
			return domain.Inactive(domain.EntityCustomer, customer.ID)
		}

		description := "Deposit"
		if typ == domain.TransactionTypeWithdrawal {
			updated, err = customer.DeductBalance(amount)
			description = "Withdrawal"
		} else {
			updated, err = customer.AddBalance(amount)
		}
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		updated.UpdatedAt = now

		entry, err := domain.NewTransaction(domain.NewTransactionParams{
			ID:          uc.idGen.Generate(),
			CustomerID:  customer.ID,
			Type:        typ,
			Amount:      amount,
			Description: description,
		}, now)
		if err != nil {
			return err
		}

		if err := uc.customerRepo.Update(txCtx, tx, &updated); err != nil {
			return err
		}
		if err := uc.transactionRepo.Create(txCtx, tx, &entry); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.BalanceOperations.WithLabelValues(string(typ)).Inc()
	}

	uc.logger.Info().
		Str("customer_id", customerID).
		Str("type", string(typ)).
		Str("amount", amount.String()).
		Msg("balance movement recorded")

	return &updated, nil
}

// RecordLogin stamps the customer's last login time.
func (uc *CustomerUseCase) RecordLogin(ctx context.Context, customerID string) (*domain.Customer, error) {
	return uc.mutate(ctx, customerID, func(c domain.Customer) (domain.Customer, error) {
		return c.RecordLogin(time.Now().UTC()), nil
	})
}

// UpdateProfileInput represents input for changing a customer's personal data.
type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Phone     string
}

// UpdateProfile changes a customer's names and phone number.
func (uc *CustomerUseCase) UpdateProfile(ctx context.Context, customerID string, input UpdateProfileInput) (*domain.Customer, error) {
	return uc.mutate(ctx, customerID, func(c domain.Customer) (domain.Customer, error) {
		return c.UpdatePersonalInfo(input.FirstName, input.LastName, input.Phone)
	})
}

// SetActive activates or deactivates a customer.
func (uc *CustomerUseCase) SetActive(ctx context.Context, customerID string, active bool) (*domain.Customer, error) {
	return uc.mutate(ctx, customerID, func(c domain.Customer) (domain.Customer, error) {
		if active {
			return c.Activate(), nil
		}
		return c.Deactivate(), nil
	})
}

func (uc *CustomerUseCase) mutate(ctx context.Context, customerID string, change func(domain.Customer) (domain.Customer, error)) (*domain.Customer, error) {
	var updated domain.Customer
	err := uc.retrier.Retry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		customer, err := uc.customerRepo.GetByIDForUpdate(txCtx, tx, customerID)
		if err != nil {
			return err
		}

		updated, err = change(*customer)
		if err != nil {
			return err
		}
		updated.UpdatedAt = time.Now().UTC()

		if err := uc.customerRepo.Update(txCtx, tx, &updated); err != nil {
			return fmt.Errorf("update customer %s: %w", customerID, err)
		}

		return tx.Commit(txCtx)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}
