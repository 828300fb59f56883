package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/infrastructure/postgres/generated"
	"github.com/iho/gofunds/internal/usecase"
)

// CustomerRepository implements usecase.CustomerRepository.
type CustomerRepository struct {
	queries *generated.Queries
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return newCustomerRepository(pool)
}

func newCustomerRepository(db generated.DBTX) *CustomerRepository {
	return &CustomerRepository{queries: generated.New(db)}
}

// Create inserts a customer at version 1.
func (r *CustomerRepository) Create(ctx context.Context, tx usecase.Transaction, customer *domain.Customer) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	row, err := queries.CreateCustomer(ctx, generated.CreateCustomerParams{
		ID:          customer.ID,
		FirstName:   customer.FirstName,
		LastName:    customer.LastName,
		Email:       customer.Email,
		Phone:       customer.Phone,
		DateOfBirth: timeToPgDate(customer.DateOfBirth),
		Balance:     decimalToNumeric(customer.Balance),
		Version:     1,
		Active:      customer.Active,
		CreatedAt:   timeToPgTimestamptz(customer.CreatedAt),
		UpdatedAt:   timeToPgTimestamptz(customer.UpdatedAt),
	})
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == constraintCustomerEmail {
				return domain.Validation("a customer with email %s already exists", customer.Email)
			}
			return domain.Validation("customer %s already exists", customer.ID)
		}
		return err
	}

	customer.Version = row.Version
	return nil
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	row, err := r.queries.GetCustomerByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(domain.EntityCustomer, id)
		}
		return nil, err
	}

	return rowToCustomer(row), nil
}

// GetByIDForUpdate retrieves a customer by ID with a FOR UPDATE lock.
func (r *CustomerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Customer, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetCustomerByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(domain.EntityCustomer, id)
		}
		return nil, err
	}

	return rowToCustomer(row), nil
}

// GetByEmail retrieves a customer by normalized email.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	row, err := r.queries.GetCustomerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(domain.EntityCustomer, email)
		}
		return nil, err
	}

	return rowToCustomer(row), nil
}

// Update writes the customer guarded by its version and advances customer.Version.
func (r *CustomerRepository) Update(ctx context.Context, tx usecase.Transaction, customer *domain.Customer) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	affected, err := queries.UpdateCustomer(ctx, generated.UpdateCustomerParams{
		ID:          customer.ID,
		FirstName:   customer.FirstName,
		LastName:    customer.LastName,
		Phone:       customer.Phone,
		Balance:     decimalToNumeric(customer.Balance),
		Active:      customer.Active,
		LastLoginAt: optionalTimestamptz(customer.LastLoginAt),
		UpdatedAt:   timeToPgTimestamptz(customer.UpdatedAt),
		Version:     customer.Version,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrVersionConflict
	}

	customer.Version++
	return nil
}

// List lists customers with pagination.
func (r *CustomerRepository) List(ctx context.Context, limit, offset int) ([]*domain.Customer, error) {
	rows, err := r.queries.ListCustomers(ctx, generated.ListCustomersParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	customers := make([]*domain.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, rowToCustomer(row))
	}

	return customers, nil
}

func rowToCustomer(row generated.Customer) *domain.Customer {
	return &domain.Customer{
		ID:          row.ID,
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		Email:       row.Email,
		Phone:       row.Phone,
		DateOfBirth: row.DateOfBirth.Time,
		Balance:     numericToDecimal(row.Balance),
		Version:     row.Version,
		Active:      row.Active,
		LastLoginAt: timestamptzPtr(row.LastLoginAt),
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}
