package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Customer holds a cash balance used to subscribe to funds.
// Values are snapshots: transitions return a new Customer and leave the receiver untouched.
type Customer struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DateOfBirth time.Time
	LastLoginAt *time.Time
	ID          string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Balance     decimal.Decimal
	Version     int64
	Active      bool
}

// NewCustomerParams are the inputs for NewCustomer.
type NewCustomerParams struct {
	DateOfBirth    time.Time
	ID             string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	InitialBalance decimal.Decimal
}

// NewCustomer builds an active customer, validating every field.
func NewCustomer(p NewCustomerParams, now time.Time) (Customer, error) {
	if strings.TrimSpace(p.ID) == "" {
		return Customer{}, Validation("customer id cannot be empty")
	}
	if err := ValidateName("first name", p.FirstName); err != nil {
		return Customer{}, err
	}
	if err := ValidateName("last name", p.LastName); err != nil {
		return Customer{}, err
	}
	if err := ValidateEmail(p.Email); err != nil {
		return Customer{}, err
	}
	if err := ValidatePhone(p.Phone); err != nil {
		return Customer{}, err
	}
	if err := ValidateDateOfBirth(p.DateOfBirth, now); err != nil {
		return Customer{}, err
	}
	if p.InitialBalance.IsNegative() {
		return Customer{}, Validation("initial balance cannot be negative")
	}

	return Customer{
		ID:          p.ID,
		FirstName:   strings.TrimSpace(p.FirstName),
		LastName:    strings.TrimSpace(p.LastName),
		Email:       strings.ToLower(strings.TrimSpace(p.Email)),
		Phone:       strings.TrimSpace(p.Phone),
		DateOfBirth: p.DateOfBirth,
		Balance:     p.InitialBalance,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// FullName returns "First Last".
func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// CanSubscribe reports whether the customer may commit amount to a fund.
func (c Customer) CanSubscribe(amount decimal.Decimal) bool {
	return c.Active && c.Balance.GreaterThanOrEqual(amount)
}

// DeductBalance returns the customer debited by amount.
func (c Customer) DeductBalance(amount decimal.Decimal) (Customer, error) {
	if err := ValidateAmount(amount); err != nil {
		return c, err
	}
	if c.Balance.LessThan(amount) {
		return c, &Error{Kind: KindInsufficientFunds, Entity: EntityCustomer, ID: c.ID}
	}

	next := c
	next.Balance = c.Balance.Sub(amount)
	return next, nil
}

// AddBalance returns the customer credited by amount.
func (c Customer) AddBalance(amount decimal.Decimal) (Customer, error) {
	if err := ValidateAmount(amount); err != nil {
		return c, err
	}

	next := c
	next.Balance = c.Balance.Add(amount)
	return next, nil
}

// UpdatePersonalInfo returns the customer with new names and phone.
func (c Customer) UpdatePersonalInfo(firstName, lastName, phone string) (Customer, error) {
	if err := ValidateName("first name", firstName); err != nil {
		return c, err
	}
	if err := ValidateName("last name", lastName); err != nil {
		return c, err
	}
	if err := ValidatePhone(phone); err != nil {
		return c, err
	}

	next := c
	next.FirstName = strings.TrimSpace(firstName)
	next.LastName = strings.TrimSpace(lastName)
	next.Phone = strings.TrimSpace(phone)
	return next, nil
}

// RecordLogin stamps the last login time.
func (c Customer) RecordLogin(now time.Time) Customer {
	next := c
	next.LastLoginAt = &now
	return next
}

// Activate returns an active copy.
func (c Customer) Activate() Customer {
	next := c
	next.Active = true
	return next
}

// Deactivate returns an inactive copy.
func (c Customer) Deactivate() Customer {
	next := c
	next.Active = false
	return next
}
