package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxNameLength        = 50
	MaxFundNameLength    = 255
	MinCustomerAge       = 18
	MaxCustomerAge       = 120
	MaxSubscriptionValue = "50000000" // 50 million COP
	DefaultPageSize      = 50
	MaxPageSize          = 100
)

// DefaultInitialBalance is credited to new customers when no balance is given.
var DefaultInitialBalance = decimal.NewFromInt(500000)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

// ValidateName validates a required personal name.
func ValidateName(field, name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return Validation("%s cannot be empty", field)
	}

	if len(name) > MaxNameLength {
		return Validation("%s cannot exceed %d characters", field, MaxNameLength)
	}

	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" {
		return Validation("email cannot be empty")
	}

	if !emailRegex.MatchString(email) {
		return Validation("invalid email format")
	}

	return nil
}

// ValidatePhone validates an E.164-like phone number.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return Validation("phone number cannot be empty")
	}

	if !phoneRegex.MatchString(phone) {
		return Validation("invalid phone number format")
	}

	return nil
}

// ValidateDateOfBirth checks the customer is an adult as of now.
func ValidateDateOfBirth(dob, now time.Time) error {
	if dob.IsZero() {
		return Validation("date of birth is required")
	}

	if dob.After(now.AddDate(-MinCustomerAge, 0, 0)) {
		return Validation("customer must be at least %d years old", MinCustomerAge)
	}

	if dob.Before(now.AddDate(-MaxCustomerAge, 0, 0)) {
		return Validation("invalid date of birth")
	}

	return nil
}

// ValidateAmount validates a monetary movement.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Validation("amount must be greater than zero")
	}

	return nil
}

// ValidateSubscriptionAmount validates the requested subscription amount before any lookup.
func ValidateSubscriptionAmount(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}

	maxAmount, _ := decimal.NewFromString(MaxSubscriptionValue)
	if amount.GreaterThan(maxAmount) {
		return Validation("amount cannot exceed %s", MaxSubscriptionValue)
	}

	return nil
}

// ValidatePageSize clamps a page size into [1, MaxPageSize].
func ValidatePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}

	if size > MaxPageSize {
		return MaxPageSize
	}

	return size
}
