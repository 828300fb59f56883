package domain

import (
	"errors"
	"fmt"
)

// Kind classifies business-rule failures. The set is closed; transports map kinds to
// status codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInactive
	KindBelowMinimum
	KindInsufficientFunds
	KindDuplicateActiveSubscription
	KindAlreadyCancelled
	KindUnauthorized
	KindIntegrityViolation
	KindValidation
)

var kindNames = map[Kind]string{
	KindUnknown:                     "unknown",
	KindNotFound:                    "not_found",
	KindInactive:                    "inactive",
	KindBelowMinimum:                "below_minimum",
	KindInsufficientFunds:           "insufficient_funds",
	KindDuplicateActiveSubscription: "duplicate_active_subscription",
	KindAlreadyCancelled:            "already_cancelled",
	KindUnauthorized:                "unauthorized",
	KindIntegrityViolation:          "integrity_violation",
	KindValidation:                  "validation",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Entity names the aggregate an error refers to.
type Entity string

const (
	EntityCustomer     Entity = "customer"
	EntityFund         Entity = "fund"
	EntitySubscription Entity = "subscription"
	EntityTransaction  Entity = "transaction"
)

// Error is the typed error returned by entities and workflows.
type Error struct {
	Kind    Kind
	Entity  Entity
	ID      string
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Entity != "" && e.ID != "":
		return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, humanize(e.Kind))
	case e.Entity != "":
		return fmt.Sprintf("%s %s", e.Entity, humanize(e.Kind))
	default:
		return humanize(e.Kind)
	}
}

// Is matches on kind, and on entity when the target names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Entity == "" || t.Entity == e.Entity
}

func humanize(k Kind) string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInactive:
		return "is not active"
	case KindBelowMinimum:
		return "amount is below the fund minimum"
	case KindInsufficientFunds:
		return "insufficient balance"
	case KindDuplicateActiveSubscription:
		return "customer already has an active subscription to this fund"
	case KindAlreadyCancelled:
		return "subscription is already cancelled"
	case KindUnauthorized:
		return "customer can only cancel their own subscriptions"
	case KindIntegrityViolation:
		return "data integrity violation"
	case KindValidation:
		return "validation failed"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound                    = &Error{Kind: KindNotFound}
	ErrInactive                    = &Error{Kind: KindInactive}
	ErrBelowMinimum                = &Error{Kind: KindBelowMinimum}
	ErrInsufficientFunds           = &Error{Kind: KindInsufficientFunds}
	ErrDuplicateActiveSubscription = &Error{Kind: KindDuplicateActiveSubscription}
	ErrAlreadyCancelled            = &Error{Kind: KindAlreadyCancelled}
	ErrUnauthorized                = &Error{Kind: KindUnauthorized}
	ErrIntegrityViolation          = &Error{Kind: KindIntegrityViolation}
	ErrValidation                  = &Error{Kind: KindValidation}

	ErrCustomerNotFound     = &Error{Kind: KindNotFound, Entity: EntityCustomer}
	ErrFundNotFound         = &Error{Kind: KindNotFound, Entity: EntityFund}
	ErrSubscriptionNotFound = &Error{Kind: KindNotFound, Entity: EntitySubscription}
	ErrTransactionNotFound  = &Error{Kind: KindNotFound, Entity: EntityTransaction}
)

// ErrVersionConflict is returned by stores when an optimistic version check fails.
// It is a storage signal, not a business kind; the unit of work is retried.
var ErrVersionConflict = errors.New("entity was modified concurrently")

// NotFound builds a not-found error for entity/id.
func NotFound(entity Entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

// Inactive builds an inactive error for entity/id.
func Inactive(entity Entity, id string) *Error {
	return &Error{Kind: KindInactive, Entity: entity, ID: id}
}

// IntegrityViolation reports references that a consistent store cannot produce.
func IntegrityViolation(entity Entity, id, detail string) *Error {
	return &Error{
		Kind:    KindIntegrityViolation,
		Entity:  entity,
		ID:      id,
		Message: fmt.Sprintf("integrity violation: %s %s %s", entity, id, detail),
	}
}

// Validation builds a validation error with a formatted message.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
