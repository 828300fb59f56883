package domain

import "context"

// Role represents a caller's access level
type Role string

const (
	// RoleAdmin manages funds and can act on any customer
	RoleAdmin Role = "admin"

	// RoleCustomer acts only on its own customer record
	RoleCustomer Role = "customer"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleCustomer: true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// Principal is the authenticated caller. CustomerID is the token subject.
type Principal struct {
	CustomerID string
	Role       Role
}

// CanActFor reports whether the principal may operate on customerID.
func (p Principal) CanActFor(customerID string) bool {
	return p.Role == RoleAdmin || p.CustomerID == customerID
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
