// Package tenant carries the organization boundary through the request.
// A Scope can only be built from a non-nil organization id; storage packages refuse
// the zero Scope, so a query without a tenant cannot be issued.
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNoTenant returned when a tenant-scoped operation runs without a scope
var ErrNoTenant = errors.New("tenant: organization scope is required")

// Scope organization boundary of a request
type Scope struct {
	organizationID uuid.UUID
}

// NewScope builds a scope for organizationID
func NewScope(organizationID uuid.UUID) (Scope, error) {
	if organizationID == uuid.Nil {
		return Scope{}, ErrNoTenant
	}
	return Scope{organizationID: organizationID}, nil
}

// OrganizationID tenant id
func (s Scope) OrganizationID() uuid.UUID {
	return s.organizationID
}

// IsZero true for a scope that was not built with NewScope
func (s Scope) IsZero() bool {
	return s.organizationID == uuid.Nil
}

// Validate returns ErrNoTenant for the zero scope
func (s Scope) Validate() error {
	if s.IsZero() {
		return ErrNoTenant
	}
	return nil
}

type scopeKey struct{}

// WithScope stores the scope in ctx
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext extracts the scope placed by the tenant middleware
func FromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(Scope)
	if !ok || s.IsZero() {
		return Scope{}, false
	}
	return s, true
}
