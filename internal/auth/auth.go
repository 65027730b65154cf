// Package auth describes who performs a write. The actor is passed
// explicitly into every service call; the HTTP layer builds it from a
// bearer token.
package auth

import (
	"context"
	"slices"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
)

type Role string

const (
	RolePlanning Role = "planning"
	RoleAdmin    Role = "admin"
	RoleDistrict Role = "district"
	RoleViewer   Role = "viewer"
)

// Actor is the authenticated user on whose behalf a write runs.
type Actor struct {
	UserID       string
	Name         string
	Role         Role
	StateCode    string
	DistrictID   string
	DistrictCode string
}

// Validate rejects an actor without an identity.
func (a *Actor) Validate() error {
	if a == nil || a.UserID == "" {
		return apperr.Unauthorized("missing actor context")
	}

	return nil
}

// Require validates the actor and checks it holds one of roles.
func (a *Actor) Require(roles ...Role) error {
	if err := a.Validate(); err != nil {
		return err
	}

	if !slices.Contains(roles, a.Role) {
		return apperr.Unauthorized("role " + string(a.Role) + " may not perform this action")
	}

	return nil
}

// RequireDistrict is Require for a write inside districtCode. District users
// may only write inside their own district.
func (a *Actor) RequireDistrict(districtCode string, roles ...Role) error {
	if err := a.Require(roles...); err != nil {
		return err
	}

	if a.Role == RoleDistrict && a.DistrictCode != districtCode {
		return apperr.Unauthorized("district " + districtCode + " is outside the actor's district")
	}

	return nil
}

type ctxKey struct{}

// WithActor stores the actor on a request context. Services never read it;
// handlers pull it out and pass it along.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the actor stored by WithActor, or nil.
func FromContext(ctx context.Context) *Actor {
	a, _ := ctx.Value(ctxKey{}).(*Actor)
	return a
}
