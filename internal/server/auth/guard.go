// Package auth holds the access-control policy: privilege levels, the level
// check every protected operation runs first, and the owner predicate for
// owner-scoped mutations.
package auth

import (
	"context"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/server/models"
)

// Level is the minimum privilege an operation requires.
type Level int

const (
	Anonymous Level = iota
	Authenticated
	Admin
)

func (l Level) String() string {
	switch l {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// Authorize returns nil when identity satisfies required,
// common.ErrUnauthenticated when a session is needed but identity is nil,
// and common.ErrForbidden when Admin is required of a non-admin.
func Authorize(identity *models.Identity, required Level) error {
	if required <= Anonymous {
		return nil
	}
	if identity == nil {
		return common.ErrUnauthenticated
	}
	if required >= Admin && !identity.IsAdmin {
		return common.ErrForbidden
	}
	return nil
}

// AuthorizeOwner is evaluated after Authorize(identity, Authenticated) by
// owner-scoped mutations: the owner or any admin passes.
func AuthorizeOwner(identity *models.Identity, ownerID string) error {
	if err := Authorize(identity, Authenticated); err != nil {
		return err
	}
	if identity.IsAdmin || identity.ID == ownerID {
		return nil
	}
	return common.ErrForbidden
}

// ProtectedFromDeletion reports whether the account may never be deleted,
// whoever asks.
func ProtectedFromDeletion(username string) bool {
	return username == common.AdminUsername
}

type ctxKey struct{}

// WithIdentity stores the resolved identity (possibly nil) in ctx.
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, identity)
}

// IdentityFromContext returns the identity stored by WithIdentity, or nil.
func IdentityFromContext(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(ctxKey{}).(*models.Identity)
	return identity
}
