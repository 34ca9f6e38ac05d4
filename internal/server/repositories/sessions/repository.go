// Package sessions declares the session store contract with PostgreSQL and
// Redis implementations.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bacheca/internal/server/models"
)

// Repository persists sessions keyed by their opaque token.
type Repository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *models.Session) error

	// GetByToken returns the session or common.ErrorNotFound. Expired
	// sessions are returned as-is; expiry is the caller's decision.
	GetByToken(ctx context.Context, token string) (*models.Session, error)

	// DeleteByToken removes one session. Deleting a missing token is not an
	// error and reports 0.
	DeleteByToken(ctx context.Context, token string) (int64, error)

	// DeleteByUser removes every session of userID.
	DeleteByUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired removes sessions whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
