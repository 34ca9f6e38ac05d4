// Package users declares the credential store contract and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/bacheca/internal/server/models"
)

// Repository persists user accounts. It is the only component that sees
// password hashes.
type Repository interface {
	// Create inserts user. A taken username yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) error

	// GetByUsername and GetByID return common.ErrorNotFound when absent.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// List returns every user, oldest first, with PasswordHash left empty.
	List(ctx context.Context) ([]*models.User, error)

	// Delete removes the user and reports how many rows went away.
	Delete(ctx context.Context, id string) (int64, error)

	// UpdatePasswordHash replaces the hash and reports how many rows matched.
	UpdatePasswordHash(ctx context.Context, id string, hash string) (int64, error)
}
