// Package posts declares the post store contract and its PostgreSQL
// implementation.
package posts

import (
	"context"

	"github.com/dmitrijs2005/bacheca/internal/server/models"
)

// Repository persists posts. Every list method returns newest first and at
// most common.MaxListSize entries.
type Repository interface {
	Create(ctx context.Context, post *models.Post) error

	// GetByID returns common.ErrorNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Post, error)

	List(ctx context.Context) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)

	// Search matches query as a case-insensitive substring of the content.
	Search(ctx context.Context, query string) ([]*models.Post, error)

	Delete(ctx context.Context, id string) (int64, error)
	DeleteByAuthor(ctx context.Context, authorID string) (int64, error)
}
