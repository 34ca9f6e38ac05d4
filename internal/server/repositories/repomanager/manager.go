// Package repomanager bundles the user, session and post repositories of one
// storage backend behind a single handle that also owns migrations and
// shutdown.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/bacheca/internal/server/repositories/posts"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Sessions() sessions.Repository
	Posts() posts.Repository

	// RunMigrations brings the schema up to date. Backends without a schema
	// return nil.
	RunMigrations(ctx context.Context) error

	Close() error
}
