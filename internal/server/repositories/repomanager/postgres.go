package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bacheca/internal/server/migrations"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/posts"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories sharing one
// connection pool.
type PostgresRepositoryManager struct {
	db       *sql.DB
	users    *users.PostgresRepository
	sessions *sessions.PostgresRepository
	posts    *posts.PostgresRepository
}

// NewPostgresRepositoryManager takes ownership of db; Close closes it.
func NewPostgresRepositoryManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{
		db:       db,
		users:    users.NewPostgresRepository(db),
		sessions: sessions.NewPostgresRepository(db),
		posts:    posts.NewPostgresRepository(db),
	}
}

func (m *PostgresRepositoryManager) Users() users.Repository       { return m.users }
func (m *PostgresRepositoryManager) Sessions() sessions.Repository { return m.sessions }
func (m *PostgresRepositoryManager) Posts() posts.Repository       { return m.posts }

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
