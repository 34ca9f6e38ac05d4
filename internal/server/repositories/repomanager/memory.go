package repomanager

import (
	"context"

	"github.com/dmitrijs2005/bacheca/internal/server/repositories/memory"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/posts"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. Data does not
// survive a restart.
type MemoryRepositoryManager struct {
	users    *memory.UserRepository
	sessions *memory.SessionRepository
	posts    *memory.PostRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:    memory.NewUserRepository(),
		sessions: memory.NewSessionRepository(),
		posts:    memory.NewPostRepository(),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository       { return m.users }
func (m *MemoryRepositoryManager) Sessions() sessions.Repository { return m.sessions }
func (m *MemoryRepositoryManager) Posts() posts.Repository       { return m.posts }

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }
func (m *MemoryRepositoryManager) Close() error                        { return nil }
