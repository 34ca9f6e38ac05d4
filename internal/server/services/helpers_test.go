package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/bacheca/internal/logging"
	"github.com/dmitrijs2005/bacheca/internal/server/metrics"
	"github.com/dmitrijs2005/bacheca/internal/server/models"
	"github.com/dmitrijs2005/bacheca/internal/server/password"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/memory"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/posts"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var errStoreDown = errors.New("connection refused")

// fakeManager lets tests swap individual repositories.
type fakeManager struct {
	users    users.Repository
	sessions sessions.Repository
	posts    posts.Repository
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		users:    memory.NewUserRepository(),
		sessions: memory.NewSessionRepository(),
		posts:    memory.NewPostRepository(),
	}
}

func (m *fakeManager) Users() users.Repository                 { return m.users }
func (m *fakeManager) Sessions() sessions.Repository           { return m.sessions }
func (m *fakeManager) Posts() posts.Repository                 { return m.posts }
func (m *fakeManager) RunMigrations(ctx context.Context) error { return nil }
func (m *fakeManager) Close() error                            { return nil }

type failingUsers struct {
	users.Repository
}

func (failingUsers) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, errStoreDown
}

func (failingUsers) GetByID(context.Context, string) (*models.User, error) {
	return nil, errStoreDown
}

type failingSessionRevocation struct {
	sessions.Repository
}

func (failingSessionRevocation) DeleteByUser(context.Context, string) (int64, error) {
	return 0, errStoreDown
}

type failingPostCleanup struct {
	posts.Repository
}

func (failingPostCleanup) DeleteByAuthor(context.Context, string) (int64, error) {
	return 0, errStoreDown
}

type fixture struct {
	m       *fakeManager
	hasher  password.Hasher
	metrics *metrics.Metrics
	auth    *AuthService
	users   *UserService
	posts   *PostService
	admin   *models.Identity
}

func newFixture(t *testing.T, m *fakeManager) *fixture {
	t.Helper()
	ctx := context.Background()

	hasher := password.NewBcrypt(bcrypt.MinCost)
	mt := metrics.New()
	log := logging.Nop{}

	f := &fixture{
		m:       m,
		hasher:  hasher,
		metrics: mt,
		auth:    NewAuthService(m, hasher, log, mt),
	}
	f.users = NewUserService(m, f.auth, hasher, log)
	f.posts = NewPostService(m, log)

	require.NoError(t, Bootstrap(ctx, m.users, hasher, log))
	_, admin, err := f.auth.Login(ctx, "admin", "admin")
	require.NoError(t, err)
	f.admin = admin

	return f
}

// at pins the clock of the auth service.
func (f *fixture) at(now time.Time) {
	f.auth.now = func() time.Time { return now }
}

func (f *fixture) mustCreateUser(t *testing.T, username, plain string) *models.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), f.admin, username, plain)
	require.NoError(t, err)
	return u
}
