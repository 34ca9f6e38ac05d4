package services

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/logging"
	"github.com/dmitrijs2005/bacheca/internal/server/metrics"
	"github.com/dmitrijs2005/bacheca/internal/server/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_ExactPairSucceedsOthersFail(t *testing.T) {
	f := newFixture(t, newFakeManager())
	ctx := context.Background()
	alice := f.mustCreateUser(t, "alice", "pw123")

	session, identity, err := f.auth.Login(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, identity.ID)
	assert.Equal(t, "alice", identity.Username)
	assert.False(t, identity.IsAdmin)
	assert.Equal(t, alice.ID, session.UserID)

	for _, wrong := range []string{"", "pw12", "pw1234", "PW123", " pw123"} {
		_, _, err := f.auth.Login(ctx, "alice", wrong)
		assert.ErrorIs(t, err, common.ErrInvalidCredentials, "secret %q", wrong)
	}
}

func TestLogin_SecretAtBcryptLimitRejectsLongerInput(t *testing.T) {
	f := newFixture(t, newFakeManager())
	ctx := context.Background()
	secret := strings.Repeat("a", maxPasswordBytes)
	f.mustCreateUser(t, "carol", secret)

	_, _, err := f.auth.Login(ctx, "carol", secret)
	require.NoError(t, err)

	for _, wrong := range []string{secret + "x", secret + "WRONG-SUFFIX"} {
		_, _, err := f.auth.Login(ctx, "carol", wrong)
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	}
}

func TestLogin_OversizedInputNeverMatches(t *testing.T) {
	m := newFakeManager()
	s := NewAuthService(m, plainHasher{}, logging.Nop{}, nil)
	long := strings.Repeat("b", maxPasswordBytes+1)
	require.NoError(t, m.users.Create(context.Background(), &models.User{
		ID: "u1", Username: "dave", PasswordHash: "h:" + long, CreatedAt: time.Now().UTC(),
	}))

	_, _, err := s.Login(context.Background(), "dave", long)
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_UnknownUserLooksLikeBadPassword(t *testing.T) {
	f := newFixture(t, newFakeManager())
	f.mustCreateUser(t, "alice", "pw123")

	_, _, errUnknown := f.auth.Login(context.Background(), "mallory", "pw123")
	_, _, errWrong := f.auth.Login(context.Background(), "alice", "nope")

	assert.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
	assert.Equal(t, errWrong, errUnknown)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.LoginsTotal.WithLabelValues(metrics.LoginInvalid)))
}

func TestLogin_StoreFaultIsNotInvalidCredentials(t *testing.T) {
	f := newFixture(t, newFakeManager())
	f.auth.users = failingUsers{}

	_, _, err := f.auth.Login(context.Background(), "admin", "admin")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_SessionShape(t *testing.T) {
	f := newFixture(t, newFakeManager())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.at(now)

	s1, _, err := f.auth.Login(context.Background(), "admin", "admin")
	require.NoError(t, err)
	s2, _, err := f.auth.Login(context.Background(), "admin", "admin")
	require.NoError(t, err)

	raw, err := hex.DecodeString(s1.Token)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.NotEqual(t, s1.Token, s2.Token)
	assert.Equal(t, now, s1.CreatedAt)
	assert.Equal(t, now.Add(24*time.Hour), s1.ExpiresAt)
}

func TestResolve_FreshSession(t *testing.T) {
	f := newFixture(t, newFakeManager())
	ctx := context.Background()
	alice := f.mustCreateUser(t, "alice", "pw123")

	session, _, err := f.auth.Login(ctx, "alice", "pw123")
	require.NoError(t, err)

	identity, err := f.auth.Resolve(ctx, session.Token)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, alice.ID, identity.ID)
	assert.Equal(t, "alice", identity.Username)
}

func TestResolve_NoSession(t *testing.T) {
	f := newFixture(t, newFakeManager())

	for _, token := range []string{"", "deadbeef"} {
		identity, err := f.auth.Resolve(context.Background(), token)
		assert.NoError(t, err)
		assert.Nil(t, identity)
	}
}

func TestResolve_ExpiredSessionIsRemoved(t *testing.T) {
	f := newFixture(t, newFakeManager())
	ctx := context.Background()
	start := time.Now()
	f.at(start)

	session, _, err := f.auth.Login(ctx, "admin", "admin")
	require.NoError(t, err)

	f.at(start.Add(common.SessionLifetime - time.Second))
	identity, err := f.auth.Resolve(ctx, session.Token)
	require.NoError(t, err)
	require.NotNil(t, identity)

	f.at(start.Add(common.SessionLifetime))
	identity, err = f.auth.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, identity)

	_, err = f.m.sessions.GetByToken(ctx, session.Token)
	assert.ErrorIs(t, err, common.ErrorNotFound, "expired session must be gone from the store")
}

func TestResolve_OwnerGoneRemovesSession(t *testing.T) {
	f := newFixture(t, newFakeManager())
	ctx := context.Background()
	alice := f.mustCreateUser(t, "alice", "pw123")

	session, _, err := f.auth.Login(ctx, "alice", "pw123")
	require.NoError(t, err)

	_, err = f.m.users.Delete(ctx, alice.ID)
	require.NoError(t, err)

	identity, err := f.auth.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, identity)

	_, err = f.m.sessions.GetByToken(ctx, session.Token)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestResolve_StoreFault(t *testing.T) {
	f := newFixture(t, newFakeManager())
	session, _, err := f.auth.Login(context.Background(), "admin", "admin")
	require.NoError(t, err)

	f.auth.users = failingUsers{}
	_, err = f.auth.Resolve(context.Background(), session.Token)
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogout_Idempotent(t *testing.T) {
	f := newFixture(t, newFakeManager())
	ctx := context.Background()

	session, _, err := f.auth.Login(ctx, "admin", "admin")
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, session.Token))
	require.NoError(t, f.auth.Logout(ctx, session.Token))
	require.NoError(t, f.auth.Logout(ctx, ""))

	identity, err := f.auth.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestChangeSecret_RevokesEverySession(t *testing.T) {
	f := newFixture(t, newFakeManager())
	ctx := context.Background()
	alice := f.mustCreateUser(t, "alice", "old-pw")

	s1, _, err := f.auth.Login(ctx, "alice", "old-pw")
	require.NoError(t, err)
	s2, _, err := f.auth.Login(ctx, "alice", "old-pw")
	require.NoError(t, err)

	require.NoError(t, f.auth.ChangeSecret(ctx, alice.ID, "new-pw"))

	for _, s := range []string{s1.Token, s2.Token} {
		identity, err := f.auth.Resolve(ctx, s)
		require.NoError(t, err)
		assert.Nil(t, identity)
	}

	_, _, err = f.auth.Login(ctx, "alice", "new-pw")
	assert.NoError(t, err)
	_, _, err = f.auth.Login(ctx, "alice", "old-pw")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestChangeSecret_Errors(t *testing.T) {
	f := newFixture(t, newFakeManager())
	ctx := context.Background()

	assert.ErrorIs(t, f.auth.ChangeSecret(ctx, "no-such-id", "pw"), common.ErrorNotFound)
	assert.ErrorIs(t, f.auth.ChangeSecret(ctx, f.admin.ID, ""), common.ErrorValidation)

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'x'
	}
	assert.ErrorIs(t, f.auth.ChangeSecret(ctx, f.admin.ID, string(long)), common.ErrorValidation)
}

func TestChangeSecret_RevocationFailureSurfaces(t *testing.T) {
	m := newFakeManager()
	f := newFixture(t, m)
	f.auth.sessions = failingSessionRevocation{m.sessions}

	err := f.auth.ChangeSecret(context.Background(), f.admin.ID, "new")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestDeleteUser_Cascade(t *testing.T) {
	f := newFixture(t, newFakeManager())
	ctx := context.Background()
	alice := f.mustCreateUser(t, "alice", "pw")
	bob := f.mustCreateUser(t, "bob", "pw")

	session, aliceID, err := f.auth.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	_, err = f.posts.Create(ctx, aliceID, "ciao a tutti")
	require.NoError(t, err)
	bobID := bob.Identity()
	_, err = f.posts.Create(ctx, bobID, "buongiorno")
	require.NoError(t, err)

	require.NoError(t, f.auth.DeleteUser(ctx, alice.ID))

	_, err = f.m.users.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = f.m.sessions.GetByToken(ctx, session.Token)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	left, err := f.m.posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, bob.ID, left[0].AuthorID)

	assert.ErrorIs(t, f.auth.DeleteUser(ctx, alice.ID), common.ErrorNotFound)
}

func TestDeleteUser_SecondaryFailuresDoNotUndoDeletion(t *testing.T) {
	m := newFakeManager()
	f := newFixture(t, m)
	ctx := context.Background()
	alice := f.mustCreateUser(t, "alice", "pw")

	f.auth.sessions = failingSessionRevocation{m.sessions}
	f.auth.posts = failingPostCleanup{m.posts}

	require.NoError(t, f.auth.DeleteUser(ctx, alice.ID))

	_, err := m.users.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteUser_AdminAccountRefused(t *testing.T) {
	f := newFixture(t, newFakeManager())
	assert.ErrorIs(t, f.auth.DeleteUser(context.Background(), f.admin.ID), common.ErrForbidden)
}

func TestNewAuthService_DerivesModuleLogger(t *testing.T) {
	m := newFakeManager()
	s := NewAuthService(m, plainHasher{}, logging.Nop{}, nil)
	assert.NotEmpty(t, s.dummyHash)

	_, _, err := s.Login(context.Background(), "nobody", "x")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

// plainHasher stands in where bcrypt cost is irrelevant.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "h:" + plain, nil }
func (plainHasher) Verify(plain, hash string) bool    { return hash == "h:"+plain }
