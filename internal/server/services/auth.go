// Package services contains server-side business logic. AuthService is the
// session manager: it verifies credentials, mints and revokes sessions,
// resolves tokens to identities and runs the account-level cascades.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/logging"
	"github.com/dmitrijs2005/bacheca/internal/server/auth"
	"github.com/dmitrijs2005/bacheca/internal/server/metrics"
	"github.com/dmitrijs2005/bacheca/internal/server/models"
	"github.com/dmitrijs2005/bacheca/internal/server/password"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/posts"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/users"
)

// tokenBytes of crypto/rand output make up a session token.
const tokenBytes = 32

// bcrypt ignores input past this length; longer secrets are rejected when
// set and never match at login.
const maxPasswordBytes = password.MaxInputBytes

// Revocation reasons reported to metrics.
const (
	revokeLogout   = "logout"
	revokePassword = "password_change"
	revokeDeletion = "account_deleted"
	revokeExpired  = "expired"
	revokeOrphaned = "orphaned"
)

// AuthService is the session manager.
//
// Fields:
//   - users, sessions, posts: stores the service reads and mutates.
//   - hasher: password hashing and verification.
//   - logger: module-scoped logger; secrets and tokens are never passed to it.
//   - metrics: optional counters, nil disables them.
//   - now: clock, replaced in tests.
type AuthService struct {
	users    users.Repository
	sessions sessions.Repository
	posts    posts.Repository
	hasher   password.Hasher
	logger   logging.Logger
	metrics  *metrics.Metrics

	now func() time.Time

	// dummyHash is verified against when the username is unknown so that
	// both login failures cost one bcrypt comparison.
	dummyHash string
}

// NewAuthService builds the session manager over the stores of m. It
// precomputes the dummy hash used for unknown usernames; failure to do so
// is logged and leaves that comparison against an empty hash.
func NewAuthService(m repomanager.RepositoryManager, hasher password.Hasher, logger logging.Logger, mt *metrics.Metrics) *AuthService {
	s := &AuthService{
		users:    m.Users(),
		sessions: m.Sessions(),
		posts:    m.Posts(),
		hasher:   hasher,
		logger:   logger.With("module", "auth"),
		metrics:  mt,
		now:      time.Now,
	}

	h, err := hasher.Hash("bacheca-dummy-secret")
	if err != nil {
		s.logger.Warn(context.Background(), "dummy hash unavailable", "error", err)
	}
	s.dummyHash = h

	return s
}

func internal(err error) error {
	return fmt.Errorf("%w: %w", common.ErrorInternal, err)
}

// Login verifies the credentials and mints a session valid for
// common.SessionLifetime. An unknown username and a wrong password both
// yield common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, plain string) (*models.Session, *models.Identity, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(plain, s.dummyHash)
			s.metrics.RecordLogin(metrics.LoginInvalid)
			s.logger.Info(ctx, "login rejected", "username", username)
			return nil, nil, common.ErrInvalidCredentials
		}
		s.metrics.RecordLogin(metrics.LoginError)
		return nil, nil, internal(err)
	}

	if !s.hasher.Verify(plain, user.PasswordHash) || len(plain) > maxPasswordBytes {
		s.metrics.RecordLogin(metrics.LoginInvalid)
		s.logger.Info(ctx, "login rejected", "username", username)
		return nil, nil, common.ErrInvalidCredentials
	}

	token, err := common.MakeRandHexString(tokenBytes)
	if err != nil {
		s.metrics.RecordLogin(metrics.LoginError)
		return nil, nil, internal(err)
	}

	now := s.now().UTC()
	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(common.SessionLifetime),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		s.metrics.RecordLogin(metrics.LoginError)
		return nil, nil, internal(err)
	}

	s.metrics.RecordLogin(metrics.LoginSuccess)
	s.logger.Info(ctx, "user logged in", "user_id", user.ID, "username", user.Username)

	return session, user.Identity(), nil
}

// Logout revokes the session behind token. Unknown and empty tokens are
// not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	n, err := s.sessions.DeleteByToken(ctx, token)
	if err != nil {
		return internal(err)
	}
	s.metrics.RecordRevoked(revokeLogout, n)
	return nil
}

// Resolve maps token to the identity of its owner. It returns (nil, nil)
// when there is no live session: empty token, unknown token, expired
// session or deleted owner. Expired and orphaned sessions are deleted on
// the way out, so Resolve may write to the session store.
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		s.metrics.RecordResolve(metrics.ResolveEmpty)
		return nil, nil
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.RecordResolve(metrics.ResolveMissing)
			return nil, nil
		}
		s.metrics.RecordResolve(metrics.ResolveError)
		return nil, internal(err)
	}

	if session.Expired(s.now()) {
		s.metrics.RecordResolve(metrics.ResolveExpired)
		s.dropSession(ctx, session, revokeExpired)
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.RecordResolve(metrics.ResolveOrphaned)
			s.dropSession(ctx, session, revokeOrphaned)
			return nil, nil
		}
		s.metrics.RecordResolve(metrics.ResolveError)
		return nil, internal(err)
	}

	s.metrics.RecordResolve(metrics.ResolveValid)
	return user.Identity(), nil
}

func (s *AuthService) dropSession(ctx context.Context, session *models.Session, reason string) {
	n, err := s.sessions.DeleteByToken(ctx, session.Token)
	if err != nil {
		s.logger.Warn(ctx, "failed to delete dead session", "user_id", session.UserID, "reason", reason, "error", err)
		return
	}
	s.metrics.RecordRevoked(reason, n)
}

// ChangeSecret replaces the password of userID and revokes every session
// the user holds.
func (s *AuthService) ChangeSecret(ctx context.Context, userID, plain string) error {
	if err := validatePassword(plain); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return internal(err)
	}

	n, err := s.users.UpdatePasswordHash(ctx, userID, hash)
	if err != nil {
		return internal(err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	revoked, err := s.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "password changed but sessions not revoked", "user_id", userID, "error", err)
		return internal(err)
	}
	s.metrics.RecordRevoked(revokePassword, revoked)
	s.logger.Info(ctx, "password changed", "user_id", userID, "sessions_revoked", revoked)

	return nil
}

// DeleteUser removes the account and its dependents in this order:
// sessions, user record, posts. The user record decides the outcome;
// failures on sessions or posts are logged and left behind. The account
// named common.AdminUsername is refused with common.ErrForbidden.
func (s *AuthService) DeleteUser(ctx context.Context, userID string) error {
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return internal(err)
	}
	if auth.ProtectedFromDeletion(target.Username) {
		return common.ErrForbidden
	}

	revoked, err := s.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		s.logger.Warn(ctx, "sessions not revoked during account deletion", "user_id", userID, "error", err)
	} else {
		s.metrics.RecordRevoked(revokeDeletion, revoked)
	}

	n, err := s.users.Delete(ctx, userID)
	if err != nil {
		return internal(err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	removed, err := s.posts.DeleteByAuthor(ctx, userID)
	if err != nil {
		s.logger.Warn(ctx, "posts left behind after account deletion", "user_id", userID, "error", err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", userID, "username", target.Username,
		"sessions_revoked", revoked, "posts_removed", removed)
	return nil
}

func validatePassword(plain string) error {
	if plain == "" {
		return fmt.Errorf("%w: password must not be empty", common.ErrorValidation)
	}
	if len(plain) > maxPasswordBytes {
		return fmt.Errorf("%w: password longer than %d bytes", common.ErrorValidation, maxPasswordBytes)
	}
	return nil
}
