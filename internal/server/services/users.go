package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/logging"
	"github.com/dmitrijs2005/bacheca/internal/server/auth"
	"github.com/dmitrijs2005/bacheca/internal/server/models"
	"github.com/dmitrijs2005/bacheca/internal/server/password"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/users"
	"github.com/google/uuid"
)

// UserService is account management. Every operation requires an admin.
type UserService struct {
	users  users.Repository
	auth   *AuthService
	hasher password.Hasher
	logger logging.Logger
	now    func() time.Time
}

// NewUserService wires account management to the users store of m. Password
// changes and deletions go through as so that sessions follow.
func NewUserService(m repomanager.RepositoryManager, as *AuthService, hasher password.Hasher, logger logging.Logger) *UserService {
	return &UserService{
		users:  m.Users(),
		auth:   as,
		hasher: hasher,
		logger: logger.With("module", "users"),
		now:    time.Now,
	}
}

// List returns all accounts, oldest first, without password hashes.
func (s *UserService) List(ctx context.Context, caller *models.Identity) ([]*models.User, error) {
	if err := auth.Authorize(caller, auth.Admin); err != nil {
		return nil, err
	}
	list, err := s.users.List(ctx)
	if err != nil {
		return nil, internal(err)
	}
	if list == nil {
		list = []*models.User{}
	}
	return list, nil
}

// Create adds a regular (non-admin) account.
func (s *UserService) Create(ctx context.Context, caller *models.Identity, username, plain string) (*models.User, error) {
	if err := auth.Authorize(caller, auth.Admin); err != nil {
		return nil, err
	}
	return createUser(ctx, s.users, s.hasher, s.now, username, plain, false)
}

// Delete runs the account cascade. The protected admin account is refused
// before the caller is even looked at.
func (s *UserService) Delete(ctx context.Context, caller *models.Identity, userID string) error {
	target, err := s.users.GetByID(ctx, userID)
	switch {
	case err == nil:
		if auth.ProtectedFromDeletion(target.Username) {
			return common.ErrForbidden
		}
	case !errors.Is(err, common.ErrorNotFound):
		return internal(err)
	}

	if err := auth.Authorize(caller, auth.Admin); err != nil {
		return err
	}
	if target == nil {
		return common.ErrorNotFound
	}

	if err := s.auth.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Info(ctx, "account removed by admin", "admin_id", caller.ID, "user_id", userID)
	return nil
}

// UpdatePassword sets a new password for userID and revokes the user's
// sessions.
func (s *UserService) UpdatePassword(ctx context.Context, caller *models.Identity, userID, plain string) error {
	if err := auth.Authorize(caller, auth.Admin); err != nil {
		return err
	}
	return s.auth.ChangeSecret(ctx, userID, plain)
}

func createUser(ctx context.Context, repo users.Repository, hasher password.Hasher, now func() time.Time,
	username, plain string, isAdmin bool) (*models.User, error) {

	if username == "" {
		return nil, fmt.Errorf("%w: username must not be empty", common.ErrorValidation)
	}
	// Usernames are stored exactly as given and matched exactly at login.
	if strings.TrimSpace(username) != username {
		return nil, fmt.Errorf("%w: username must not start or end with whitespace", common.ErrorValidation)
	}
	if err := validatePassword(plain); err != nil {
		return nil, err
	}

	hash, err := hasher.Hash(plain)
	if err != nil {
		return nil, internal(err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		CreatedAt:    now().UTC(),
	}
	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, internal(err)
	}

	user.PasswordHash = ""
	return user, nil
}
