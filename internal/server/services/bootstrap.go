package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/logging"
	"github.com/dmitrijs2005/bacheca/internal/server/password"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/users"
)

// Bootstrap seeds the admin account with common.DefaultAdminPassword when
// no user of that name exists. It must finish before any listener starts.
func Bootstrap(ctx context.Context, repo users.Repository, hasher password.Hasher, logger logging.Logger) error {
	_, err := repo.GetByUsername(ctx, common.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return internal(err)
	}

	user, err := createUser(ctx, repo, hasher, time.Now, common.AdminUsername, common.DefaultAdminPassword, true)
	if err != nil {
		return err
	}

	logger.Warn(ctx, "default admin account created, change its password", "user_id", user.ID, "username", user.Username)
	return nil
}
