// Package memory holds process-local implementations of the repository
// contracts. They back the "memory" storage mode and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/server/models"
)

// UserRepository keeps accounts in a map keyed by id with a username index.
// It enforces unique usernames like the database constraint does.
type UserRepository struct {
	mu     sync.RWMutex
	byID   map[string]*models.User
	byName map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:   make(map[string]*models.User),
		byName: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[user.Username]; ok {
		return common.ErrorAlreadyExists
	}
	if _, ok := r.byID[user.ID]; ok {
		return common.ErrorAlreadyExists
	}
	u := *user
	r.byID[u.ID] = &u
	r.byName[u.Username] = u.ID
	return nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *UserRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.RLock()
	result := make([]*models.User, 0, len(r.byID))
	for _, u := range r.byID {
		c := *u
		c.PasswordHash = ""
		result = append(result, &c)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Username < result[j].Username
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if len(result) > common.MaxListSize {
		result = result[:common.MaxListSize]
	}
	return result, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return 0, nil
	}
	delete(r.byName, u.Username)
	delete(r.byID, id)
	return 1, nil
}

func (r *UserRepository) UpdatePasswordHash(_ context.Context, id string, hash string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return 0, nil
	}
	u.PasswordHash = hash
	return 1, nil
}
