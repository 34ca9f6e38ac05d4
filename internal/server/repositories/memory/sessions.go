package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/server/models"
)

// SessionRepository keeps sessions in a map keyed by token.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]*models.Session)}
}

func (r *SessionRepository) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.Token]; ok {
		return common.ErrorAlreadyExists
	}
	s := *session
	r.sessions[s.Token] = &s
	return nil
}

func (r *SessionRepository) GetByToken(_ context.Context, token string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *s
	return &c, nil
}

func (r *SessionRepository) DeleteByToken(_ context.Context, token string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[token]; !ok {
		return 0, nil
	}
	delete(r.sessions, token)
	return 1, nil
}

func (r *SessionRepository) DeleteByUser(_ context.Context, userID string) (int64, error) {
	return r.deleteWhere(func(s *models.Session) bool { return s.UserID == userID }), nil
}

func (r *SessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	return r.deleteWhere(func(s *models.Session) bool { return s.Expired(now) }), nil
}

func (r *SessionRepository) deleteWhere(match func(*models.Session) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for token, s := range r.sessions {
		if match(s) {
			delete(r.sessions, token)
			n++
		}
	}
	return n
}
