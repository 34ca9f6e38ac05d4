package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bacheca/internal/server/config"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/sessions"
	"github.com/redis/go-redis/v9"
)

// Open builds the manager selected by cfg.Storage. When cfg.RedisAddr is set
// the session repository is served from Redis instead.
func Open(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	var m RepositoryManager

	switch cfg.Storage {
	case config.StorageMemory:
		m = NewMemoryRepositoryManager()
	case config.StoragePostgres:
		db, err := sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db ping error: %w", err)
		}
		m = NewPostgresRepositoryManager(db)
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}

	if cfg.RedisAddr == "" {
		return m, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		_ = m.Close()
		return nil, fmt.Errorf("redis ping error: %w", err)
	}
	return &redisSessions{RepositoryManager: m, sessions: sessions.NewRedisRepository(rdb)}, nil
}

// redisSessions overrides the session repository of the wrapped manager.
type redisSessions struct {
	RepositoryManager
	sessions *sessions.RedisRepository
}

func (m *redisSessions) Sessions() sessions.Repository { return m.sessions }

func (m *redisSessions) Close() error {
	return errors.Join(m.sessions.Close(), m.RepositoryManager.Close())
}
