package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

// RedisRepository keeps each session in a hash under session:<token> and
// indexes tokens per user in the set user_sessions:<user id>. Session keys
// carry a Redis expiry equal to the session expiry, so Redis drops them on
// its own; the per-user sets are pruned by DeleteExpired.
type RedisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

func sessionKey(token string) string  { return sessionKeyPrefix + token }
func userSetKey(userID string) string { return userSessionKeyPrefix + userID }

func (r *RedisRepository) Create(ctx context.Context, session *models.Session) error {
	key := sessionKey(session.Token)

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    session.UserID,
			"created_at": session.CreatedAt.UTC().Format(time.RFC3339Nano),
			"expires_at": session.ExpiresAt.UTC().Format(time.RFC3339Nano),
		})
		pipe.ExpireAt(ctx, key, session.ExpiresAt)
		pipe.SAdd(ctx, userSetKey(session.UserID), session.Token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	fields, err := r.rdb.HGetAll(ctx, sessionKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		return nil, common.ErrorNotFound
	}

	s := &models.Session{Token: token, UserID: fields["user_id"]}
	if s.CreatedAt, err = time.Parse(time.RFC3339Nano, fields["created_at"]); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if s.ExpiresAt, err = time.Parse(time.RFC3339Nano, fields["expires_at"]); err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	return s, nil
}

func (r *RedisRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	key := sessionKey(token)

	userID, err := r.rdb.HGet(ctx, key, "user_id").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis error: %w", err)
	}

	var del *redis.IntCmd
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, key)
		pipe.SRem(ctx, userSetKey(userID), token)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	return del.Val(), nil
}

func (r *RedisRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	setKey := userSetKey(userID)

	tokens, err := r.rdb.SMembers(ctx, setKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}

	keys := make([]string, 0, len(tokens))
	for _, t := range tokens {
		keys = append(keys, sessionKey(t))
	}

	var del *redis.IntCmd
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(keys) > 0 {
			del = pipe.Del(ctx, keys...)
		}
		pipe.Del(ctx, setKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	if del == nil {
		return 0, nil
	}
	return del.Val(), nil
}

// DeleteExpired prunes index entries whose session key Redis has already
// expired and reports how many it pruned. now is unused: expiry itself is
// enforced by key TTLs.
func (r *RedisRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var pruned int64

	iter := r.rdb.Scan(ctx, 0, userSessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		setKey := iter.Val()

		tokens, err := r.rdb.SMembers(ctx, setKey).Result()
		if err != nil {
			return pruned, fmt.Errorf("redis error: %w", err)
		}

		for _, t := range tokens {
			exists, err := r.rdb.Exists(ctx, sessionKey(t)).Result()
			if err != nil {
				return pruned, fmt.Errorf("redis error: %w", err)
			}
			if exists == 0 {
				if err := r.rdb.SRem(ctx, setKey, t).Err(); err != nil {
					return pruned, fmt.Errorf("redis error: %w", err)
				}
				pruned++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return pruned, fmt.Errorf("redis error: %w", err)
	}

	return pruned, nil
}

// Close closes the underlying client.
func (r *RedisRepository) Close() error {
	return r.rdb.Close()
}
