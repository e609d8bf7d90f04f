// Package session maps opaque browser tokens to user ids.  Only the user id
// is stored server side; the full user record is reloaded on each request.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when a token has no live session.
var ErrNoSession = errors.New("session not found")

// RedisStore keeps sessions as `<prefix>:<token> -> user id` keys with a TTL.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "sess", ttl: ttl}
}

// TTL is the lifetime applied to new sessions.
func (s *RedisStore) TTL() time.Duration { return s.ttl }

func (s *RedisStore) key(token string) string { return s.prefix + ":" + token }

// Save binds token to userID.
func (s *RedisStore) Save(ctx context.Context, token string, userID uint64) error {
	if err := s.rdb.Set(ctx, s.key(token), userID, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the user id bound to token, or ErrNoSession.
func (s *RedisStore) Load(ctx context.Context, token string) (uint64, error) {
	v, err := s.rdb.Get(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, fmt.Errorf("load session: %w", err)
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		// corrupt value; treat as no session and drop it
		_ = s.rdb.Del(ctx, s.key(token)).Err()
		return 0, ErrNoSession
	}
	return id, nil
}

// Delete removes token.  Deleting an unknown token is not an error.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
