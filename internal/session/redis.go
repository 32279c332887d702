package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
)

const (
	sessionKeyPrefix  = "session:"
	defaultSessionTTL = 14 * 24 * time.Hour
)

// Store loads and persists sessions.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}

// RedisStore keeps each session as one JSON object under session:<id>. Every
// save rewrites the whole object and refreshes its TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisClient builds a go-redis client from the service config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if ttl == 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

// Load returns the session stored under id. An empty, unknown or expired id
// yields a fresh session with a new id.
func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return r.fresh(), nil
	}

	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("session miss", zap.String("session_id", id))
		return r.fresh(), nil
	}
	if err != nil {
		r.logger.Error("session load failed", zap.String("session_id", id), zap.Error(err))
		return nil, fmt.Errorf("load session: %w", err)
	}

	values := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &values); err != nil {
		// A corrupt blob is treated like an expired session.
		r.logger.Warn("discarding unreadable session", zap.String("session_id", id), zap.Error(err))
		return r.fresh(), nil
	}

	return &Session{ID: id, values: values}, nil
}

// Save writes s when it changed. A session left with no values is removed.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	if !s.modified {
		return nil
	}
	key := sessionKeyPrefix + s.ID

	if len(s.values) == 0 {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			r.logger.Error("session delete failed", zap.String("session_id", s.ID), zap.Error(err))
			return fmt.Errorf("delete session: %w", err)
		}
		s.modified = false
		return nil
	}

	data, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Error("session save failed", zap.String("session_id", s.ID), zap.Error(err))
		return fmt.Errorf("save session: %w", err)
	}

	r.logger.Debug("session saved", zap.String("session_id", s.ID), zap.Duration("ttl", r.ttl))
	s.modified = false
	s.isNew = false
	return nil
}

// Ping checks the Redis connection for readiness probes.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) fresh() *Session {
	return newSession(uuid.NewString())
}
