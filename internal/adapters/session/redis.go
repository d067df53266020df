// Package session stores HTTP sessions in Redis, one hash per session.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"campusevents/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "campusevents:session:"
	createdField = "_created"
	defaultTTL   = 30 * time.Minute
)

// Store is a domain.SessionStore backed by Redis. Every access slides the expiry forward by ttl.
type Store struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewStore returns a Store using client. A zero ttl defaults to 30 minutes.
func NewStore(client redis.Cmdable, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

var _ domain.SessionStore = (*Store)(nil)

// TTL is how long a session survives without being touched.
func (s *Store) TTL() time.Duration { return s.ttl }

func (s *Store) New(ctx context.Context) (domain.Session, error) {
	id := uuid.NewString()
	key := keyPrefix + id
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, createdField, strconv.FormatInt(time.Now().Unix(), 10))
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &redisSession{id: id, key: key, store: s}, nil
}

// Load returns domain.ErrNotFound for a session that never existed, expired or was invalidated.
func (s *Store) Load(ctx context.Context, id string) (domain.Session, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	key := keyPrefix + id
	ok, err := s.client.Expire(ctx, key, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &redisSession{id: id, key: key, store: s}, nil
}

type redisSession struct {
	id    string
	key   string
	store *Store
}

func (rs *redisSession) ID() string { return rs.id }

func (rs *redisSession) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := rs.store.client.HGet(ctx, rs.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session get %s: %w", key, err)
	}
	return v, true, nil
}

func (rs *redisSession) Set(ctx context.Context, key, value string) error {
	_, err := rs.store.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, rs.key, key, value)
		p.Expire(ctx, rs.key, rs.store.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session set %s: %w", key, err)
	}
	return nil
}

func (rs *redisSession) Remove(ctx context.Context, key string) error {
	if err := rs.store.client.HDel(ctx, rs.key, key).Err(); err != nil {
		return fmt.Errorf("session remove %s: %w", key, err)
	}
	return nil
}

func (rs *redisSession) Invalidate(ctx context.Context) error {
	if err := rs.store.client.Del(ctx, rs.key).Err(); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}
