package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prbusiness/dashboard/internal/core/ports"
)

const keyPrefix = "prb:session"

// SessionStorage keeps the keys of one browser session under
// prb:session:<sid>:<key>. Every write refreshes the TTL of all session keys,
// so they age out together once the session goes idle.
type SessionStorage struct {
	client *redis.Client
	sid    string
	ttl    time.Duration
}

// Provider opens SessionStorage instances sharing one client.
type Provider struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProvider returns a ports.StorageProvider backed by client. A zero ttl
// keeps keys forever.
func NewProvider(client *redis.Client, ttl time.Duration) *Provider {
	return &Provider{client: client, ttl: ttl}
}

// Session satisfies ports.StorageProvider.
func (p *Provider) Session(sid string) ports.SessionStorage {
	return &SessionStorage{client: p.client, sid: sid, ttl: p.ttl}
}

func (s *SessionStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session storage get %s: %w", key, err)
	}
	return v, true, nil
}

// SetMany writes inside MULTI/EXEC so readers never see half of a role switch.
func (s *SessionStorage) SetMany(ctx context.Context, values map[string]string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, s.key(k), v, s.ttl)
		}
		if s.ttl <= 0 {
			return nil
		}
		for _, k := range ports.SessionKeys {
			if _, ok := values[k]; !ok {
				pipe.Expire(ctx, s.key(k), s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session storage set: %w", err)
	}
	return nil
}

func (s *SessionStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, s.key(k))
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("session storage delete: %w", err)
	}
	return nil
}

func (s *SessionStorage) key(k string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, s.sid, k)
}
