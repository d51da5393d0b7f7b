// Package memory is the in-process session storage driver used in
// development and tests. State is lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/prbusiness/dashboard/internal/core/ports"
)

const cleanupInterval = time.Minute

// Provider shares one cache between all sessions.
type Provider struct {
	mu    sync.Mutex
	cache *gocache.Cache
	ttl   time.Duration
}

// NewProvider returns a provider whose entries expire after ttl (zero keeps
// them until restart).
func NewProvider(ttl time.Duration) *Provider {
	expiry := ttl
	if expiry <= 0 {
		expiry = gocache.NoExpiration
	}
	return &Provider{cache: gocache.New(expiry, cleanupInterval), ttl: expiry}
}

// Session satisfies ports.StorageProvider.
func (p *Provider) Session(sid string) ports.SessionStorage {
	return &SessionStorage{p: p, sid: sid}
}

// SessionStorage is the key space of one session inside the shared cache.
type SessionStorage struct {
	p   *Provider
	sid string
}

func (s *SessionStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	v, ok := s.p.cache.Get(s.key(key))
	if !ok {
		return "", false, nil
	}
	str, _ := v.(string)
	return str, true, nil
}

// SetMany holds the provider lock, so a concurrent Get sees either none or all
// of the values. The other session keys are re-set to renew their expiry.
func (s *SessionStorage) SetMany(_ context.Context, values map[string]string) error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	for k, v := range values {
		s.p.cache.Set(s.key(k), v, s.p.ttl)
	}
	for _, k := range ports.SessionKeys {
		if _, ok := values[k]; ok {
			continue
		}
		if v, found := s.p.cache.Get(s.key(k)); found {
			s.p.cache.Set(s.key(k), v, s.p.ttl)
		}
	}
	return nil
}

func (s *SessionStorage) Delete(_ context.Context, keys ...string) error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	for _, k := range keys {
		s.p.cache.Delete(s.key(k))
	}
	return nil
}

func (s *SessionStorage) key(k string) string {
	return s.sid + ":" + k
}
