package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/prbusiness/dashboard/internal/core/ports"
)

func newTestProvider(t *testing.T, ttl time.Duration) (*Provider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewProvider(client, ttl), mr
}

func TestSessionStorage_KeyLayout(t *testing.T) {
	p := NewProvider(nil, time.Hour)
	s := p.Session("abc").(*SessionStorage)

	if got := s.key("accessToken"); got != "prb:session:abc:accessToken" {
		t.Fatalf("unexpected key %q", got)
	}
	if s.ttl != time.Hour {
		t.Fatalf("ttl not propagated")
	}
}

func TestSessionStorage_MissingKeyIsAbsent(t *testing.T) {
	p, _ := newTestProvider(t, time.Hour)

	v, ok, err := p.Session("sid").Get(context.Background(), ports.KeyUser)
	if err != nil || ok || v != "" {
		t.Fatalf("expected absent without error, got %q %v %v", v, ok, err)
	}
}

func TestSessionStorage_SetManyGetDelete(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestProvider(t, time.Hour)
	s := p.Session("sid")

	err := s.SetMany(ctx, map[string]string{
		ports.KeyAccessToken:  "a",
		ports.KeyRefreshToken: "r",
		ports.KeyUser:         `{"id":"u-1"}`,
	})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := mr.Get("prb:session:sid:accessToken"); got != "a" {
		t.Errorf("unexpected stored token %q", got)
	}
	if ttl := mr.TTL("prb:session:sid:user"); ttl != time.Hour {
		t.Errorf("expected 1h ttl, got %s", ttl)
	}

	v, ok, err := s.Get(ctx, ports.KeyUser)
	if err != nil || !ok || v != `{"id":"u-1"}` {
		t.Fatalf("get: %q %v %v", v, ok, err)
	}

	if err := s.Delete(ctx, ports.SessionKeys...); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, k := range ports.SessionKeys {
		if mr.Exists("prb:session:sid:" + k) {
			t.Errorf("%s survived delete", k)
		}
	}
}

func TestSessionStorage_SetManyRunsInTransaction(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestProvider(t, time.Hour)
	s := p.Session("sid")

	mr.SetError("ERR injected failure")
	err := s.SetMany(ctx, map[string]string{ports.KeyAccessToken: "t2", ports.KeyUser: "{}"})
	if err == nil {
		t.Fatal("expected error")
	}
	mr.SetError("")

	if mr.Exists("prb:session:sid:accessToken") || mr.Exists("prb:session:sid:user") {
		t.Fatal("a failed transaction must leave no partial write")
	}
}

func TestSessionStorage_ReadErrorIsNotAbsence(t *testing.T) {
	p, mr := newTestProvider(t, time.Hour)
	mr.SetError("ERR injected failure")

	if _, _, err := p.Session("sid").Get(context.Background(), ports.KeyAccessToken); err == nil {
		t.Fatal("a failing read must surface an error")
	}
}

func TestSessionStorage_WriteRenewsAllSessionKeys(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestProvider(t, time.Hour)
	s := p.Session("sid")

	_ = s.SetMany(ctx, map[string]string{
		ports.KeyAccessToken:  "a",
		ports.KeyRefreshToken: "r",
		ports.KeyUser:         "{}",
	})
	mr.FastForward(40 * time.Minute)

	if err := s.SetMany(ctx, map[string]string{ports.KeyAccessToken: "b"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	for _, k := range ports.SessionKeys {
		if ttl := mr.TTL("prb:session:sid:" + k); ttl != time.Hour {
			t.Errorf("%s: expected renewed 1h ttl, got %s", k, ttl)
		}
	}
}
