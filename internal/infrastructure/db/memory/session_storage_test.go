package memory

import (
	"context"
	"testing"
	"time"
)

func TestSessionStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(time.Hour)
	s := p.Session("sid-a")

	if err := s.SetMany(ctx, map[string]string{"accessToken": "a", "user": "{}"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(ctx, "accessToken")
	if err != nil || !ok || v != "a" {
		t.Fatalf("get: %q %v %v", v, ok, err)
	}

	if err := s.Delete(ctx, "accessToken", "user", "refreshToken"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "user"); ok {
		t.Fatalf("expected user to be deleted")
	}
}

func TestSessionStorage_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(0)

	_ = p.Session("a").SetMany(ctx, map[string]string{"accessToken": "token-a"})
	if _, ok, _ := p.Session("b").Get(ctx, "accessToken"); ok {
		t.Fatalf("session b must not see session a's keys")
	}
	if v, _, _ := p.Session("a").Get(ctx, "accessToken"); v != "token-a" {
		t.Fatalf("a new handle on the same sid must see persisted keys")
	}
}

func TestSessionStorage_Expiry(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(20 * time.Millisecond)
	s := p.Session("sid")

	_ = s.SetMany(ctx, map[string]string{"accessToken": "a"})
	time.Sleep(40 * time.Millisecond)
	if _, ok, _ := s.Get(ctx, "accessToken"); ok {
		t.Fatalf("expected key to expire")
	}
}

func TestSessionStorage_WriteRenewsAllSessionKeys(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(time.Hour)
	s := p.Session("sid")

	_ = s.SetMany(ctx, map[string]string{"accessToken": "a", "refreshToken": "r", "user": "{}"})
	before := p.cache.Items()["sid:refreshToken"].Expiration

	time.Sleep(5 * time.Millisecond)
	_ = s.SetMany(ctx, map[string]string{"accessToken": "b"})

	items := p.cache.Items()
	refresh, access := items["sid:refreshToken"].Expiration, items["sid:accessToken"].Expiration
	if refresh <= before {
		t.Fatalf("refreshToken expiry was not renewed")
	}
	if access-refresh > int64(time.Millisecond) || refresh-access > int64(time.Millisecond) {
		t.Errorf("keys must expire together: access=%d refresh=%d", access, refresh)
	}
	if v, _, _ := s.Get(ctx, "refreshToken"); v != "r" {
		t.Errorf("renewal must keep the value, got %q", v)
	}
}
