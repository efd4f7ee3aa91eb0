package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRateLimiter_DisabledWithoutLimit(t *testing.T) {
	l := NewRateLimiter(nil, 0, time.Second)
	for i := 0; i < 5; i++ {
		ok, err := l.Allow(context.Background(), "k")
		if err != nil || !ok {
			t.Fatalf("disabled limiter must allow: ok=%v err=%v", ok, err)
		}
	}
}

func TestRateLimiter_UnreachableServerReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	ok, err := NewRateLimiter(client, 1, time.Second).Allow(context.Background(), "k")
	if err == nil || ok {
		t.Fatalf("expected error from unreachable server, got ok=%v err=%v", ok, err)
	}
}

func TestRateLimiter_KeyIsWindowed(t *testing.T) {
	l := NewRateLimiter(nil, 1, time.Minute)
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	if l.key("chat:send:u1", base) != l.key("chat:send:u1", base.Add(59*time.Second)) {
		t.Fatal("same window should share a key")
	}
	if l.key("chat:send:u1", base) == l.key("chat:send:u1", base.Add(time.Minute)) {
		t.Fatal("next window should use a new key")
	}
	if l.key("chat:send:u1", base) == l.key("chat:send:u2", base) {
		t.Fatal("different callers must not share a key")
	}
}

func TestRateLimiter_DefaultWindow(t *testing.T) {
	if l := NewRateLimiter(nil, 1, 0); l.window != time.Minute {
		t.Fatalf("expected default window of one minute, got %v", l.window)
	}
}
