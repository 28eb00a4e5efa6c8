package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupClient(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort(nat.Port("6379/tcp")).WithStartupTimeout(60*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	uri, err := ctr.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	opt, err := goredis.ParseURL(uri)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}

	client := goredis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestSlidingWindowLimits(t *testing.T) {
	client := setupClient(t)
	limiter := New(client, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "key")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("expected attempt %d to be allowed", i)
		}
		if err := limiter.Record(ctx, "key"); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	ok, err := limiter.Allow(ctx, "key")
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if ok {
		t.Fatal("expected fourth attempt to be rejected")
	}

	// other keys are unaffected
	ok, err = limiter.Allow(ctx, "other")
	if err != nil {
		t.Fatalf("allow other: %v", err)
	}
	if !ok {
		t.Fatal("expected other key to be allowed")
	}
}

func TestSlidingWindowExpiresOldEntries(t *testing.T) {
	client := setupClient(t)
	limiter := New(client, 1, 500*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Record(ctx, "key"); err != nil {
		t.Fatalf("record: %v", err)
	}

	ok, err := limiter.Allow(ctx, "key")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatal("expected rejection inside the window")
	}

	time.Sleep(600 * time.Millisecond)

	ok, err = limiter.Allow(ctx, "key")
	if err != nil {
		t.Fatalf("allow after window: %v", err)
	}
	if !ok {
		t.Fatal("expected old entry to fall out of the window")
	}
}

func TestWithPrefix(t *testing.T) {
	limiter := New(nil, 1, time.Minute, WithPrefix("custom:"))
	if limiter.prefix != "custom:" {
		t.Fatalf("expected custom prefix, got %q", limiter.prefix)
	}

	limiter = New(nil, 1, time.Minute, WithPrefix(""))
	if limiter.prefix != defaultPrefix {
		t.Fatalf("expected default prefix, got %q", limiter.prefix)
	}
}
