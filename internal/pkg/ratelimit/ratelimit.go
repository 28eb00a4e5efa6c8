// Package ratelimit implements a redis-backed sliding-window rate limiter.
//
// Each key owns a sorted set of issuance timestamps. Allow trims entries
// older than the window and counts what remains; Record appends a new entry
// after the guarded operation succeeds, so rejected attempts never consume
// window budget.
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "ratelimit:"

// Limiter defines the contract for sliding-window rate limiting.
type Limiter interface {
	// Allow reports whether another event fits in the window for key.
	Allow(ctx context.Context, key string) (bool, error)
	// Record registers one event for key at the current time.
	Record(ctx context.Context, key string) error
}

// SlidingWindow limits events per key within a rolling time window.
type SlidingWindow struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// Option customizes a SlidingWindow.
type Option func(*SlidingWindow)

// WithPrefix overrides the redis key prefix.
func WithPrefix(prefix string) Option {
	return func(s *SlidingWindow) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New returns a limiter allowing at most limit events per window for a key.
func New(client *redis.Client, limit int, window time.Duration, opts ...Option) *SlidingWindow {
	s := &SlidingWindow{
		client: client,
		prefix: defaultPrefix,
		limit:  limit,
		window: window,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow trims expired entries for key and reports whether the count is
// still under the limit. It does not register an event; call Record once
// the guarded operation has succeeded.
func (s *SlidingWindow) Allow(ctx context.Context, key string) (bool, error) {
	fk := s.prefix + key
	cutoff := time.Now().Add(-s.window).UnixNano()

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, fk, "-inf", strconv.FormatInt(cutoff, 10))
	count := pipe.ZCard(ctx, fk)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return count.Val() < int64(s.limit), nil
}

// Record appends one event for key and refreshes the key's TTL so idle
// keys eventually disappear.
func (s *SlidingWindow) Record(ctx context.Context, key string) error {
	fk := s.prefix + key
	now := time.Now().UnixNano()

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, fk, redis.Z{Score: float64(now), Member: strconv.FormatInt(now, 10)})
	pipe.Expire(ctx, fk, s.window)

	_, err := pipe.Exec(ctx)
	return err
}
