package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSweepExpiresOverdueRecords(t *testing.T) {
	f := newFixture(t, defaultPolicy())

	f.repoDB.listExpiredFn = func(_ context.Context, now time.Time, limit int32) ([]int64, error) {
		if !now.Equal(testNow) {
			t.Fatalf("unexpected sweep time %v", now)
		}
		if limit != defaultSweepBatchSize {
			t.Fatalf("expected default batch size, got %d", limit)
		}
		return []int64{1, 2, 3}, nil
	}

	var expired []int64
	f.repoDB.expireFn = func(_ context.Context, id int64) error {
		expired = append(expired, id)
		return nil
	}

	out, err := f.uc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if out.ExpiredCount != 3 {
		t.Fatalf("expected 3 expired, got %d", out.ExpiredCount)
	}
	if len(expired) != 3 {
		t.Fatalf("expected 3 expire calls, got %d", len(expired))
	}
	if len(f.messaging.swept) != 1 || f.messaging.swept[0].ExpiredCount != 3 {
		t.Fatal("expected one swept event with count 3")
	}
}

func TestSweepSkipsFailingRecord(t *testing.T) {
	f := newFixture(t, defaultPolicy())

	f.repoDB.listExpiredFn = func(context.Context, time.Time, int32) ([]int64, error) {
		return []int64{1, 2, 3}, nil
	}
	f.repoDB.expireFn = func(_ context.Context, id int64) error {
		if id == 2 {
			return errors.New("row locked")
		}
		return nil
	}

	out, err := f.uc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if out.ExpiredCount != 2 {
		t.Fatalf("expected 2 expired, got %d", out.ExpiredCount)
	}
}

func TestSweepNothingToExpire(t *testing.T) {
	f := newFixture(t, defaultPolicy())

	f.repoDB.listExpiredFn = func(context.Context, time.Time, int32) ([]int64, error) {
		return nil, nil
	}

	out, err := f.uc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if out.ExpiredCount != 0 {
		t.Fatalf("expected 0 expired, got %d", out.ExpiredCount)
	}
	if len(f.messaging.swept) != 0 {
		t.Fatal("expected no swept event when nothing expired")
	}
}
