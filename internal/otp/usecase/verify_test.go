package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/thispl/otp-generation/internal/otp/entity"
	"github.com/thispl/otp-generation/internal/pkg/goerror"
)

func validRecord() *entity.OTPRecord {
	return &entity.OTPRecord{
		ID:        42,
		Code:      "123456",
		Email:     "user@example.com",
		Purpose:   "login",
		Status:    entity.StatusValid,
		CreatedAt: testNow.Add(-time.Minute),
		ExpiresAt: testNow.Add(4 * time.Minute),
	}
}

func TestVerifySuccess(t *testing.T) {
	f := newFixture(t, defaultPolicy())

	var consumedID int64
	f.repoDB.getValidFn = func(_ context.Context, code, email, _, purpose string) (*entity.OTPRecord, error) {
		if code != "123456" || email != "user@example.com" || purpose != "login" {
			t.Fatalf("unexpected lookup: code=%q email=%q purpose=%q", code, email, purpose)
		}
		return validRecord(), nil
	}
	f.repoDB.consumeFn = func(_ context.Context, id int64) error {
		consumedID = id
		return nil
	}

	out, err := f.uc.Verify(context.Background(), VerifyInput{
		Code:    "123456",
		Email:   "User@Example.com",
		Purpose: "login",
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if !out.Valid {
		t.Fatal("expected valid result")
	}
	if consumedID != 42 {
		t.Fatalf("expected record 42 consumed, got %d", consumedID)
	}
	if len(f.messaging.consumed) != 1 {
		t.Fatalf("expected one consumed event, got %d", len(f.messaging.consumed))
	}
}

func TestVerifyWrongCode(t *testing.T) {
	f := newFixture(t, defaultPolicy())
	f.repoDB.getValidFn = func(context.Context, string, string, string, string) (*entity.OTPRecord, error) {
		return nil, goerror.ErrNotFound
	}

	_, err := f.uc.Verify(context.Background(), VerifyInput{Code: "999999", Email: "user@example.com"})
	assertStatusCode(t, err, http.StatusUnauthorized)
}

func TestVerifyExpiredLazily(t *testing.T) {
	f := newFixture(t, defaultPolicy())

	rec := validRecord()
	rec.ExpiresAt = testNow.Add(-time.Second)
	f.repoDB.getValidFn = func(context.Context, string, string, string, string) (*entity.OTPRecord, error) {
		return rec, nil
	}

	var expiredID int64
	f.repoDB.expireFn = func(_ context.Context, id int64) error {
		expiredID = id
		return nil
	}

	_, err := f.uc.Verify(context.Background(), VerifyInput{Code: "123456", Email: "user@example.com"})
	assertStatusCode(t, err, http.StatusGone)
	if expiredID != rec.ID {
		t.Fatalf("expected record %d expired, got %d", rec.ID, expiredID)
	}
	if len(f.messaging.consumed) != 0 {
		t.Fatal("expected no consumed event for expired code")
	}
}

func TestVerifyConsumeRaceLoss(t *testing.T) {
	f := newFixture(t, defaultPolicy())
	f.repoDB.getValidFn = func(context.Context, string, string, string, string) (*entity.OTPRecord, error) {
		return validRecord(), nil
	}
	f.repoDB.consumeFn = func(context.Context, int64) error {
		return goerror.ErrNotFound
	}

	_, err := f.uc.Verify(context.Background(), VerifyInput{Code: "123456", Email: "user@example.com"})
	assertStatusCode(t, err, http.StatusUnauthorized)
	if len(f.messaging.consumed) != 0 {
		t.Fatal("expected no consumed event when race is lost")
	}
}

func TestVerifyWithoutCode(t *testing.T) {
	f := newFixture(t, defaultPolicy())

	_, err := f.uc.Verify(context.Background(), VerifyInput{Email: "user@example.com"})
	assertStatusCode(t, err, http.StatusUnprocessableEntity)
}

func TestVerifyWithoutIdentity(t *testing.T) {
	f := newFixture(t, defaultPolicy())

	_, err := f.uc.Verify(context.Background(), VerifyInput{Code: "123456"})
	assertStatusCode(t, err, http.StatusUnprocessableEntity)
}
