package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/thispl/otp-generation/internal/otp/entity"
	"github.com/thispl/otp-generation/internal/pkg/goerror"
	"github.com/thispl/otp-generation/internal/pkg/instrument"
	"github.com/thispl/otp-generation/internal/pkg/valueobject"
)

const schema = `
CREATE TABLE IF NOT EXISTS otp_codes (
	id              BIGINT PRIMARY KEY,
	code            TEXT NOT NULL,
	email           TEXT NOT NULL DEFAULT '',
	phone           TEXT NOT NULL DEFAULT '',
	purpose         TEXT NOT NULL DEFAULT '',
	user_ref        TEXT NOT NULL DEFAULT '',
	delivery_method SMALLINT NOT NULL,
	status          SMALLINT NOT NULL,
	metadata        JSONB NOT NULL DEFAULT '{}',
	created_at      TIMESTAMPTZ NOT NULL,
	expires_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_otp_codes_lookup ON otp_codes (code, purpose, status);
CREATE INDEX IF NOT EXISTS idx_otp_codes_expiry ON otp_codes (status, expires_at);
`

func setupDB(t *testing.T) *DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("otp"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	return NewDB(pool, instrument.NewNoop(), 5*time.Second)
}

func record(id int64, code, email, phone string, expiresAt time.Time) entity.OTPRecord {
	return entity.OTPRecord{
		ID:             id,
		Code:           code,
		Email:          email,
		Phone:          phone,
		Purpose:        "login",
		DeliveryMethod: entity.DeliveryMethodEmail,
		Status:         entity.StatusValid,
		Metadata:       valueobject.JSONMap{},
		CreatedAt:      time.Now(),
		ExpiresAt:      expiresAt,
	}
}

func TestIssueOTPSupersedesPrior(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()
	future := time.Now().Add(5 * time.Minute)

	if err := s.IssueOTP(ctx, record(1, "111111", "a@example.com", "", future)); err != nil {
		t.Fatalf("issue first: %v", err)
	}
	if err := s.IssueOTP(ctx, record(2, "222222", "a@example.com", "", future)); err != nil {
		t.Fatalf("issue second: %v", err)
	}

	if _, err := s.GetValidOTP(ctx, "111111", "a@example.com", "", "login"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected first code to be superseded, got %v", err)
	}

	rec, err := s.GetValidOTP(ctx, "222222", "a@example.com", "", "login")
	if err != nil {
		t.Fatalf("get second: %v", err)
	}
	if rec.ID != 2 || rec.Status != entity.StatusValid {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestIssueOTPScopesByPurpose(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()
	future := time.Now().Add(5 * time.Minute)

	first := record(1, "111111", "a@example.com", "", future)
	if err := s.IssueOTP(ctx, first); err != nil {
		t.Fatalf("issue first: %v", err)
	}

	second := record(2, "222222", "a@example.com", "", future)
	second.Purpose = "reset"
	if err := s.IssueOTP(ctx, second); err != nil {
		t.Fatalf("issue second: %v", err)
	}

	// different purpose must not invalidate the first code
	if _, err := s.GetValidOTP(ctx, "111111", "a@example.com", "", "login"); err != nil {
		t.Fatalf("expected first code to stay valid, got %v", err)
	}
}

func TestGetValidOTPEmailPrecedence(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()
	future := time.Now().Add(5 * time.Minute)

	if err := s.IssueOTP(ctx, record(1, "123456", "", "+15550001111", future)); err != nil {
		t.Fatalf("issue phone record: %v", err)
	}
	if err := s.IssueOTP(ctx, record(2, "123456", "a@example.com", "", future)); err != nil {
		t.Fatalf("issue email record: %v", err)
	}

	rec, err := s.GetValidOTP(ctx, "123456", "a@example.com", "+15550001111", "login")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.ID != 2 {
		t.Fatalf("expected email-matched record, got %d", rec.ID)
	}
}

func TestConsumeOTPOnce(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	if err := s.IssueOTP(ctx, record(1, "123456", "a@example.com", "", time.Now().Add(5*time.Minute))); err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := s.ConsumeOTP(ctx, 1); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if err := s.ConsumeOTP(ctx, 1); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected second consume to miss, got %v", err)
	}
}

func TestExpireAndListExpiredValid(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	if err := s.IssueOTP(ctx, record(1, "111111", "a@example.com", "", time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("issue overdue: %v", err)
	}
	overdueOther := record(2, "222222", "b@example.com", "", time.Now().Add(-time.Minute))
	if err := s.IssueOTP(ctx, overdueOther); err != nil {
		t.Fatalf("issue other overdue: %v", err)
	}
	if err := s.IssueOTP(ctx, record(3, "333333", "c@example.com", "", time.Now().Add(5*time.Minute))); err != nil {
		t.Fatalf("issue fresh: %v", err)
	}

	ids, err := s.ListExpiredValid(ctx, time.Now(), 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 overdue records, got %v", ids)
	}

	for _, id := range ids {
		if err := s.ExpireOTP(ctx, id); err != nil {
			t.Fatalf("expire %d: %v", id, err)
		}
	}

	ids, err = s.ListExpiredValid(ctx, time.Now(), 100)
	if err != nil {
		t.Fatalf("list after expire: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected nothing left to expire, got %v", ids)
	}
}

func TestCountIssuedSince(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()
	future := time.Now().Add(5 * time.Minute)

	for i, code := range []string{"111111", "222222", "333333"} {
		if err := s.IssueOTP(ctx, record(int64(i+1), code, "a@example.com", "", future)); err != nil {
			t.Fatalf("issue %d: %v", i, err)
		}
	}

	// superseded records still count toward the issuance window
	count, err := s.CountIssuedSince(ctx, "a@example.com", "", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 issued, got %d", count)
	}

	count, err = s.CountIssuedSince(ctx, "other@example.com", "", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("count other: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 issued for other identity, got %d", count)
	}
}
