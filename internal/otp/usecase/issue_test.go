package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/thispl/otp-generation/internal/otp/entity"
	"github.com/thispl/otp-generation/internal/pkg/goerror"
)

func assertStatusCode(t *testing.T, err error, want int) {
	t.Helper()

	var goErr *goerror.Error
	if !errors.As(err, &goErr) {
		t.Fatalf("expected goerror, got %T: %v", err, err)
	}
	if goErr.StatusCode() != want {
		t.Fatalf("expected status %d, got %d (%v)", want, goErr.StatusCode(), err)
	}
}

func TestIssueSuccess(t *testing.T) {
	f := newFixture(t, defaultPolicy())

	var persisted entity.OTPRecord
	f.repoDB.issueFn = func(_ context.Context, rec entity.OTPRecord) error {
		persisted = rec
		return nil
	}

	out, err := f.uc.Issue(context.Background(), IssueInput{Email: "User@Example.com", Purpose: "login"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if len(out.Code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", out.Code)
	}
	if !out.Sent {
		t.Fatal("expected sent to be true")
	}
	if persisted.Email != "user@example.com" {
		t.Fatalf("expected normalized email, got %q", persisted.Email)
	}
	if persisted.Status != entity.StatusValid {
		t.Fatalf("expected valid status, got %v", persisted.Status)
	}
	if got := persisted.ExpiresAt.Sub(persisted.CreatedAt); got != 5*time.Minute {
		t.Fatalf("expected 5m expiry, got %v", got)
	}
	if len(f.limiter.recorded) != 1 {
		t.Fatalf("expected one rate limit record, got %d", len(f.limiter.recorded))
	}
	if len(f.messaging.issued) != 1 {
		t.Fatalf("expected one issued event, got %d", len(f.messaging.issued))
	}
	if f.messaging.issued[0].IdentityHash == "" || f.messaging.issued[0].IdentityHash == "user@example.com" {
		t.Fatalf("expected hashed identity in event, got %q", f.messaging.issued[0].IdentityHash)
	}
}

func TestIssueDeliveryFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, defaultPolicy())
	f.notifier.results = []entity.DeliveryResult{
		{Channel: entity.ChannelEmail, Sent: false, Error: "smtp connection refused"},
	}

	out, err := f.uc.Issue(context.Background(), IssueInput{Email: "user@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if out.Sent {
		t.Fatal("expected sent to be false")
	}
	if len(f.messaging.issued) != 1 || f.messaging.issued[0].Sent {
		t.Fatal("expected issued event with sent=false")
	}
}

func TestIssueRateLimitedByWindow(t *testing.T) {
	f := newFixture(t, defaultPolicy())
	f.limiter.allowed = false

	issued := false
	f.repoDB.issueFn = func(context.Context, entity.OTPRecord) error {
		issued = true
		return nil
	}

	_, err := f.uc.Issue(context.Background(), IssueInput{Email: "user@example.com"})
	assertStatusCode(t, err, http.StatusTooManyRequests)
	if issued {
		t.Fatal("expected no record to be persisted")
	}
}

func TestIssueRateLimitedByPersistedCount(t *testing.T) {
	f := newFixture(t, defaultPolicy())
	f.repoDB.countSinceFn = func(context.Context, string, string, time.Time) (int64, error) {
		return 5, nil
	}

	issued := false
	f.repoDB.issueFn = func(context.Context, entity.OTPRecord) error {
		issued = true
		return nil
	}

	_, err := f.uc.Issue(context.Background(), IssueInput{Email: "user@example.com"})
	assertStatusCode(t, err, http.StatusTooManyRequests)
	if issued {
		t.Fatal("expected no record to be persisted")
	}
}

func TestIssueWithoutIdentity(t *testing.T) {
	f := newFixture(t, defaultPolicy())

	_, err := f.uc.Issue(context.Background(), IssueInput{Purpose: "login"})
	assertStatusCode(t, err, http.StatusUnprocessableEntity)
}

func TestIssueInvalidEmail(t *testing.T) {
	f := newFixture(t, defaultPolicy())

	_, err := f.uc.Issue(context.Background(), IssueInput{Email: "not-an-email"})
	assertStatusCode(t, err, http.StatusUnprocessableEntity)
}

func TestIssueSMSDeliveryRequiresPhone(t *testing.T) {
	policy := defaultPolicy()
	policy.DeliveryMethod = entity.DeliveryMethodSMS
	f := newFixture(t, policy)

	_, err := f.uc.Issue(context.Background(), IssueInput{Email: "user@example.com"})
	assertStatusCode(t, err, http.StatusUnprocessableEntity)
}

func TestIssueStoreFailure(t *testing.T) {
	f := newFixture(t, defaultPolicy())
	f.repoDB.issueFn = func(context.Context, entity.OTPRecord) error {
		return errors.New("connection reset")
	}

	_, err := f.uc.Issue(context.Background(), IssueInput{Email: "user@example.com"})
	assertStatusCode(t, err, http.StatusInternalServerError)
	if len(f.messaging.issued) != 0 {
		t.Fatal("expected no issued event on store failure")
	}
}

func TestIssueAlphanumericPolicy(t *testing.T) {
	policy := defaultPolicy()
	policy.CodeAlphabet = "alphanumeric"
	policy.CodeLength = 8
	f := newFixture(t, policy)

	out, err := f.uc.Issue(context.Background(), IssueInput{Email: "user@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(out.Code) != 8 {
		t.Fatalf("expected 8-char code, got %q", out.Code)
	}
	for _, r := range out.Code {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			t.Fatalf("unexpected character %q in code %q", r, out.Code)
		}
	}
}
