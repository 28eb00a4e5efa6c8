package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/thispl/otp-generation/internal/otp/entity"
	"github.com/thispl/otp-generation/internal/pkg/config"
	"github.com/thispl/otp-generation/internal/pkg/hash"
	"github.com/thispl/otp-generation/internal/pkg/instrument"
	"github.com/thispl/otp-generation/internal/pkg/passcode"
	"github.com/thispl/otp-generation/internal/pkg/validator"
)

var testNow = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeUID struct{ next int64 }

func (u *fakeUID) Generate() int64 {
	u.next++
	return u.next
}

type fakeConfig struct {
	config.Config
	int32s map[string]int32
}

func (c fakeConfig) GetInt32(key string) int32 { return c.int32s[key] }

type fakeRepoDB struct {
	issueFn       func(ctx context.Context, rec entity.OTPRecord) error
	getValidFn    func(ctx context.Context, code, email, phone, purpose string) (*entity.OTPRecord, error)
	consumeFn     func(ctx context.Context, id int64) error
	expireFn      func(ctx context.Context, id int64) error
	countSinceFn  func(ctx context.Context, email, phone string, since time.Time) (int64, error)
	listExpiredFn func(ctx context.Context, now time.Time, limit int32) ([]int64, error)
}

func (f *fakeRepoDB) IssueOTP(ctx context.Context, rec entity.OTPRecord) error {
	return f.issueFn(ctx, rec)
}

func (f *fakeRepoDB) GetValidOTP(ctx context.Context, code, email, phone, purpose string) (*entity.OTPRecord, error) {
	return f.getValidFn(ctx, code, email, phone, purpose)
}

func (f *fakeRepoDB) ConsumeOTP(ctx context.Context, id int64) error {
	return f.consumeFn(ctx, id)
}

func (f *fakeRepoDB) ExpireOTP(ctx context.Context, id int64) error {
	return f.expireFn(ctx, id)
}

func (f *fakeRepoDB) CountIssuedSince(ctx context.Context, email, phone string, since time.Time) (int64, error) {
	return f.countSinceFn(ctx, email, phone, since)
}

func (f *fakeRepoDB) ListExpiredValid(ctx context.Context, now time.Time, limit int32) ([]int64, error) {
	return f.listExpiredFn(ctx, now, limit)
}

type fakeMessaging struct {
	issued   []OTPIssuedEvent
	consumed []OTPConsumedEvent
	swept    []OTPSweptEvent
	err      error
}

func (f *fakeMessaging) PublishOTPIssued(_ context.Context, msg OTPIssuedEvent) error {
	f.issued = append(f.issued, msg)
	return f.err
}

func (f *fakeMessaging) PublishOTPConsumed(_ context.Context, msg OTPConsumedEvent) error {
	f.consumed = append(f.consumed, msg)
	return f.err
}

func (f *fakeMessaging) PublishOTPSwept(_ context.Context, msg OTPSweptEvent) error {
	f.swept = append(f.swept, msg)
	return f.err
}

type fakeNotifier struct {
	results []entity.DeliveryResult
}

func (f *fakeNotifier) Dispatch(_ context.Context, channels []entity.Channel, _ entity.OTPRecord) []entity.DeliveryResult {
	if f.results != nil {
		return f.results
	}
	out := make([]entity.DeliveryResult, 0, len(channels))
	for _, ch := range channels {
		out = append(out, entity.DeliveryResult{Channel: ch, Sent: true})
	}
	return out
}

type fakePolicy struct{ policy entity.Policy }

func (f fakePolicy) Load() (entity.Policy, error) { return f.policy, nil }

type fakeLimiter struct {
	allowed  bool
	allowErr error
	recorded []string
}

func (f *fakeLimiter) Allow(context.Context, string) (bool, error) { return f.allowed, f.allowErr }

func (f *fakeLimiter) Record(_ context.Context, key string) error {
	f.recorded = append(f.recorded, key)
	return nil
}

func defaultPolicy() entity.Policy {
	return entity.Policy{
		CodeLength:           6,
		CodeAlphabet:         passcode.AlphabetNumeric,
		Expiry:               5 * time.Minute,
		DeliveryMethod:       entity.DeliveryMethodEmail,
		MaxAttemptsPerWindow: 5,
		RateWindow:           time.Hour,
	}
}

type fixture struct {
	uc        *Usecase
	repoDB    *fakeRepoDB
	messaging *fakeMessaging
	notifier  *fakeNotifier
	limiter   *fakeLimiter
}

func newFixture(t *testing.T, policy entity.Policy) *fixture {
	t.Helper()

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("init validator: %v", err)
	}

	f := &fixture{
		repoDB: &fakeRepoDB{
			issueFn:   func(context.Context, entity.OTPRecord) error { return nil },
			consumeFn: func(context.Context, int64) error { return nil },
			expireFn:  func(context.Context, int64) error { return nil },
			countSinceFn: func(context.Context, string, string, time.Time) (int64, error) {
				return 0, nil
			},
		},
		messaging: &fakeMessaging{},
		notifier:  &fakeNotifier{},
		limiter:   &fakeLimiter{allowed: true},
	}

	f.uc = New(Dependency{
		RepoDB:        f.repoDB,
		RepoMessaging: f.messaging,
		Notifier:      f.notifier,
		Policy:        fakePolicy{policy: policy},
		Limiter:       f.limiter,
		Passcode:      passcode.NewRandom(),
		Validator:     v10,
		Config:        fakeConfig{},
		HMAC:          hash.NewHMACSHA256("test-secret"),
		UID:           &fakeUID{},
		Clock:         fixedClock{now: testNow},
		Instrument:    instrument.NewNoop(),
	})

	return f
}
