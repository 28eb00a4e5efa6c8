package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/thispl/otp-generation/internal/otp/entity"
	"github.com/thispl/otp-generation/internal/pkg/clock"
	"github.com/thispl/otp-generation/internal/pkg/config"
	"github.com/thispl/otp-generation/internal/pkg/goerror"
	"github.com/thispl/otp-generation/internal/pkg/hash"
	"github.com/thispl/otp-generation/internal/pkg/instrument"
	"github.com/thispl/otp-generation/internal/pkg/passcode"
	"github.com/thispl/otp-generation/internal/pkg/ratelimit"
	"github.com/thispl/otp-generation/internal/pkg/uid"
	"github.com/thispl/otp-generation/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// OTPIssuedEvent announces a freshly issued passcode.
type OTPIssuedEvent struct {
	RecordID       int64
	IdentityHash   string
	Purpose        string
	DeliveryMethod string
	Sent           bool
}

// OTPConsumedEvent announces a successfully verified passcode.
type OTPConsumedEvent struct {
	RecordID     int64
	IdentityHash string
	Purpose      string
}

// OTPSweptEvent summarizes one expiry sweep.
type OTPSweptEvent struct {
	ExpiredCount int64
	SweptAt      time.Time
}

type repoMessaging interface {
	PublishOTPIssued(ctx context.Context, msg OTPIssuedEvent) error
	PublishOTPConsumed(ctx context.Context, msg OTPConsumedEvent) error
	PublishOTPSwept(ctx context.Context, msg OTPSweptEvent) error
}

type repoDB interface {
	IssueOTP(ctx context.Context, rec entity.OTPRecord) error
	GetValidOTP(ctx context.Context, code, email, phone, purpose string) (*entity.OTPRecord, error)
	ConsumeOTP(ctx context.Context, id int64) error
	ExpireOTP(ctx context.Context, id int64) error
	CountIssuedSince(ctx context.Context, email, phone string, since time.Time) (int64, error)
	ListExpiredValid(ctx context.Context, now time.Time, limit int32) ([]int64, error)
}

type notifierRegistry interface {
	Dispatch(ctx context.Context, channels []entity.Channel, rec entity.OTPRecord) []entity.DeliveryResult
}

type policyProvider interface {
	Load() (entity.Policy, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	notifier      notifierRegistry
	policy        policyProvider
	limiter       ratelimit.Limiter
	passcode      passcode.Generator
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Notifier      notifierRegistry
	Policy        policyProvider
	Limiter       ratelimit.Limiter
	Passcode      passcode.Generator
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		notifier:      dep.Notifier,
		policy:        dep.Policy,
		limiter:       dep.Limiter,
		passcode:      dep.Passcode,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

// identityHash returns the redacted identity key used for rate limiting,
// logging, and events. Raw email addresses and phone numbers never leave
// the usecase.
func (s *Usecase) identityHash(ctx context.Context, email, phone string) (string, error) {
	sum, err := s.hmac.Hash(email + "|" + phone)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash identity", "error", err)
		return "", goerror.NewServer(err)
	}
	return string(sum), nil
}

// requireIdentity ensures at least one identity field is present and that
// the policy's delivery method can be satisfied by the provided fields.
func requireIdentity(email, phone string, method entity.DeliveryMethod) error {
	if email == "" && phone == "" {
		return goerror.NewInvalidInput(nil, "identity", "either email or phone is required")
	}

	switch method {
	case entity.DeliveryMethodEmail:
		if email == "" {
			return goerror.NewInvalidInput(nil, "email", "email is required for email delivery")
		}
	case entity.DeliveryMethodSMS:
		if phone == "" {
			return goerror.NewInvalidInput(nil, "phone", "phone is required for sms delivery")
		}
	case entity.DeliveryMethodBoth:
		if email == "" || phone == "" {
			return goerror.NewInvalidInput(nil, "identity", "email and phone are required for combined delivery")
		}
	}

	return nil
}
