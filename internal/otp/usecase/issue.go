package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/thispl/otp-generation/internal/otp/entity"
	"github.com/thispl/otp-generation/internal/pkg/goerror"
	"github.com/thispl/otp-generation/internal/pkg/valueobject"
)

type IssueInput struct {
	Email   string `validate:"omitempty,email"`
	Phone   string `validate:"omitempty,e164"`
	Purpose string `validate:"omitempty,max=140"`
	UserRef string `validate:"omitempty,max=140"`
}

type IssueOutput struct {
	Code            string
	RecordID        int64
	Sent            bool
	DeliveryResults []entity.DeliveryResult
}

// Issue generates a new passcode for the identity, expires any still-valid
// predecessor for the same identity scope and purpose, and dispatches the
// code over the configured channels. Delivery failures never fail issuance;
// they surface through Sent and DeliveryResults.
func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Purpose = strings.TrimSpace(in.Purpose)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	policy, err := s.policy.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load issuance policy", "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := requireIdentity(in.Email, in.Phone, policy.DeliveryMethod); err != nil {
		return nil, err
	}

	identity, err := s.identityHash(ctx, in.Email, in.Phone)
	if err != nil {
		return nil, err
	}

	if err := s.checkRateLimit(ctx, identity, in.Email, in.Phone, policy); err != nil {
		return nil, err
	}

	code, err := s.passcode.Generate(policy.CodeLength, policy.CodeAlphabet)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate passcode", "identity", identity, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	rec := entity.OTPRecord{
		ID:             s.uid.Generate(),
		Code:           code,
		Email:          in.Email,
		Phone:          in.Phone,
		Purpose:        in.Purpose,
		UserRef:        in.UserRef,
		DeliveryMethod: policy.DeliveryMethod,
		Status:         entity.StatusValid,
		Metadata:       valueobject.JSONMap{},
		CreatedAt:      now,
		ExpiresAt:      now.Add(policy.Expiry),
	}

	if err := s.repoDB.IssueOTP(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo issue otp", "identity", identity, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.limiter.Record(ctx, identity); err != nil {
		slog.WarnContext(ctx, "failed to record rate limit hit", "identity", identity, "error", err)
	}

	results := s.notifier.Dispatch(ctx, policy.DeliveryMethod.Channels(), rec)
	sent := lo.SomeBy(results, func(r entity.DeliveryResult) bool { return r.Sent })
	for _, r := range results {
		if !r.Sent {
			slog.WarnContext(ctx, "passcode delivery failed",
				"record_id", rec.ID, "channel", string(r.Channel), "identity", identity, "reason", r.Error)
		}
	}

	if err := s.repoMessaging.PublishOTPIssued(ctx, OTPIssuedEvent{
		RecordID:       rec.ID,
		IdentityHash:   identity,
		Purpose:        rec.Purpose,
		DeliveryMethod: rec.DeliveryMethod.String(),
		Sent:           sent,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp issued", "record_id", rec.ID, "error", err)
	}

	return &IssueOutput{
		Code:            code,
		RecordID:        rec.ID,
		Sent:            sent,
		DeliveryResults: results,
	}, nil
}

// checkRateLimit layers a redis sliding window over the persisted issuance
// count. The redis check is cheap and absorbs bursts before they reach the
// database; the count query stays authoritative across cache flushes.
func (s *Usecase) checkRateLimit(ctx context.Context, identity, email, phone string, policy entity.Policy) error {
	allowed, err := s.limiter.Allow(ctx, identity)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check rate limit", "identity", identity, "error", err)
		return goerror.NewServer(err)
	}
	if !allowed {
		slog.WarnContext(ctx, "passcode request rate limited", "identity", identity)
		return goerror.NewBusiness("too many passcode requests, try again later", goerror.CodeTooManyRequest)
	}

	issued, err := s.repoDB.CountIssuedSince(ctx, email, phone, s.clock.Now().Add(-policy.RateWindow))
	if err != nil {
		slog.ErrorContext(ctx, "failed to count issued passcodes", "identity", identity, "error", err)
		return goerror.NewServer(err)
	}
	if issued >= int64(policy.MaxAttemptsPerWindow) {
		slog.WarnContext(ctx, "passcode request over issuance window", "identity", identity, "issued", issued)
		return goerror.NewBusiness("too many passcode requests, try again later", goerror.CodeTooManyRequest)
	}

	return nil
}
