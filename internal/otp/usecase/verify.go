package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/thispl/otp-generation/internal/pkg/goerror"
)

type VerifyInput struct {
	Code    string `validate:"required,otpcode"`
	Email   string `validate:"omitempty,email"`
	Phone   string `validate:"omitempty,e164"`
	Purpose string `validate:"omitempty,max=140"`
}

type VerifyOutput struct {
	Valid    bool
	RecordID int64
}

// Verify looks up the still-valid passcode matching the code and identity,
// lazily expires it when its deadline has passed, and otherwise consumes it
// with a compare-and-swap so that concurrent verifications succeed at most
// once.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Purpose = strings.TrimSpace(in.Purpose)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Email == "" && in.Phone == "" {
		return nil, goerror.NewInvalidInput(nil, "identity", "either email or phone is required")
	}

	identity, err := s.identityHash(ctx, in.Email, in.Phone)
	if err != nil {
		return nil, err
	}

	rec, err := s.repoDB.GetValidOTP(ctx, in.Code, in.Email, in.Phone, in.Purpose)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "passcode verification failed, no matching code", "identity", identity)
		return nil, goerror.NewBusiness("invalid passcode", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get valid otp", "identity", identity, "error", err)
		return nil, goerror.NewServer(err)
	}

	if rec.IsExpiredAt(s.clock.Now()) {
		if err := s.repoDB.ExpireOTP(ctx, rec.ID); err != nil && !errors.Is(err, goerror.ErrNotFound) {
			slog.ErrorContext(ctx, "failed to expire stale otp", "record_id", rec.ID, "error", err)
		}
		slog.WarnContext(ctx, "passcode verification failed, code expired", "record_id", rec.ID, "identity", identity)
		return nil, goerror.NewBusiness("passcode has expired", goerror.CodeGone)
	}

	if err := s.repoDB.ConsumeOTP(ctx, rec.ID); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			// another verification or the sweeper won the race
			slog.WarnContext(ctx, "passcode already settled", "record_id", rec.ID, "identity", identity)
			return nil, goerror.NewBusiness("invalid passcode", goerror.CodeUnauthorized)
		}
		slog.ErrorContext(ctx, "failed to repo consume otp", "record_id", rec.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishOTPConsumed(ctx, OTPConsumedEvent{
		RecordID:     rec.ID,
		IdentityHash: identity,
		Purpose:      rec.Purpose,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp consumed", "record_id", rec.ID, "error", err)
	}

	return &VerifyOutput{Valid: true, RecordID: rec.ID}, nil
}
