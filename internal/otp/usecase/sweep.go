package usecase

import (
	"context"
	"log/slog"
)

const defaultSweepBatchSize = 500

type SweepOutput struct {
	ExpiredCount int64
}

// Sweep transitions overdue Valid records to Expired. A failure on one
// record is logged and skipped so a single bad row cannot stall the batch.
func (s *Usecase) Sweep(ctx context.Context) (*SweepOutput, error) {
	ctx, span := s.startSpan(ctx, "Sweep")
	defer span.End()

	limit := s.cfg.GetInt32("modules.otp.sweep_batch_size")
	if limit <= 0 {
		limit = defaultSweepBatchSize
	}

	now := s.clock.Now()
	ids, err := s.repoDB.ListExpiredValid(ctx, now, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list expired otps", "error", err)
		return nil, err
	}

	var expired int64
	for _, id := range ids {
		if err := s.repoDB.ExpireOTP(ctx, id); err != nil {
			slog.ErrorContext(ctx, "failed to expire otp record", "record_id", id, "error", err)
			continue
		}
		expired++
	}

	if expired > 0 {
		slog.InfoContext(ctx, "expired stale otp records", "count", expired)
		if err := s.repoMessaging.PublishOTPSwept(ctx, OTPSweptEvent{
			ExpiredCount: expired,
			SweptAt:      now,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to publish otp swept", "error", err)
		}
	}

	return &SweepOutput{ExpiredCount: expired}, nil
}
