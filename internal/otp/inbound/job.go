package inbound

import (
	"context"
	"log/slog"
	"time"

	"github.com/thispl/otp-generation/internal/pkg/config"
	"github.com/thispl/otp-generation/internal/pkg/goroutine"
	"github.com/thispl/otp-generation/internal/pkg/instrument"
	"github.com/thispl/otp-generation/internal/pkg/uid"
	"go.uber.org/atomic"
)

const defaultSweepInterval = 10 * time.Minute

// RegisterSweeperJob starts the background expiry sweeper. Runs never
// overlap: a tick arriving while a sweep is in flight is skipped.
func RegisterSweeperJob(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	interval := cfg.GetMinute("modules.otp.sweep_interval_minutes")
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	var running atomic.Bool

	routine.Go(ctx, func(pCtx context.Context) error {
		slog.InfoContext(pCtx, "Running job for sweeping expired passcodes", "interval", interval.String())

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-pCtx.Done():
				slog.InfoContext(pCtx, "Stopping passcode sweeper job")
				return nil
			case <-ticker.C:
				if !running.CompareAndSwap(false, true) {
					slog.WarnContext(pCtx, "Skipping sweep tick, previous run still in flight")
					continue
				}

				runCtx := instrument.SetCorrelationID(pCtx, uuid.Generate())
				runCtx, span := ins.Tracer("otp.inbound.job").Start(runCtx, "SweepTick")
				if out, err := uc.Sweep(runCtx); err != nil {
					slog.ErrorContext(runCtx, "failed to sweep expired passcodes", "error", err)
				} else if out.ExpiredCount > 0 {
					slog.InfoContext(runCtx, "sweeper expired passcodes", "count", out.ExpiredCount)
				}
				span.End()

				running.Store(false)
			}
		}
	})
}
