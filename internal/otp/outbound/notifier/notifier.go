// Package notifier dispatches issued passcodes over delivery channels.
//
// Each channel has its own Notifier implementation registered in a Registry.
// Dispatch never fails the caller: per-channel outcomes are reported as
// DeliveryResult values and delivery errors stay inside them.
package notifier

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/thispl/otp-generation/internal/otp/entity"
	"github.com/thispl/otp-generation/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
)

// Notifier delivers one passcode over a single channel.
type Notifier interface {
	Channel() entity.Channel
	Send(ctx context.Context, rec entity.OTPRecord) error
}

type Registry struct {
	notifiers map[entity.Channel]Notifier
	ins       instrument.Instrumentation
}

func NewRegistry(ins instrument.Instrumentation, notifiers ...Notifier) *Registry {
	byChannel := make(map[entity.Channel]Notifier, len(notifiers))
	for _, n := range notifiers {
		byChannel[n.Channel()] = n
	}

	return &Registry{notifiers: byChannel, ins: ins}
}

// Dispatch sends the record's code over every requested channel and reports
// one result per channel. Transient send failures are retried with a short
// fibonacci backoff before the channel is reported as not sent.
func (r *Registry) Dispatch(ctx context.Context, channels []entity.Channel, rec entity.OTPRecord) []entity.DeliveryResult {
	ctx, span := r.ins.Tracer("otp.outbound.notifier").Start(ctx, "Dispatch")
	defer span.End()

	results := make([]entity.DeliveryResult, 0, len(channels))
	for _, ch := range channels {
		n, ok := r.notifiers[ch]
		if !ok {
			results = append(results, entity.DeliveryResult{
				Channel: ch,
				Sent:    false,
				Error:   "no notifier registered for channel " + string(ch),
			})
			continue
		}

		b := retry.WithMaxRetries(2, retry.NewFibonacci(200*time.Millisecond))
		err := retry.Do(ctx, b, func(ctx context.Context) error {
			if sErr := n.Send(ctx, rec); sErr != nil {
				return retry.RetryableError(sErr)
			}
			return nil
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			results = append(results, entity.DeliveryResult{Channel: ch, Sent: false, Error: err.Error()})
			continue
		}

		results = append(results, entity.DeliveryResult{Channel: ch, Sent: true})
	}

	return results
}
