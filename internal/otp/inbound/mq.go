package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/thispl/otp-generation/internal/pkg/config"
	"github.com/thispl/otp-generation/internal/pkg/goroutine"
	"github.com/thispl/otp-generation/internal/pkg/instrument"
	"github.com/thispl/otp-generation/internal/pkg/messaging"
	"github.com/thispl/otp-generation/internal/pkg/uid"
	"github.com/thispl/otp-generation/internal/shared/event"
)

// RegisterMQConsumer wires the audit consumers for passcode lifecycle events.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.otp.consumer_names")

	var consumers = []struct {
		name              string
		topic             string // destination where publisher sent message
		nsqConsumerName   string // for nsq
		natsConsumerName  string // for nats
		kafkaConsumerName string // for kafka
		handler           messaging.Handler
	}{
		{
			name:              event.OTPIssuedConsumerAudit,
			topic:             event.OTPIssuedDestination,
			nsqConsumerName:   event.OTPIssuedConsumerAudit,
			natsConsumerName:  event.OTPIssuedConsumerAudit,
			kafkaConsumerName: event.OTPIssuedConsumerAudit,
			handler:           mqHandler.OTPIssuedAudit,
		},
		{
			name:              event.OTPConsumedConsumerAudit,
			topic:             event.OTPConsumedDestination,
			nsqConsumerName:   event.OTPConsumedConsumerAudit,
			natsConsumerName:  event.OTPConsumedConsumerAudit,
			kafkaConsumerName: event.OTPConsumedConsumerAudit,
			handler:           mqHandler.OTPConsumedAudit,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithChannel(consumer.nsqConsumerName),
					messaging.WithQueueGroup(consumer.natsConsumerName),
					messaging.WithGroup(consumer.kafkaConsumerName),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(10),
					messaging.WithMaxInFlight(10),
				)
			})
		}
	}
}
