package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/thispl/otp-generation/internal/otp/usecase"
	"github.com/thispl/otp-generation/internal/pkg/instrument"
	"github.com/thispl/otp-generation/internal/pkg/messaging"
	"github.com/thispl/otp-generation/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishOTPIssued(ctx context.Context, msg usecase.OTPIssuedEvent) error {
	ctx, span := m.startSpan(ctx, "PublishOTPIssued")
	defer span.End()

	return m.publish(ctx, span, event.OTPIssuedDestination, event.OTPIssuedMessage{
		RecordID:       msg.RecordID,
		IdentityHash:   msg.IdentityHash,
		Purpose:        msg.Purpose,
		DeliveryMethod: msg.DeliveryMethod,
		Sent:           msg.Sent,
	})
}

func (m *Messaging) PublishOTPConsumed(ctx context.Context, msg usecase.OTPConsumedEvent) error {
	ctx, span := m.startSpan(ctx, "PublishOTPConsumed")
	defer span.End()

	return m.publish(ctx, span, event.OTPConsumedDestination, event.OTPConsumedMessage{
		RecordID:     msg.RecordID,
		IdentityHash: msg.IdentityHash,
		Purpose:      msg.Purpose,
	})
}

func (m *Messaging) PublishOTPSwept(ctx context.Context, msg usecase.OTPSweptEvent) error {
	ctx, span := m.startSpan(ctx, "PublishOTPSwept")
	defer span.End()

	return m.publish(ctx, span, event.OTPSweptDestination, event.OTPSweptMessage{
		ExpiredCount: msg.ExpiredCount,
		SweptAt:      msg.SweptAt.Format(time.RFC3339),
	})
}

func (m *Messaging) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return m.ins.Tracer("otp.outbound.mq").Start(ctx, name)
}

func (m *Messaging) publish(ctx context.Context, span trace.Span, destination string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
