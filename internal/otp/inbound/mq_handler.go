package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/thispl/otp-generation/internal/pkg/instrument"
	"github.com/thispl/otp-generation/internal/pkg/messaging"
	"github.com/thispl/otp-generation/internal/pkg/uid"
	"github.com/thispl/otp-generation/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

// MQHandler writes audit log lines for passcode lifecycle events. Payloads
// only carry hashed identities, so the lines are safe to ship to a log sink.
type MQHandler struct {
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) OTPIssuedAudit(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("otp.inbound.mq").Start(ctx, "OTPIssuedAudit")
	defer span.End()

	body := msg.Body()

	var payload event.OTPIssuedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp issued audit", "msg_body", string(body), "error", err)
		return nil
	}

	slog.InfoContext(ctx, "audit: passcode issued",
		"record_id", payload.RecordID,
		"identity", payload.IdentityHash,
		"purpose", payload.Purpose,
		"delivery_method", payload.DeliveryMethod,
		"sent", payload.Sent,
	)

	return nil
}

func (h *MQHandler) OTPConsumedAudit(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("otp.inbound.mq").Start(ctx, "OTPConsumedAudit")
	defer span.End()

	body := msg.Body()

	var payload event.OTPConsumedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp consumed audit", "msg_body", string(body), "error", err)
		return nil
	}

	slog.InfoContext(ctx, "audit: passcode consumed",
		"record_id", payload.RecordID,
		"identity", payload.IdentityHash,
		"purpose", payload.Purpose,
	)

	return nil
}
