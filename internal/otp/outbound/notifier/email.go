package notifier

import (
	"context"
	"strings"

	"github.com/thispl/otp-generation/internal/otp/entity"
	"github.com/thispl/otp-generation/internal/pkg/config"
	"github.com/thispl/otp-generation/internal/pkg/instrument"
	"github.com/thispl/otp-generation/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultEmailSubject = "Your verification code"
	defaultEmailBody    = "Your verification code is {code}. It expires shortly, do not share it with anyone."
)

type Email struct {
	client mail.Mail
	cfg    config.Config
	ins    instrument.Instrumentation
}

func NewEmail(client mail.Mail, cfg config.Config, ins instrument.Instrumentation) *Email {
	return &Email{client: client, cfg: cfg, ins: ins}
}

func (m *Email) Channel() entity.Channel {
	return entity.ChannelEmail
}

func (m *Email) Send(ctx context.Context, rec entity.OTPRecord) error {
	ctx, span := m.ins.Tracer("otp.outbound.notifier").Start(ctx, "Email.Send")
	defer span.End()

	subject := m.cfg.GetString("modules.otp.email.subject")
	if subject == "" {
		subject = defaultEmailSubject
	}

	body := m.cfg.GetString("modules.otp.email.body")
	if body == "" {
		body = defaultEmailBody
	}

	rep := strings.NewReplacer("{code}", rec.Code, "{purpose}", rec.Purpose)

	if err := m.client.Send(ctx, mail.Message{
		To:       []string{rec.Email},
		Subject:  rep.Replace(subject),
		TextBody: rep.Replace(body),
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
