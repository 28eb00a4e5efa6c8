package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/thispl/otp-generation/internal/otp/entity"
	"github.com/thispl/otp-generation/internal/pkg/config"
	"github.com/thispl/otp-generation/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
)

const defaultSMSBody = "Your verification code is {code}."

type smsRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// SMS delivers passcodes through an HTTP SMS gateway. The gateway contract is
// a JSON POST with an api key header; any 2xx response counts as accepted.
type SMS struct {
	client *http.Client
	cfg    config.Config
	ins    instrument.Instrumentation
}

func NewSMS(cfg config.Config, ins instrument.Instrumentation) *SMS {
	timeout := cfg.GetSecond("modules.otp.sms.timeout_seconds")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &SMS{
		client: &http.Client{Timeout: timeout},
		cfg:    cfg,
		ins:    ins,
	}
}

func (m *SMS) Channel() entity.Channel {
	return entity.ChannelSMS
}

func (m *SMS) Send(ctx context.Context, rec entity.OTPRecord) error {
	ctx, span := m.ins.Tracer("otp.outbound.notifier").Start(ctx, "SMS.Send")
	defer span.End()

	gatewayURL := m.cfg.GetString("modules.otp.sms.gateway_url")
	if gatewayURL == "" {
		err := fmt.Errorf("sms gateway url is not configured")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	body := m.cfg.GetString("modules.otp.sms.body")
	if body == "" {
		body = defaultSMSBody
	}
	rep := strings.NewReplacer("{code}", rec.Code, "{purpose}", rec.Purpose)

	payload, err := json.Marshal(smsRequest{To: rec.Phone, Message: rep.Replace(body)})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gatewayURL, bytes.NewReader(payload))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey := m.cfg.GetString("modules.otp.sms.api_key"); apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("sms gateway responded with status %d", resp.StatusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
