package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thispl/otp-generation/internal/otp/entity"
	"github.com/thispl/otp-generation/internal/pkg/config"
	"github.com/thispl/otp-generation/internal/pkg/instrument"
	"github.com/thispl/otp-generation/internal/pkg/mail"
)

type fakeMail struct {
	sent []mail.Message
	err  error
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMail) Close() error { return nil }

type fakeConfig struct {
	config.Config
	strings map[string]string
}

func (c fakeConfig) GetString(key string) string { return c.strings[key] }

func (c fakeConfig) GetSecond(string) time.Duration { return 0 }

func testRecord() entity.OTPRecord {
	return entity.OTPRecord{
		ID:      1,
		Code:    "123456",
		Email:   "user@example.com",
		Phone:   "+15550001111",
		Purpose: "login",
	}
}

func TestEmailSendAppliesTemplates(t *testing.T) {
	fm := &fakeMail{}
	cfg := fakeConfig{strings: map[string]string{
		"modules.otp.email.subject": "Code for {purpose}",
		"modules.otp.email.body":    "Use {code} to continue.",
	}}

	e := NewEmail(fm, cfg, instrument.NewNoop())
	if err := e.Send(context.Background(), testRecord()); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(fm.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(fm.sent))
	}
	msg := fm.sent[0]
	if msg.To[0] != "user@example.com" {
		t.Fatalf("unexpected recipient %q", msg.To[0])
	}
	if msg.Subject != "Code for login" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if msg.TextBody != "Use 123456 to continue." {
		t.Fatalf("unexpected body %q", msg.TextBody)
	}
}

func TestSMSSendPostsToGateway(t *testing.T) {
	var gotAuth string
	var gotBody smsRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("X-API-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := fakeConfig{strings: map[string]string{
		"modules.otp.sms.gateway_url": srv.URL,
		"modules.otp.sms.api_key":     "secret-key",
	}}

	s := NewSMS(cfg, instrument.NewNoop())
	if err := s.Send(context.Background(), testRecord()); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotAuth != "secret-key" {
		t.Fatalf("expected api key header, got %q", gotAuth)
	}
	if gotBody.To != "+15550001111" {
		t.Fatalf("unexpected recipient %q", gotBody.To)
	}
	if gotBody.Message != "Your verification code is 123456." {
		t.Fatalf("unexpected message %q", gotBody.Message)
	}
}

func TestSMSSendGatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := fakeConfig{strings: map[string]string{"modules.otp.sms.gateway_url": srv.URL}}

	s := NewSMS(cfg, instrument.NewNoop())
	if err := s.Send(context.Background(), testRecord()); err == nil {
		t.Fatal("expected error from failing gateway")
	}
}

func TestSMSSendWithoutGatewayURL(t *testing.T) {
	s := NewSMS(fakeConfig{strings: map[string]string{}}, instrument.NewNoop())
	if err := s.Send(context.Background(), testRecord()); err == nil {
		t.Fatal("expected error when gateway url is missing")
	}
}

func TestDispatchReportsPerChannel(t *testing.T) {
	fm := &fakeMail{}
	cfg := fakeConfig{strings: map[string]string{}}

	reg := NewRegistry(instrument.NewNoop(), NewEmail(fm, cfg, instrument.NewNoop()))

	results := reg.Dispatch(context.Background(),
		[]entity.Channel{entity.ChannelEmail, entity.ChannelSMS}, testRecord())

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Sent || results[0].Channel != entity.ChannelEmail {
		t.Fatalf("expected email success, got %+v", results[0])
	}
	if results[1].Sent || results[1].Error == "" {
		t.Fatalf("expected sms failure for unregistered channel, got %+v", results[1])
	}
}

func TestDispatchDeliveryFailure(t *testing.T) {
	fm := &fakeMail{err: errors.New("smtp down")}
	cfg := fakeConfig{strings: map[string]string{}}

	reg := NewRegistry(instrument.NewNoop(), NewEmail(fm, cfg, instrument.NewNoop()))

	results := reg.Dispatch(context.Background(), []entity.Channel{entity.ChannelEmail}, testRecord())
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Sent {
		t.Fatal("expected failed delivery")
	}
	if results[0].Error == "" {
		t.Fatal("expected error detail in result")
	}
}
