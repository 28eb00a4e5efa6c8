package entity

import (
	"testing"
	"time"

	"github.com/thispl/otp-generation/internal/pkg/passcode"
)

func TestStatusIsTerminal(t *testing.T) {
	if StatusValid.IsTerminal() || StatusUnknown.IsTerminal() {
		t.Fatal("valid and unknown must not be terminal")
	}
	if !StatusExpired.IsTerminal() || !StatusConsumed.IsTerminal() {
		t.Fatal("expired and consumed must be terminal")
	}
}

func TestDeliveryMethodChannels(t *testing.T) {
	cases := []struct {
		method DeliveryMethod
		want   []Channel
	}{
		{DeliveryMethodEmail, []Channel{ChannelEmail}},
		{DeliveryMethodSMS, []Channel{ChannelSMS}},
		{DeliveryMethodBoth, []Channel{ChannelEmail, ChannelSMS}},
		{DeliveryMethodUnknown, nil},
	}

	for _, tc := range cases {
		got := tc.method.Channels()
		if len(got) != len(tc.want) {
			t.Fatalf("%v: expected %v, got %v", tc.method, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%v: expected %v, got %v", tc.method, tc.want, got)
			}
		}
	}
}

func TestDeliveryMethodFromString(t *testing.T) {
	if DeliveryMethodFromString(" Email ") != DeliveryMethodEmail {
		t.Fatal("expected email method")
	}
	if DeliveryMethodFromString("BOTH") != DeliveryMethodBoth {
		t.Fatal("expected both method")
	}
	if DeliveryMethodFromString("pigeon") != DeliveryMethodUnknown {
		t.Fatal("expected unknown method")
	}
}

func TestOTPRecordIsExpiredAt(t *testing.T) {
	deadline := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	rec := OTPRecord{ExpiresAt: deadline}

	if rec.IsExpiredAt(deadline) {
		t.Fatal("record must still be valid exactly at its deadline")
	}
	if !rec.IsExpiredAt(deadline.Add(time.Nanosecond)) {
		t.Fatal("record must be expired after its deadline")
	}
}

func TestPolicyValidate(t *testing.T) {
	base := Policy{
		CodeLength:           6,
		CodeAlphabet:         passcode.AlphabetNumeric,
		Expiry:               5 * time.Minute,
		DeliveryMethod:       DeliveryMethodEmail,
		MaxAttemptsPerWindow: 5,
		RateWindow:           time.Hour,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Policy)
		want   error
	}{
		{"code too short", func(p *Policy) { p.CodeLength = 3 }, ErrPolicyCodeLength},
		{"code too long", func(p *Policy) { p.CodeLength = 11 }, ErrPolicyCodeLength},
		{"bad alphabet", func(p *Policy) { p.CodeAlphabet = "hex" }, ErrPolicyAlphabet},
		{"expiry too short", func(p *Policy) { p.Expiry = 30 * time.Second }, ErrPolicyExpiry},
		{"bad method", func(p *Policy) { p.DeliveryMethod = DeliveryMethodUnknown }, ErrPolicyDeliveryMethod},
		{"zero attempts", func(p *Policy) { p.MaxAttemptsPerWindow = 0 }, ErrPolicyMaxAttempts},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			if err := p.Validate(); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
