package policy

import (
	"testing"
	"time"

	"github.com/thispl/otp-generation/internal/otp/entity"
	"github.com/thispl/otp-generation/internal/pkg/config"
	"github.com/thispl/otp-generation/internal/pkg/passcode"
)

type fakeConfig struct {
	config.Config
	int32s  map[string]int32
	strings map[string]string
	minutes map[string]time.Duration
}

func (c fakeConfig) GetInt32(key string) int32          { return c.int32s[key] }
func (c fakeConfig) GetString(key string) string        { return c.strings[key] }
func (c fakeConfig) GetMinute(key string) time.Duration { return c.minutes[key] }

func TestLoadDefaults(t *testing.T) {
	p := NewProvider(fakeConfig{})

	pol, err := p.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if pol.CodeLength != entity.DefaultCodeLength {
		t.Fatalf("expected default code length, got %d", pol.CodeLength)
	}
	if pol.CodeAlphabet != passcode.AlphabetNumeric {
		t.Fatalf("expected numeric alphabet, got %q", pol.CodeAlphabet)
	}
	if pol.Expiry != entity.DefaultExpiryMinutes*time.Minute {
		t.Fatalf("expected default expiry, got %v", pol.Expiry)
	}
	if pol.DeliveryMethod != entity.DeliveryMethodEmail {
		t.Fatalf("expected email delivery, got %v", pol.DeliveryMethod)
	}
	if pol.MaxAttemptsPerWindow != entity.DefaultMaxAttempts {
		t.Fatalf("expected default attempts, got %d", pol.MaxAttemptsPerWindow)
	}
	if pol.RateWindow != entity.DefaultRateWindow {
		t.Fatalf("expected default window, got %v", pol.RateWindow)
	}
}

func TestLoadFromConfig(t *testing.T) {
	p := NewProvider(fakeConfig{
		int32s: map[string]int32{
			"modules.otp.code_length":             8,
			"modules.otp.max_attempts_per_window": 10,
		},
		strings: map[string]string{
			"modules.otp.code_alphabet":   "alphanumeric",
			"modules.otp.delivery_method": "both",
		},
		minutes: map[string]time.Duration{
			"modules.otp.expiry_minutes":      10 * time.Minute,
			"modules.otp.rate_window_minutes": 30 * time.Minute,
		},
	})

	pol, err := p.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if pol.CodeLength != 8 || pol.CodeAlphabet != passcode.AlphabetAlphanumeric {
		t.Fatalf("unexpected code settings: %+v", pol)
	}
	if pol.Expiry != 10*time.Minute || pol.RateWindow != 30*time.Minute {
		t.Fatalf("unexpected durations: %+v", pol)
	}
	if pol.DeliveryMethod != entity.DeliveryMethodBoth {
		t.Fatalf("expected both delivery, got %v", pol.DeliveryMethod)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	p := NewProvider(fakeConfig{
		int32s: map[string]int32{"modules.otp.code_length": 3},
	})

	if _, err := p.Load(); err == nil {
		t.Fatal("expected out-of-range code length to be rejected")
	}
}
