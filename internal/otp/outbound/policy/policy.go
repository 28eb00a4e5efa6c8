// Package policy loads the passcode issuance policy from configuration,
// falling back to the entity defaults for every unset knob.
package policy

import (
	"fmt"
	"time"

	"github.com/thispl/otp-generation/internal/otp/entity"
	"github.com/thispl/otp-generation/internal/pkg/config"
	"github.com/thispl/otp-generation/internal/pkg/passcode"
)

type Provider struct {
	cfg config.Config
}

func NewProvider(cfg config.Config) *Provider {
	return &Provider{cfg: cfg}
}

// Load builds the effective policy and validates it so callers never see an
// out-of-range configuration.
func (p *Provider) Load() (entity.Policy, error) {
	pol := entity.Policy{
		CodeLength:           int(p.cfg.GetInt32("modules.otp.code_length")),
		CodeAlphabet:         passcode.Alphabet(p.cfg.GetString("modules.otp.code_alphabet")),
		Expiry:               p.cfg.GetMinute("modules.otp.expiry_minutes"),
		DeliveryMethod:       entity.DeliveryMethodFromString(p.cfg.GetString("modules.otp.delivery_method")),
		MaxAttemptsPerWindow: int(p.cfg.GetInt32("modules.otp.max_attempts_per_window")),
		RateWindow:           p.cfg.GetMinute("modules.otp.rate_window_minutes"),
	}

	if pol.CodeLength == 0 {
		pol.CodeLength = entity.DefaultCodeLength
	}
	if pol.CodeAlphabet == "" {
		pol.CodeAlphabet = passcode.AlphabetNumeric
	}
	if pol.Expiry == 0 {
		pol.Expiry = entity.DefaultExpiryMinutes * time.Minute
	}
	if pol.DeliveryMethod == entity.DeliveryMethodUnknown {
		pol.DeliveryMethod = entity.DeliveryMethodEmail
	}
	if pol.MaxAttemptsPerWindow == 0 {
		pol.MaxAttemptsPerWindow = entity.DefaultMaxAttempts
	}
	if pol.RateWindow == 0 {
		pol.RateWindow = entity.DefaultRateWindow
	}

	if err := pol.Validate(); err != nil {
		return entity.Policy{}, fmt.Errorf("invalid otp policy: %w", err)
	}

	return pol, nil
}
