package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/thispl/otp-generation/internal/pkg/passcode"
)

// Policy defaults applied when configuration leaves a knob unset.
const (
	DefaultCodeLength    = 6
	DefaultExpiryMinutes = 5
	DefaultRateWindow    = time.Hour
	DefaultMaxAttempts   = 5

	MinCodeLength = 4
	MaxCodeLength = 10
)

var (
	ErrPolicyCodeLength     = fmt.Errorf("otp: code length must be between %d and %d", MinCodeLength, MaxCodeLength)
	ErrPolicyExpiry         = errors.New("otp: expiry must be at least one minute")
	ErrPolicyAlphabet       = errors.New("otp: unknown code alphabet")
	ErrPolicyDeliveryMethod = errors.New("otp: unknown delivery method")
	ErrPolicyMaxAttempts    = errors.New("otp: max attempts per window must be positive")
)

// Policy is the issuance policy in effect for new passcodes.
type Policy struct {
	CodeLength           int
	CodeAlphabet         passcode.Alphabet
	Expiry               time.Duration
	DeliveryMethod       DeliveryMethod
	MaxAttemptsPerWindow int
	RateWindow           time.Duration
}

// Validate checks the policy against the allowed ranges.
func (p Policy) Validate() error {
	if p.CodeLength < MinCodeLength || p.CodeLength > MaxCodeLength {
		return ErrPolicyCodeLength
	}
	if !p.CodeAlphabet.IsValid() {
		return ErrPolicyAlphabet
	}
	if p.Expiry < time.Minute {
		return ErrPolicyExpiry
	}
	if !p.DeliveryMethod.IsValid() {
		return ErrPolicyDeliveryMethod
	}
	if p.MaxAttemptsPerWindow <= 0 {
		return ErrPolicyMaxAttempts
	}
	return nil
}
