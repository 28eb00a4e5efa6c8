package entity

import (
	"time"

	"github.com/thispl/otp-generation/internal/pkg/valueobject"
)

// OTPRecord is a single issued passcode bound to an identity and purpose.
//
// At least one of Email or Phone is always set. ExpiresAt is fixed at
// creation and never updated afterwards.
type OTPRecord struct {
	ID             int64
	Code           string
	Email          string
	Phone          string
	Purpose        string
	UserRef        string
	DeliveryMethod DeliveryMethod
	Status         Status
	Metadata       valueobject.JSONMap
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// IsExpiredAt reports whether the record has passed its expiry at t.
func (r OTPRecord) IsExpiredAt(t time.Time) bool {
	return t.After(r.ExpiresAt)
}

// DeliveryResult is the per-channel outcome of dispatching a code.
type DeliveryResult struct {
	Channel Channel
	Sent    bool
	Error   string
}
