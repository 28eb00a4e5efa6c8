package entity

import "strings"

// Status is the lifecycle state of a passcode record.
//
// Transitions are forward-only: Valid can move to Expired or Consumed,
// and both of those are terminal.
type Status int16

const (
	// StatusUnknown means the status is not known / not set.
	StatusUnknown Status = 0

	// StatusValid means the code has been issued and can still be verified.
	StatusValid Status = 1

	// StatusExpired means the code passed its expiry without being used.
	StatusExpired Status = 2

	// StatusConsumed means the code was successfully verified exactly once.
	StatusConsumed Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "Valid"
	case StatusExpired:
		return "Expired"
	case StatusConsumed:
		return "Consumed"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether the status allows no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusExpired || s == StatusConsumed
}

// Channel identifies a delivery channel for issued codes.
type Channel string

const (
	// ChannelEmail delivers codes over email.
	ChannelEmail Channel = "email"
	// ChannelSMS delivers codes over SMS.
	ChannelSMS Channel = "sms"
)

// DeliveryMethod selects which channels receive an issued code.
type DeliveryMethod int16

const (
	// DeliveryMethodUnknown means the method is not known / not set.
	DeliveryMethodUnknown DeliveryMethod = 0

	// DeliveryMethodEmail delivers over email only.
	DeliveryMethodEmail DeliveryMethod = 1

	// DeliveryMethodSMS delivers over SMS only.
	DeliveryMethodSMS DeliveryMethod = 2

	// DeliveryMethodBoth delivers over email and SMS.
	DeliveryMethodBoth DeliveryMethod = 3
)

func (d DeliveryMethod) String() string {
	switch d {
	case DeliveryMethodEmail:
		return "Email"
	case DeliveryMethodSMS:
		return "SMS"
	case DeliveryMethodBoth:
		return "Both"
	default:
		return "Unknown"
	}
}

// IsValid reports whether the delivery method is a known value.
func (d DeliveryMethod) IsValid() bool {
	switch d {
	case DeliveryMethodEmail, DeliveryMethodSMS, DeliveryMethodBoth:
		return true
	default:
		return false
	}
}

// Channels returns the delivery channels selected by the method.
func (d DeliveryMethod) Channels() []Channel {
	switch d {
	case DeliveryMethodEmail:
		return []Channel{ChannelEmail}
	case DeliveryMethodSMS:
		return []Channel{ChannelSMS}
	case DeliveryMethodBoth:
		return []Channel{ChannelEmail, ChannelSMS}
	default:
		return nil
	}
}

// DeliveryMethodFromString parses a configured delivery method name.
func DeliveryMethodFromString(s string) DeliveryMethod {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "email":
		return DeliveryMethodEmail
	case "sms":
		return DeliveryMethodSMS
	case "both":
		return DeliveryMethodBoth
	default:
		return DeliveryMethodUnknown
	}
}
