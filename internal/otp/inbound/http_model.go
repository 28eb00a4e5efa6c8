package inbound

type OTPSendRequest struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Purpose string `json:"purpose"`
	UserRef string `json:"user_ref"`
}

type OTPSendResponse struct {
	RecordID int64                   `json:"record_id"`
	Sent     bool                    `json:"sent"`
	Delivery []OTPSendDeliveryResult `json:"delivery"`
	Code     string                  `json:"code,omitempty"`
}

func (OTPSendResponse) Message() string {
	return "If the contact is valid, a verification code has been sent."
}

type OTPSendDeliveryResult struct {
	Channel string `json:"channel"`
	Sent    bool   `json:"sent"`
	Error   string `json:"error,omitempty"`
}

type OTPVerifyRequest struct {
	Code    string `json:"code"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Purpose string `json:"purpose"`
}

type OTPVerifyResponse struct {
	Valid bool `json:"valid"`
}

func (OTPVerifyResponse) Message() string {
	return "Verification code accepted."
}

type OTPSweepResponse struct {
	ExpiredCount int64 `json:"expired_count"`
}
