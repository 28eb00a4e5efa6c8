package event

const OTPIssuedDestination string = "otp_issued"
const OTPIssuedConsumerAudit string = "otp_issued_audit"

const OTPConsumedDestination string = "otp_consumed"
const OTPConsumedConsumerAudit string = "otp_consumed_audit"

const OTPSweptDestination string = "otp_swept"

type OTPIssuedMessage struct {
	RecordID       int64  `json:"record_id"`
	IdentityHash   string `json:"identity_hash"`
	Purpose        string `json:"purpose"`
	DeliveryMethod string `json:"delivery_method"`
	Sent           bool   `json:"sent"`
}

type OTPConsumedMessage struct {
	RecordID     int64  `json:"record_id"`
	IdentityHash string `json:"identity_hash"`
	Purpose      string `json:"purpose"`
}

type OTPSweptMessage struct {
	ExpiredCount int64  `json:"expired_count"`
	SweptAt      string `json:"swept_at"`
}
