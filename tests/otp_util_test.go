package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

type sendData struct {
	RecordID int64  `json:"record_id"`
	Sent     bool   `json:"sent"`
	Code     string `json:"code"`
	Delivery []struct {
		Channel string `json:"channel"`
		Sent    bool   `json:"sent"`
		Error   string `json:"error"`
	} `json:"delivery"`
}

type verifyData struct {
	Valid bool `json:"valid"`
}

// uniqueEmail keeps runs independent so rate limiting from a previous run
// never bleeds into the current one.
func uniqueEmail() string {
	return fmt.Sprintf("e2e+%d@example.com", time.Now().UnixNano())
}

func sendOTP(t *testing.T, email, purpose string) sendData {
	t.Helper()

	payload := map[string]string{"email": email, "purpose": purpose}

	status, body := doJSON(t, http.MethodPost, "/api/v1/otp/send", payload, "")
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("otp send failed: status=%d message=%q", status, errEnv.Message)
	}

	var data sendData
	decodeSuccess(t, body, &data)

	return data
}
