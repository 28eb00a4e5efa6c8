package tests

import (
	"net/http"
	"testing"
)

func TestOTPVerifyRoundTrip(t *testing.T) {
	email := uniqueEmail()

	sent := sendOTP(t, email, "login")
	if sent.Code == "" {
		t.Skip("server does not echo codes, enable modules.otp.expose_code for this test")
	}

	payload := map[string]string{"code": sent.Code, "email": email, "purpose": "login"}

	status, body := doJSON(t, http.MethodPost, "/api/v1/otp/verify", payload, "")
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("otp verify failed: status=%d message=%q", status, errEnv.Message)
	}

	var data verifyData
	decodeSuccess(t, body, &data)
	if !data.Valid {
		t.Fatal("expected valid verification")
	}

	// a consumed code can never be verified again
	status, _ = doJSON(t, http.MethodPost, "/api/v1/otp/verify", payload, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("expected reuse to be rejected, got status=%d", status)
	}
}

func TestOTPVerifyWrongCode(t *testing.T) {
	email := uniqueEmail()

	sendOTP(t, email, "login")

	payload := map[string]string{"code": "000000", "email": email, "purpose": "login"}

	status, _ := doJSON(t, http.MethodPost, "/api/v1/otp/verify", payload, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("expected wrong code to be rejected, got status=%d", status)
	}
}

func TestOTPVerifyWithoutCode(t *testing.T) {

	// Arrange
	payload := map[string]string{"email": uniqueEmail(), "purpose": "login"}

	// Act
	status, _ := doJSON(t, http.MethodPost, "/api/v1/otp/verify", payload, "")

	// Assert
	if status != http.StatusBadRequest && status != http.StatusUnprocessableEntity {
		t.Fatalf("expected validation failure, got status=%d", status)
	}
}
