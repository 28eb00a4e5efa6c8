package tests

import (
	"net/http"
	"testing"
)

func TestOTPSend(t *testing.T) {

	// Arrange & Act
	data := sendOTP(t, uniqueEmail(), "login")

	// Assert
	if data.RecordID == 0 {
		t.Fatal("missing record id")
	}
	if len(data.Delivery) == 0 {
		t.Fatal("missing delivery results")
	}
}

func TestOTPSendWithoutIdentity(t *testing.T) {

	// Arrange
	payload := map[string]string{"purpose": "login"}

	// Act
	status, _ := doJSON(t, http.MethodPost, "/api/v1/otp/send", payload, "")

	// Assert
	if status != http.StatusBadRequest && status != http.StatusUnprocessableEntity {
		t.Fatalf("expected validation failure, got status=%d", status)
	}
}

func TestOTPSendInvalidEmail(t *testing.T) {

	// Arrange
	payload := map[string]string{"email": "not-an-email", "purpose": "login"}

	// Act
	status, _ := doJSON(t, http.MethodPost, "/api/v1/otp/send", payload, "")

	// Assert
	if status != http.StatusBadRequest && status != http.StatusUnprocessableEntity {
		t.Fatalf("expected validation failure, got status=%d", status)
	}
}

func TestOTPSendSupersedesPriorCode(t *testing.T) {
	email := uniqueEmail()

	first := sendOTP(t, email, "login")
	second := sendOTP(t, email, "login")

	if first.Code == "" || second.Code == "" {
		t.Skip("server does not echo codes, enable modules.otp.expose_code for this test")
	}

	// first code must be dead once the second is issued
	payload := map[string]string{"code": first.Code, "email": email, "purpose": "login"}
	status, _ := doJSON(t, http.MethodPost, "/api/v1/otp/verify", payload, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("expected superseded code to be rejected, got status=%d", status)
	}
}
