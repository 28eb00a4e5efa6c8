package inbound

import (
	"github.com/thispl/otp-generation/internal/otp/usecase"
	"github.com/thispl/otp-generation/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the passcode lifecycle.
type HTTPEndpoint struct {
	uc uc

	// exposeCode echoes the generated code in the send response. Meant for
	// development and integration tests only.
	exposeCode bool
}

// Send issues a new passcode and dispatches it over the configured channels.
// @Summary Send verification code
// @Description Generates a passcode for the given email and/or phone, invalidates prior codes for the same scope, and dispatches it. Delivery failure does not fail the request.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body OTPSendRequest true "Send payload"
// @Success 200 {object} router.successResponse{data=OTPSendResponse} "Issuance result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/send [post]
func (h *HTTPEndpoint) Send(r *router.Request) (any, error) {
	var req OTPSendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Issue(r.Context(), usecase.IssueInput{
		Email:   req.Email,
		Phone:   req.Phone,
		Purpose: req.Purpose,
		UserRef: req.UserRef,
	})
	if err != nil {
		return nil, err
	}

	out := OTPSendResponse{
		RecordID: resp.RecordID,
		Sent:     resp.Sent,
		Delivery: make([]OTPSendDeliveryResult, 0, len(resp.DeliveryResults)),
	}
	for _, d := range resp.DeliveryResults {
		out.Delivery = append(out.Delivery, OTPSendDeliveryResult{
			Channel: string(d.Channel),
			Sent:    d.Sent,
			Error:   d.Error,
		})
	}
	if h.exposeCode {
		out.Code = resp.Code
	}

	return out, nil
}

// Verify consumes a passcode for the given identity.
// @Summary Verify passcode
// @Description Checks the passcode against the newest valid record for the identity and consumes it on success. A code can be consumed at most once.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body OTPVerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=OTPVerifyResponse} "Verification result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid passcode"
// @Failure 410 {object} router.errorResponse "Passcode expired"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req OTPVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Code:    req.Code,
		Email:   req.Email,
		Phone:   req.Phone,
		Purpose: req.Purpose,
	})
	if err != nil {
		return nil, err
	}

	return OTPVerifyResponse{Valid: resp.Valid}, nil
}

// Sweep expires overdue passcodes on demand.
// @Summary Sweep expired passcodes
// @Description Marks every still-valid record past its expiry as expired. The background sweeper runs the same operation on an interval.
// @Tags OTP
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=OTPSweepResponse} "Sweep result"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/sweep [post]
func (h *HTTPEndpoint) Sweep(r *router.Request) (any, error) {
	resp, err := h.uc.Sweep(r.Context())
	if err != nil {
		return nil, err
	}

	return OTPSweepResponse{ExpiredCount: resp.ExpiredCount}, nil
}
