package inbound

import (
	"context"

	"github.com/thispl/otp-generation/internal/otp/usecase"
	"github.com/thispl/otp-generation/internal/pkg/router"
)

type uc interface {
	Issue(ctx context.Context, in usecase.IssueInput) (*usecase.IssueOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
	Sweep(ctx context.Context) (*usecase.SweepOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, cfgExposeCode bool, uc uc) {
	end := &HTTPEndpoint{uc: uc, exposeCode: cfgExposeCode}

	r.POST("/api/v1/otp/send", end.Send)
	r.POST("/api/v1/otp/verify", end.Verify)
	r.POST("/api/v1/otp/sweep", end.Sweep) // need authenticated
}
