package otp

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thispl/otp-generation/internal/otp/inbound"
	"github.com/thispl/otp-generation/internal/otp/outbound/db"
	"github.com/thispl/otp-generation/internal/otp/outbound/mq"
	"github.com/thispl/otp-generation/internal/otp/outbound/notifier"
	"github.com/thispl/otp-generation/internal/otp/outbound/policy"
	"github.com/thispl/otp-generation/internal/otp/usecase"
	"github.com/thispl/otp-generation/internal/pkg/clock"
	"github.com/thispl/otp-generation/internal/pkg/config"
	"github.com/thispl/otp-generation/internal/pkg/goroutine"
	"github.com/thispl/otp-generation/internal/pkg/hash"
	"github.com/thispl/otp-generation/internal/pkg/instrument"
	"github.com/thispl/otp-generation/internal/pkg/mail"
	"github.com/thispl/otp-generation/internal/pkg/messaging"
	"github.com/thispl/otp-generation/internal/pkg/passcode"
	"github.com/thispl/otp-generation/internal/pkg/ratelimit"
	"github.com/thispl/otp-generation/internal/pkg/router"
	"github.com/thispl/otp-generation/internal/pkg/uid"
	"github.com/thispl/otp-generation/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context
	DBConn     *pgxpool.Pool              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Limiter    ratelimit.Limiter          `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbOTP := db.NewDB(dep.DBConn, dep.Instrument, dep.Config.GetSecond("database.query_timeout_seconds"))
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	registry := notifier.NewRegistry(dep.Instrument,
		notifier.NewEmail(dep.Mail, dep.Config, dep.Instrument),
		notifier.NewSMS(dep.Config, dep.Instrument),
	)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbOTP,
		RepoMessaging: repoMsg,
		Notifier:      registry,
		Policy:        policy.NewProvider(dep.Config),
		Limiter:       dep.Limiter,
		Passcode:      passcode.NewRandom(),
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, dep.Config.GetBool("modules.otp.expose_code"), uc)

	if dep.Ctx != nil {
		inbound.RegisterSweeperJob(dep.Ctx, dep.Config, dep.Goroutine, dep.UUID, uc, dep.Instrument)
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, dep.Instrument)
	}

	return nil
}
