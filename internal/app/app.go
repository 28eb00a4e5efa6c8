package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/thispl/otp-generation/internal/pkg/clock"
	"github.com/thispl/otp-generation/internal/pkg/config"
	"github.com/thispl/otp-generation/internal/pkg/goroutine"
	"github.com/thispl/otp-generation/internal/pkg/hash"
	"github.com/thispl/otp-generation/internal/pkg/instrument"
	"github.com/thispl/otp-generation/internal/pkg/jwt"
	"github.com/thispl/otp-generation/internal/pkg/mail"
	"github.com/thispl/otp-generation/internal/pkg/messaging"
	"github.com/thispl/otp-generation/internal/pkg/ratelimit"
	"github.com/thispl/otp-generation/internal/pkg/router"
	"github.com/thispl/otp-generation/internal/pkg/uid"
	"github.com/thispl/otp-generation/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	limiter   ratelimit.Limiter
	mail      mail.Mail
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
