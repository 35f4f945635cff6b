// Package app wires the dependencies and HTTP routes of the API
package app

import (
	"context"
	"fmt"
	"time"

	"iskacare/clinic-api/app/account"
	"iskacare/clinic-api/app/auth"
	"iskacare/clinic-api/app/root"
	"iskacare/clinic-api/db"
	"iskacare/clinic-api/internal"
	"iskacare/clinic-api/internal/codes"
	"iskacare/clinic-api/internal/model"
	"iskacare/clinic-api/internal/notify"
	"iskacare/clinic-api/internal/service"
	"iskacare/clinic-api/internal/store"
	"iskacare/clinic-api/pkg/middleware"
	"iskacare/clinic-api/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Expired codes stay in the code store this many TTLs so they can still be
// reported as expired instead of missing
const codeRetentionFactor = 6

type RouterConfig struct {
	CORS        []string
	RateLimit   float64
	MaxBodySize int64
	Turnstile   middleware.TurnstileConfig
}

// App is the running API with everything it needs to shut down cleanly
type App struct {
	Router *gin.Engine
	Deps   *internal.Deps

	cleanup *service.ResetCodeCleanup
	limiter *middleware.RateLimiter
	done    chan struct{}
	closers []func() error
}

// New builds the API from the loaded configuration
func New(ctx context.Context) (*App, error) {
	a := &App{done: make(chan struct{})}

	conn, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	accounts := store.NewAccounts(conn)
	codeTTL := viper.GetDuration("codes.ttl")

	codeStore, err := a.newCodeStore(ctx, codeTTL*codeRetentionFactor)
	if err != nil {
		return nil, err
	}

	mailer, err := newMailer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer, %w", err)
	}

	tokens := security.NewTokenIssuer(viper.GetString("jwt.secret"), viper.GetDuration("jwt.ttl"))

	a.Deps = &internal.Deps{
		DB:       conn,
		Accounts: accounts,
		Tokens:   tokens,
		Auth: service.NewAuthService(service.AuthServiceOpts{
			Accounts: accounts,
			Signup:   codes.NewIssuer(codeStore, codes.WithTTL(codeTTL)),
			Reset:    codes.NewIssuer(codes.NewAccountStore(accounts), codes.WithTTL(codeTTL)),
			Mailer:   mailer,
			Argon:    security.New(),
			Tokens:   tokens,
		}),
	}

	a.cleanup = service.NewResetCodeCleanup(accounts, viper.GetDuration("codes.cleanup_grace"))
	if err := a.cleanup.Start(viper.GetString("codes.cleanup_schedule")); err != nil {
		return nil, fmt.Errorf("failed to schedule reset code cleanup, %w", err)
	}

	a.Router, a.limiter = NewRouter(a.Deps, RouterConfig{
		CORS:        viper.GetStringSlice("host.cors"),
		RateLimit:   viper.GetFloat64("security.rate_limit"),
		MaxBodySize: viper.GetInt64("security.max_body_size"),
		Turnstile: middleware.TurnstileConfig{
			Enabled: viper.GetBool("cloudflare.turnstile.enabled"),
			Secret:  viper.GetString("cloudflare.turnstile.secret_token"),
		},
	})

	go a.limiter.Run(a.done)

	return a, nil
}

func (a *App) newCodeStore(ctx context.Context, retention time.Duration) (codes.Store, error) {
	switch viper.GetString("codes.store") {
	case "redis":
		client, err := codes.NewRedisClient(ctx,
			viper.GetString("redis.addr"),
			viper.GetString("redis.password"),
			viper.GetInt("redis.db"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis, %w", err)
		}

		a.closers = append(a.closers, client.Close)
		return codes.NewRedisStore(client, retention), nil
	default:
		m := codes.NewMemoryStore(retention)
		a.closers = append(a.closers, m.Close)
		return m, nil
	}
}

func newMailer() (notify.Mailer, error) {
	switch viper.GetString("mail.transport") {
	case "smtp":
		return notify.NewSMTPMailer(notify.SMTPOpts{
			Host:     viper.GetString("mail.host"),
			Port:     viper.GetInt("mail.port"),
			User:     viper.GetString("mail.user"),
			Password: viper.GetString("mail.password"),
			Sender:   viper.GetString("mail.sender"),
			FromName: viper.GetString("mail.from_name"),
		})
	case "mailersend":
		return notify.NewMailerSendMailer(
			viper.GetString("mail.mailersend_key"),
			viper.GetString("mail.from_name"),
			viper.GetString("mail.sender"),
		)
	default:
		return notify.NewLogMailer(), nil
	}
}

// Close stops background jobs and releases connections
func (a *App) Close() {
	close(a.done)
	a.cleanup.Stop()

	for _, c := range a.closers {
		if err := c(); err != nil {
			zap.L().Warn("Failed to close resource", zap.Error(err))
		}
	}

	if sqlDB, err := a.Deps.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

// NewRouter registers every route on a new engine. The returned rate limiter
// should have Run called on it to forget idle clients.
func NewRouter(d *internal.Deps, cfg RouterConfig) (*gin.Engine, *middleware.RateLimiter) {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORS,
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit,
		Burst:             int(cfg.RateLimit * 2),
	})

	jwt := middleware.NewJWTMiddleware(d.Tokens, d.Accounts)
	turnstile := middleware.NewTurnstileMiddleware(cfg.Turnstile)
	staffOnly := middleware.RequireRole(model.RoleStaff)
	listCache := persist.NewMemoryStore(time.Minute)

	m := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", func(c *gin.Context) { root.Heartbeat(c, d) })

		// GET /api/validate		-> Validates a JWT token
		m.GET("/validate", jwt, root.Validate)
	}

	a := m.Group("/auth", limiter.Middleware(), middleware.BodySizeLimiter(cfg.MaxBodySize))
	{
		// POST /api/auth/send-verification	-> Mails a registration code
		a.POST("/send-verification", turnstile, func(c *gin.Context) { auth.SendVerification(c, d) })

		// POST /api/auth/resend-verification	-> Replaces the registration code
		a.POST("/resend-verification", turnstile, func(c *gin.Context) { auth.ResendVerification(c, d) })

		// POST /api/auth/verify-code		-> Checks a registration code
		a.POST("/verify-code", func(c *gin.Context) { auth.VerifyCode(c, d) })

		// POST /api/auth/register		-> Creates a verified account
		a.POST("/register", func(c *gin.Context) { auth.Register(c, d) })

		// POST /api/auth/login			-> Returns a session token
		a.POST("/login", func(c *gin.Context) { auth.Login(c, d) })

		// POST /api/auth/forgot-password	-> Mails a password reset code
		a.POST("/forgot-password", turnstile, func(c *gin.Context) { auth.ForgotPassword(c, d) })

		// POST /api/auth/resend-reset		-> Replaces the password reset code
		a.POST("/resend-reset", turnstile, func(c *gin.Context) { auth.ResendReset(c, d) })

		// POST /api/auth/reset-password	-> Sets a new password with a reset code
		a.POST("/reset-password", func(c *gin.Context) { auth.ResetPassword(c, d) })

		// GET /api/auth/me			-> Returns the logged in account
		a.GET("/me", jwt, func(c *gin.Context) { auth.Me(c, d) })
	}

	// GET /api/accounts	-> Lists accounts, staff only
	m.GET("/accounts", jwt, staffOnly,
		cache.CacheByRequestURI(listCache, 15*time.Second),
		func(c *gin.Context) { account.List(c, d) },
	)

	return router, limiter
}
