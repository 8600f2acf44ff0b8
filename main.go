package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront-otp/controller"
	"storefront-otp/middleware"
	"storefront-otp/repository"
	"storefront-otp/service"
	"storefront-otp/util"

	"github.com/gofiber/fiber/v2"
	swag "github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	_ "storefront-otp/docs" // registers the swagger spec
)

// @title           Storefront OTP API
// @version         1.0
// @description     One-time passcode issuance and verification for the storefront.

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host            localhost:4000
// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	envErr := godotenv.Load()

	cfg := util.LoadConfig()
	util.InitLogger(cfg.LogLevel)
	if envErr != nil {
		log.Warn().Err(envErr).Msg("failed to load .env file, using system environment variables")
	}

	repo, err := newOtpRepository(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("failed to initialize otp store")
	}

	otpService := service.NewOtpService(repo, newOtpSender(cfg), service.OtpOptions{
		TTL:         cfg.OtpTTL,
		AllowReplay: cfg.AllowReplay,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	util.StartExpirySweep(ctx, otpService, cfg.SweepInterval)

	app := fiber.New(fiber.Config{AppName: cfg.AppName})
	setupRoutes(app, cfg, controller.NewOtpController(otpService, cfg.ExposeCode))

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newOtpRepository(cfg *util.Config) (repository.OtpRepository, error) {
	switch cfg.Store {
	case "postgres":
		db, err := util.InitDB(cfg)
		if err != nil {
			return nil, err
		}
		return repository.NewOtpRepository(db), nil
	case "redis":
		client, err := util.InitRedis(cfg)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisOtpRepository(client), nil
	case "memory":
		log.Warn().Msg("using in-memory otp store, records are lost on restart")
		return repository.NewInMemoryOtpRepository(), nil
	default:
		return nil, fmt.Errorf("unknown OTP_STORE %q", cfg.Store)
	}
}

func newOtpSender(cfg *util.Config) service.OtpSender {
	switch cfg.Delivery {
	case "sms":
		return service.NewSmsService(cfg.SMSGatewayURL, cfg.SMSAPIKey, cfg.SMSFrom, cfg.AppName, cfg.OtpTTL)
	case "email":
		return service.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass,
			cfg.SMTPSender, cfg.SMSMailDomain, cfg.AppName, cfg.OtpTTL)
	default:
		return service.LogSender{}
	}
}

func setupRoutes(app *fiber.App, cfg *util.Config, otpController *controller.OtpController) {
	app.Use(middleware.TimerMetrics)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/swagger/*", swag.HandlerDefault)

	api := app.Group("/api/v1")
	otp := api.Group("/otp")

	otp.Post("/issue", middleware.OtpIssueRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow), otpController.Issue)
	otp.Post("/verify", otpController.Verify)
	otp.Get("/active", middleware.RequireAdmin(cfg.AdminJWTSecret, cfg.ExposeActive), otpController.ListActive)
}
