package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/redemption-intake/internal/api/http"
	"github.com/spec-kit/redemption-intake/internal/api/http/handlers"
	"github.com/spec-kit/redemption-intake/internal/auth"
	"github.com/spec-kit/redemption-intake/internal/broadcast"
	"github.com/spec-kit/redemption-intake/internal/config"
	"github.com/spec-kit/redemption-intake/internal/observability"
	"github.com/spec-kit/redemption-intake/internal/otp"
	"github.com/spec-kit/redemption-intake/internal/persistence"
	"github.com/spec-kit/redemption-intake/internal/repository"
	"github.com/spec-kit/redemption-intake/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	passcodeRepo := repository.NewPasscodeRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	broadcaster := broadcast.NewBroadcaster(logger)
	broadcaster.StartHeartbeat(cfg.Broadcast.HeartbeatInterval())
	defer broadcaster.Close()

	providerClient := otp.NewClient(cfg.OTP)
	limiter := otp.NewSendLimiter(redis.Client, cfg.OTP.SendLimit, cfg.OTP.SendWindow())

	var verifier otp.Verifier
	if cfg.OTP.VerifyBackend == config.VerifyBackendProvider {
		verifier = otp.NewProviderVerifier(providerClient)
	} else {
		verifier = otp.NewStoreVerifier(passcodeRepo)
	}

	authService := service.NewAuthService(cfg.Auth, userRepo)
	otpService := service.NewOTPService(cfg.OTP, providerClient, passcodeRepo, limiter, logger)
	submissionService := service.NewSubmissionService(submissionRepo)
	messageService := service.NewMessageService(messageRepo, userRepo)
	userService := service.NewUserService(userRepo)

	sessionMiddleware := auth.NewSessionMiddleware(authService.TokenManager(), userRepo)
	guard := auth.NewOTPGuard(verifier, userRepo)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, broadcaster, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, providerClient, metrics),
		Auth:        handlers.NewAuthHandler(authService),
		OTP:         handlers.NewOTPHandler(otpService),
		Submissions: handlers.NewSubmissionsHandler(submissionService),
		Messages:    handlers.NewMessagesHandler(messageService),
		Admin:       handlers.NewAdminHandler(submissionService, messageService, userService),
		Activity:    handlers.NewActivityHandler(broadcaster, logger),
		Session:     sessionMiddleware,
		Guard:       guard,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
