// Package main is the entrypoint for the PingMe API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/pingme/pingme/internal/config"
	"github.com/pingme/pingme/internal/handler"
	"github.com/pingme/pingme/internal/mail"
	"github.com/pingme/pingme/internal/repository"
	"github.com/pingme/pingme/internal/router"
	"github.com/pingme/pingme/internal/server"
	"github.com/pingme/pingme/internal/service"
	"github.com/pingme/pingme/internal/session"
	"github.com/pingme/pingme/internal/storage"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize session store
	sessions, err := session.NewRedis(ctx, cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer sessions.Close()
	logger.Info("connected to Redis")

	codec := session.NewCodec(cfg.SessionSecret)

	// Initialize document storage
	docs, err := storage.NewDocumentStore(cfg.UploadDir)
	if err != nil {
		logger.Error("failed to prepare upload dir", "error", err)
		os.Exit(1)
	}

	// Initialize mail transport
	var mailer mail.Mailer
	if cfg.MailConfigured() {
		mailer, err = mail.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
		if err != nil {
			logger.Error("failed to create mail client", "error", err)
			os.Exit(1)
		}
	} else {
		if cfg.IsProduction() {
			logger.Error("SMTP_HOST and MAIL_FROM are required in production")
			os.Exit(1)
		}
		logger.Warn("mail transport not configured, logging reset links instead")
		mailer = mail.NewLog(logger)
	}

	// Initialize services
	authService := service.NewAuthService(repo, sessions)
	vehicleService := service.NewVehicleService(repo, docs)
	notificationService := service.NewNotificationService(repo, repo, mailer, cfg.BaseURL, cfg.ResetTokenTTL, logger)
	paymentService := service.NewPaymentService(cfg.PaymentDelay, cfg.PaymentSuccessRate)

	// Initialize handlers
	r := router.New(router.Deps{
		Logger:       logger,
		SessionStore: sessions,
		SessionCodec: codec,
		CORSOrigins:  cfg.GetCORSAllowedOrigins(),
		Base:         handler.New(),
		Health:       handler.NewHealthHandler(repo, sessions),
		Auth:         handler.NewAuthHandler(authService, codec, logger, cfg.SessionTTL, cfg.IsProduction()),
		Password:     handler.NewPasswordHandler(notificationService, logger),
		Vehicle:      handler.NewVehicleHandler(vehicleService, logger, cfg.MaxUploadSize),
		Payment:      handler.NewPaymentHandler(paymentService, logger),
		Sticker:      handler.NewStickerHandler(cfg.StickerPath, logger),
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
