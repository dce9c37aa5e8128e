// Package main runs the site coordination HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/campus-rcs/site-coordination/config"
	"github.com/campus-rcs/site-coordination/internal/activity"
	"github.com/campus-rcs/site-coordination/internal/analytics"
	"github.com/campus-rcs/site-coordination/internal/auth"
	"github.com/campus-rcs/site-coordination/internal/bookings"
	"github.com/campus-rcs/site-coordination/internal/emaillogs"
	"github.com/campus-rcs/site-coordination/internal/lifecycle"
	"github.com/campus-rcs/site-coordination/internal/registrations"
	"github.com/campus-rcs/site-coordination/internal/users"
	"github.com/campus-rcs/site-coordination/pkg/database"
	"github.com/campus-rcs/site-coordination/pkg/mailer"
	"github.com/campus-rcs/site-coordination/pkg/metrics"
	"github.com/campus-rcs/site-coordination/pkg/redis"
	"github.com/campus-rcs/site-coordination/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.JWT.Secret == "dev-secret" {
		logger.Warn("SITE_COORDINATION_SECRET not set; using development secret")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.ClientOptions(), logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Fatal("metrics", zap.Error(err))
	}

	var exporter activity.Exporter
	if s3Cfg := cfg.AWS.S3Config(); s3Cfg.Enabled() {
		s3Client, err := storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			exporter = s3Client
		}
	}

	// Mail
	mailCfg := cfg.SMTP.MailerConfig()
	sender := mailer.NewSMTPSender(mailCfg, logger)
	if !mailCfg.Configured() {
		logger.Warn("SITE_COORDINATION_SMTP_HOST not set; notifications are disabled")
	}

	// Stores
	registrationRepo := registrations.NewRepository(pool)
	userRepo := users.NewRepository(pool)
	bookingRepo := bookings.NewRepository(pool)
	activityRepo := activity.NewRepository(pool)
	emailLogsRepo := emaillogs.NewRepository(pool)
	analyticsRepo := analytics.NewRepository(pool)

	coordinator := lifecycle.New(registrationRepo, bookingRepo, userRepo, emailLogsRepo, sender, lifecycle.Options{
		MailConfigured:      mailCfg.Configured(),
		NotifyBookingDenial: cfg.Lifecycle.NotifyBookingDenial,
	}, logger)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	revocations := auth.NewRedisRevocations(rdb.Client)
	authHandler := auth.NewHandler(userRepo, jwtService, revocations, auth.AdminCredentials{
		Username:     cfg.Admin.Username,
		PasswordHash: cfg.Admin.PasswordHash,
	}, cfg.Server.SecureCookies, logger)
	if cfg.Admin.PasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH not set; coordination endpoints are unreachable")
	}

	gin.SetMode(gin.ReleaseMode)
	presignExpire := time.Duration(cfg.AWS.PresignExpireMinutes) * time.Minute
	router := newRouter(cfg.Server.CORSAllowedOrigins, logger, jwtService, revocations, handlers{
		auth:          authHandler,
		registrations: registrations.NewHandler(registrationRepo, userRepo, coordinator, logger),
		users:         users.NewHandler(userRepo, coordinator, logger),
		bookings:      bookings.NewHandler(bookingRepo, coordinator, logger),
		activity:      activity.NewHandler(activityRepo, exporter, presignExpire, logger),
		analytics:     analytics.NewHandler(analyticsRepo, userRepo, logger),
		emailLogs:     emaillogs.NewHandler(emailLogsRepo, logger),
		checks: []healthCheck{
			{name: "database", ping: pool.Ping},
			{name: "session_store", ping: rdb.Healthy},
		},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
