package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mediassist/patient-api/internal/config"
	"github.com/mediassist/patient-api/internal/email"
	"github.com/mediassist/patient-api/internal/repository/postgres"
	"github.com/mediassist/patient-api/internal/worker"
	"github.com/mediassist/patient-api/pkg/logger"
	"github.com/mediassist/patient-api/pkg/messaging/redis"
	"github.com/mediassist/patient-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      parseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Log.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	zl := zerolog.New(os.Stdout).With().Timestamp().Logger()
	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.Redis.URL}, &zl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	var mailer email.Service = email.NoopService{}
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPService(cfg.SMTP)
	}

	processor := worker.NewOutboxProcessor(
		postgres.NewOutboxRepository(db),
		postgres.NewUserRepository(db),
		broker,
		mailer,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetentionDays: cfg.Outbox.RetentionDays,
		},
		appLogger,
		metrics.NewMetrics("patient_worker"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go processor.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down worker")
	cancel()
}

func parseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}
