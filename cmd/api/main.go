package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mediassist/patient-api/internal/config"
	appointmentHandler "github.com/mediassist/patient-api/internal/handler/appointment"
	authHandler "github.com/mediassist/patient-api/internal/handler/auth"
	chatHandler "github.com/mediassist/patient-api/internal/handler/chat"
	doctorHandler "github.com/mediassist/patient-api/internal/handler/doctor"
	healthHandler "github.com/mediassist/patient-api/internal/handler/health"
	medicalHandler "github.com/mediassist/patient-api/internal/handler/medical"
	userHandler "github.com/mediassist/patient-api/internal/handler/user"
	"github.com/mediassist/patient-api/internal/middleware"
	"github.com/mediassist/patient-api/internal/repository/postgres"
	"github.com/mediassist/patient-api/internal/router"
	appointmentService "github.com/mediassist/patient-api/internal/service/appointment"
	authService "github.com/mediassist/patient-api/internal/service/auth"
	chatService "github.com/mediassist/patient-api/internal/service/chat"
	doctorService "github.com/mediassist/patient-api/internal/service/doctor"
	eventService "github.com/mediassist/patient-api/internal/service/event"
	medicalService "github.com/mediassist/patient-api/internal/service/medical"
	"github.com/mediassist/patient-api/pkg/auth"
	"github.com/mediassist/patient-api/pkg/generation"
	"github.com/mediassist/patient-api/pkg/logger"
	"github.com/mediassist/patient-api/pkg/metrics"
	"github.com/mediassist/patient-api/pkg/security"
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

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	historyRepo := postgres.NewMedicalHistoryRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	chatRepo := postgres.NewChatRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Shared infrastructure
	tokens := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	m := metrics.NewMetrics("patient_api")
	generator := generation.NewHTTPClient(generation.Config{
		BaseURL:     cfg.Generation.BaseURL,
		APIKey:      cfg.Generation.APIKey,
		Model:       cfg.Generation.Model,
		Timeout:     cfg.Generation.Timeout,
		MaxFailures: cfg.Generation.MaxFailures,
	}, m)

	// Services
	eventSvc := eventService.NewService(outboxRepo, appLogger)
	authSvc := authService.NewService(userRepo, patientRepo, doctorRepo, historyRepo, hasher, tokens, eventSvc)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, doctorRepo, eventSvc)
	chatSvc := chatService.NewService(chatRepo, patientRepo, historyRepo, generator, eventSvc, appLogger)
	medicalSvc := medicalService.NewService(historyRepo, patientRepo)
	doctorSvc := doctorService.NewService(doctorRepo)

	// HTTP layer
	authMW := middleware.NewAuthMiddleware(tokens, cfg.JWT.ClaimsCache)

	r := router.NewRouter(
		authMW,
		healthHandler.NewHandler(db),
		authHandler.NewHandler(authSvc),
		[]router.Handler{
			userHandler.NewHandler(authSvc, authMW),
			appointmentHandler.NewHandler(appointmentSvc, authMW),
			chatHandler.NewHandler(chatSvc, authMW),
			doctorHandler.NewHandler(doctorSvc, authMW),
			medicalHandler.NewHandler(medicalSvc, authMW),
		},
		router.Config{
			RequestTimeout: cfg.Server.RequestTimeout,
			RateLimit: middleware.RateLimiterConfig{
				RPS:   cfg.RateLimit.RequestsPerSecond,
				Burst: cfg.RateLimit.Burst,
			},
			RateLimitOn: cfg.RateLimit.Enabled,
			CORS:        corsConfig(cfg),
			Metrics:     m,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	appLogger.Info("server stopped")
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		c.AllowOrigins = cfg.Security.AllowedOrigins
	}
	return c
}

func parseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}
