package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mediassist/patient-api/internal/email"
	"github.com/mediassist/patient-api/internal/model"
	"github.com/mediassist/patient-api/internal/repository"
	"github.com/mediassist/patient-api/pkg/logger"
	"github.com/mediassist/patient-api/pkg/messaging"
	"github.com/mediassist/patient-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetentionDays int
}

// OutboxProcessor drains pending outbox events: each event is published to
// its pub/sub channels, and appointment events additionally notify both
// participants by email. Fan-out is best effort.
type OutboxProcessor struct {
	repo     repository.OutboxRepository
	userRepo repository.UserRepository
	broker   messaging.Broker
	mailer   email.Service
	config   OutboxProcessorConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	userRepo repository.UserRepository,
	broker messaging.Broker,
	mailer email.Service,
	config OutboxProcessorConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	return &OutboxProcessor{
		repo:     repo,
		userRepo: userRepo,
		broker:   broker,
		mailer:   mailer,
		config:   config,
		logger:   log,
		metrics:  m,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	cleanup := time.NewTicker(24 * time.Hour)
	defer cleanup.Stop()

	p.logger.Info("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error(err, "failed to process outbox batch")
			}
		case <-cleanup.C:
			p.cleanupProcessed(ctx)
		}
	}
}

func (p *OutboxProcessor) processBatch(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingWithLock(ctx, p.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending events: %w", err)
	}

	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.metrics.OutboxEventsFailed.Inc()
			p.logger.Error(err, "failed to process event",
				"event_id", event.ID.String(),
				"event_type", event.EventType)

			errMsg := err.Error()
			if markErr := p.repo.MarkFailed(ctx, event.ID, errMsg); markErr != nil {
				p.logger.Error(markErr, "failed to mark event failed", "event_id", event.ID.String())
			}
			continue
		}

		p.metrics.OutboxEventsProcessed.Inc()
		if err := p.repo.MarkProcessed(ctx, event.ID); err != nil {
			p.logger.Error(err, "failed to mark event processed", "event_id", event.ID.String())
		}
	}
	return nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	for _, channel := range event.Channels {
		if err := p.broker.Publish(ctx, channel, event.Payload); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", channel, err)
		}
	}

	switch {
	case strings.HasPrefix(event.EventType, "appointment."):
		p.sendAppointmentEmails(ctx, event)
	case strings.HasPrefix(event.EventType, "user."):
		p.sendWelcomeEmail(ctx, event)
	}
	return nil
}

// sendAppointmentEmails notifies both participants. Mail failures are logged,
// never retried: the pub/sub publish already succeeded and re-processing the
// event would duplicate it.
func (p *OutboxProcessor) sendAppointmentEmails(ctx context.Context, event *model.OutboxEvent) {
	var apt model.AppointmentEvent
	if err := json.Unmarshal(event.Payload, &apt); err != nil {
		p.logger.Error(err, "failed to decode appointment event", "event_id", event.ID.String())
		return
	}

	for _, userID := range []uuid.UUID{apt.PatientID, apt.DoctorID} {
		user, err := p.userRepo.Get(ctx, userID)
		if err != nil {
			p.logger.Error(err, "failed to load recipient", "user_id", userID.String())
			continue
		}
		if err := p.mailer.SendAppointmentUpdate(ctx, user.Email, &apt); err != nil {
			p.logger.Error(err, "failed to send appointment email", "user_id", userID.String())
		}
	}
}

// sendWelcomeEmail greets a newly registered user. The payload carries the
// recipient, so no lookup is needed; failures are logged like all other mail.
func (p *OutboxProcessor) sendWelcomeEmail(ctx context.Context, event *model.OutboxEvent) {
	var user model.UserEvent
	if err := json.Unmarshal(event.Payload, &user); err != nil {
		p.logger.Error(err, "failed to decode user event", "event_id", event.ID.String())
		return
	}

	if err := p.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
		p.logger.Error(err, "failed to send welcome email", "user_id", user.UserID.String())
	}
}

func (p *OutboxProcessor) cleanupProcessed(ctx context.Context) {
	if p.config.RetentionDays <= 0 {
		return
	}
	deleted, err := p.repo.DeleteProcessedBefore(ctx, p.config.RetentionDays)
	if err != nil {
		p.logger.Error(err, "failed to clean up processed events")
		return
	}
	if deleted > 0 {
		p.logger.Info("cleaned up processed events", "deleted", deleted)
	}
}
