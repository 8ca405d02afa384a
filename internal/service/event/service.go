package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mediassist/patient-api/internal/model"
	"github.com/mediassist/patient-api/internal/repository"
	"github.com/mediassist/patient-api/pkg/logger"
)

// Emitter records domain events for asynchronous fan-out. Emission is best
// effort: failures are logged, never surfaced to the enclosing operation.
type Emitter interface {
	Emit(ctx context.Context, eventType string, channels []string, payload interface{})
}

type Service struct {
	repo   repository.OutboxRepository
	logger *logger.Logger
}

func NewService(repo repository.OutboxRepository, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) Emit(ctx context.Context, eventType string, channels []string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(err, "failed to marshal event payload", "event_type", eventType)
		return
	}

	evt := &model.OutboxEvent{
		EventType: eventType,
		Channels:  channels,
		Payload:   raw,
	}
	if err := s.repo.Create(ctx, evt); err != nil {
		s.logger.Error(err, "failed to record outbox event", "event_type", eventType)
	}
}

// UserChannel is the pub/sub channel a user receives notifications on.
func UserChannel(userID fmt.Stringer) string {
	return "user:" + userID.String()
}
