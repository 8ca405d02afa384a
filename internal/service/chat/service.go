package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mediassist/patient-api/internal/model"
	"github.com/mediassist/patient-api/internal/repository"
	"github.com/mediassist/patient-api/internal/service/event"
	apperrors "github.com/mediassist/patient-api/pkg/errors"
	"github.com/mediassist/patient-api/pkg/generation"
	"github.com/mediassist/patient-api/pkg/logger"
)

const EventChatMessage = "chat.message"

// Service manages AI consultation sessions. Sessions are owned exclusively
// by one patient; every operation checks ownership before touching data.
type Service struct {
	repo        repository.ChatRepository
	patientRepo repository.PatientRepository
	historyRepo repository.MedicalHistoryRepository
	generator   generation.Client
	events      event.Emitter
	logger      *logger.Logger
}

func NewService(
	repo repository.ChatRepository,
	patientRepo repository.PatientRepository,
	historyRepo repository.MedicalHistoryRepository,
	generator generation.Client,
	events event.Emitter,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		historyRepo: historyRepo,
		generator:   generator,
		events:      events,
		logger:      log,
	}
}

// CreateChat opens a new session for the patient, provisioning the patient
// and medical history records if they do not exist yet.
func (s *Service) CreateChat(ctx context.Context, patientID uuid.UUID, req *model.CreateChatRequest) (*model.ChatSession, error) {
	if err := s.ensureProvisioned(ctx, patientID); err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = model.DefaultChatTitle
	}

	session := &model.ChatSession{
		ID:        uuid.New(),
		PatientID: patientID,
		Title:     title,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ensureProvisioned backfills the patient specialization and an empty medical
// history for accounts that registered before those records were created.
func (s *Service) ensureProvisioned(ctx context.Context, patientID uuid.UUID) error {
	exists, err := s.patientRepo.Exists(ctx, patientID)
	if err != nil {
		return fmt.Errorf("failed to check patient: %w", err)
	}
	if !exists {
		if err := s.patientRepo.Create(ctx, &model.Patient{ID: patientID}); err != nil {
			return err
		}
	}

	if _, err := s.historyRepo.GetByPatient(ctx, patientID); err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		history := &model.MedicalHistory{
			ID:        uuid.New(),
			PatientID: patientID,
		}
		if err := s.historyRepo.Create(ctx, history); err != nil {
			// Lost the race against a concurrent provision; the record exists.
			if !apperrors.Is(err, apperrors.ErrConflict) {
				return err
			}
		}
	}
	return nil
}

// SendMessage persists the patient's message, then makes a single attempt at
// generating the AI reply. When generation fails the user message survives
// and the result reports the partial failure instead of erroring.
func (s *Service) SendMessage(ctx context.Context, chatID uuid.UUID, actor *model.Actor, req *model.SendMessageRequest) (*model.SendMessageResult, error) {
	session, err := s.ownedSession(ctx, chatID, actor)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.ListMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}

	userMsg := &model.ChatMessage{
		ID:      uuid.New(),
		ChatID:  chatID,
		Content: req.Content,
		IsAI:    false,
	}
	if err := s.repo.CreateMessage(ctx, userMsg); err != nil {
		return nil, err
	}
	s.emitMessage(ctx, session, userMsg)

	turns := make([]generation.Turn, 0, len(history)+1)
	for _, m := range history {
		role := "user"
		if m.IsAI {
			role = "assistant"
		}
		turns = append(turns, generation.Turn{Role: role, Content: m.Content})
	}
	turns = append(turns, generation.Turn{Role: "user", Content: userMsg.Content})

	reply, err := s.generator.Complete(ctx, turns)
	if err != nil {
		s.logger.Error(err, "ai generation failed", "chat_id", chatID.String())
		return &model.SendMessageResult{UserMessage: userMsg, AIFailed: true}, nil
	}

	aiMsg := &model.ChatMessage{
		ID:      uuid.New(),
		ChatID:  chatID,
		Content: reply,
		IsAI:    true,
	}
	if err := s.repo.CreateMessage(ctx, aiMsg); err != nil {
		return nil, err
	}
	s.emitMessage(ctx, session, aiMsg)

	return &model.SendMessageResult{UserMessage: userMsg, AIMessage: aiMsg}, nil
}

func (s *Service) emitMessage(ctx context.Context, session *model.ChatSession, msg *model.ChatMessage) {
	s.events.Emit(ctx, EventChatMessage,
		[]string{event.UserChannel(session.PatientID)},
		&model.ChatMessageEvent{
			ChatID:    msg.ChatID,
			MessageID: msg.ID,
			IsAI:      msg.IsAI,
		})
}

// GetChat returns the session with its full transcript, oldest first.
func (s *Service) GetChat(ctx context.Context, chatID uuid.UUID, actor *model.Actor) (*model.ChatSessionDetail, error) {
	session, err := s.ownedSession(ctx, chatID, actor)
	if err != nil {
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return &model.ChatSessionDetail{ChatSession: *session, Messages: messages}, nil
}

// ListChats returns the actor's sessions, newest first.
func (s *Service) ListChats(ctx context.Context, actor *model.Actor) ([]*model.ChatSession, error) {
	return s.repo.ListSessionsByPatient(ctx, actor.ID)
}

func (s *Service) UpdateTitle(ctx context.Context, chatID uuid.UUID, actor *model.Actor, req *model.UpdateChatTitleRequest) (*model.ChatSession, error) {
	session, err := s.ownedSession(ctx, chatID, actor)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTitle(ctx, chatID, req.Title); err != nil {
		return nil, err
	}
	session.Title = req.Title
	return session, nil
}

// DeleteChat removes the session and all its messages.
func (s *Service) DeleteChat(ctx context.Context, chatID uuid.UUID, actor *model.Actor) error {
	if _, err := s.ownedSession(ctx, chatID, actor); err != nil {
		return err
	}
	return s.repo.DeleteSession(ctx, chatID)
}

func (s *Service) ownedSession(ctx context.Context, chatID uuid.UUID, actor *model.Actor) (*model.ChatSession, error) {
	session, err := s.repo.GetSession(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if session.PatientID != actor.ID {
		return nil, apperrors.Forbidden("you do not have permission to access this chat")
	}
	return session, nil
}
