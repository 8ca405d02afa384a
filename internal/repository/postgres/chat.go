package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mediassist/patient-api/internal/model"
	"github.com/mediassist/patient-api/internal/repository"
	apperrors "github.com/mediassist/patient-api/pkg/errors"
)

type chatRepository struct {
	BaseRepository
}

func NewChatRepository(db *sqlx.DB) repository.ChatRepository {
	return &chatRepository{NewBaseRepository(db)}
}

func (r *chatRepository) CreateSession(ctx context.Context, session *model.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, patient_id, title, created_at)
		VALUES ($1, $2, $3, $4)
	`
	session.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.PatientID,
		session.Title,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

func (r *chatRepository) GetSession(ctx context.Context, id uuid.UUID) (*model.ChatSession, error) {
	query := `
		SELECT id, patient_id, title, created_at
		FROM chat_sessions
		WHERE id = $1
	`
	var session model.ChatSession
	err := r.db.GetContext(ctx, &session, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("chat")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}
	return &session, nil
}

func (r *chatRepository) ListSessionsByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ChatSession, error) {
	query := `
		SELECT id, patient_id, title, created_at
		FROM chat_sessions
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	var sessions []*model.ChatSession
	if err := r.db.SelectContext(ctx, &sessions, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}
	return sessions, nil
}

func (r *chatRepository) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE chat_sessions SET title = $1 WHERE id = $2`, title, id)
	if err != nil {
		return fmt.Errorf("failed to update chat title: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("chat")
	}
	return nil
}

// DeleteSession removes messages before the session inside one transaction so
// no orphan messages can remain.
func (r *chatRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM chat_messages WHERE chat_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete chat messages: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM chat_sessions WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete chat session: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("chat")
		}
		return nil
	})
}

func (r *chatRepository) CreateMessage(ctx context.Context, message *model.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, chat_id, content, is_ai, sent_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	message.SentAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		message.ID,
		message.ChatID,
		message.Content,
		message.IsAI,
		message.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

func (r *chatRepository) ListMessages(ctx context.Context, chatID uuid.UUID) ([]*model.ChatMessage, error) {
	query := `
		SELECT id, chat_id, content, is_ai, sent_at
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY sent_at ASC
	`
	var messages []*model.ChatMessage
	if err := r.db.SelectContext(ctx, &messages, query, chatID); err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return messages, nil
}
