package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultChatTitle is used when a session is created without a title.
const DefaultChatTitle = "New consultation"

// ChatSession is owned exclusively by one patient.
type ChatSession struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PatientID uuid.UUID `json:"patient_id" db:"patient_id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ChatMessage is append-only, ordered by SentAt ascending within a session.
type ChatMessage struct {
	ID      uuid.UUID `json:"id" db:"id"`
	ChatID  uuid.UUID `json:"chat_id" db:"chat_id"`
	Content string    `json:"content" db:"content"`
	IsAI    bool      `json:"is_ai" db:"is_ai"`
	SentAt  time.Time `json:"sent_at" db:"sent_at"`
}

// ChatSessionDetail bundles a session with its ordered transcript.
type ChatSessionDetail struct {
	ChatSession
	Messages []*ChatMessage `json:"messages"`
}

type CreateChatRequest struct {
	Title string `json:"title" binding:"omitempty,max=200"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

type UpdateChatTitleRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

// SendMessageResult reports the outcome of a message send. AIFailed is set
// when the user message was persisted but AI response generation failed.
type SendMessageResult struct {
	UserMessage *ChatMessage `json:"user_message"`
	AIMessage   *ChatMessage `json:"ai_message,omitempty"`
	AIFailed    bool         `json:"ai_failed,omitempty"`
}

// ChatMessageEvent is the payload published when a message is appended.
type ChatMessageEvent struct {
	ChatID    uuid.UUID `json:"chat_id"`
	MessageID uuid.UUID `json:"message_id"`
	IsAI      bool      `json:"is_ai"`
}
