package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediassist/patient-api/internal/model"
	apperrors "github.com/mediassist/patient-api/pkg/errors"
	"github.com/mediassist/patient-api/pkg/logger"
	"github.com/mediassist/patient-api/pkg/metrics"
)

type fakeOutboxRepo struct {
	pending   []*model.OutboxEvent
	processed []uuid.UUID
	failed    map[uuid.UUID]string
}

func (r *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	r.pending = append(r.pending, e)
	return nil
}

func (r *fakeOutboxRepo) GetPendingWithLock(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	if len(r.pending) > limit {
		return r.pending[:limit], nil
	}
	return r.pending, nil
}

func (r *fakeOutboxRepo) MarkProcessed(_ context.Context, id uuid.UUID) error {
	r.processed = append(r.processed, id)
	return nil
}

func (r *fakeOutboxRepo) MarkFailed(_ context.Context, id uuid.UUID, errMsg string) error {
	if r.failed == nil {
		r.failed = make(map[uuid.UUID]string)
	}
	r.failed[id] = errMsg
	return nil
}

func (r *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ int) (int64, error) {
	return 0, nil
}

type fakeUserRepo struct {
	byID map[uuid.UUID]*model.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.byID[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, _ string) (*model.User, error) {
	return nil, apperrors.NotFound("user")
}

func (r *fakeUserRepo) Update(_ context.Context, _ *model.User) error { return nil }

func (r *fakeUserRepo) UpdatePassword(_ context.Context, _ uuid.UUID, _ string) error { return nil }

type fakeBroker struct {
	published map[string][][]byte
	err       error
}

func (b *fakeBroker) Publish(_ context.Context, channel string, message interface{}) error {
	if b.err != nil {
		return b.err
	}
	if b.published == nil {
		b.published = make(map[string][][]byte)
	}
	raw, _ := json.Marshal(message)
	b.published[channel] = append(b.published[channel], raw)
	return nil
}

func (b *fakeBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) SendWelcome(_ context.Context, to, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *fakeMailer) SendAppointmentUpdate(_ context.Context, to string, _ *model.AppointmentEvent) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

var testMetrics = metrics.NewMetrics("outbox_test")

func newProcessor(repo *fakeOutboxRepo, users *fakeUserRepo, broker *fakeBroker, mailer *fakeMailer) *OutboxProcessor {
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	return NewOutboxProcessor(repo, users, broker, mailer, OutboxProcessorConfig{
		BatchSize:    10,
		PollInterval: time.Second,
	}, log, testMetrics)
}

func appointmentEvent(t *testing.T, patientID, doctorID uuid.UUID) *model.OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(&model.AppointmentEvent{
		AppointmentID: uuid.New(),
		PatientID:     patientID,
		DoctorID:      doctorID,
		Status:        model.AppointmentStatusAccepted,
		Message:       "appointment accepted",
	})
	require.NoError(t, err)
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: "appointment.status_changed",
		Channels:  model.StringSlice{"user:" + patientID.String(), "user:" + doctorID.String()},
		Payload:   payload,
		Status:    model.OutboxStatusPending,
	}
}

func TestProcessBatch(t *testing.T) {
	t.Run("publishes to every channel and emails participants", func(t *testing.T) {
		patientID, doctorID := uuid.New(), uuid.New()
		repo := &fakeOutboxRepo{}
		users := &fakeUserRepo{byID: map[uuid.UUID]*model.User{
			patientID: {ID: patientID, Email: "patient@example.com"},
			doctorID:  {ID: doctorID, Email: "doctor@example.com"},
		}}
		broker := &fakeBroker{}
		mailer := &fakeMailer{}

		event := appointmentEvent(t, patientID, doctorID)
		repo.pending = []*model.OutboxEvent{event}

		p := newProcessor(repo, users, broker, mailer)
		require.NoError(t, p.processBatch(context.Background()))

		assert.Len(t, broker.published["user:"+patientID.String()], 1)
		assert.Len(t, broker.published["user:"+doctorID.String()], 1)
		assert.ElementsMatch(t, []string{"patient@example.com", "doctor@example.com"}, mailer.sent)
		assert.Equal(t, []uuid.UUID{event.ID}, repo.processed)
	})

	t.Run("publish failure marks event failed", func(t *testing.T) {
		patientID, doctorID := uuid.New(), uuid.New()
		repo := &fakeOutboxRepo{}
		users := &fakeUserRepo{byID: map[uuid.UUID]*model.User{}}
		broker := &fakeBroker{err: errors.New("redis down")}
		mailer := &fakeMailer{}

		event := appointmentEvent(t, patientID, doctorID)
		repo.pending = []*model.OutboxEvent{event}

		p := newProcessor(repo, users, broker, mailer)
		require.NoError(t, p.processBatch(context.Background()))

		assert.Empty(t, repo.processed)
		assert.Contains(t, repo.failed[event.ID], "redis down")
	})

	t.Run("mail failure does not fail the event", func(t *testing.T) {
		patientID, doctorID := uuid.New(), uuid.New()
		repo := &fakeOutboxRepo{}
		users := &fakeUserRepo{byID: map[uuid.UUID]*model.User{
			patientID: {ID: patientID, Email: "patient@example.com"},
			doctorID:  {ID: doctorID, Email: "doctor@example.com"},
		}}
		broker := &fakeBroker{}
		mailer := &fakeMailer{err: errors.New("smtp down")}

		event := appointmentEvent(t, patientID, doctorID)
		repo.pending = []*model.OutboxEvent{event}

		p := newProcessor(repo, users, broker, mailer)
		require.NoError(t, p.processBatch(context.Background()))

		assert.Equal(t, []uuid.UUID{event.ID}, repo.processed)
		assert.Empty(t, repo.failed)
	})

	t.Run("registration event sends the welcome mail", func(t *testing.T) {
		userID := uuid.New()
		repo := &fakeOutboxRepo{}
		users := &fakeUserRepo{byID: map[uuid.UUID]*model.User{}}
		broker := &fakeBroker{}
		mailer := &fakeMailer{}

		payload, err := json.Marshal(&model.UserEvent{
			UserID: userID,
			Email:  "ana@example.com",
			Name:   "Ana",
			Role:   model.RolePatient,
		})
		require.NoError(t, err)
		event := &model.OutboxEvent{
			ID:        uuid.New(),
			EventType: "user.registered",
			Channels:  model.StringSlice{"user:" + userID.String()},
			Payload:   payload,
			Status:    model.OutboxStatusPending,
		}
		repo.pending = []*model.OutboxEvent{event}

		p := newProcessor(repo, users, broker, mailer)
		require.NoError(t, p.processBatch(context.Background()))

		assert.Equal(t, []string{"ana@example.com"}, mailer.sent)
		assert.Len(t, broker.published["user:"+userID.String()], 1)
		assert.Equal(t, []uuid.UUID{event.ID}, repo.processed)
	})

	t.Run("chat events skip email", func(t *testing.T) {
		patientID := uuid.New()
		repo := &fakeOutboxRepo{}
		users := &fakeUserRepo{byID: map[uuid.UUID]*model.User{}}
		broker := &fakeBroker{}
		mailer := &fakeMailer{}

		payload, _ := json.Marshal(&model.ChatMessageEvent{ChatID: uuid.New(), MessageID: uuid.New()})
		event := &model.OutboxEvent{
			ID:        uuid.New(),
			EventType: "chat.message",
			Channels:  model.StringSlice{"user:" + patientID.String()},
			Payload:   payload,
			Status:    model.OutboxStatusPending,
		}
		repo.pending = []*model.OutboxEvent{event}

		p := newProcessor(repo, users, broker, mailer)
		require.NoError(t, p.processBatch(context.Background()))

		assert.Empty(t, mailer.sent)
		assert.Len(t, broker.published["user:"+patientID.String()], 1)
	})
}
