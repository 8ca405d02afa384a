package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediassist/patient-api/internal/model"
	"github.com/mediassist/patient-api/pkg/logger"
)

type fakeOutboxRepo struct {
	created []*model.OutboxEvent
	err     error
}

func (r *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, e)
	return nil
}

func (r *fakeOutboxRepo) GetPendingWithLock(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkProcessed(_ context.Context, _ uuid.UUID) error { return nil }

func (r *fakeOutboxRepo) MarkFailed(_ context.Context, _ uuid.UUID, _ string) error { return nil }

func (r *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ int) (int64, error) {
	return 0, nil
}

func newTestService(repo *fakeOutboxRepo) *Service {
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	return NewService(repo, log)
}

func TestEmit(t *testing.T) {
	t.Run("records event with marshaled payload", func(t *testing.T) {
		repo := &fakeOutboxRepo{}
		svc := newTestService(repo)

		userID := uuid.New()
		svc.Emit(context.Background(), "appointment.created",
			[]string{UserChannel(userID)},
			map[string]string{"message": "appointment requested"})

		require.Len(t, repo.created, 1)
		evt := repo.created[0]
		assert.Equal(t, "appointment.created", evt.EventType)
		assert.Equal(t, model.StringSlice{"user:" + userID.String()}, evt.Channels)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(evt.Payload, &payload))
		assert.Equal(t, "appointment requested", payload["message"])
	})

	t.Run("storage failure is swallowed", func(t *testing.T) {
		repo := &fakeOutboxRepo{err: errors.New("db down")}
		svc := newTestService(repo)

		// must not panic or surface the error
		svc.Emit(context.Background(), "chat.message", []string{"user:x"}, map[string]string{})
		assert.Empty(t, repo.created)
	})

	t.Run("unmarshalable payload is swallowed", func(t *testing.T) {
		repo := &fakeOutboxRepo{}
		svc := newTestService(repo)

		svc.Emit(context.Background(), "chat.message", []string{"user:x"}, func() {})
		assert.Empty(t, repo.created)
	})
}

func TestUserChannel(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "user:"+id.String(), UserChannel(id))
}
