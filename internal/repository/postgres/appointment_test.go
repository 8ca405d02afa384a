package postgres

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediassist/patient-api/internal/model"
	apperrors "github.com/mediassist/patient-api/pkg/errors"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var appointmentColumns = []string{
	"id", "patient_id", "doctor_id", "date", "start_time", "end_time",
	"status", "reason", "notes", "created_at", "updated_at",
}

func appointmentRow(id uuid.UUID, date time.Time, start string, status model.AppointmentStatus) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id.String(), uuid.NewString(), uuid.NewString(), date, start, "10:30",
		string(status), "checkup", "", now, now,
	}
}

func TestAppointmentCreateSlotConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAppointmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "appointments_active_slot_key"})

	err := repo.Create(context.Background(), &model.Appointment{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Date:      time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00",
		EndTime:   "10:30",
		Status:    model.AppointmentStatusRequested,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentListOrder(t *testing.T) {
	// Both listings hand the sort to the database: most recent day first,
	// morning before afternoon within a day.
	orderClause := regexp.QuoteMeta("ORDER BY date DESC, start_time ASC")

	newer := time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)
	older := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	first := uuid.New()
	second := uuid.New()
	third := uuid.New()

	t.Run("by patient", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewAppointmentRepository(db)
		patientID := uuid.New()

		rows := sqlmock.NewRows(appointmentColumns).
			AddRow(appointmentRow(first, newer, "09:00", model.AppointmentStatusRequested)...).
			AddRow(appointmentRow(second, older, "08:00", model.AppointmentStatusAccepted)...).
			AddRow(appointmentRow(third, older, "11:00", model.AppointmentStatusCanceled)...)

		mock.ExpectQuery(orderClause).
			WithArgs(patientID).
			WillReturnRows(rows)

		appointments, err := repo.ListByPatient(context.Background(), patientID)
		require.NoError(t, err)
		require.Len(t, appointments, 3)
		assert.Equal(t, first, appointments[0].ID)
		assert.Equal(t, second, appointments[1].ID)
		assert.Equal(t, third, appointments[2].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by doctor", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewAppointmentRepository(db)
		doctorID := uuid.New()

		rows := sqlmock.NewRows(appointmentColumns).
			AddRow(appointmentRow(first, newer, "09:00", model.AppointmentStatusAccepted)...)

		mock.ExpectQuery(orderClause).
			WithArgs(doctorID).
			WillReturnRows(rows)

		appointments, err := repo.ListByDoctor(context.Background(), doctorID)
		require.NoError(t, err)
		require.Len(t, appointments, 1)
		assert.Equal(t, first, appointments[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAppointmentUpdateStatusSwap(t *testing.T) {
	updateClause := regexp.QuoteMeta("WHERE id = $4 AND status = $5")

	t.Run("swap succeeds while the status is unchanged", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewAppointmentRepository(db)
		id := uuid.New()

		mock.ExpectExec(updateClause).
			WithArgs(model.AppointmentStatusAccepted, nil, sqlmock.AnyArg(), id, model.AppointmentStatusRequested).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(context.Background(), id,
			model.AppointmentStatusRequested, model.AppointmentStatusAccepted, nil)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost swap surfaces as conflict", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewAppointmentRepository(db)
		id := uuid.New()

		mock.ExpectExec(updateClause).
			WithArgs(model.AppointmentStatusAccepted, nil, sqlmock.AnyArg(), id, model.AppointmentStatusRequested).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// The row still exists; a competing transition got there first.
		rows := sqlmock.NewRows(appointmentColumns).
			AddRow(appointmentRow(id, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), "10:00", model.AppointmentStatusRejected)...)
		mock.ExpectQuery(regexp.QuoteMeta("FROM appointments")).
			WithArgs(id).
			WillReturnRows(rows)

		err := repo.UpdateStatus(context.Background(), id,
			model.AppointmentStatusRequested, model.AppointmentStatusAccepted, nil)
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing appointment is not found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewAppointmentRepository(db)
		id := uuid.New()

		mock.ExpectExec(updateClause).
			WithArgs(model.AppointmentStatusAccepted, nil, sqlmock.AnyArg(), id, model.AppointmentStatusRequested).
			WillReturnResult(sqlmock.NewResult(0, 0))

		mock.ExpectQuery(regexp.QuoteMeta("FROM appointments")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(appointmentColumns))

		err := repo.UpdateStatus(context.Background(), id,
			model.AppointmentStatusRequested, model.AppointmentStatusAccepted, nil)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
