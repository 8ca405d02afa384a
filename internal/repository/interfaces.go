package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediassist/patient-api/internal/model"
)

// All repository interfaces in one file
type (
	// UserRepository handles base identity records
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	}

	// PatientRepository handles the patient specialization records
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Exists(ctx context.Context, id uuid.UUID) (bool, error)
		Update(ctx context.Context, patient *model.Patient) error
	}

	// DoctorRepository handles the doctor specialization records
	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetProfile(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error)
		Exists(ctx context.Context, id uuid.UUID) (bool, error)
		List(ctx context.Context) ([]*model.DoctorProfile, error)
		UpdateSchedule(ctx context.Context, id uuid.UUID, schedule model.WeekSchedule) error
	}

	MedicalHistoryRepository interface {
		Create(ctx context.Context, history *model.MedicalHistory) error
		GetByPatient(ctx context.Context, patientID uuid.UUID) (*model.MedicalHistory, error)
		Update(ctx context.Context, history *model.MedicalHistory) error
	}

	AppointmentRepository interface {
		// Create inserts the appointment; a slot collision with an active
		// appointment for the same doctor/date/start_time fails with Conflict.
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// UpdateStatus transitions the appointment only while it is still in
		// the from status; a concurrent transition that committed first fails
		// with Conflict.
		UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus, notes *string) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
		ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
	}

	ChatRepository interface {
		CreateSession(ctx context.Context, session *model.ChatSession) error
		GetSession(ctx context.Context, id uuid.UUID) (*model.ChatSession, error)
		ListSessionsByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ChatSession, error)
		UpdateTitle(ctx context.Context, id uuid.UUID, title string) error
		// DeleteSession removes the session and all its messages in one
		// transaction.
		DeleteSession(ctx context.Context, id uuid.UUID) error
		CreateMessage(ctx context.Context, message *model.ChatMessage) error
		ListMessages(ctx context.Context, chatID uuid.UUID) ([]*model.ChatMessage, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
		DeleteProcessedBefore(ctx context.Context, days int) (int64, error)
	}
)
