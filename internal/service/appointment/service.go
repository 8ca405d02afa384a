package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mediassist/patient-api/internal/model"
	"github.com/mediassist/patient-api/internal/repository"
	"github.com/mediassist/patient-api/internal/service/event"
	apperrors "github.com/mediassist/patient-api/pkg/errors"
)

const (
	EventAppointmentCreated       = "appointment.created"
	EventAppointmentStatusChanged = "appointment.status_changed"

	dateLayout = "2006-01-02"
)

// Service owns the appointment lifecycle: slot-conflict detection and
// role-gated state transitions.
type Service struct {
	repo        repository.AppointmentRepository
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
	events      event.Emitter
}

func NewService(
	repo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	events event.Emitter,
) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		events:      events,
	}
}

// Create books a new slot for the acting patient. The storage layer enforces
// slot uniqueness, so concurrent requests for the same slot cannot both
// succeed.
func (s *Service) Create(ctx context.Context, patientID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	exists, err := s.patientRepo.Exists(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check patient: %w", err)
	}
	if !exists {
		return nil, apperrors.NotFound("patient")
	}

	exists, err = s.doctorRepo.Exists(ctx, req.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check doctor: %w", err)
	}
	if !exists {
		return nil, apperrors.NotFound("doctor")
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, apperrors.Validation("invalid date", map[string]string{"date": "must be YYYY-MM-DD"})
	}

	apt := &model.Appointment{
		ID:        uuid.New(),
		PatientID: patientID,
		DoctorID:  req.DoctorID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    model.AppointmentStatusRequested,
		Reason:    req.Reason,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, err
	}

	s.events.Emit(ctx, EventAppointmentCreated,
		[]string{event.UserChannel(apt.PatientID), event.UserChannel(apt.DoctorID)},
		&model.AppointmentEvent{
			AppointmentID: apt.ID,
			PatientID:     apt.PatientID,
			DoctorID:      apt.DoctorID,
			Status:        apt.Status,
			Message:       "appointment requested",
		})

	return apt, nil
}

// UpdateStatus applies a role-gated state transition. Doctors may set any
// reachable status on their own appointments; patients may only cancel their
// own. Notes are applied only when the actor is the assigned doctor.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, actor *model.Actor, req *model.UpdateAppointmentStatusRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeStatusChange(apt, actor, req.Status); err != nil {
		return nil, err
	}

	if !model.CanTransition(apt.Status, req.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf(
			"cannot change appointment from %s to %s", apt.Status, req.Status))
	}

	notes := req.Notes
	if actor.Role != model.RoleDoctor {
		// Non-doctor-supplied notes are dropped, not erroring.
		notes = nil
	}

	if err := s.repo.UpdateStatus(ctx, id, apt.Status, req.Status, notes); err != nil {
		return nil, err
	}

	apt.Status = req.Status
	if notes != nil {
		apt.Notes = *notes
	}

	s.events.Emit(ctx, EventAppointmentStatusChanged,
		[]string{event.UserChannel(apt.PatientID), event.UserChannel(apt.DoctorID)},
		&model.AppointmentEvent{
			AppointmentID: apt.ID,
			PatientID:     apt.PatientID,
			DoctorID:      apt.DoctorID,
			Status:        apt.Status,
			Message:       fmt.Sprintf("appointment %s", apt.Status),
		})

	return apt, nil
}

func (s *Service) authorizeStatusChange(apt *model.Appointment, actor *model.Actor, status model.AppointmentStatus) error {
	switch actor.Role {
	case model.RoleDoctor:
		if apt.DoctorID != actor.ID {
			return apperrors.Forbidden("you do not have permission to update this appointment")
		}
	case model.RolePatient:
		if apt.PatientID != actor.ID {
			return apperrors.Forbidden("you do not have permission to update this appointment")
		}
		if status != model.AppointmentStatusCanceled {
			return apperrors.Forbidden("patients may only cancel appointments")
		}
	default:
		return apperrors.Forbidden("you do not have permission to update this appointment")
	}
	return nil
}

// Get returns the appointment details to one of its participants.
func (s *Service) Get(ctx context.Context, id uuid.UUID, actor *model.Actor) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if apt.PatientID != actor.ID && apt.DoctorID != actor.ID {
		return nil, apperrors.Forbidden("you do not have permission to view this appointment")
	}
	return apt, nil
}

// ListForActor returns the caller's own appointments, sorted by date
// descending then start time ascending.
func (s *Service) ListForActor(ctx context.Context, actor *model.Actor) ([]*model.Appointment, error) {
	if actor.Role == model.RoleDoctor {
		return s.repo.ListByDoctor(ctx, actor.ID)
	}
	return s.repo.ListByPatient(ctx, actor.ID)
}
