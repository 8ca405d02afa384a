package medical

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediassist/patient-api/internal/model"
	"github.com/mediassist/patient-api/internal/repository"
	apperrors "github.com/mediassist/patient-api/pkg/errors"
)

// Service exposes the per-patient medical history record. Patients see and
// edit only their own; doctors may read and amend any patient's history.
type Service struct {
	repo        repository.MedicalHistoryRepository
	patientRepo repository.PatientRepository
}

func NewService(repo repository.MedicalHistoryRepository, patientRepo repository.PatientRepository) *Service {
	return &Service{repo: repo, patientRepo: patientRepo}
}

// GetOwn returns the caller's history.
func (s *Service) GetOwn(ctx context.Context, patientID uuid.UUID) (*model.MedicalHistory, error) {
	return s.repo.GetByPatient(ctx, patientID)
}

// GetByPatient returns a patient's history to a doctor.
func (s *Service) GetByPatient(ctx context.Context, patientID uuid.UUID, actor *model.Actor) (*model.MedicalHistory, error) {
	if actor.Role != model.RoleDoctor {
		return nil, apperrors.Forbidden("only doctors may view patient histories")
	}

	exists, err := s.patientRepo.Exists(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NotFound("patient")
	}
	return s.repo.GetByPatient(ctx, patientID)
}

// Update applies the non-nil fields to the caller's history in place.
func (s *Service) Update(ctx context.Context, patientID uuid.UUID, req *model.UpdateMedicalHistoryRequest) (*model.MedicalHistory, error) {
	history, err := s.repo.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	s.apply(history, req)

	if err := s.repo.Update(ctx, history); err != nil {
		return nil, err
	}
	return history, nil
}

// UpdateForPatient lets the treating doctor amend a patient's history after
// a consultation. Patients can only edit their own record through Update.
func (s *Service) UpdateForPatient(ctx context.Context, patientID uuid.UUID, actor *model.Actor, req *model.UpdateMedicalHistoryRequest) (*model.MedicalHistory, error) {
	if actor.Role != model.RoleDoctor {
		return nil, apperrors.Forbidden("only doctors may update patient histories")
	}

	exists, err := s.patientRepo.Exists(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NotFound("patient")
	}

	history, err := s.repo.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	s.apply(history, req)

	if err := s.repo.Update(ctx, history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *Service) apply(history *model.MedicalHistory, req *model.UpdateMedicalHistoryRequest) {
	if req.Allergies != nil {
		history.Allergies = *req.Allergies
	}
	if req.PreexistingConditions != nil {
		history.PreexistingConditions = *req.PreexistingConditions
	}
	if req.Medications != nil {
		history.Medications = *req.Medications
	}
}
