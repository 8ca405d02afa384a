package doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediassist/patient-api/internal/model"
	"github.com/mediassist/patient-api/internal/repository"
)

// Service exposes the doctor directory and availability schedules.
type Service struct {
	repo repository.DoctorRepository
}

func NewService(repo repository.DoctorRepository) *Service {
	return &Service{repo: repo}
}

// List returns all doctors joined with their identity records.
func (s *Service) List(ctx context.Context) ([]*model.DoctorProfile, error) {
	return s.repo.List(ctx)
}

// Get returns one doctor's directory profile.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	return s.repo.GetProfile(ctx, id)
}

// UpdateSchedule replaces the caller's weekly availability.
func (s *Service) UpdateSchedule(ctx context.Context, doctorID uuid.UUID, req *model.UpdateScheduleRequest) (*model.Doctor, error) {
	if err := s.repo.UpdateSchedule(ctx, doctorID, req.Schedule); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, doctorID)
}
