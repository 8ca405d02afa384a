package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediassist/patient-api/internal/model"
	"github.com/mediassist/patient-api/internal/repository"
	"github.com/mediassist/patient-api/internal/service/event"
	"github.com/mediassist/patient-api/pkg/auth"
	apperrors "github.com/mediassist/patient-api/pkg/errors"
	"github.com/mediassist/patient-api/pkg/security"
)

const EventUserRegistered = "user.registered"

// Service handles registration, login and account self-management.
type Service struct {
	userRepo    repository.UserRepository
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
	historyRepo repository.MedicalHistoryRepository
	hasher      security.PasswordHasher
	tokens      auth.TokenService
	events      event.Emitter
}

func NewService(
	userRepo repository.UserRepository,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	historyRepo repository.MedicalHistoryRepository,
	hasher security.PasswordHasher,
	tokens auth.TokenService,
	events event.Emitter,
) *Service {
	return &Service{
		userRepo:    userRepo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		historyRepo: historyRepo,
		hasher:      hasher,
		tokens:      tokens,
		events:      events,
	}
}

// Register creates the identity plus its role-specialization records. Patients
// also get an empty medical history; doctors require a specialty and a
// globally unique license number.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Surname:      req.Surname,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         req.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	switch req.Role {
	case model.RolePatient:
		if err := s.patientRepo.Create(ctx, &model.Patient{ID: user.ID}); err != nil {
			return nil, err
		}
		history := &model.MedicalHistory{
			ID:        uuid.New(),
			PatientID: user.ID,
		}
		if err := s.historyRepo.Create(ctx, history); err != nil {
			return nil, err
		}
	case model.RoleDoctor:
		doctor := &model.Doctor{
			ID:            user.ID,
			Specialty:     req.Specialty,
			LicenseNumber: req.LicenseNumber,
			Schedule:      model.WeekSchedule{},
		}
		if err := s.doctorRepo.Create(ctx, doctor); err != nil {
			return nil, err
		}
	}

	s.events.Emit(ctx, EventUserRegistered,
		[]string{event.UserChannel(user.ID)},
		&model.UserEvent{UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role})

	token, err := s.tokens.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password both fail with the same message.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthenticated("invalid email or password")
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthenticated("invalid email or password")
	}

	token, err := s.tokens.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.AuthResponse{Token: token, User: user}, nil
}

// GetProfile returns the caller's own identity record.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.userRepo.Get(ctx, userID)
}

// UpdateProfile applies the non-nil fields to the caller's identity record.
// Email and role are immutable.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Surname != nil {
		user.Surname = *req.Surname
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetPatientProfile returns the caller's demographic record.
func (s *Service) GetPatientProfile(ctx context.Context, patientID uuid.UUID) (*model.Patient, error) {
	return s.patientRepo.Get(ctx, patientID)
}

// UpdatePatientProfile applies the non-nil demographic fields.
func (s *Service) UpdatePatientProfile(ctx context.Context, patientID uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if req.BirthDate != nil {
		patient.BirthDate = req.BirthDate
	}
	if req.Gender != nil {
		patient.Gender = req.Gender
	}
	if req.Address != nil {
		patient.Address = req.Address
	}

	if err := s.patientRepo.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *model.ChangePasswordRequest) error {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		return apperrors.Unauthenticated("current password is incorrect")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, userID, hash)
}
