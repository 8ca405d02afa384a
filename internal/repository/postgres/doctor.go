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

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{NewBaseRepository(db)}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (id, specialty, license_number, schedule, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = doctor.CreatedAt
	if doctor.Schedule == nil {
		doctor.Schedule = model.WeekSchedule{}
	}

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.Specialty,
		doctor.LicenseNumber,
		doctor.Schedule,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "doctors_license_number_key") {
			return apperrors.Conflict("license number is already registered")
		}
		if isUniqueViolation(err, "") {
			return apperrors.Conflict("doctor record already exists")
		}
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, specialty, license_number, schedule, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("doctor")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetProfile(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	query := `
		SELECT d.id, d.specialty, d.license_number, d.schedule,
			   d.created_at, d.updated_at,
			   u.name, u.surname, u.email
		FROM doctors d
		JOIN users u ON u.id = d.id
		WHERE d.id = $1
	`
	var profile model.DoctorProfile
	err := r.db.GetContext(ctx, &profile, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("doctor")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor profile: %w", err)
	}
	return &profile, nil
}

func (r *doctorRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM doctors WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check doctor existence: %w", err)
	}
	return exists, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.DoctorProfile, error) {
	query := `
		SELECT d.id, d.specialty, d.license_number, d.schedule,
			   d.created_at, d.updated_at,
			   u.name, u.surname, u.email
		FROM doctors d
		JOIN users u ON u.id = d.id
		ORDER BY u.surname ASC, u.name ASC
	`
	var profiles []*model.DoctorProfile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return profiles, nil
}

func (r *doctorRepository) UpdateSchedule(ctx context.Context, id uuid.UUID, schedule model.WeekSchedule) error {
	query := `
		UPDATE doctors
		SET schedule = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, schedule, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("doctor")
	}
	return nil
}
