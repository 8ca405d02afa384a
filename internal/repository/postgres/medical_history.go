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

type medicalHistoryRepository struct {
	BaseRepository
}

func NewMedicalHistoryRepository(db *sqlx.DB) repository.MedicalHistoryRepository {
	return &medicalHistoryRepository{NewBaseRepository(db)}
}

func (r *medicalHistoryRepository) Create(ctx context.Context, history *model.MedicalHistory) error {
	query := `
		INSERT INTO medical_histories (
			id, patient_id, allergies, preexisting_conditions, medications,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	history.ID = uuid.New()
	history.CreatedAt = time.Now()
	history.UpdatedAt = history.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		history.ID,
		history.PatientID,
		history.Allergies,
		history.PreexistingConditions,
		history.Medications,
		history.CreatedAt,
		history.UpdatedAt,
	)
	if err != nil {
		// At most one history per patient, enforced by uniqueness on patient_id.
		if isUniqueViolation(err, "medical_histories_patient_id_key") {
			return apperrors.Conflict("medical history already exists for patient")
		}
		return fmt.Errorf("failed to create medical history: %w", err)
	}
	return nil
}

func (r *medicalHistoryRepository) GetByPatient(ctx context.Context, patientID uuid.UUID) (*model.MedicalHistory, error) {
	query := `
		SELECT id, patient_id, allergies, preexisting_conditions, medications,
			   created_at, updated_at
		FROM medical_histories
		WHERE patient_id = $1
	`
	var history model.MedicalHistory
	err := r.db.GetContext(ctx, &history, query, patientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("medical history")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medical history: %w", err)
	}
	return &history, nil
}

func (r *medicalHistoryRepository) Update(ctx context.Context, history *model.MedicalHistory) error {
	query := `
		UPDATE medical_histories
		SET allergies = $1, preexisting_conditions = $2, medications = $3, updated_at = $4
		WHERE patient_id = $5
	`
	history.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		history.Allergies,
		history.PreexistingConditions,
		history.Medications,
		history.UpdatedAt,
		history.PatientID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medical history: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("medical history")
	}
	return nil
}
