package model

import (
	"time"

	"github.com/google/uuid"
)

// MedicalHistory is keyed one-to-one to a patient. Created automatically
// alongside the patient record with empty string fields, updated in place.
type MedicalHistory struct {
	ID                    uuid.UUID `json:"id" db:"id"`
	PatientID             uuid.UUID `json:"patient_id" db:"patient_id"`
	Allergies             string    `json:"allergies" db:"allergies"`
	PreexistingConditions string    `json:"preexisting_conditions" db:"preexisting_conditions"`
	Medications           string    `json:"medications" db:"medications"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateMedicalHistoryRequest struct {
	Allergies             *string `json:"allergies" binding:"omitempty,max=2000"`
	PreexistingConditions *string `json:"preexisting_conditions" binding:"omitempty,max=2000"`
	Medications           *string `json:"medications" binding:"omitempty,max=2000"`
}
