package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient is the role-specialization record for a user with the patient role.
// It shares the user's id.
type Patient struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	BirthDate *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	Gender    *string    `json:"gender,omitempty" db:"gender"`
	Address   *string    `json:"address,omitempty" db:"address"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

type UpdatePatientRequest struct {
	BirthDate *time.Time `json:"birth_date"`
	Gender    *string    `json:"gender" binding:"omitempty,oneof=male female other"`
	Address   *string    `json:"address" binding:"omitempty,max=255"`
}
