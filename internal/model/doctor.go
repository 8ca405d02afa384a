package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WeekSchedule maps a weekday name to the doctor's working time ranges for
// that day, e.g. {"monday": ["08:00-12:00", "14:00-18:00"]}.
type WeekSchedule map[string][]string

func (s WeekSchedule) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

func (s *WeekSchedule) Scan(value interface{}) error {
	if value == nil {
		*s = WeekSchedule{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for WeekSchedule: %T", value)
	}
	return json.Unmarshal(b, s)
}

// Doctor is the role-specialization record for a user with the doctor role.
// It shares the user's id. LicenseNumber is globally unique.
type Doctor struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	Specialty     string       `json:"specialty" db:"specialty"`
	LicenseNumber string       `json:"license_number" db:"license_number"`
	Schedule      WeekSchedule `json:"availability_schedule" db:"schedule"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// DoctorProfile joins the specialization record with its base identity for
// directory listings.
type DoctorProfile struct {
	Doctor
	Name    string `json:"name" db:"name"`
	Surname string `json:"surname" db:"surname"`
	Email   string `json:"email" db:"email"`
}

type UpdateScheduleRequest struct {
	Schedule WeekSchedule `json:"availability_schedule" binding:"required"`
}
