package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusRequested AppointmentStatus = "requested"
	AppointmentStatusAccepted  AppointmentStatus = "accepted"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCanceled  AppointmentStatus = "canceled"
)

// transitions is the appointment state machine adjacency graph. Rejected,
// completed and canceled are terminal.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusRequested: {AppointmentStatusAccepted, AppointmentStatusRejected, AppointmentStatusCanceled},
	AppointmentStatusAccepted:  {AppointmentStatusCompleted, AppointmentStatusCanceled},
}

// CanTransition reports whether the state machine permits moving from one
// status to another.
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether s is a known appointment status.
func IsValidStatus(s AppointmentStatus) bool {
	switch s {
	case AppointmentStatusRequested, AppointmentStatusAccepted,
		AppointmentStatusRejected, AppointmentStatusCompleted, AppointmentStatusCanceled:
		return true
	}
	return false
}

// Appointment is never deleted; terminal states are retained for audit.
// StartTime and EndTime are wall-clock times of day in "HH:MM" form.
type Appointment struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	PatientID uuid.UUID         `json:"patient_id" db:"patient_id"`
	DoctorID  uuid.UUID         `json:"doctor_id" db:"doctor_id"`
	Date      time.Time         `json:"date" db:"date"`
	StartTime string            `json:"start_time" db:"start_time"`
	EndTime   string            `json:"end_time" db:"end_time"`
	Status    AppointmentStatus `json:"status" db:"status"`
	Reason    string            `json:"reason,omitempty" db:"reason"`
	Notes     string            `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

type CreateAppointmentRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	Date      string    `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime string    `json:"start_time" binding:"required,datetime=15:04"`
	EndTime   string    `json:"end_time" binding:"required,datetime=15:04,gtfield=StartTime"`
	Reason    string    `json:"reason" binding:"max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=requested accepted rejected completed canceled"`
	Notes  *string           `json:"notes" binding:"omitempty,max=2000"`
}

// AppointmentEvent is the payload published on appointment lifecycle changes,
// addressed to both participant channels.
type AppointmentEvent struct {
	AppointmentID uuid.UUID         `json:"appointment_id"`
	PatientID     uuid.UUID         `json:"patient_id"`
	DoctorID      uuid.UUID         `json:"doctor_id"`
	Status        AppointmentStatus `json:"status"`
	Message       string            `json:"message"`
}
