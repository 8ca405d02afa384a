package model

import (
	"github.com/google/uuid"
)

// Actor is the authenticated identity performing an operation, as carried by
// the bearer credential.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  Role
}
