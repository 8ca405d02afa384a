package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/mediassist/patient-api/pkg/errors"
)

// MinPasswordLen is the shortest password accepted at registration and on
// password change.
const MinPasswordLen = 8

// PasswordHasher hashes credentials at rest and verifies login attempts.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BcryptHasher is the production PasswordHasher. Hash rejects passwords
// shorter than MinPasswordLen with a field-level validation error, so
// callers can hand the result straight to the HTTP layer.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", apperrors.Validation("password too short", map[string]string{
			"password": fmt.Sprintf("must be at least %d characters", MinPasswordLen),
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("hash password: %w", err))
	}
	return string(hash), nil
}

// Compare returns a non-nil error when password does not match hash. The
// caller decides how the mismatch surfaces; login and password change use
// different messages.
func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
