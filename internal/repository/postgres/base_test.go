package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	slotErr := &pq.Error{Code: uniqueViolation, Constraint: "appointments_active_slot_key"}

	t.Run("matches the named constraint", func(t *testing.T) {
		assert.True(t, isUniqueViolation(slotErr, "appointments_active_slot_key"))
	})

	t.Run("matches any constraint when unrestricted", func(t *testing.T) {
		assert.True(t, isUniqueViolation(slotErr, ""))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("failed to create appointment: %w", slotErr)
		assert.True(t, isUniqueViolation(wrapped, "appointments_active_slot_key"))
	})

	t.Run("other constraint does not match", func(t *testing.T) {
		assert.False(t, isUniqueViolation(slotErr, "users_email_key"))
	})

	t.Run("other pq code does not match", func(t *testing.T) {
		fkErr := &pq.Error{Code: "23503", Constraint: "appointments_doctor_id_fkey"}
		assert.False(t, isUniqueViolation(fkErr, ""))
	})

	t.Run("non-pq error does not match", func(t *testing.T) {
		assert.False(t, isUniqueViolation(errors.New("connection reset"), ""))
	})
}
