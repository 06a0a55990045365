package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"patient-care-api/internal/apperr"
	"patient-care-api/internal/medication"
	"patient-care-api/internal/scheduler"
)

func TestToAppError(t *testing.T) {
	t.Run("sentinel", func(t *testing.T) {
		ae := toAppError(fmt.Errorf("book: %w", scheduler.ErrSlotConflict))
		assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)
		assert.Equal(t, "This slot is already booked for this doctor", ae.Message)
	})

	t.Run("capitalized sentinel message", func(t *testing.T) {
		ae := toAppError(medication.ErrMissingFields)
		assert.Equal(t, "Name, dosage and time are required", ae.Message)
	})

	t.Run("app error passes through", func(t *testing.T) {
		in := apperr.BadRequest("Invalid request body", errors.New("unexpected EOF"))
		ae := toAppError(fmt.Errorf("decode: %w", in))
		assert.Same(t, in, ae)
	})

	t.Run("unknown error is internal", func(t *testing.T) {
		cause := errors.New("connection reset")
		ae := toAppError(cause)
		assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus)
		assert.Equal(t, "Server Error", ae.Message)
		assert.ErrorIs(t, ae, cause)
	})
}
