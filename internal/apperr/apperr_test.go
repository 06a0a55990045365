package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAs(t *testing.T) {
	cause := errors.New("boom")

	ae := As(fmt.Errorf("wrapped: %w", NotFound("Appointment not found", cause)))
	assert.Equal(t, http.StatusNotFound, ae.HTTPStatus)
	assert.Equal(t, "Appointment not found", ae.Message)
	assert.ErrorIs(t, ae, cause)

	ae = As(cause)
	assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus)
	assert.Equal(t, "Server Error", ae.Message)
	assert.ErrorIs(t, ae, cause)
}

func TestError(t *testing.T) {
	assert.Equal(t, "nope", Forbidden("nope").Error())
	assert.Equal(t, "bad: x", BadRequest("bad", errors.New("x")).Error())
}
