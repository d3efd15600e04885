package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("issue: %w", Conflict("certificate already exists"))

	assert.True(t, Is(err, KindConflict))
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
	assert.Equal(t, "certificate already exists", Message(err))
}

func TestStorageHidesCause(t *testing.T) {
	err := Storage(errors.New("dial tcp 10.0.0.1:5432: connection refused"))

	assert.True(t, Is(err, KindStorage))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
	assert.Equal(t, "Internal server error", Message(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestStorageKeepsTypedErrors(t *testing.T) {
	err := Storage(NotFound("Participant not found"))

	assert.True(t, Is(err, KindNotFound))
	assert.Nil(t, Storage(nil))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		Validation("x"):       http.StatusBadRequest,
		Precondition("x"):     http.StatusBadRequest,
		NotFound("x"):         http.StatusNotFound,
		errors.New("unknown"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
	}
}
