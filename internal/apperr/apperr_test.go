package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("create teacher: %w", Conflictf("username %q is taken", "amy"))
	assert.Equal(t, Conflict, KindOf(err))
	assert.True(t, Is(err, Conflict))
	assert.Equal(t, `username "amy" is taken`, MessageOf(err))
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
}

func TestForeignErrorsAreStorage(t *testing.T) {
	err := errors.New("pq: connection reset")
	assert.Equal(t, Storage, KindOf(err))
	assert.Equal(t, "internal storage error", MessageOf(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
	assert.False(t, Is(nil, Storage))
}

func TestStorageErrHidesDetail(t *testing.T) {
	cause := errors.New("driver: bad connection")
	err := StorageErr(cause)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, MessageOf(err), "driver")
}

func TestHTTPStatusTable(t *testing.T) {
	cases := map[Kind]int{
		Validation:      http.StatusBadRequest,
		Conflict:        http.StatusConflict,
		NotFound:        http.StatusNotFound,
		Permission:      http.StatusForbidden,
		Unauthenticated: http.StatusUnauthorized,
		Storage:         http.StatusInternalServerError,
	}
	for kind, want := range cases {
		t.Run(kind.String(), func(t *testing.T) {
			assert.Equal(t, want, HTTPStatus(&Error{Kind: kind, Message: "x"}))
		})
	}
}
