package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWrap_KeepsTypeAndSentinel(t *testing.T) {
	err := Wrapf(ErrNodeNotFound, "open edit for %s", "n1")

	assert.True(t, errors.Is(err, ErrNodeNotFound))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, GetAppError(err).HTTPStatus)
	assert.Contains(t, GetAppError(err).Message, "open edit for n1")
}

func TestWrap_PlainError(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, "save failed")

	assert.True(t, IsType(err, ErrorTypeInternal))
	assert.True(t, errors.Is(err, cause))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestErrorHandler_AppError(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	h.Handle(rec, req, fmt.Errorf("query handler failed: %w", ErrEditInProgress))

	require.Equal(t, http.StatusConflict, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Error)
	assert.Equal(t, "CONFLICT", body.Type)
	assert.Equal(t, "EDIT_IN_PROGRESS", body.Code)
}

func TestErrorHandler_UnknownErrorHidesMessage(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)
	rec := httptest.NewRecorder()

	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("secret detail"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestErrorHandler_RecoversPanics(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), true)
	rec := httptest.NewRecorder()

	h.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "panic: boom")
}
