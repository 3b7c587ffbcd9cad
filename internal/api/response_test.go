package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestWriters(t *testing.T) {
	notice := domain.NoticeNoNearbyFound

	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		check  func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name:   "json",
			write:  func(w http.ResponseWriter) { JSON(w, http.StatusOK, map[string]string{"key": "value"}) },
			status: http.StatusOK,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, "value", decodeBody[map[string]string](t, w)["key"])
			},
		},
		{
			name:   "json without body",
			write:  func(w http.ResponseWriter) { JSON(w, http.StatusNoContent, nil) },
			status: http.StatusNoContent,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Empty(t, w.Body.String())
			},
		},
		{
			name:   "success wraps data",
			write:  func(w http.ResponseWriter) { Success(w, http.StatusCreated, []string{"국밥"}) },
			status: http.StatusCreated,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				body := decodeBody[SuccessResponse](t, w)
				assert.Equal(t, []interface{}{"국밥"}, body.Data)
				assert.Nil(t, body.Notice)
			},
		},
		{
			name:   "success with notice",
			write:  func(w http.ResponseWriter) { SuccessWithNotice(w, http.StatusOK, []string{}, &notice) },
			status: http.StatusOK,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				body := decodeBody[SuccessResponse](t, w)
				require.NotNil(t, body.Notice)
				assert.Equal(t, domain.NoticeNoNearby, body.Notice.Kind)
			},
		},
		{
			name:   "plain error",
			write:  func(w http.ResponseWriter) { Error(w, http.StatusBadRequest, "invalid input") },
			status: http.StatusBadRequest,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				body := decodeBody[ErrorResponse](t, w)
				assert.Equal(t, "invalid input", body.Error)
				assert.Empty(t, body.Code)
			},
		},
		{
			name: "coded error",
			write: func(w http.ResponseWriter) {
				ErrorWithCode(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "too big")
			},
			status: http.StatusRequestEntityTooLarge,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, "BODY_TOO_LARGE", decodeBody[ErrorResponse](t, w).Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			tt.check(t, w)
		})
	}
}

func TestDomainErrorToHTTP(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"nil":                {nil, http.StatusOK},
		"validation":         {domain.ErrEmptyQuery, http.StatusBadRequest},
		"wrapped validation": {fmt.Errorf("handler: %w", domain.ErrInvalidRadius), http.StatusBadRequest},
		"not found":          {domain.ErrCandidateNotFound, http.StatusNotFound},
		"frame not ready":    {domain.ErrFrameNotReady, http.StatusNotFound},
		"upstream":           {domain.ErrSearchFailed.WithCause(assert.AnError), http.StatusBadGateway},
		"location":           {domain.ErrLocationUnsupported, http.StatusServiceUnavailable},
		"location denied":    {domain.ErrLocationDenied, http.StatusServiceUnavailable},
		"internal":           {domain.NewDomainError(domain.ErrCodeInternalError, "internal"), http.StatusInternalServerError},
		"unknown code":       {domain.NewDomainError("UNKNOWN", "unknown"), http.StatusInternalServerError},
		"plain error":        {assert.AnError, http.StatusInternalServerError},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, DomainErrorToHTTP(tc.err))
		})
	}
}

func TestHandleError_CarriesCodeAndNotice(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, domain.ErrSearchFailed.WithCause(assert.AnError))

	require.Equal(t, http.StatusBadGateway, w.Code)
	body := decodeBody[ErrorResponse](t, w)
	assert.Contains(t, body.Error, "search request failed")
	assert.Equal(t, domain.ErrCodeExternalService, body.Code)
	require.NotNil(t, body.Notice)
	assert.Equal(t, domain.NoticeSearchFailed, body.Notice.Kind)
}
