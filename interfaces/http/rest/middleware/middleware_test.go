package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ShabiDHM/advocatus-sub001/pkg/auth"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

type observation struct {
	method, route, status string
}

type fakeRecorder struct {
	seen []observation
}

func (f *fakeRecorder) ObserveHTTP(method, route, status string, _ time.Duration) {
	f.seen = append(f.seen, observation{method, route, status})
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	rec := &fakeRecorder{}
	r := chi.NewRouter()
	r.Use(Metrics(rec))
	r.Get("/cases/{caseID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cases/case-123", nil))

	require.Len(t, rec.seen, 1)
	assert.Equal(t, observation{"GET", "/cases/{caseID}", "418"}, rec.seen[0])
}

func TestLogger_LogsEveryRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.Equal(t, int64(2), entries[0].ContextMap()["bytes"])
}

func TestAuthenticate(t *testing.T) {
	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: "secret", Issuer: "evidence-map"})
	require.NoError(t, err)
	token, err := validator.GenerateToken("user-1", "u@example.com", nil)
	require.NoError(t, err)

	var seenUser string
	h := Authenticate(validator, pkgerrors.NewErrorHandler(zap.NewNop(), false), zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.GetUserFromContext(r.Context())
			require.NoError(t, err)
			seenUser = user.UserID
		}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/c/evidence-map", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
	assert.Equal(t, "user-1", seenUser)
}

func TestAuthenticate_DisabledPassesThrough(t *testing.T) {
	called := false
	h := Authenticate(nil, nil, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}
