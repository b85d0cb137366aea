package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/bracketd/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(RequestLogger(logger, metrics.NewRecorder()))
	r.Get("/matches/{id}/games", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/matches/12/games", nil))
	require.Equal(t, http.StatusTeapot, w.Code)

	out := buf.String()
	assert.Contains(t, out, "request complete")
	assert.Contains(t, out, "route=/matches/{id}/games")
	assert.Contains(t, out, "path=/matches/12/games")
	assert.Contains(t, out, "status=418")
}

func TestRequestLoggerDefaultsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(RequestLogger(logger, nil))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Contains(t, buf.String(), "status=200")
}
