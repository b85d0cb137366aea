package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	http.Error(w, msg, http.StatusBadRequest)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}

// Error writes err with the status matching its kind.
func Error(w http.ResponseWriter, msg string, err error) {
	switch bracket.Kind(err) {
	case bracket.KindInvalidArgument:
		BadRequest(w, err.Error(), err)
	case bracket.KindNotFound:
		NotFound(w, err.Error(), err)
	case bracket.KindConflictingState:
		slog.Warn("conflict", "message", msg, "error", err)
		http.Error(w, err.Error(), http.StatusConflict)
	case bracket.KindStorageUnavailable:
		slog.Error(msg, "error", err)
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
	default:
		InternalServerError(w, msg, err)
	}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
