package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pocket/internal/gateway"
)

// envelope is the uniform response body. Warning carries a persistence
// failure on a response whose mutation already succeeded in memory.
type envelope struct {
	Data    any    `json:"data,omitempty"`
	Warning string `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, envelope{Error: err.Error()})
}

// writeMutation maps a store mutation result onto the wire. A storage
// failure is not a request failure: the state changed in memory, so the
// client gets the data plus a warning.
func writeMutation(w http.ResponseWriter, status int, data any, err error) {
	if err == nil {
		writeJSON(w, status, envelope{Data: data})
		return
	}

	var se *gateway.StorageError
	if errors.As(err, &se) {
		writeJSON(w, status, envelope{Data: data, Warning: se.Error()})
		return
	}

	writeError(w, http.StatusBadRequest, err)
}

func isStorageWarning(err error) bool {
	var se *gateway.StorageError
	return errors.As(err, &se)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// parseYearMonth reads year and month query parameters, defaulting to
// the current month. January is 1.
func parseYearMonth(r *http.Request) (year, month int) {
	now := time.Now()
	year = now.Year()
	month = int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}
	return year, month
}
