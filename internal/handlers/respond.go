package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bensuskins/nutrition-hub/internal/fooddata"
	"github.com/bensuskins/nutrition-hub/internal/services"
)

const (
	dateLayout   = "2006-01-02"
	defaultLimit = 50
	maxLimit     = 200
	maxBodyBytes = 1 << 20
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeError maps service errors onto HTTP statuses. Only unexpected errors
// are logged.
func writeError(w http.ResponseWriter, err error, action string) {
	var statusErr *fooddata.StatusError
	switch {
	case services.IsNotFound(err):
		writeMessage(w, http.StatusNotFound, "not found")
	case services.IsValidation(err):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &statusErr):
		slog.Warn(action, "service", statusErr.Service, "status", statusErr.StatusCode)
		writeMessage(w, http.StatusBadGateway, "upstream food database unavailable")
	default:
		slog.Error(action, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed "+action)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// pagination reads limit and offset, clamping limit to [1, maxLimit].
func pagination(r *http.Request) (int, int, error) {
	limit := defaultLimit
	offset := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return 0, 0, fmt.Errorf("invalid limit %q", raw)
		}
		limit = min(parsed, maxLimit)
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return 0, 0, fmt.Errorf("invalid offset %q", raw)
		}
		offset = parsed
	}
	return limit, offset, nil
}

func location(r *http.Request, fallback *time.Location) (*time.Location, error) {
	name := r.URL.Query().Get("tz")
	if name == "" {
		if fallback == nil {
			return time.UTC, nil
		}
		return fallback, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid tz %q", name)
	}
	return loc, nil
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return date, nil
}

func parseBool(raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean %q", raw)
	}
	return &value, nil
}

type listResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func newListResponse[T any](items []T, total int, limit int, offset int) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Total: total, Limit: limit, Offset: offset}
}
