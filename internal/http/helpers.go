package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"clubledger/internal/auth"
	"clubledger/internal/core"
)

var validate = validator.New()

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps domain errors onto HTTP statuses: validation 400,
// missing 404, duplicates 409, store outage 503, anything else 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Reason, Field: ve.Field})
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrConflict):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, core.ErrDependency):
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON parses the body into dst and runs struct tag validation.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return core.NewValidationError("body", "malformed JSON")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			return core.NewValidationError(field, "failed "+verrs[0].Tag()+" validation")
		}
		return core.NewValidationError("body", "invalid request")
	}
	return nil
}

// weekParam reads the week query parameter, accepting "weekNumber" with
// "week" as a shorthand alias.
func weekParam(r *http.Request) string {
	if v := strings.TrimSpace(r.URL.Query().Get("weekNumber")); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get("week"))
}

// weekYearParams reads optional weekNumber/year query parameters, defaulting
// to the engine's current week and year.
func (s *Server) weekYearParams(r *http.Request) (week, year int, err error) {
	week, year = s.engine.CurrentWeek()
	if v := weekParam(r); v != "" {
		week, err = strconv.Atoi(v)
		if err != nil || week < 1 {
			return 0, 0, core.NewValidationError("weekNumber", "must be a positive integer")
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil || year < 1000 || year > 9999 {
			return 0, 0, core.NewValidationError("year", "must be a four-digit year")
		}
	}
	return week, year, nil
}

// yearMonthParams reads the report query parameters. Year defaults to the
// current year; month 0 means no filter.
func (s *Server) yearMonthParams(r *http.Request) (year, month int, err error) {
	_, year = s.engine.CurrentWeek()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil || year < 1000 || year > 9999 {
			return 0, 0, core.NewValidationError("year", "must be a four-digit year")
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return 0, 0, core.NewValidationError("month", "must be between 1 and 12")
		}
	}
	return year, month, nil
}
