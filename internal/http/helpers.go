package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"celengan/internal/core"
)

// errorResponse is the uniform error body for the API.
type errorResponse struct {
	Error         string `json:"error"`
	Field         string `json:"field,omitempty"`
	RemainingDays int    `json:"remaining_days,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode response", "error", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses:
// validation 422, auth 401, conflicts and broken rules 409, unknown
// targets 404, everything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *core.ValidationError
		cerr *core.ConflictError
		aerr *core.AuthError
		derr *core.DomainError
	)

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Reason, Field: verr.Field})
	case errors.As(err, &cerr):
		writeJSON(w, http.StatusConflict, errorResponse{Error: cerr.Error()})
	case errors.As(err, &aerr):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: aerr.Reason})
	case errors.Is(err, core.ErrTargetNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrTargetRequired):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.As(err, &derr):
		// Covers cooldown, completed targets and empty balances.
		writeJSON(w, http.StatusConflict, errorResponse{Error: derr.Reason, RemainingDays: derr.RemainingDays})
	default:
		slog.ErrorContext(r.Context(), "Internal error", "error", err, "url", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// decodeJSON reads a small JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

// currentAccount resolves the session cookie to an account, writing a
// 401 when there is none.
func (s *Server) currentAccount(w http.ResponseWriter, r *http.Request) (*core.Account, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not logged in"})
		return nil, false
	}
	account, err := s.accounts.Authenticate(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return account, true
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}
