package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"payoff/internal/auth"
	"payoff/internal/budget"
	"payoff/internal/core"
	"payoff/internal/log"
	"payoff/internal/projection"
	"payoff/internal/services"
	"payoff/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

var validationErrors = []error{
	core.ErrEmptyName,
	core.ErrNameTooLong,
	core.ErrInvalidAmount,
	core.ErrInvalidRate,
	core.ErrInvalidDebtKind,
	core.ErrInvalidIncomeKind,
	core.ErrInvalidRaises,
	core.ErrInvalidPercentage,
	core.ErrInvalidInstallments,
	core.ErrMissingFirstPayment,
	core.ErrInvalidCardLimit,
	core.ErrInvalidSavings,
	core.ErrInvalidStrategy,
	auth.ErrInvalidUsername,
	auth.ErrWeakPassword,
	budget.ErrNoDebts,
	budget.ErrNoIncome,
	budget.ErrNoExtraPower,
	projection.ErrHorizonExceeded,
	errBadDate,
}

// statusFor maps an error returned by a service to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadJSON), errors.Is(err, errBadID):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrUsernameTaken), errors.Is(err, storage.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, services.ErrExportUnavailable):
		return http.StatusServiceUnavailable
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

// writeError reports err to the client. Internal errors are logged and
// replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).
			ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldPath, r.URL.Path)
		msg = "internal error"
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="payoff"`)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
