package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/venuepulse/ledger/internal/auth"
	"github.com/venuepulse/ledger/internal/calculator"
	"github.com/venuepulse/ledger/internal/service"
	"github.com/venuepulse/ledger/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError translates domain errors into HTTP statuses. Anything not
// matched is a 500 with the detail kept out of the response body.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, calculator.ErrInvalidAmount),
		errors.Is(err, service.ErrWrongPayeeKind),
		errors.Is(err, auth.ErrWeakPassword):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrPayeeNotFound), errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrNoPendingReferrals):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "nothing pending to pay out"})
	case errors.Is(err, service.ErrPayeeNotApproved):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrConcurrentModification):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "concurrent modification, retry the request"})
	case errors.Is(err, storage.ErrEmailExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrInsufficientPending):
		// Ledger desync. The store already rolled back; surface it loudly.
		slog.Error("Ledger integrity violation detected", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "ledger integrity check failed"})
	case errors.Is(err, service.ErrRailFailure):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "payout rail unavailable, retry later"})
	default:
		slog.Error("Unhandled request error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
