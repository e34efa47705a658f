package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/eventledger/internal/ledger"
	"github.com/dukerupert/eventledger/internal/schedule"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeLedgerError maps ledger outcomes to responses. Deterministic outcomes
// are passed through with their message; anything else is logged and hidden.
func writeLedgerError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var clash *schedule.ClashError
	switch {
	case errors.As(err, &clash):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    err.Error(),
			"conflict": clash.Conflict,
		})
	case errors.Is(err, schedule.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, schedule.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "event not found")
	case errors.Is(err, schedule.ErrCapacity):
		writeMessage(w, http.StatusConflict, "event is full")
	case errors.Is(err, ledger.ErrPersistence):
		logger.Error("ledger persistence", "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "could not save changes, try again")
	default:
		logger.Error("ledger operation", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}
