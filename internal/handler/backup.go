package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/eventledger/internal/backup"
)

// BackupRunner is the part of the backup manager the API drives.
type BackupRunner interface {
	RunNow(ctx context.Context) (string, error)
	Status() backup.Status
}

type BackupHandler struct {
	runner BackupRunner
	logger *slog.Logger
}

func NewBackupHandler(b BackupRunner, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{runner: b, logger: logger}
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.runner.Status())
}

func (h *BackupHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	path, err := h.runner.RunNow(r.Context())
	if errors.Is(err, backup.ErrDisabled) {
		writeMessage(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("backup failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "backup failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"file": path})
}
