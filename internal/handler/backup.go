package handler

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/jvanwell/taskbank/internal/backup"
	"github.com/jvanwell/taskbank/internal/gate"
	"github.com/jvanwell/taskbank/internal/store"
)

type BackupHandler struct {
	manager     *backup.Manager
	backupStore *store.BackupStore
	gate        *gate.Service
}

func NewBackupHandler(m *backup.Manager, bs *store.BackupStore, g *gate.Service) *BackupHandler {
	return &BackupHandler{manager: m, backupStore: bs, gate: g}
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

func (h *BackupHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	id, err := h.manager.RunNow(r.Context())
	if err != nil {
		log.Printf("manual backup failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	runs, err := h.backupStore.List(50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	if runs == nil {
		runs = []store.BackupRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// Download streams the encrypted backup file for offline safekeeping.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	run, err := h.backupStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get backup")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "backup not found")
		return
	}

	body, err := h.manager.Download(r.Context(), run.ObjectKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to download backup")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", run.ObjectKey))
	if run.SizeBytes > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", run.SizeBytes))
	}
	io.Copy(w, body)
}

// Restore replaces the live database with a stored backup. It is gated like
// the reset flows: the caller must present a token issued for restore_backup.
// On success the process exits so it restarts on the restored file, and the
// client sees the connection drop.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if _, ok := verifyGate(w, r, h.gate, gate.ActionRestoreBackup); !ok {
		return
	}

	run, err := h.backupStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get backup")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "backup not found")
		return
	}

	if err := h.manager.Restore(r.Context(), run.ObjectKey); err != nil {
		log.Printf("restore failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to restore backup")
		return
	}

	// Restore exits the process on success, so this is not normally reached.
	w.WriteHeader(http.StatusAccepted)
}
