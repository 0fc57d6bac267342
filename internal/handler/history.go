package handler

import (
	"net/http"

	"github.com/jvanwell/taskbank/internal/model"
	"github.com/jvanwell/taskbank/internal/store"
)

type HistoryHandler struct {
	auditStore *store.AuditStore
}

func NewHistoryHandler(as *store.AuditStore) *HistoryHandler {
	return &HistoryHandler{auditStore: as}
}

// ListAll returns the full audit history, newest first.
func (h *HistoryHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	entries, err := h.auditStore.ListAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// ListByTask returns one task's history. Oldest first by default; pass
// ?order=desc for the newest-first view.
func (h *HistoryHandler) ListByTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var entries []model.AuditEntry
	switch r.URL.Query().Get("order") {
	case "", "asc":
		entries, err = h.auditStore.ListByTask(id)
	case "desc":
		entries, err = h.auditStore.ListByTaskRecentFirst(id)
	default:
		writeError(w, http.StatusBadRequest, "order must be asc or desc")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
