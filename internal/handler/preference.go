package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jvanwell/taskbank/internal/auth"
	"github.com/jvanwell/taskbank/internal/model"
	"github.com/jvanwell/taskbank/internal/store"
)

type PreferenceHandler struct {
	prefStore *store.PreferenceStore
	taskStore *store.TaskStore
}

func NewPreferenceHandler(ps *store.PreferenceStore, ts *store.TaskStore) *PreferenceHandler {
	return &PreferenceHandler{prefStore: ps, taskStore: ts}
}

// Set records how the caller feels about a task. Last write wins.
func (h *PreferenceHandler) Set(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	task, err := h.taskStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req struct {
		Preference string `json:"preference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	pref := model.TaskPreference(req.Preference)
	if !pref.Valid() {
		writeError(w, http.StatusBadRequest, "preference must be preferred, neutral or hated")
		return
	}

	if err := h.prefStore.Set(ac.Username, id, pref); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to set preference")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"task_id": id, "preference": pref})
}

// List returns the caller's preferences keyed by task id.
func (h *PreferenceHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	prefs, err := h.prefStore.ListByUsername(ac.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
