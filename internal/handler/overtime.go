package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jvanwell/taskbank/internal/auth"
	"github.com/jvanwell/taskbank/internal/ledger"
	"github.com/jvanwell/taskbank/internal/model"
	"github.com/jvanwell/taskbank/internal/notify"
	"github.com/jvanwell/taskbank/internal/store"
	"github.com/jvanwell/taskbank/internal/websocket"
)

type OvertimeHandler struct {
	overtimeStore *store.OvertimeStore
	notifier      *notify.Service
	hub           *websocket.Hub
}

func NewOvertimeHandler(os *store.OvertimeStore, n *notify.Service, hub *websocket.Hub) *OvertimeHandler {
	return &OvertimeHandler{overtimeStore: os, notifier: n, hub: hub}
}

func (h *OvertimeHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type overtimeRequest struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
	Comment string `json:"comment"`
	IsAdd   bool   `json:"is_add"`
}

// ledgerView bundles a person's entries with the derived balance.
type ledgerView struct {
	Username string                `json:"username"`
	Entries  []model.OvertimeEntry `json:"entries"`
	Totals   model.OvertimeTotals  `json:"totals"`
}

// targetUsername resolves which person's ledger a request addresses.
// Assistants may only touch their own; managers may name anyone.
func targetUsername(r *http.Request) (string, bool) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		return "", false
	}

	requested := r.PathValue("username")
	if requested == "" || requested == ac.Username {
		return ac.Username, true
	}
	if ac.Role == model.RoleManager {
		return requested, true
	}
	return "", false
}

// Log appends a new entry to the caller's ledger. All field violations are
// reported together so the client can show every problem at once.
func (h *OvertimeHandler) Log(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req overtimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Comment = strings.TrimSpace(req.Comment)

	if err := ledger.ValidateEntry(req.Date, req.Minutes, req.Comment, time.Now()); err != nil {
		var ve *ledger.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": ve.Errors,
			})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.overtimeStore.Append(ac.Username, req.Date, req.Minutes, req.Comment, req.IsAdd, time.Now())
	if err != nil {
		log.Printf("failed to log overtime: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to log overtime")
		return
	}

	if h.notifier != nil && ac.Role != model.RoleManager {
		h.notifier.OvertimeLogged(entry)
	}

	h.broadcast(websocket.NewMessage("overtime", "logged", entry.ID, map[string]any{"username": ac.Username}))

	writeJSON(w, http.StatusCreated, entry)
}

// EditLatest replaces the caller's most recent entry. Older entries are
// immutable; targeting one is rejected with a conflict.
func (h *OvertimeHandler) EditLatest(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req struct {
		overtimeRequest
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Comment = strings.TrimSpace(req.Comment)

	entries, err := h.overtimeStore.EntriesByUsername(ac.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load ledger")
		return
	}

	if err := ledger.CheckEditTarget(entries, req.Timestamp); err != nil {
		switch {
		case errors.Is(err, ledger.ErrNoEntries):
			writeError(w, http.StatusNotFound, "no entries to edit")
		case errors.Is(err, ledger.ErrNotLatest):
			writeError(w, http.StatusConflict, "only the most recent entry can be edited")
		default:
			writeError(w, http.StatusInternalServerError, "failed to check entry")
		}
		return
	}

	if err := ledger.ValidateEntry(req.Date, req.Minutes, req.Comment, time.Now()); err != nil {
		var ve *ledger.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": ve.Errors,
			})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.overtimeStore.ReplaceLatest(ac.Username, req.Timestamp, req.Date, req.Minutes, req.Comment, req.IsAdd)
	if err != nil {
		log.Printf("failed to edit overtime entry: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to edit entry")
		return
	}
	if entry == nil {
		// The targeted entry disappeared between the check and the update.
		writeError(w, http.StatusConflict, "only the most recent entry can be edited")
		return
	}

	h.broadcast(websocket.NewMessage("overtime", "edited", entry.ID, map[string]any{"username": ac.Username}))

	writeJSON(w, http.StatusOK, entry)
}

// Ledger returns one person's entries oldest first plus the derived totals.
func (h *OvertimeHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	username, ok := targetUsername(r)
	if !ok {
		writeError(w, http.StatusForbidden, "cannot view another person's ledger")
		return
	}

	entries, err := h.overtimeStore.EntriesByUsername(username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load ledger")
		return
	}
	if entries == nil {
		entries = []model.OvertimeEntry{}
	}

	writeJSON(w, http.StatusOK, ledgerView{
		Username: username,
		Entries:  entries,
		Totals:   ledger.Totals(entries),
	})
}

// Overview returns every person's totals. Manager only.
func (h *OvertimeHandler) Overview(w http.ResponseWriter, r *http.Request) {
	usernames, err := h.overtimeStore.Usernames()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load ledgers")
		return
	}

	views := make([]ledgerView, 0, len(usernames))
	for _, username := range usernames {
		entries, err := h.overtimeStore.EntriesByUsername(username)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load ledgers")
			return
		}
		views = append(views, ledgerView{
			Username: username,
			Entries:  entries,
			Totals:   ledger.Totals(entries),
		})
	}

	writeJSON(w, http.StatusOK, views)
}
