package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/adelmas/galerie/auth"
	"github.com/adelmas/galerie/httpx"
	"github.com/adelmas/galerie/internal/store"
	"github.com/adelmas/galerie/validation"
)

type LogHandler struct {
	logs *store.Logs
}

func NewLogHandler(logs *store.Logs) *LogHandler {
	return &LogHandler{logs: logs}
}

func (h *LogHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := pageParams(q.Get("limit"), q.Get("offset"))
	entries, total, err := h.logs.List(limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_logs", err.Error())
		return
	}
	httpx.JSONList(w, entries, total)
}

// Create appends a client-reported action. The actor is always the
// session user; a userId in the body is ignored.
func (h *LogHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input struct {
		Action     string `json:"action"`
		TargetID   string `json:"target_id"`
		TargetName string `json:"target_name"`
		Details    string `json:"details"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("action", input.Action, v)
	validation.MaxLen("action", input.Action, 64, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.logs.Append(claims.UserID(), input.Action, input.TargetID, input.TargetName, input.Details); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "log_append_failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"message": "log recorded"})
}
