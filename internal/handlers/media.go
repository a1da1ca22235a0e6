package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/adelmas/galerie/auth"
	"github.com/adelmas/galerie/httpx"
	"github.com/adelmas/galerie/internal/models"
	"github.com/adelmas/galerie/internal/store"
	"github.com/adelmas/galerie/validation"
)

type MediaHandler struct {
	media *store.Media
	logs  *store.Logs
}

func NewMediaHandler(media *store.Media, logs *store.Logs) *MediaHandler {
	return &MediaHandler{media: media, logs: logs}
}

func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if id := q.Get("id"); id != "" {
		m, err := h.media.GetByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				httpx.JSONError(w, http.StatusNotFound, "media_not_found", nil)
				return
			}
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_fetch_media", err.Error())
			return
		}
		httpx.JSONList(w, []models.Media{*m}, 1)
		return
	}
	limit, offset := pageParams(q.Get("limit"), q.Get("offset"))
	media, total, err := h.media.List(limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_media", err.Error())
		return
	}
	httpx.JSONList(w, media, total)
}

// Create registers a media row for a file that already lives under the
// upload prefix (the upload handler does this itself for new bytes).
func (h *MediaHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input struct {
		FilePath    string            `json:"file_path"`
		Type        string            `json:"type"`
		Folder      string            `json:"folder"`
		Description string            `json:"description"`
		Tags        models.StringList `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("file_path", input.FilePath, v)
	validation.Required("type", input.Type, v)
	validation.OneOf("type", input.Type, []string{"image", "video"}, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	created, err := h.media.Create(&models.Media{
		FilePath:    input.FilePath,
		Type:        input.Type,
		UserID:      claims.UserID(),
		Folder:      input.Folder,
		Description: input.Description,
		Tags:        input.Tags,
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "media_create_failed", err.Error())
		return
	}
	h.appendLog(claims.UserID(), "create_media", created.ID, created.FilePath, "")
	httpx.JSON(w, http.StatusCreated, created)
}

// Update edits media metadata only. The file itself and its type are
// fixed at upload time.
func (h *MediaHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input struct {
		ID          string             `json:"id"`
		Folder      *string            `json:"folder"`
		Tags        *models.StringList `json:"tags"`
		Description *string            `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.ID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_media_id", nil)
		return
	}
	updated, err := h.media.Update(input.ID, store.MediaPatch{
		Folder:      input.Folder,
		Tags:        input.Tags,
		Description: input.Description,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "media_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "media_update_failed", err.Error())
		return
	}
	h.appendLog(claims.UserID(), "update_media", updated.ID, updated.FilePath, "metadata updated")
	httpx.JSON(w, http.StatusOK, updated)
}

// Delete removes a media file and its row. Only the uploader may delete
// it; a superadmin may delete anyone's.
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.ID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_media_id", nil)
		return
	}
	m, err := h.media.GetByID(input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "media_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_fetch_media", err.Error())
		return
	}
	if m.UserID != claims.UserID() && claims.Role != models.RoleSuperadmin {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", "you can only delete media you uploaded")
		return
	}
	if err := h.media.Delete(input.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "media_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "media_delete_failed", err.Error())
		return
	}
	h.appendLog(claims.UserID(), "delete_media", m.ID, m.FilePath, "file and row removed")
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "media deleted"})
}

func (h *MediaHandler) appendLog(actorID, action, targetID, targetName, details string) {
	if err := h.logs.Append(actorID, action, targetID, targetName, details); err != nil {
		logAppendFailed(err)
	}
}
