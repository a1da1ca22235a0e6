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

type AlbumHandler struct {
	albums *store.Albums
	media  *store.Media
	logs   *store.Logs
}

func NewAlbumHandler(albums *store.Albums, media *store.Media, logs *store.Logs) *AlbumHandler {
	return &AlbumHandler{albums: albums, media: media, logs: logs}
}

// albumWithMedia is the single-album view: the stored id list resolved to
// media rows. Ids pointing at deleted media are dropped silently.
type albumWithMedia struct {
	models.Album
	Media []models.Media `json:"media"`
}

func (h *AlbumHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if id := q.Get("id"); id != "" {
		a, err := h.albums.GetByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				httpx.JSONError(w, http.StatusNotFound, "album_not_found", nil)
				return
			}
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_fetch_album", err.Error())
			return
		}
		media, err := h.media.Resolve(a.MediaIDs)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_resolve_media", err.Error())
			return
		}
		httpx.JSONList(w, []albumWithMedia{{Album: *a, Media: media}}, 1)
		return
	}
	limit, offset := pageParams(q.Get("limit"), q.Get("offset"))
	albums, total, err := h.albums.List(limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_albums", err.Error())
		return
	}
	httpx.JSONList(w, albums, total)
}

func (h *AlbumHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input struct {
		Title    string            `json:"title"`
		MediaIDs models.StringList `json:"media_ids"`
		Folder   string            `json:"folder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("title", input.Title, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	album, err := h.albums.Create(&models.Album{
		UserID:   claims.UserID(),
		Title:    input.Title,
		MediaIDs: input.MediaIDs,
		Folder:   input.Folder,
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "album_create_failed", err.Error())
		return
	}
	h.appendLog(claims.UserID(), "create_album", album.ID, album.Title, "")
	httpx.JSON(w, http.StatusCreated, album)
}

func (h *AlbumHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input struct {
		ID       string             `json:"id"`
		Title    *string            `json:"title"`
		MediaIDs *models.StringList `json:"media_ids"`
		Folder   *string            `json:"folder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.ID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_album_id", nil)
		return
	}
	if input.Title != nil {
		v := validation.Violations{}
		validation.Required("title", *input.Title, v)
		if !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
	}
	updated, err := h.albums.Update(input.ID, store.AlbumPatch{
		Title:    input.Title,
		MediaIDs: input.MediaIDs,
		Folder:   input.Folder,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "album_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "album_update_failed", err.Error())
		return
	}
	h.appendLog(claims.UserID(), "update_album", updated.ID, updated.Title, "")
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *AlbumHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		httpx.JSONError(w, http.StatusBadRequest, "missing_album_id", nil)
		return
	}
	album, err := h.albums.GetByID(input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "album_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_fetch_album", err.Error())
		return
	}
	if err := h.albums.Delete(input.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "album_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "album_delete_failed", err.Error())
		return
	}
	h.appendLog(claims.UserID(), "delete_album", album.ID, album.Title, "album and file rows removed")
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "album deleted"})
}

// Files lists the uploaded files of one album, or of all albums when
// albumId is absent.
func (h *AlbumHandler) Files(w http.ResponseWriter, r *http.Request) {
	files, err := h.albums.ListFiles(r.URL.Query().Get("albumId"))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_album_files", err.Error())
		return
	}
	httpx.JSONList(w, files, int64(len(files)))
}

// DeleteFile removes one uploaded file from an album, disk first.
func (h *AlbumHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input struct {
		AlbumID string `json:"albumId"`
		FileID  string `json:"fileId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.AlbumID == "" || input.FileID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_album_file_id", nil)
		return
	}
	if err := h.albums.DeleteFile(input.AlbumID, input.FileID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "album_file_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "album_file_delete_failed", err.Error())
		return
	}
	h.appendLog(claims.UserID(), "delete_album_file", input.FileID, "", "removed from album "+input.AlbumID)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "album file deleted"})
}

func (h *AlbumHandler) appendLog(actorID, action, targetID, targetName, details string) {
	if err := h.logs.Append(actorID, action, targetID, targetName, details); err != nil {
		logAppendFailed(err)
	}
}
