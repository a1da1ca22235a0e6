package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adelmas/galerie/auth"
	"github.com/adelmas/galerie/httpx"
	"github.com/adelmas/galerie/internal/models"
	"github.com/adelmas/galerie/internal/store"
)

// FileSaver writes validated upload bytes under a generated name and
// returns the public relative path.
type FileSaver interface {
	Save(name string, data []byte) (string, error)
}

// allowedUploads maps accepted extensions to the sniffed content types
// they may carry.
var allowedUploads = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".mp4":  {"video/mp4", "application/octet-stream"},
	".webm": {"video/webm", "application/octet-stream"},
}

type UploadHandler struct {
	files    FileSaver
	media    *store.Media
	albums   *store.Albums
	users    *store.Users
	logs     *store.Logs
	maxBytes int64
}

func NewUploadHandler(files FileSaver, media *store.Media, albums *store.Albums, users *store.Users, logs *store.Logs, maxBytes int64) *UploadHandler {
	return &UploadHandler{files: files, media: media, albums: albums, users: users, logs: logs, maxBytes: maxBytes}
}

// checkedFile is one upload that passed validation and is ready to be
// written.
type checkedFile struct {
	name      string // generated stored name
	data      []byte
	mediaType string // image | video
}

// Post accepts one or more multipart files. Every file is validated
// before any file is written: one bad file fails the whole batch with
// nothing stored.
func (h *UploadHandler) Post(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_multipart_form", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	if userID := r.FormValue("userId"); userID != claims.UserID() {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", "userId must match the authenticated session")
		return
	}
	uploadType := r.FormValue("type")
	if uploadType == "" {
		uploadType = "media"
	}
	switch uploadType {
	case "avatar":
		// any authenticated user may replace their own avatar
	case "media", "album", "carousel":
		if !isManager(claims.Role) {
			httpx.JSONError(w, http.StatusForbidden, "insufficient_permissions", nil)
			return
		}
	default:
		httpx.JSONError(w, http.StatusBadRequest, "invalid_upload_type", nil)
		return
	}

	headers := r.MultipartForm.File["files"]
	headers = append(headers, r.MultipartForm.File["file"]...)
	if len(headers) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "no_files_provided", nil)
		return
	}
	if uploadType == "avatar" && len(headers) > 1 {
		httpx.JSONError(w, http.StatusBadRequest, "avatar_requires_single_file", nil)
		return
	}

	checked := make([]checkedFile, 0, len(headers))
	for _, fh := range headers {
		cf, err := h.checkFile(fh)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, uploadErrorCode(err), err.Error())
			return
		}
		checked = append(checked, cf)
	}

	paths := make([]string, 0, len(checked))
	for _, cf := range checked {
		path, err := h.files.Save(cf.name, cf.data)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "file_write_failed", err.Error())
			return
		}
		paths = append(paths, path)
	}

	switch uploadType {
	case "avatar":
		if err := h.recordAvatar(claims.UserID(), paths[0]); err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "avatar_update_failed", err.Error())
			return
		}
	case "album":
		if err := h.recordAlbumFiles(r, claims.UserID(), paths); err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "album_file_record_failed", err.Error())
			return
		}
	default: // media, carousel
		if err := h.recordMedia(r, claims.UserID(), checked, paths); err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "media_record_failed", err.Error())
			return
		}
	}

	h.appendLog(claims.UserID(), "upload_"+uploadType, "", "", fmt.Sprintf("%d file(s) stored", len(paths)))
	httpx.JSON(w, http.StatusCreated, map[string]any{"filePaths": paths})
}

// checkFile reads and validates one multipart file without writing
// anything. The stored name is generated here so the client filename
// only contributes its extension.
func (h *UploadHandler) checkFile(fh *multipart.FileHeader) (checkedFile, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	sniffable, ok := allowedUploads[ext]
	if !ok {
		return checkedFile{}, fmt.Errorf("unsupported file extension %q", ext)
	}
	f, err := fh.Open()
	if err != nil {
		return checkedFile{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return checkedFile{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > h.maxBytes {
		return checkedFile{}, errFileTooLarge
	}
	if len(data) == 0 {
		return checkedFile{}, errors.New("empty file")
	}
	sniffed := http.DetectContentType(data)
	if !contentTypeAllowed(sniffed, sniffable) {
		return checkedFile{}, fmt.Errorf("content type %q does not match extension %q", sniffed, ext)
	}
	mediaType := "image"
	if ext == ".mp4" || ext == ".webm" {
		mediaType = "video"
	}
	return checkedFile{name: uuid.NewString() + ext, data: data, mediaType: mediaType}, nil
}

var errFileTooLarge = errors.New("file exceeds the upload size limit")

func uploadErrorCode(err error) string {
	if errors.Is(err, errFileTooLarge) {
		return "file_too_large"
	}
	return "unsupported_file_type"
}

func contentTypeAllowed(sniffed string, allowed []string) bool {
	for _, a := range allowed {
		if strings.HasPrefix(sniffed, a) {
			return true
		}
	}
	return false
}

func (h *UploadHandler) recordAvatar(userID, path string) error {
	_, err := h.users.Update(userID, store.UserPatch{Avatar: &path})
	return err
}

// recordAlbumFiles attaches the stored paths to an album: the one named
// by albumId, or a new album created from the title field.
func (h *UploadHandler) recordAlbumFiles(r *http.Request, userID string, paths []string) error {
	albumID := r.FormValue("albumId")
	if albumID == "" {
		title := r.FormValue("title")
		if title == "" {
			title = "Untitled Album"
		}
		album, err := h.albums.Create(&models.Album{
			UserID: userID,
			Title:  title,
			Folder: r.FormValue("folder"),
		})
		if err != nil {
			return err
		}
		albumID = album.ID
	} else if _, err := h.albums.GetByID(albumID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("album %s not found", albumID)
		}
		return err
	}
	for _, p := range paths {
		if _, err := h.albums.AddFile(albumID, p); err != nil {
			return err
		}
	}
	return nil
}

func (h *UploadHandler) recordMedia(r *http.Request, userID string, checked []checkedFile, paths []string) error {
	folder := r.FormValue("folder")
	description := r.FormValue("description")
	tags := parseTags(r.FormValue("tags"))
	for i, cf := range checked {
		_, err := h.media.Create(&models.Media{
			FilePath:    paths[i],
			Type:        cf.mediaType,
			UserID:      userID,
			Folder:      folder,
			Description: description,
			Tags:        tags,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// parseTags accepts a JSON array or a comma-separated list; anything else
// yields no tags.
func parseTags(raw string) models.StringList {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.StringList{}
	}
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			return out
		}
		return models.StringList{}
	}
	parts := strings.Split(raw, ",")
	out := make(models.StringList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (h *UploadHandler) appendLog(actorID, action, targetID, targetName, details string) {
	if err := h.logs.Append(actorID, action, targetID, targetName, details); err != nil {
		logAppendFailed(err)
	}
}
