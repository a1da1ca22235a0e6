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

type CarouselHandler struct {
	carousels *store.Carousels
	logs      *store.Logs
}

func NewCarouselHandler(carousels *store.Carousels, logs *store.Logs) *CarouselHandler {
	return &CarouselHandler{carousels: carousels, logs: logs}
}

func (h *CarouselHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if id := q.Get("id"); id != "" {
		c, err := h.carousels.GetByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				httpx.JSONError(w, http.StatusNotFound, "carousel_not_found", nil)
				return
			}
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_fetch_carousel", err.Error())
			return
		}
		httpx.JSONList(w, []models.Carousel{*c}, 1)
		return
	}
	limit, offset := pageParams(q.Get("limit"), q.Get("offset"))
	carousels, total, err := h.carousels.List(limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_carousels", err.Error())
		return
	}
	httpx.JSONList(w, carousels, total)
}

func (h *CarouselHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input struct {
		Title       string            `json:"title"`
		Description string            `json:"description"`
		Items       models.StringList `json:"items"`
		Folder      string            `json:"folder"`
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
	carousel, err := h.carousels.Create(&models.Carousel{
		Title:       input.Title,
		Description: input.Description,
		Items:       input.Items,
		UserID:      claims.UserID(),
		Folder:      input.Folder,
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "carousel_create_failed", err.Error())
		return
	}
	h.appendLog(claims.UserID(), "create_carousel", carousel.ID, carousel.Title, "")
	httpx.JSON(w, http.StatusCreated, carousel)
}

func (h *CarouselHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input struct {
		ID          string             `json:"id"`
		Title       *string            `json:"title"`
		Description *string            `json:"description"`
		Items       *models.StringList `json:"items"`
		Folder      *string            `json:"folder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.ID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_carousel_id", nil)
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
	updated, err := h.carousels.Update(input.ID, store.CarouselPatch{
		Title:       input.Title,
		Description: input.Description,
		Items:       input.Items,
		Folder:      input.Folder,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "carousel_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "carousel_update_failed", err.Error())
		return
	}
	h.appendLog(claims.UserID(), "update_carousel", updated.ID, updated.Title, "")
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *CarouselHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		httpx.JSONError(w, http.StatusBadRequest, "missing_carousel_id", nil)
		return
	}
	carousel, err := h.carousels.GetByID(input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "carousel_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_fetch_carousel", err.Error())
		return
	}
	if err := h.carousels.Delete(input.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "carousel_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "carousel_delete_failed", err.Error())
		return
	}
	h.appendLog(claims.UserID(), "delete_carousel", carousel.ID, carousel.Title, "")
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "carousel deleted"})
}

func (h *CarouselHandler) appendLog(actorID, action, targetID, targetName, details string) {
	if err := h.logs.Append(actorID, action, targetID, targetName, details); err != nil {
		logAppendFailed(err)
	}
}
