package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/adelmas/galerie/auth"
	"github.com/adelmas/galerie/httpx"
	"github.com/adelmas/galerie/internal/models"
	"github.com/adelmas/galerie/internal/policy"
	"github.com/adelmas/galerie/internal/store"
	"github.com/adelmas/galerie/validation"
)

type UserHandler struct {
	users *store.Users
	logs  *store.Logs
}

func NewUserHandler(users *store.Users, logs *store.Logs) *UserHandler {
	return &UserHandler{users: users, logs: logs}
}

// Get serves the list, single-user and stats views of /users.
// Listing and stats are reserved to admins and superadmins; a plain user
// may only fetch their own record (the profile page does).
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	q := r.URL.Query()

	if q.Get("type") == "stats" {
		if !isManager(claims.Role) {
			httpx.JSONError(w, http.StatusForbidden, "insufficient_permissions", nil)
			return
		}
		stats, err := h.users.Stats()
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_fetch_stats", err.Error())
			return
		}
		httpx.JSON(w, http.StatusOK, stats)
		return
	}

	if id := q.Get("id"); id != "" {
		if id != claims.UserID() && !isManager(claims.Role) {
			httpx.JSONError(w, http.StatusForbidden, "insufficient_permissions", nil)
			return
		}
		user, err := h.users.GetByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
				return
			}
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_fetch_user", err.Error())
			return
		}
		httpx.JSONList(w, []models.User{*user}, 1)
		return
	}

	if !isManager(claims.Role) {
		httpx.JSONError(w, http.StatusForbidden, "insufficient_permissions", nil)
		return
	}
	limit, offset := pageParams(q.Get("limit"), q.Get("offset"))
	users, total, err := h.users.List(limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_users", err.Error())
		return
	}
	httpx.JSONList(w, users, total)
}

// Create adds a user. The acting role constrains which roles may be
// created (admins only create plain users).
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.Role == "" {
		input.Role = string(models.RoleUser)
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	validation.Required("email", input.Email, v)
	validation.Required("password", input.Password, v)
	validation.Email("email", input.Email, v)
	validation.OneOf("role", input.Role, models.RoleNames, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	newRole := models.Role(input.Role)

	if err := policy.Decide(claims.Role, claims.UserID(), "", "", policy.ActionCreateUser, newRole); err != nil {
		writePolicyError(w, err)
		return
	}

	user, err := h.users.Create(input.Name, input.Email, input.Password, newRole)
	if err != nil {
		if isDuplicateErr(err) {
			httpx.JSONError(w, http.StatusBadRequest, "email_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "user_create_failed", err.Error())
		return
	}
	h.appendLog(claims.UserID(), "create_user", user.ID, user.Name, fmt.Sprintf("created with role %s", user.Role))
	httpx.JSON(w, http.StatusCreated, user)
}

// Update applies a partial user update. Which policy rule applies depends
// on what the payload changes: ban state, role, or plain profile fields.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input struct {
		ID       string  `json:"id"`
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Role     *string `json:"role"`
		Banned   *int    `json:"banned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.ID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_user_id", nil)
		return
	}
	target, err := h.users.GetByID(input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_fetch_user", err.Error())
		return
	}

	patch := store.UserPatch{Name: input.Name, Email: input.Email, Password: input.Password}
	var logActions []logIntent

	if input.Banned != nil && *input.Banned != target.Banned {
		if *input.Banned != 0 && *input.Banned != 1 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_banned_value", nil)
			return
		}
		action := policy.ActionBanUser
		logName := "ban_user"
		if *input.Banned == 0 {
			action = policy.ActionUnbanUser
			logName = "unban_user"
		}
		if err := policy.Decide(claims.Role, claims.UserID(), target.Role, target.ID, action, ""); err != nil {
			writePolicyError(w, err)
			return
		}
		patch.Banned = input.Banned
		logActions = append(logActions, logIntent{
			action:  logName,
			details: fmt.Sprintf("banned changed from %d to %d", target.Banned, *input.Banned),
		})
	}

	if input.Role != nil && models.Role(*input.Role) != target.Role {
		newRole := models.Role(*input.Role)
		if !newRole.Valid() {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_role", nil)
			return
		}
		if err := policy.Decide(claims.Role, claims.UserID(), target.Role, target.ID, policy.ActionChangeRole, newRole); err != nil {
			writePolicyError(w, err)
			return
		}
		patch.Role = &newRole
		logActions = append(logActions, logIntent{
			action:  "change_role_to_" + string(newRole),
			details: fmt.Sprintf("role changed from %q to %q", target.Role, newRole),
		})
	}

	if input.Name != nil || input.Email != nil || input.Password != nil {
		if err := policy.Decide(claims.Role, claims.UserID(), target.Role, target.ID, policy.ActionUpdateProfile, ""); err != nil {
			writePolicyError(w, err)
			return
		}
		if input.Email != nil {
			v := validation.Violations{}
			validation.Email("email", *input.Email, v)
			if !v.Empty() {
				httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
				return
			}
		}
		logActions = append(logActions, logIntent{action: "update_profile", details: profileDetails(target, input.Name, input.Password)})
	}

	updated, err := h.users.Update(input.ID, patch)
	if err != nil {
		if isDuplicateErr(err) {
			httpx.JSONError(w, http.StatusBadRequest, "email_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "user_update_failed", err.Error())
		return
	}
	for _, la := range logActions {
		h.appendLog(claims.UserID(), la.action, updated.ID, updated.Name, la.details)
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// Delete removes a user. Only superadmins may delete, and never
// themselves.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		httpx.JSONError(w, http.StatusBadRequest, "missing_user_id", nil)
		return
	}
	target, err := h.users.GetByID(input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_fetch_user", err.Error())
		return
	}
	if err := policy.Decide(claims.Role, claims.UserID(), target.Role, target.ID, policy.ActionDeleteUser, ""); err != nil {
		writePolicyError(w, err)
		return
	}
	if err := h.users.Delete(input.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "user_delete_failed", err.Error())
		return
	}
	h.appendLog(claims.UserID(), "delete_user", target.ID, target.Name, "user removed")
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

type logIntent struct {
	action  string
	details string
}

func (h *UserHandler) appendLog(actorID, action, targetID, targetName, details string) {
	if err := h.logs.Append(actorID, action, targetID, targetName, details); err != nil {
		logAppendFailed(err)
	}
}

// Logging must not fail the request it describes.
func logAppendFailed(err error) {
	log.Printf("log append failed: %v", err)
}

func profileDetails(before *models.User, name, password *string) string {
	parts := []string{}
	if name != nil && *name != before.Name {
		parts = append(parts, fmt.Sprintf("name changed from %q to %q", before.Name, *name))
	}
	if password != nil && strings.TrimSpace(*password) != "" {
		parts = append(parts, "password updated")
	}
	if len(parts) == 0 {
		return "profile updated"
	}
	return strings.Join(parts, ", ")
}

func isManager(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleSuperadmin
}

// writePolicyError surfaces role-policy denials verbatim with 403; other
// errors are internal.
func writePolicyError(w http.ResponseWriter, err error) {
	var deny *policy.DenyError
	if errors.As(err, &deny) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", deny.Reason)
		return
	}
	httpx.JSONError(w, http.StatusInternalServerError, "authorization_failed", err.Error())
}

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

func pageParams(limitStr, offsetStr string) (int, int) {
	limit, offset := 10, 0
	if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
		limit = n
	}
	if n, err := strconv.Atoi(offsetStr); err == nil && n >= 0 {
		offset = n
	}
	return limit, offset
}
