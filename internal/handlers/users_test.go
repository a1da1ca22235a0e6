package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adelmas/galerie/internal/models"
	"github.com/adelmas/galerie/internal/store"
)

func newUserHandler(t *testing.T) (*UserHandler, *store.Users, *store.Logs) {
	t.Helper()
	conn := testDB(t)
	users := store.NewUsers(conn)
	logs := store.NewLogs(conn)
	return NewUserHandler(users, logs), users, logs
}

func TestCreateUserReturns201WithoutPassword(t *testing.T) {
	h, users, _ := newUserHandler(t)
	admin := mustCreateUser(t, users, "root", models.RoleSuperadmin)

	r := asUser(httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"name":"A","email":"a@x.com","password":"secret1","role":"user"}`)), admin)
	w := httptest.NewRecorder()
	h.Create(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var created models.User
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Role != models.RoleUser {
		t.Errorf("created = %+v", created)
	}
	if strings.Contains(w.Body.String(), "secret1") || strings.Contains(w.Body.String(), "password") {
		t.Errorf("password material in response: %s", w.Body.String())
	}
}

func TestCreateUserAdminCannotCreateAdmin(t *testing.T) {
	h, users, _ := newUserHandler(t)
	admin := mustCreateUser(t, users, "adm", models.RoleAdmin)

	r := asUser(httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"name":"B","email":"b@x.com","password":"secret1","role":"admin"}`)), admin)
	w := httptest.NewRecorder()
	h.Create(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if !strings.Contains(w.Body.String(), "admins can only create users with the user role") {
		t.Errorf("denial reason missing: %s", w.Body.String())
	}
}

func TestUpdateUserAdminCannotBanAdmin(t *testing.T) {
	h, users, _ := newUserHandler(t)
	admin := mustCreateUser(t, users, "adm", models.RoleAdmin)
	other := mustCreateUser(t, users, "adm2", models.RoleAdmin)

	r := asUser(httptest.NewRequest(http.MethodPut, "/users",
		strings.NewReader(`{"id":"`+other.ID+`","banned":1}`)), admin)
	w := httptest.NewRecorder()
	h.Update(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	got, err := users.GetByID(other.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Banned != 0 {
		t.Error("ban applied despite denial")
	}
}

func TestUpdateUserEmptyPatchIsNoOp(t *testing.T) {
	h, users, _ := newUserHandler(t)
	root := mustCreateUser(t, users, "root", models.RoleSuperadmin)
	target := mustCreateUser(t, users, "ada", models.RoleUser)

	r := asUser(httptest.NewRequest(http.MethodPut, "/users",
		strings.NewReader(`{"id":"`+target.ID+`"}`)), root)
	w := httptest.NewRecorder()
	h.Update(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	got, err := users.GetByID(target.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Name != target.Name || got.Email != target.Email || got.Password != target.Password ||
		got.Role != target.Role || got.Banned != target.Banned {
		t.Errorf("empty patch mutated the row: before %+v after %+v", target, got)
	}
}

func TestUpdateUserBlankPasswordKeepsHash(t *testing.T) {
	h, users, _ := newUserHandler(t)
	root := mustCreateUser(t, users, "root", models.RoleSuperadmin)
	target := mustCreateUser(t, users, "ada", models.RoleUser)

	r := asUser(httptest.NewRequest(http.MethodPut, "/users",
		strings.NewReader(`{"id":"`+target.ID+`","password":""}`)), root)
	w := httptest.NewRecorder()
	h.Update(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	got, err := users.GetByID(target.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Password != target.Password {
		t.Error("blank password replaced the stored hash")
	}
}

func TestDeleteUserSelfDenied(t *testing.T) {
	h, users, _ := newUserHandler(t)
	root := mustCreateUser(t, users, "root", models.RoleSuperadmin)

	r := asUser(httptest.NewRequest(http.MethodDelete, "/users",
		strings.NewReader(`{"id":"`+root.ID+`"}`)), root)
	w := httptest.NewRecorder()
	h.Delete(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "cannot target self") {
		t.Errorf("denial reason missing: %s", w.Body.String())
	}
}

func TestDeleteUserLogsAction(t *testing.T) {
	h, users, logs := newUserHandler(t)
	root := mustCreateUser(t, users, "root", models.RoleSuperadmin)
	target := mustCreateUser(t, users, "ada", models.RoleUser)

	r := asUser(httptest.NewRequest(http.MethodDelete, "/users",
		strings.NewReader(`{"id":"`+target.ID+`"}`)), root)
	w := httptest.NewRecorder()
	h.Delete(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	entries, _, err := logs.List(10, 0)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Action == "delete_user" && e.TargetID == target.ID && e.UserID == root.ID {
			found = true
			if e.TargetName != "ada" {
				t.Errorf("target name = %q", e.TargetName)
			}
		}
	}
	if !found {
		t.Errorf("delete_user entry missing: %+v", entries)
	}
}

func TestGetUsersPlainUserCannotList(t *testing.T) {
	h, users, _ := newUserHandler(t)
	u := mustCreateUser(t, users, "ada", models.RoleUser)

	r := asUser(httptest.NewRequest(http.MethodGet, "/users", nil), u)
	w := httptest.NewRecorder()
	h.Get(w, r)
	if w.Code != http.StatusForbidden {
		t.Fatalf("list status = %d, want 403", w.Code)
	}

	// but they may fetch their own record
	r = asUser(httptest.NewRequest(http.MethodGet, "/users?id="+u.ID, nil), u)
	w = httptest.NewRecorder()
	h.Get(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("self fetch status = %d, body %s", w.Code, w.Body.String())
	}

	other := mustCreateUser(t, users, "bob", models.RoleUser)
	r = asUser(httptest.NewRequest(http.MethodGet, "/users?id="+other.ID, nil), u)
	w = httptest.NewRecorder()
	h.Get(w, r)
	if w.Code != http.StatusForbidden {
		t.Fatalf("other fetch status = %d, want 403", w.Code)
	}
}

func TestGetUsersStats(t *testing.T) {
	h, users, _ := newUserHandler(t)
	root := mustCreateUser(t, users, "root", models.RoleSuperadmin)
	mustCreateUser(t, users, "ada", models.RoleUser)

	r := asUser(httptest.NewRequest(http.MethodGet, "/users?type=stats", nil), root)
	w := httptest.NewRecorder()
	h.Get(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var stats struct {
		Total int64            `json:"total"`
		Roles map[string]int64 `json:"rolesCount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Total != 2 || stats.Roles["user"] != 1 || stats.Roles["superadmin"] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
