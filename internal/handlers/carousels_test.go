package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adelmas/galerie/internal/models"
	"github.com/adelmas/galerie/internal/store"
)

func TestCarouselCreateAndMergeUpdate(t *testing.T) {
	conn := testDB(t)
	carousels := store.NewCarousels(conn)
	users := store.NewUsers(conn)
	h := NewCarouselHandler(carousels, store.NewLogs(conn))
	root := mustCreateUser(t, users, "root", models.RoleSuperadmin)

	r := asUser(httptest.NewRequest(http.MethodPost, "/carousels",
		strings.NewReader(`{"title":"Home","description":"landing page","items":["m1","m2"]}`)), root)
	w := httptest.NewRecorder()
	h.Create(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	list, total, err := carousels.List(10, 0)
	if err != nil || total != 1 {
		t.Fatalf("list total=%d err=%v", total, err)
	}
	c := list[0]
	if c.UserID != root.ID || len(c.Items) != 2 {
		t.Errorf("carousel = %+v", c)
	}

	r = asUser(httptest.NewRequest(http.MethodPut, "/carousels",
		strings.NewReader(`{"id":"`+c.ID+`","items":["m2"]}`)), root)
	w = httptest.NewRecorder()
	h.Update(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}
	got, err := carousels.GetByID(c.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Title != "Home" || got.Description != "landing page" || len(got.Items) != 1 {
		t.Errorf("merge wrong: %+v", got)
	}
}
