package store

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/adelmas/galerie/internal/models"
)

func TestMediaDeleteRemovesFileFirst(t *testing.T) {
	remover := &fakeRemover{}
	media := NewMedia(testDB(t), remover)
	m, err := media.Create(&models.Media{FilePath: "/uploads/a.jpg", Type: "image", UserID: "u1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := media.Delete(m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(remover.removed) != 1 || remover.removed[0] != "/uploads/a.jpg" {
		t.Errorf("removed = %v", remover.removed)
	}
	if _, err := media.GetByID(m.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("row still present after delete: %v", err)
	}
	if err := media.Delete(m.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("second delete err = %v, want ErrRecordNotFound", err)
	}
}

func TestMediaDeleteKeepsRowWhenFileRemovalFails(t *testing.T) {
	remover := &fakeRemover{fail: errors.New("disk gone")}
	media := NewMedia(testDB(t), remover)
	m, err := media.Create(&models.Media{FilePath: "/uploads/a.jpg", Type: "image", UserID: "u1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := media.Delete(m.ID); err == nil {
		t.Fatal("delete succeeded despite file removal failure")
	}
	if _, err := media.GetByID(m.ID); err != nil {
		t.Errorf("row was deleted although the file was not: %v", err)
	}
}

func TestMediaResolveSkipsDangling(t *testing.T) {
	media := NewMedia(testDB(t), &fakeRemover{})
	m1, err := media.Create(&models.Media{FilePath: "/uploads/a.jpg", Type: "image", UserID: "u1"})
	if err != nil {
		t.Fatalf("create m1: %v", err)
	}
	m2, err := media.Create(&models.Media{FilePath: "/uploads/b.png", Type: "image", UserID: "u1"})
	if err != nil {
		t.Fatalf("create m2: %v", err)
	}

	got, err := media.Resolve([]string{m2.ID, "gone", m1.ID})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 2 || got[0].ID != m2.ID || got[1].ID != m1.ID {
		t.Errorf("resolve order/content wrong: %v", got)
	}

	empty, err := media.Resolve(nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("resolve(nil) = %v, %v", empty, err)
	}
}

func TestMediaUpdateMetadata(t *testing.T) {
	media := NewMedia(testDB(t), &fakeRemover{})
	m, err := media.Create(&models.Media{FilePath: "/uploads/a.jpg", Type: "image", UserID: "u1", Folder: "trips"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	tags := models.StringList{"sea", "summer"}
	desc := "beach"
	got, err := media.Update(m.ID, MediaPatch{Tags: &tags, Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Folder != "trips" {
		t.Error("folder changed by unrelated patch")
	}
	if len(got.Tags) != 2 || got.Description != "beach" {
		t.Errorf("patch not applied: %+v", got)
	}
}
