package store

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/adelmas/galerie/internal/db"
)

// testDB opens a fresh in-memory database named after the test so
// parallel tests never share state.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

// fakeRemover records removed paths instead of touching disk.
type fakeRemover struct {
	removed []string
	fail    error
}

func (f *fakeRemover) Remove(relPath string) error {
	if f.fail != nil {
		return f.fail
	}
	f.removed = append(f.removed, relPath)
	return nil
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 10, 0},
		{-5, -3, 10, 0},
		{50, 20, 50, 20},
		{500, 0, 100, 0},
	}
	for _, tt := range tests {
		limit, offset := NormalizePage(tt.limit, tt.offset)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Errorf("NormalizePage(%d, %d) = (%d, %d), want (%d, %d)",
				tt.limit, tt.offset, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}
