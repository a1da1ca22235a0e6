package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList is an ordered list of strings stored as a JSON text column
// (media ids, carousel items, tags). Malformed stored values scan to an
// empty list rather than failing the whole row.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		*l = parseStringList(string(s))
		return nil
	case string:
		*l = parseStringList(s)
		return nil
	}
	return fmt.Errorf("cannot scan %T into StringList", src)
}

func parseStringList(raw string) StringList {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return StringList{}
	}
	var out []string
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return StringList{}
	}
	return out
}

// Media is one uploaded file plus its metadata. The backing file lives
// under the upload directory at FilePath.
type Media struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	FilePath    string     `gorm:"column:file_path;size:512;not null" json:"file_path"`
	Type        string     `gorm:"size:16;not null" json:"type"` // image | video
	UploadedAt  int64      `gorm:"column:uploaded_at;autoCreateTime" json:"uploaded_at"`
	UserID      string     `gorm:"column:user_id;size:36;index" json:"user_id"`
	Folder      string     `gorm:"column:associated_with;size:255" json:"folder,omitempty"`
	Description string     `json:"description,omitempty"`
	Tags        StringList `gorm:"type:text" json:"tags"`
}

// Album groups media by id. MediaIDs are loose references: an id may point
// to a media row that no longer exists and is skipped at resolution time.
type Album struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	UserID    string     `gorm:"column:user_id;size:36;index" json:"user_id"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	CreatedAt int64      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	MediaIDs  StringList `gorm:"column:media_ids;type:text" json:"media_ids"`
	Folder    string     `gorm:"column:associated_folder;size:255" json:"folder,omitempty"`
}

// AlbumFile is a per-file row attached to an album by the upload handler.
// Rows are removed before their parent album (no cascade in the schema).
type AlbumFile struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	AlbumID    string `gorm:"column:album_id;size:36;index;not null" json:"album_id"`
	FilePath   string `gorm:"column:file_path;size:512;not null" json:"file_path"`
	UploadedAt int64  `gorm:"column:uploaded_at;autoCreateTime" json:"uploaded_at"`
}

// Carousel is an ordered rotation of media ids.
type Carousel struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `json:"description,omitempty"`
	Items       StringList `gorm:"type:text" json:"items"`
	CreatedAt   int64      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   int64      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	UserID      string     `gorm:"column:user_id;size:36;index" json:"user_id"`
	Folder      string     `gorm:"column:associated_folder;size:255" json:"folder,omitempty"`
}

// Log is one append-only action record. Rows are never updated or deleted.
type Log struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     string `gorm:"column:user_id;size:36;not null;index" json:"user_id"`
	Action     string `gorm:"size:64;not null" json:"action"`
	TargetID   string `gorm:"column:target_id;size:36" json:"target_id,omitempty"`
	TargetName string `gorm:"column:target_name;size:255" json:"target_name,omitempty"`
	Timestamp  int64  `gorm:"not null" json:"timestamp"`
	Details    string `json:"details,omitempty"`
}

// LogEntry is a log row joined with the actor's current name for display.
type LogEntry struct {
	Log
	UserName string `json:"user_name"`
}
