package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/adelmas/galerie/internal/models"
)

// Logs is the append-only action trail. Rows are never updated or
// deleted; reads join the users table for the actor's current name.
type Logs struct {
	db *gorm.DB
}

func NewLogs(db *gorm.DB) *Logs { return &Logs{db: db} }

// Append records one action. targetID, targetName and details may be
// empty.
func (s *Logs) Append(userID, action, targetID, targetName, details string) error {
	entry := models.Log{
		UserID:     userID,
		Action:     action,
		TargetID:   targetID,
		TargetName: targetName,
		Timestamp:  time.Now().Unix(),
		Details:    details,
	}
	return s.db.Create(&entry).Error
}

// List returns a page of entries newest-first with the actor's current
// name joined in, plus the full count.
func (s *Logs) List(limit, offset int) ([]models.LogEntry, int64, error) {
	limit, offset = NormalizePage(limit, offset)
	var total int64
	if err := s.db.Model(&models.Log{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var entries []models.LogEntry
	err := s.db.Table("logs").
		Select("logs.*, users.name AS user_name").
		Joins("JOIN users ON users.id = logs.user_id").
		Order("logs.timestamp DESC, logs.id DESC").
		Limit(limit).Offset(offset).
		Scan(&entries).Error
	if entries == nil {
		entries = []models.LogEntry{}
	}
	return entries, total, err
}
