package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adelmas/galerie/internal/models"
)

type Media struct {
	db    *gorm.DB
	files FileRemover
}

func NewMedia(db *gorm.DB, files FileRemover) *Media {
	return &Media{db: db, files: files}
}

func (s *Media) List(limit, offset int) ([]models.Media, int64, error) {
	limit, offset = NormalizePage(limit, offset)
	var total int64
	if err := s.db.Model(&models.Media{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var media []models.Media
	err := s.db.Order("uploaded_at DESC, id DESC").Limit(limit).Offset(offset).Find(&media).Error
	return media, total, err
}

func (s *Media) GetByID(id string) (*models.Media, error) {
	var m models.Media
	if err := s.db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a media row with a server-assigned id. The file itself is
// written by the upload handler before the row exists.
func (s *Media) Create(m *models.Media) (*models.Media, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Tags == nil {
		m.Tags = models.StringList{}
	}
	if err := s.db.Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// MediaPatch carries partial metadata updates; nil fields are kept.
type MediaPatch struct {
	Folder      *string
	Tags        *models.StringList
	Description *string
}

func (s *Media) Update(id string, patch MediaPatch) (*models.Media, error) {
	m, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if patch.Folder != nil {
		m.Folder = *patch.Folder
	}
	if patch.Tags != nil {
		m.Tags = *patch.Tags
	}
	if patch.Description != nil {
		m.Description = *patch.Description
	}
	if err := s.db.Save(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes the backing file first, then the row, so a failure never
// leaves a row pointing at a file that was already reclaimed. A crash
// between the two steps can leave an orphaned row; there is no
// transaction spanning disk and database.
func (s *Media) Delete(id string) error {
	m, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.files.Remove(m.FilePath); err != nil {
		return err
	}
	res := s.db.Where("id = ?", id).Delete(&models.Media{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Resolve maps media ids to rows, silently skipping ids that no longer
// exist. Order of the input ids is preserved.
func (s *Media) Resolve(ids []string) ([]models.Media, error) {
	if len(ids) == 0 {
		return []models.Media{}, nil
	}
	var rows []models.Media
	if err := s.db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.Media, len(rows))
	for _, m := range rows {
		byID[m.ID] = m
	}
	out := make([]models.Media, 0, len(rows))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}
