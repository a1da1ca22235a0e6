package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adelmas/galerie/internal/models"
)

type Carousels struct {
	db *gorm.DB
}

func NewCarousels(db *gorm.DB) *Carousels { return &Carousels{db: db} }

func (s *Carousels) List(limit, offset int) ([]models.Carousel, int64, error) {
	limit, offset = NormalizePage(limit, offset)
	var total int64
	if err := s.db.Model(&models.Carousel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var carousels []models.Carousel
	err := s.db.Order("updated_at DESC, id DESC").Limit(limit).Offset(offset).Find(&carousels).Error
	return carousels, total, err
}

func (s *Carousels) GetByID(id string) (*models.Carousel, error) {
	var c models.Carousel
	if err := s.db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Carousels) Create(c *models.Carousel) (*models.Carousel, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Items == nil {
		c.Items = models.StringList{}
	}
	if err := s.db.Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// CarouselPatch carries partial updates; nil fields are kept.
type CarouselPatch struct {
	Title       *string
	Description *string
	Items       *models.StringList
	Folder      *string
}

func (s *Carousels) Update(id string, patch CarouselPatch) (*models.Carousel, error) {
	c, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Items != nil {
		c.Items = *patch.Items
	}
	if patch.Folder != nil {
		c.Folder = *patch.Folder
	}
	if err := s.db.Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Carousels) Delete(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.Carousel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
