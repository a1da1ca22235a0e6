package store

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/adelmas/galerie/internal/models"
)

// ErrPasswordRequired is returned when creating a user without a password.
var ErrPasswordRequired = errors.New("password is required")

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users { return &Users{db: db} }

// List returns a page of users newest-first plus the full table count.
func (s *Users) List(limit, offset int) ([]models.User, int64, error) {
	limit, offset = NormalizePage(limit, offset)
	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := s.db.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

func (s *Users) GetByID(id string) (*models.User, error) {
	var u models.User
	if err := s.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Users) FindByEmail(email string) (*models.User, error) {
	var u models.User
	if err := s.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user with a server-assigned id. The plaintext
// password is required and stored only as a bcrypt hash.
func (s *Users) Create(name, email, password string, role models.Role) (*models.User, error) {
	if strings.TrimSpace(password) == "" {
		return nil, ErrPasswordRequired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := models.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := s.db.Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UserPatch carries partial updates; nil fields keep their stored value.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Role     *models.Role
	Banned   *int
	Avatar   *string
}

// Update applies the patch with merge semantics. An empty or blank
// password means "no change"; a non-blank one is hashed before storage.
func (s *Users) Update(id string, patch UserPatch) (*models.User, error) {
	u, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Password != nil && strings.TrimSpace(*patch.Password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.Password = string(hash)
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.Banned != nil {
		u.Banned = *patch.Banned
	}
	if patch.Avatar != nil {
		u.Avatar = *patch.Avatar
	}
	if err := s.db.Save(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Users) Delete(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Stats is the payload of the stats view: totals exclude banned accounts.
type Stats struct {
	Total int64            `json:"total"`
	Roles map[string]int64 `json:"rolesCount"`
}

// Stats counts active (non-banned) users overall and per role.
func (s *Users) Stats() (*Stats, error) {
	var total int64
	if err := s.db.Model(&models.User{}).Where("banned = 0").Count(&total).Error; err != nil {
		return nil, err
	}
	var rows []struct {
		Role  string
		Count int64
	}
	if err := s.db.Model(&models.User{}).
		Select("role, COUNT(*) as count").
		Where("banned = 0").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	stats := &Stats{Total: total, Roles: make(map[string]int64, len(rows))}
	for _, r := range rows {
		stats.Roles[r.Role] = r.Count
	}
	return stats, nil
}
