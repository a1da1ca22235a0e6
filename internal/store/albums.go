package store

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adelmas/galerie/internal/models"
)

type Albums struct {
	db    *gorm.DB
	files FileRemover
}

func NewAlbums(db *gorm.DB, files FileRemover) *Albums {
	return &Albums{db: db, files: files}
}

func (s *Albums) List(limit, offset int) ([]models.Album, int64, error) {
	limit, offset = NormalizePage(limit, offset)
	var total int64
	if err := s.db.Model(&models.Album{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var albums []models.Album
	err := s.db.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&albums).Error
	return albums, total, err
}

func (s *Albums) GetByID(id string) (*models.Album, error) {
	var a models.Album
	if err := s.db.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Albums) Create(a *models.Album) (*models.Album, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.MediaIDs == nil {
		a.MediaIDs = models.StringList{}
	}
	if err := s.db.Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// AlbumPatch carries partial updates; nil fields are kept.
type AlbumPatch struct {
	Title    *string
	MediaIDs *models.StringList
	Folder   *string
}

func (s *Albums) Update(id string, patch AlbumPatch) (*models.Album, error) {
	a, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.MediaIDs != nil {
		a.MediaIDs = *patch.MediaIDs
	}
	if patch.Folder != nil {
		a.Folder = *patch.Folder
	}
	if err := s.db.Save(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes dependent album_files rows first, then the album. The
// schema carries no cascade, so the order matters; the two statements are
// not wrapped in a transaction.
func (s *Albums) Delete(id string) error {
	if err := s.db.Where("album_id = ?", id).Delete(&models.AlbumFile{}).Error; err != nil {
		return err
	}
	res := s.db.Where("id = ?", id).Delete(&models.Album{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddFile attaches an uploaded file row to an album.
func (s *Albums) AddFile(albumID, filePath string) (*models.AlbumFile, error) {
	f := models.AlbumFile{
		ID:       uuid.NewString(),
		AlbumID:  albumID,
		FilePath: filePath,
	}
	if err := s.db.Create(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFiles returns the files of an album (or all album files when
// albumID is empty), newest-first, filtered to well-formed upload paths.
func (s *Albums) ListFiles(albumID string) ([]models.AlbumFile, error) {
	q := s.db.Model(&models.AlbumFile{}).Order("uploaded_at DESC, id DESC")
	if albumID != "" {
		q = q.Where("album_id = ?", albumID)
	}
	var files []models.AlbumFile
	if err := q.Find(&files).Error; err != nil {
		return nil, err
	}
	valid := files[:0]
	for _, f := range files {
		if validUploadPath(f.FilePath) {
			valid = append(valid, f)
		}
	}
	return valid, nil
}

// DeleteFile removes one album file: disk first, then the row.
func (s *Albums) DeleteFile(albumID, fileID string) error {
	var f models.AlbumFile
	if err := s.db.Where("id = ? AND album_id = ?", fileID, albumID).First(&f).Error; err != nil {
		return err
	}
	if err := s.files.Remove(f.FilePath); err != nil {
		return err
	}
	res := s.db.Where("id = ? AND album_id = ?", fileID, albumID).Delete(&models.AlbumFile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func validUploadPath(p string) bool {
	if !strings.HasPrefix(p, "/uploads/") {
		return false
	}
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".mp4", ".webm"} {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}
