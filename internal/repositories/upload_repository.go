package repositories

import (
	"errors"

	"gorm.io/gorm"

	"portal_backend/internal/models"
)

var ErrUploadNotFound = errors.New("upload not found")

type UploadRepository interface {
	Create(db *gorm.DB, upload *models.Upload) error
	FindByID(db *gorm.DB, id string) (*models.Upload, error)
	FindByPath(db *gorm.DB, path string) (*models.Upload, error)
	ListByUser(db *gorm.DB, userID, usage string) ([]models.Upload, error)
	Delete(db *gorm.DB, id string) error
}

type uploadRepository struct{}

func NewUploadRepository() UploadRepository {
	return &uploadRepository{}
}

func (r *uploadRepository) Create(db *gorm.DB, upload *models.Upload) error {
	return db.Create(upload).Error
}

func (r *uploadRepository) FindByID(db *gorm.DB, id string) (*models.Upload, error) {
	return r.findOne(db, "id = ?", id)
}

func (r *uploadRepository) FindByPath(db *gorm.DB, path string) (*models.Upload, error) {
	return r.findOne(db, "path = ? OR thumbnail_path = ?", path, path)
}

func (r *uploadRepository) findOne(db *gorm.DB, query string, args ...interface{}) (*models.Upload, error) {
	var upload models.Upload
	if err := db.Where(query, args...).First(&upload).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}
	return &upload, nil
}

func (r *uploadRepository) ListByUser(db *gorm.DB, userID, usage string) ([]models.Upload, error) {
	query := db.Where("user_id = ?", userID)
	if usage != "" {
		// struct condition so the column name gets quoted (USAGE is reserved in MySQL)
		query = query.Where(&models.Upload{Usage: usage})
	}
	var uploads []models.Upload
	err := query.Order("created_at DESC").Find(&uploads).Error
	return uploads, err
}

func (r *uploadRepository) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Upload{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUploadNotFound
	}
	return nil
}
