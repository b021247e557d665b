package repositories

import (
	"errors"

	"gorm.io/gorm"

	"portal_backend/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	FindByUserID(db *gorm.DB, userID string) (*models.Profile, error)
	Save(db *gorm.DB, profile *models.Profile) error
}

type profileRepository struct{}

func NewProfileRepository() ProfileRepository {
	return &profileRepository{}
}

func (r *profileRepository) FindByUserID(db *gorm.DB, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Save inserts the profile when it has no id yet, otherwise updates every column.
func (r *profileRepository) Save(db *gorm.DB, profile *models.Profile) error {
	if profile.ID == "" {
		return db.Create(profile).Error
	}
	return db.Save(profile).Error
}
