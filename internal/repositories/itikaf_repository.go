package repositories

import (
	"errors"

	"gorm.io/gorm"

	"portal_backend/internal/models"
)

var (
	ErrItikafEventNotFound = errors.New("itikaf event not found")
	ErrParticipantNotFound = errors.New("itikaf participant not found")
	ErrParticipantCodeUsed = errors.New("participant code already used")
)

type ItikafRepository interface {
	ListEvents(db *gorm.DB, orgID string) ([]models.ItikafEvent, error)
	ListAllEvents(db *gorm.DB) ([]models.ItikafEvent, error)
	FindEvent(db *gorm.DB, orgID, id string) (*models.ItikafEvent, error)
	CreateEvent(db *gorm.DB, event *models.ItikafEvent) error
	UpdateEvent(db *gorm.DB, event *models.ItikafEvent) error
	DeleteEvent(db *gorm.DB, orgID, id string) error

	ListParticipants(db *gorm.DB, eventID string) ([]models.ItikafParticipant, error)
	ListUnsynced(db *gorm.DB, eventID string) ([]models.ItikafParticipant, error)
	CountParticipants(db *gorm.DB, eventID string) (int64, error)
	FindParticipant(db *gorm.DB, eventID, id string) (*models.ItikafParticipant, error)
	FindParticipantByCode(db *gorm.DB, eventID, code string) (*models.ItikafParticipant, error)
	CreateParticipant(db *gorm.DB, p *models.ItikafParticipant) error
	DeleteParticipant(db *gorm.DB, eventID, id string) error
	MarkSynced(db *gorm.DB, ids []string) error
}

type itikafRepository struct{}

func NewItikafRepository() ItikafRepository {
	return &itikafRepository{}
}

func (r *itikafRepository) ListEvents(db *gorm.DB, orgID string) ([]models.ItikafEvent, error) {
	var events []models.ItikafEvent
	err := db.Where("organization_id = ?", orgID).Order("start_date DESC").Find(&events).Error
	return events, err
}

func (r *itikafRepository) ListAllEvents(db *gorm.DB) ([]models.ItikafEvent, error) {
	var events []models.ItikafEvent
	err := db.Order("start_date DESC").Find(&events).Error
	return events, err
}

func (r *itikafRepository) FindEvent(db *gorm.DB, orgID, id string) (*models.ItikafEvent, error) {
	var event models.ItikafEvent
	if err := db.Where("id = ? AND organization_id = ?", id, orgID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItikafEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *itikafRepository) CreateEvent(db *gorm.DB, event *models.ItikafEvent) error {
	return db.Create(event).Error
}

func (r *itikafRepository) UpdateEvent(db *gorm.DB, event *models.ItikafEvent) error {
	return db.Model(event).Select("name", "start_date", "end_date", "capacity", "sheet_name", "updated_at").
		Updates(event).Error
}

func (r *itikafRepository) DeleteEvent(db *gorm.DB, orgID, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND organization_id = ?", id, orgID).Delete(&models.ItikafEvent{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrItikafEventNotFound
		}
		return tx.Where("event_id = ?", id).Delete(&models.ItikafParticipant{}).Error
	})
}

func (r *itikafRepository) ListParticipants(db *gorm.DB, eventID string) ([]models.ItikafParticipant, error) {
	var list []models.ItikafParticipant
	err := db.Where("event_id = ?", eventID).Order("code ASC").Find(&list).Error
	return list, err
}

func (r *itikafRepository) ListUnsynced(db *gorm.DB, eventID string) ([]models.ItikafParticipant, error) {
	var list []models.ItikafParticipant
	err := db.Where("event_id = ? AND synced = ?", eventID, false).Order("code ASC").Find(&list).Error
	return list, err
}

func (r *itikafRepository) CountParticipants(db *gorm.DB, eventID string) (int64, error) {
	var count int64
	err := db.Model(&models.ItikafParticipant{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

func (r *itikafRepository) FindParticipant(db *gorm.DB, eventID, id string) (*models.ItikafParticipant, error) {
	var p models.ItikafParticipant
	if err := db.Where("id = ? AND event_id = ?", id, eventID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *itikafRepository) FindParticipantByCode(db *gorm.DB, eventID, code string) (*models.ItikafParticipant, error) {
	var p models.ItikafParticipant
	if err := db.Where("event_id = ? AND code = ?", eventID, code).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *itikafRepository) CreateParticipant(db *gorm.DB, p *models.ItikafParticipant) error {
	if _, err := r.FindParticipantByCode(db, p.EventID, p.Code); err == nil {
		return ErrParticipantCodeUsed
	} else if !errors.Is(err, ErrParticipantNotFound) {
		return err
	}
	return db.Create(p).Error
}

func (r *itikafRepository) DeleteParticipant(db *gorm.DB, eventID, id string) error {
	result := db.Where("id = ? AND event_id = ?", id, eventID).Delete(&models.ItikafParticipant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

func (r *itikafRepository) MarkSynced(db *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Model(&models.ItikafParticipant{}).Where("id IN ?", ids).Update("synced", true).Error
}
