package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"portal_backend/internal/models"
)

var (
	ErrHewanNotFound     = errors.New("hewan not found")
	ErrHewanCodeTaken    = errors.New("hewan code already used")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type HewanFilter struct {
	OrganizationID string
	Type           models.HewanType
	Status         models.HewanStatus
	Query          string
	Page           int
	PageSize       int
}

type QurbanRepository interface {
	ListHewan(db *gorm.DB, filter HewanFilter) ([]models.Hewan, int64, error)
	FindHewan(db *gorm.DB, orgID, id string) (*models.Hewan, error)
	CreateHewan(db *gorm.DB, hewan *models.Hewan) error
	HewanCodeExists(db *gorm.DB, orgID, code, excludeID string) (bool, error)
	UpdateHewan(db *gorm.DB, hewan *models.Hewan) error
	UpdateHewanFields(db *gorm.DB, orgID, id string, fields map[string]interface{}) error
	DeleteHewan(db *gorm.DB, orgID, id string) error
	// CountHewanByStatus counts animals per status. An empty orgID counts every organization.
	CountHewanByStatus(db *gorm.DB, orgID string) (map[models.HewanStatus]int64, error)
	CountHewanByType(db *gorm.DB, orgID string) (map[models.HewanType]int64, error)

	ListProducts(db *gorm.DB, orgID string) ([]models.Product, error)
	FindProduct(db *gorm.DB, orgID, id string) (*models.Product, error)
	CreateProduct(db *gorm.DB, product *models.Product) error
	UpdateProduct(db *gorm.DB, product *models.Product) error
	DeleteProduct(db *gorm.DB, orgID, id string) error
	// Distribute moves qty from stock to distributed in one conditional UPDATE.
	Distribute(db *gorm.DB, orgID, id string, qty int) error
}

type qurbanRepository struct{}

func NewQurbanRepository() QurbanRepository {
	return &qurbanRepository{}
}

func (r *qurbanRepository) ListHewan(db *gorm.DB, filter HewanFilter) ([]models.Hewan, int64, error) {
	query := db.Model(&models.Hewan{}).Where("organization_id = ?", filter.OrganizationID)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		query = query.Where("LOWER(code) LIKE ?", "%"+q+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("code ASC")
	if filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	var list []models.Hewan
	err := query.Find(&list).Error
	return list, total, err
}

func (r *qurbanRepository) FindHewan(db *gorm.DB, orgID, id string) (*models.Hewan, error) {
	var hewan models.Hewan
	if err := db.Where("id = ? AND organization_id = ?", id, orgID).First(&hewan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHewanNotFound
		}
		return nil, err
	}
	return &hewan, nil
}

func (r *qurbanRepository) CreateHewan(db *gorm.DB, hewan *models.Hewan) error {
	var count int64
	err := db.Model(&models.Hewan{}).
		Where("organization_id = ? AND code = ?", hewan.OrganizationID, hewan.Code).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHewanCodeTaken
	}
	return db.Create(hewan).Error
}

func (r *qurbanRepository) HewanCodeExists(db *gorm.DB, orgID, code, excludeID string) (bool, error) {
	query := db.Model(&models.Hewan{}).Where("organization_id = ? AND code = ?", orgID, code)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *qurbanRepository) UpdateHewan(db *gorm.DB, hewan *models.Hewan) error {
	return db.Model(hewan).Select(
		"code", "type", "weight", "price", "status", "shohibul", "max_shares", "photo_url", "notes", "updated_at",
	).Updates(hewan).Error
}

func (r *qurbanRepository) UpdateHewanFields(db *gorm.DB, orgID, id string, fields map[string]interface{}) error {
	result := db.Model(&models.Hewan{}).Where("id = ? AND organization_id = ?", id, orgID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHewanNotFound
	}
	return nil
}

func (r *qurbanRepository) DeleteHewan(db *gorm.DB, orgID, id string) error {
	result := db.Where("id = ? AND organization_id = ?", id, orgID).Delete(&models.Hewan{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHewanNotFound
	}
	return nil
}

func (r *qurbanRepository) CountHewanByStatus(db *gorm.DB, orgID string) (map[models.HewanStatus]int64, error) {
	var rows []struct {
		Status models.HewanStatus
		Count  int64
	}
	query := db.Model(&models.Hewan{}).Select("status, COUNT(*) AS count")
	if orgID != "" {
		query = query.Where("organization_id = ?", orgID)
	}
	if err := query.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[models.HewanStatus]int64, len(models.HewanStatuses))
	for _, s := range models.HewanStatuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *qurbanRepository) CountHewanByType(db *gorm.DB, orgID string) (map[models.HewanType]int64, error) {
	var rows []struct {
		Type  models.HewanType
		Count int64
	}
	err := db.Model(&models.Hewan{}).
		Select("type, COUNT(*) AS count").
		Where("organization_id = ?", orgID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[models.HewanType]int64, len(models.HewanTypes))
	for _, t := range models.HewanTypes {
		out[t] = 0
	}
	for _, row := range rows {
		out[row.Type] = row.Count
	}
	return out, nil
}

func (r *qurbanRepository) ListProducts(db *gorm.DB, orgID string) ([]models.Product, error) {
	var products []models.Product
	err := db.Where("organization_id = ?", orgID).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *qurbanRepository) FindProduct(db *gorm.DB, orgID, id string) (*models.Product, error) {
	var product models.Product
	if err := db.Where("id = ? AND organization_id = ?", id, orgID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *qurbanRepository) CreateProduct(db *gorm.DB, product *models.Product) error {
	return db.Create(product).Error
}

func (r *qurbanRepository) UpdateProduct(db *gorm.DB, product *models.Product) error {
	return db.Model(product).Select("name", "unit", "stock", "updated_at").Updates(product).Error
}

func (r *qurbanRepository) DeleteProduct(db *gorm.DB, orgID, id string) error {
	result := db.Where("id = ? AND organization_id = ?", id, orgID).Delete(&models.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *qurbanRepository) Distribute(db *gorm.DB, orgID, id string, qty int) error {
	result := db.Model(&models.Product{}).
		Where("id = ? AND organization_id = ? AND stock >= ?", id, orgID, qty).
		Updates(map[string]interface{}{
			"stock":       gorm.Expr("stock - ?", qty),
			"distributed": gorm.Expr("distributed + ?", qty),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindProduct(db, orgID, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}
