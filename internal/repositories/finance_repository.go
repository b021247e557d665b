package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"portal_backend/internal/models"
)

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryExists      = errors.New("category already exists")
	ErrTransactionNotFound = errors.New("transaction not found")
)

type TransactionFilter struct {
	OrganizationID string
	Type           models.TransactionType
	CategoryID     string
	From           *time.Time
	To             *time.Time
	Page           int
	PageSize       int // 0 returns every matching row
}

type FinanceRepository interface {
	ListCategories(db *gorm.DB, orgID string, txType models.TransactionType) ([]models.Category, error)
	FindCategory(db *gorm.DB, orgID, id string) (*models.Category, error)
	FindCategoryByName(db *gorm.DB, orgID, name string, txType models.TransactionType) (*models.Category, error)
	CreateCategory(db *gorm.DB, category *models.Category) error
	UpdateCategory(db *gorm.DB, category *models.Category) error
	DeleteCategory(db *gorm.DB, orgID, id string) error
	CategoryInUse(db *gorm.DB, id string) (bool, error)

	ListTransactions(db *gorm.DB, filter TransactionFilter) ([]models.Transaction, int64, error)
	FindTransaction(db *gorm.DB, orgID, id string) (*models.Transaction, error)
	CreateTransaction(db *gorm.DB, tx *models.Transaction) error
	CreateTransactions(db *gorm.DB, txs []models.Transaction) error
	UpdateTransaction(db *gorm.DB, tx *models.Transaction) error
	DeleteTransaction(db *gorm.DB, orgID, id string) error
}

type financeRepository struct{}

func NewFinanceRepository() FinanceRepository {
	return &financeRepository{}
}

func (r *financeRepository) ListCategories(db *gorm.DB, orgID string, txType models.TransactionType) ([]models.Category, error) {
	query := db.Where("organization_id = ?", orgID)
	if txType != "" {
		query = query.Where("type = ?", txType)
	}
	var categories []models.Category
	err := query.Order("type ASC, name ASC").Find(&categories).Error
	return categories, err
}

func (r *financeRepository) FindCategory(db *gorm.DB, orgID, id string) (*models.Category, error) {
	var category models.Category
	if err := db.Where("id = ? AND organization_id = ?", id, orgID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *financeRepository) FindCategoryByName(db *gorm.DB, orgID, name string, txType models.TransactionType) (*models.Category, error) {
	var category models.Category
	err := db.Where("organization_id = ? AND LOWER(name) = LOWER(?) AND type = ?", orgID, name, txType).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *financeRepository) CreateCategory(db *gorm.DB, category *models.Category) error {
	if _, err := r.FindCategoryByName(db, category.OrganizationID, category.Name, category.Type); err == nil {
		return ErrCategoryExists
	} else if !errors.Is(err, ErrCategoryNotFound) {
		return err
	}
	return db.Create(category).Error
}

func (r *financeRepository) UpdateCategory(db *gorm.DB, category *models.Category) error {
	return db.Model(category).Select("name", "color", "updated_at").Updates(category).Error
}

func (r *financeRepository) DeleteCategory(db *gorm.DB, orgID, id string) error {
	result := db.Where("id = ? AND organization_id = ?", id, orgID).Delete(&models.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *financeRepository) CategoryInUse(db *gorm.DB, id string) (bool, error) {
	var count int64
	err := db.Model(&models.Transaction{}).Where("category_id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *financeRepository) ListTransactions(db *gorm.DB, filter TransactionFilter) ([]models.Transaction, int64, error) {
	query := db.Model(&models.Transaction{}).Where("organization_id = ?", filter.OrganizationID)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("Category").Order("occurred_at DESC, created_at DESC")
	if filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var txs []models.Transaction
	err := query.Find(&txs).Error
	return txs, total, err
}

func (r *financeRepository) FindTransaction(db *gorm.DB, orgID, id string) (*models.Transaction, error) {
	var tx models.Transaction
	err := db.Preload("Category").Where("id = ? AND organization_id = ?", id, orgID).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *financeRepository) CreateTransaction(db *gorm.DB, tx *models.Transaction) error {
	return db.Omit("Category").Create(tx).Error
}

func (r *financeRepository) CreateTransactions(db *gorm.DB, txs []models.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	return db.Omit("Category").CreateInBatches(txs, 100).Error
}

func (r *financeRepository) UpdateTransaction(db *gorm.DB, tx *models.Transaction) error {
	return db.Model(tx).Omit("Category").Select(
		"category_id", "type", "amount", "description", "occurred_at", "receipt_url", "updated_at",
	).Updates(tx).Error
}

func (r *financeRepository) DeleteTransaction(db *gorm.DB, orgID, id string) error {
	result := db.Where("id = ? AND organization_id = ?", id, orgID).Delete(&models.Transaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}
