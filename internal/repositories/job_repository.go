package repositories

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"portal_backend/internal/models"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrFieldNotFound = errors.New("form field not found")
)

type JobFilter struct {
	Query          string
	Location       string
	EmploymentType models.EmploymentType
	Remote         *bool
	Status         models.JobStatus
	OrganizationID string
	OpenOnly       bool // status open and deadline not passed
	Now            time.Time
	Page           int
	PageSize       int
}

type JobRepository interface {
	Create(db *gorm.DB, job *models.Job) error
	FindByID(db *gorm.DB, id string) (*models.Job, error)
	FindBySlug(db *gorm.DB, slug string) (*models.Job, error)
	Update(db *gorm.DB, job *models.Job) error
	UpdateStatus(db *gorm.DB, id string, status models.JobStatus) error
	Delete(db *gorm.DB, id string) error
	Search(db *gorm.DB, filter JobFilter) ([]models.Job, int64, error)
	IncrementViews(db *gorm.DB, id string) error
	SlugExists(db *gorm.DB, slug string) (bool, error)
	CloseExpired(db *gorm.DB, now time.Time) (int64, error)

	ListFields(db *gorm.DB, jobID string) ([]models.ApplicationFormField, error)
	FindField(db *gorm.DB, jobID, fieldID string) (*models.ApplicationFormField, error)
	CreateField(db *gorm.DB, field *models.ApplicationFormField) error
	UpdateField(db *gorm.DB, field *models.ApplicationFormField) error
	DeleteField(db *gorm.DB, jobID, fieldID string) error
	FieldNameExists(db *gorm.DB, jobID, name, excludeID string) (bool, error)
	MaxFieldPosition(db *gorm.DB, jobID string) (int, error)
	SetFieldPosition(db *gorm.DB, jobID, fieldID string, position int) error
}

type jobRepository struct{}

func NewJobRepository() JobRepository {
	return &jobRepository{}
}

func (r *jobRepository) Create(db *gorm.DB, job *models.Job) error {
	return db.Create(job).Error
}

func (r *jobRepository) FindByID(db *gorm.DB, id string) (*models.Job, error) {
	return r.findOne(db, "jobs.id = ?", id)
}

func (r *jobRepository) FindBySlug(db *gorm.DB, slug string) (*models.Job, error) {
	return r.findOne(db, "jobs.slug = ?", slug)
}

func (r *jobRepository) findOne(db *gorm.DB, query string, arg interface{}) (*models.Job, error) {
	var job models.Job
	err := db.Preload("Organization").
		Preload("Fields", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Where(query, arg).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) Update(db *gorm.DB, job *models.Job) error {
	return db.Model(job).Select(
		"title", "description", "requirements", "location", "employment_type", "remote",
		"salary_min", "salary_max", "currency", "deadline", "updated_at",
	).Updates(job).Error
}

func (r *jobRepository) UpdateStatus(db *gorm.DB, id string, status models.JobStatus) error {
	result := db.Model(&models.Job{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *jobRepository) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Job{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *jobRepository) Search(db *gorm.DB, filter JobFilter) ([]models.Job, int64, error) {
	query := db.Model(&models.Job{})

	if filter.OrganizationID != "" {
		query = query.Where("organization_id = ?", filter.OrganizationID)
	}
	if filter.OpenOnly {
		query = query.Where("status = ?", models.JobStatusOpen).
			Where("deadline IS NULL OR deadline > ?", filter.Now)
	} else if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		like := "%" + q + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if loc := strings.ToLower(strings.TrimSpace(filter.Location)); loc != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+loc+"%")
	}
	if filter.EmploymentType != "" {
		query = query.Where("employment_type = ?", filter.EmploymentType)
	}
	if filter.Remote != nil {
		query = query.Where("remote = ?", *filter.Remote)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []models.Job
	err := query.Preload("Organization").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&jobs).Error
	return jobs, total, err
}

func (r *jobRepository) IncrementViews(db *gorm.DB, id string) error {
	return db.Model(&models.Job{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

func (r *jobRepository) SlugExists(db *gorm.DB, slug string) (bool, error) {
	var count int64
	err := db.Unscoped().Model(&models.Job{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *jobRepository) CloseExpired(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.Job{}).
		Where("status = ? AND deadline IS NOT NULL AND deadline <= ?", models.JobStatusOpen, now).
		Update("status", models.JobStatusClosed)
	return result.RowsAffected, result.Error
}

// Form fields

func (r *jobRepository) ListFields(db *gorm.DB, jobID string) ([]models.ApplicationFormField, error) {
	var fields []models.ApplicationFormField
	err := db.Where("job_id = ?", jobID).Order("position ASC, created_at ASC").Find(&fields).Error
	return fields, err
}

func (r *jobRepository) FindField(db *gorm.DB, jobID, fieldID string) (*models.ApplicationFormField, error) {
	var field models.ApplicationFormField
	if err := db.Where("id = ? AND job_id = ?", fieldID, jobID).First(&field).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFieldNotFound
		}
		return nil, err
	}
	return &field, nil
}

func (r *jobRepository) CreateField(db *gorm.DB, field *models.ApplicationFormField) error {
	return db.Create(field).Error
}

func (r *jobRepository) UpdateField(db *gorm.DB, field *models.ApplicationFormField) error {
	return db.Model(field).Select(
		"label", "name", "type", "required", "options", "placeholder", "position", "updated_at",
	).Updates(field).Error
}

func (r *jobRepository) DeleteField(db *gorm.DB, jobID, fieldID string) error {
	result := db.Where("id = ? AND job_id = ?", fieldID, jobID).Delete(&models.ApplicationFormField{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFieldNotFound
	}
	return nil
}

func (r *jobRepository) FieldNameExists(db *gorm.DB, jobID, name, excludeID string) (bool, error) {
	query := db.Model(&models.ApplicationFormField{}).Where("job_id = ? AND name = ?", jobID, name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *jobRepository) MaxFieldPosition(db *gorm.DB, jobID string) (int, error) {
	var max *int
	err := db.Model(&models.ApplicationFormField{}).
		Where("job_id = ?", jobID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil || max == nil {
		return -1, err
	}
	return *max, nil
}

func (r *jobRepository) SetFieldPosition(db *gorm.DB, jobID, fieldID string, position int) error {
	result := db.Model(&models.ApplicationFormField{}).
		Where("id = ? AND job_id = ?", fieldID, jobID).
		Update("position", position)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFieldNotFound
	}
	return nil
}
