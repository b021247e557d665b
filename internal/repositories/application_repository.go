package repositories

import (
	"errors"

	"gorm.io/gorm"

	"portal_backend/internal/models"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("candidate already applied to this job")
)

type ApplicationFilter struct {
	JobID       string
	CandidateID string
	Status      string
	Page        int
	PageSize    int
}

type ApplicationRepository interface {
	Create(db *gorm.DB, app *models.Application) error
	FindByID(db *gorm.DB, id string) (*models.Application, error)
	List(db *gorm.DB, filter ApplicationFilter) ([]models.Application, int64, error)
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	Delete(db *gorm.DB, id string) error
	CountByJobAndStatus(db *gorm.DB, jobID string) (map[string]int64, error)
	// CandidateAppliedToOrganization reports whether the candidate has an application
	// on any job of the organization.
	CandidateAppliedToOrganization(db *gorm.DB, candidateID, orgID string) (bool, error)
}

type applicationRepository struct{}

func NewApplicationRepository() ApplicationRepository {
	return &applicationRepository{}
}

func (r *applicationRepository) Create(db *gorm.DB, app *models.Application) error {
	var count int64
	err := db.Model(&models.Application{}).
		Where("job_id = ? AND candidate_id = ?", app.JobID, app.CandidateID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyApplied
	}
	return db.Create(app).Error
}

func (r *applicationRepository) FindByID(db *gorm.DB, id string) (*models.Application, error) {
	var app models.Application
	err := db.Preload("Job").Preload("Candidate").First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) List(db *gorm.DB, filter ApplicationFilter) ([]models.Application, int64, error) {
	query := db.Model(&models.Application{})
	if filter.JobID != "" {
		query = query.Where("job_id = ?", filter.JobID)
	}
	if filter.CandidateID != "" {
		query = query.Where("candidate_id = ?", filter.CandidateID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []models.Application
	query = query.Preload("Job").Preload("Candidate").Order("created_at DESC")
	if filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	err := query.Find(&apps).Error
	return apps, total, err
}

func (r *applicationRepository) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.Application{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *applicationRepository) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Application{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *applicationRepository) CountByJobAndStatus(db *gorm.DB, jobID string) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := db.Model(&models.Application{}).
		Select("status, COUNT(*) AS count").
		Where("job_id = ?", jobID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *applicationRepository) CandidateAppliedToOrganization(db *gorm.DB, candidateID, orgID string) (bool, error) {
	var count int64
	err := db.Model(&models.Application{}).
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("applications.candidate_id = ? AND jobs.organization_id = ?", candidateID, orgID).
		Count(&count).Error
	return count > 0, err
}
