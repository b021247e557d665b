package services

import (
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"portal_backend/internal/auth"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/pkg/apperrors"
)

// FormFieldService manages the custom questions attached to a job's application form.
type FormFieldService interface {
	List(db *gorm.DB, viewer *auth.Claims, jobID string) ([]models.ApplicationFormField, error)
	Create(db *gorm.DB, orgID, jobID string, req *dto.CreateFieldRequest) (*models.ApplicationFormField, error)
	Update(db *gorm.DB, orgID, jobID, fieldID string, req *dto.UpdateFieldRequest) (*models.ApplicationFormField, error)
	Delete(db *gorm.DB, orgID, jobID, fieldID string) error
	// Reorder sets positions from ids, which must list every field of the job exactly once.
	Reorder(db *gorm.DB, orgID, jobID string, ids []string) ([]models.ApplicationFormField, error)
}

type FormFieldServiceImpl struct {
	jobRepo repositories.JobRepository
}

func NewFormFieldService(jobRepo repositories.JobRepository) FormFieldService {
	return &FormFieldServiceImpl{jobRepo: jobRepo}
}

func (s *FormFieldServiceImpl) List(db *gorm.DB, viewer *auth.Claims, jobID string) ([]models.ApplicationFormField, error) {
	job, err := findJob(s.jobRepo, db, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusOpen && !auth.CanAccessTenant(viewer, job.OrganizationID) {
		return nil, apperrors.ErrJobNotFound
	}
	fields, err := s.jobRepo.ListFields(db, jobID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return fields, nil
}

func (s *FormFieldServiceImpl) Create(db *gorm.DB, orgID, jobID string, req *dto.CreateFieldRequest) (*models.ApplicationFormField, error) {
	tx := db.Begin()
	defer tx.Rollback()

	if _, err := findOwnedJob(s.jobRepo, tx, orgID, jobID); err != nil {
		return nil, err
	}
	field, err := createField(s.jobRepo, tx, jobID, req, -1)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return field, nil
}

func (s *FormFieldServiceImpl) Update(db *gorm.DB, orgID, jobID, fieldID string, req *dto.UpdateFieldRequest) (*models.ApplicationFormField, error) {
	tx := db.Begin()
	defer tx.Rollback()

	if _, err := findOwnedJob(s.jobRepo, tx, orgID, jobID); err != nil {
		return nil, err
	}
	field, err := s.jobRepo.FindField(tx, jobID, fieldID)
	if err != nil {
		if errors.Is(err, repositories.ErrFieldNotFound) {
			return nil, apperrors.ErrFieldNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Label != nil {
		field.Label = strings.TrimSpace(*req.Label)
	}
	if req.Name != nil {
		name := slugify(*req.Name, '_')
		if name == "" {
			return nil, apperrors.ValidationError(map[string]string{"name": "Name must contain letters or digits"})
		}
		taken, err := s.jobRepo.FieldNameExists(tx, jobID, name, field.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if taken {
			return nil, apperrors.ErrDuplicateFieldName
		}
		field.Name = name
	}
	if req.Type != nil {
		field.Type = *req.Type
	}
	if req.Required != nil {
		field.Required = *req.Required
	}
	if req.Options != nil {
		field.SetOptions(cleanOptions(req.Options))
	}
	if req.Placeholder != nil {
		field.Placeholder = *req.Placeholder
	}
	if field.Type == models.FieldTypeSelect && len(field.GetOptions()) == 0 {
		return nil, apperrors.ValidationError(map[string]string{"options": "Select fields need at least one option"})
	}

	if err := s.jobRepo.UpdateField(tx, field); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return field, nil
}

func (s *FormFieldServiceImpl) Delete(db *gorm.DB, orgID, jobID, fieldID string) error {
	if _, err := findOwnedJob(s.jobRepo, db, orgID, jobID); err != nil {
		return err
	}
	if err := s.jobRepo.DeleteField(db, jobID, fieldID); err != nil {
		if errors.Is(err, repositories.ErrFieldNotFound) {
			return apperrors.ErrFieldNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *FormFieldServiceImpl) Reorder(db *gorm.DB, orgID, jobID string, ids []string) ([]models.ApplicationFormField, error) {
	tx := db.Begin()
	defer tx.Rollback()

	if _, err := findOwnedJob(s.jobRepo, tx, orgID, jobID); err != nil {
		return nil, err
	}
	fields, err := s.jobRepo.ListFields(tx, jobID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.ID] = true
	}
	if len(ids) != len(fields) {
		return nil, apperrors.ValidationError(map[string]string{"field_ids": "Must list every field of the job exactly once"})
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !known[id] || seen[id] {
			return nil, apperrors.ValidationError(map[string]string{"field_ids": "Must list every field of the job exactly once"})
		}
		seen[id] = true
	}

	for i, id := range ids {
		if err := s.jobRepo.SetFieldPosition(tx, jobID, id, i); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	fields, err = s.jobRepo.ListFields(tx, jobID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return fields, nil
}

// createField appends a field to the job. A position below zero places it after
// the current last field.
func createField(repo repositories.JobRepository, tx *gorm.DB, jobID string, req *dto.CreateFieldRequest, position int) (*models.ApplicationFormField, error) {
	options := cleanOptions(req.Options)
	if req.Type == models.FieldTypeSelect && len(options) == 0 {
		return nil, apperrors.ValidationError(map[string]string{"options": "Select fields need at least one option"})
	}

	name, err := fieldName(repo, tx, jobID, req)
	if err != nil {
		return nil, err
	}

	if position < 0 {
		last, err := repo.MaxFieldPosition(tx, jobID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		position = last + 1
	}

	field := &models.ApplicationFormField{
		JobID:       jobID,
		Label:       strings.TrimSpace(req.Label),
		Name:        name,
		Type:        req.Type,
		Required:    req.Required,
		Placeholder: req.Placeholder,
		Position:    position,
	}
	field.SetOptions(options)
	if err := repo.CreateField(tx, field); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return field, nil
}

// fieldName uses the requested name as given, failing on a clash, or derives
// one from the label and suffixes it until it is free.
func fieldName(repo repositories.JobRepository, tx *gorm.DB, jobID string, req *dto.CreateFieldRequest) (string, error) {
	if req.Name != "" {
		name := slugify(req.Name, '_')
		if name == "" {
			return "", apperrors.ValidationError(map[string]string{"name": "Name must contain letters or digits"})
		}
		taken, err := repo.FieldNameExists(tx, jobID, name, "")
		if err != nil {
			return "", apperrors.InternalError(err)
		}
		if taken {
			return "", apperrors.ErrDuplicateFieldName
		}
		return name, nil
	}

	base := truncate(slugify(req.Label, '_'), 60)
	if base == "" {
		base = "field"
	}
	name := base
	for i := 2; ; i++ {
		taken, err := repo.FieldNameExists(tx, jobID, name, "")
		if err != nil {
			return "", apperrors.InternalError(err)
		}
		if !taken {
			return name, nil
		}
		name = base + "_" + strconv.Itoa(i)
	}
}

func cleanOptions(options []string) []string {
	out := make([]string, 0, len(options))
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

func findJob(repo repositories.JobRepository, db *gorm.DB, jobID string) (*models.Job, error) {
	job, err := repo.FindByID(db, jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return job, nil
}

// findOwnedJob hides jobs of other organizations behind a not-found error.
func findOwnedJob(repo repositories.JobRepository, db *gorm.DB, orgID, jobID string) (*models.Job, error) {
	job, err := findJob(repo, db, jobID)
	if err != nil {
		return nil, err
	}
	if job.OrganizationID != orgID {
		return nil, apperrors.ErrJobNotFound
	}
	return job, nil
}
