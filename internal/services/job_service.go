package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"portal_backend/internal/auth"
	"portal_backend/internal/logger"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/pkg/apperrors"
)

type JobService interface {
	// Search lists open jobs for the public board.
	Search(db *gorm.DB, req *dto.JobSearchRequest) (*dto.PaginatedResponse, error)
	ListOrg(db *gorm.DB, orgID string, req *dto.JobSearchRequest) (*dto.PaginatedResponse, error)
	Get(db *gorm.DB, viewer *auth.Claims, idOrSlug string) (*dto.JobResponse, error)
	Create(db *gorm.DB, orgID, userID string, req *dto.CreateJobRequest) (*models.Job, error)
	Update(db *gorm.DB, orgID, jobID string, req *dto.UpdateJobRequest) (*models.Job, error)
	ChangeStatus(db *gorm.DB, orgID, jobID string, status models.JobStatus) (*models.Job, error)
	Delete(db *gorm.DB, orgID, jobID string) error
	CloseExpired(db *gorm.DB) (int64, error)
}

type JobServiceImpl struct {
	jobRepo         repositories.JobRepository
	applicationRepo repositories.ApplicationRepository
	now             func() time.Time
}

func NewJobService(jobRepo repositories.JobRepository, applicationRepo repositories.ApplicationRepository) JobService {
	return &JobServiceImpl{
		jobRepo:         jobRepo,
		applicationRepo: applicationRepo,
		now:             time.Now,
	}
}

func (s *JobServiceImpl) Search(db *gorm.DB, req *dto.JobSearchRequest) (*dto.PaginatedResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)
	filter := repositories.JobFilter{
		Query:          req.Query,
		Location:       req.Location,
		EmploymentType: models.EmploymentType(req.EmploymentType),
		Remote:         req.Remote,
		OpenOnly:       true,
		Now:            s.now(),
		Page:           page,
		PageSize:       pageSize,
	}
	return s.search(db, filter)
}

func (s *JobServiceImpl) ListOrg(db *gorm.DB, orgID string, req *dto.JobSearchRequest) (*dto.PaginatedResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)
	filter := repositories.JobFilter{
		Query:          req.Query,
		Location:       req.Location,
		EmploymentType: models.EmploymentType(req.EmploymentType),
		Remote:         req.Remote,
		Status:         models.JobStatus(req.Status),
		OrganizationID: orgID,
		Page:           page,
		PageSize:       pageSize,
	}
	return s.search(db, filter)
}

func (s *JobServiceImpl) search(db *gorm.DB, filter repositories.JobFilter) (*dto.PaginatedResponse, error) {
	jobs, total, err := s.jobRepo.Search(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return dto.NewPaginatedResponse(jobs, total, filter.Page, filter.PageSize), nil
}

// Get resolves a job by id or slug. Jobs that are not open are only visible to
// their organization. Views are counted for everyone else.
func (s *JobServiceImpl) Get(db *gorm.DB, viewer *auth.Claims, idOrSlug string) (*dto.JobResponse, error) {
	var (
		job *models.Job
		err error
	)
	if _, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		job, err = s.jobRepo.FindByID(db, idOrSlug)
	} else {
		job, err = s.jobRepo.FindBySlug(db, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	owner := auth.CanAccessTenant(viewer, job.OrganizationID)
	if !owner && job.Status != models.JobStatusOpen {
		return nil, apperrors.ErrJobNotFound
	}

	resp := &dto.JobResponse{Job: job, IsOwner: owner}
	if owner {
		counts, err := s.applicationRepo.CountByJobAndStatus(db, job.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		for _, n := range counts {
			resp.ApplicationCount += n
		}
		return resp, nil
	}

	if err := s.jobRepo.IncrementViews(db, job.ID); err != nil {
		logger.Warn("Failed to count job view", "job_id", job.ID, "error", err)
	} else {
		job.Views++
	}
	return resp, nil
}

func (s *JobServiceImpl) Create(db *gorm.DB, orgID, userID string, req *dto.CreateJobRequest) (*models.Job, error) {
	if err := validateSalary(req.SalaryMin, req.SalaryMax); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = models.JobStatusDraft
	}
	now := s.now()
	if status == models.JobStatusOpen && req.Deadline != nil && !req.Deadline.After(now) {
		return nil, apperrors.ErrInvalidOperation("job", "Deadline must be in the future for an open job")
	}

	tx := db.Begin()
	defer tx.Rollback()

	slug, err := s.uniqueSlug(tx, req.Title)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "IDR"
	}
	job := &models.Job{
		OrganizationID: orgID,
		PostedByID:     userID,
		Title:          strings.TrimSpace(req.Title),
		Slug:           slug,
		Description:    req.Description,
		Requirements:   req.Requirements,
		Location:       strings.TrimSpace(req.Location),
		EmploymentType: req.EmploymentType,
		Remote:         req.Remote,
		Currency:       currency,
		Status:         status,
		Deadline:       req.Deadline,
	}
	if req.SalaryMin != nil {
		job.SalaryMin = *req.SalaryMin
	}
	if req.SalaryMax != nil {
		job.SalaryMax = *req.SalaryMax
	}
	if err := s.jobRepo.Create(tx, job); err != nil {
		return nil, apperrors.InternalError(err)
	}

	for i := range req.Fields {
		field, err := createField(s.jobRepo, tx, job.ID, &req.Fields[i], i)
		if err != nil {
			return nil, err
		}
		job.Fields = append(job.Fields, *field)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	logger.Info("Job created", "job_id", job.ID, "organization_id", orgID, "status", job.Status)
	return job, nil
}

func (s *JobServiceImpl) Update(db *gorm.DB, orgID, jobID string, req *dto.UpdateJobRequest) (*models.Job, error) {
	tx := db.Begin()
	defer tx.Rollback()

	job, err := findOwnedJob(s.jobRepo, tx, orgID, jobID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Requirements != nil {
		job.Requirements = *req.Requirements
	}
	if req.Location != nil {
		job.Location = strings.TrimSpace(*req.Location)
	}
	if req.EmploymentType != nil {
		job.EmploymentType = *req.EmploymentType
	}
	if req.Remote != nil {
		job.Remote = *req.Remote
	}
	if req.SalaryMin != nil {
		job.SalaryMin = *req.SalaryMin
	}
	if req.SalaryMax != nil {
		job.SalaryMax = *req.SalaryMax
	}
	if req.Currency != nil {
		job.Currency = strings.ToUpper(*req.Currency)
	}
	if req.ClearDeadline {
		job.Deadline = nil
	} else if req.Deadline != nil {
		job.Deadline = req.Deadline
	}

	if err := validateSalary(&job.SalaryMin, &job.SalaryMax); err != nil {
		return nil, err
	}
	if job.Status == models.JobStatusOpen && job.Deadline != nil && !job.Deadline.After(s.now()) {
		return nil, apperrors.ErrInvalidOperation("job", "Deadline must be in the future for an open job")
	}

	if err := s.jobRepo.Update(tx, job); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return job, nil
}

func (s *JobServiceImpl) ChangeStatus(db *gorm.DB, orgID, jobID string, status models.JobStatus) (*models.Job, error) {
	job, err := findOwnedJob(s.jobRepo, db, orgID, jobID)
	if err != nil {
		return nil, err
	}
	if status == models.JobStatusOpen && job.Deadline != nil && !job.Deadline.After(s.now()) {
		return nil, apperrors.ErrInvalidStatus("job", "Cannot open a job whose deadline has passed")
	}
	if job.Status == status {
		return job, nil
	}
	if err := s.jobRepo.UpdateStatus(db, job.ID, status); err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	logger.Info("Job status changed", "job_id", job.ID, "from", job.Status, "to", status)
	job.Status = status
	return job, nil
}

func (s *JobServiceImpl) Delete(db *gorm.DB, orgID, jobID string) error {
	if _, err := findOwnedJob(s.jobRepo, db, orgID, jobID); err != nil {
		return err
	}
	if err := s.jobRepo.Delete(db, jobID); err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return apperrors.ErrJobNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *JobServiceImpl) CloseExpired(db *gorm.DB) (int64, error) {
	n, err := s.jobRepo.CloseExpired(db, s.now())
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return n, nil
}

func (s *JobServiceImpl) uniqueSlug(tx *gorm.DB, title string) (string, error) {
	base := truncate(slugify(title, '-'), 80)
	if base == "" {
		base = "job"
	}
	slug := base
	for i := 0; i < 5; i++ {
		exists, err := s.jobRepo.SlugExists(tx, slug)
		if err != nil {
			return "", apperrors.InternalError(err)
		}
		if !exists {
			return slug, nil
		}
		slug = base + "-" + strings.ToLower(uuid.NewString()[:6])
	}
	return base + "-" + uuid.NewString(), nil
}

func validateSalary(min, max *decimal.Decimal) error {
	if min != nil && min.IsNegative() {
		return apperrors.ValidationError(map[string]string{"salary_min": "Must not be negative"})
	}
	if max != nil && max.IsNegative() {
		return apperrors.ValidationError(map[string]string{"salary_max": "Must not be negative"})
	}
	if min != nil && max != nil && !max.IsZero() && min.GreaterThan(*max) {
		return apperrors.ValidationError(map[string]string{"salary_max": "Must be greater than or equal to salary_min"})
	}
	return nil
}
