package services

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"portal_backend/internal/auth"
	"portal_backend/internal/logger"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/internal/validator"
	"portal_backend/pkg/apperrors"
)

const maxStatusLength = 32

type ApplicationService interface {
	Apply(db *gorm.DB, candidateID, jobID string, req *dto.ApplyRequest) (*dto.ApplicationResponse, error)
	ListMine(db *gorm.DB, candidateID string, req *dto.ListApplicationsRequest) (*dto.PaginatedResponse, error)
	// Withdraw deletes the candidate's application while it is still in the initial status.
	Withdraw(db *gorm.DB, candidateID, applicationID string) error
	ListForJob(db *gorm.DB, orgID, jobID string, req *dto.ListApplicationsRequest) (*dto.PaginatedResponse, error)
	Stats(db *gorm.DB, orgID, jobID string) (*dto.JobApplicationStats, error)
	Get(db *gorm.DB, viewer *auth.Claims, applicationID string) (*dto.ApplicationResponse, error)
	Update(db *gorm.DB, orgID, applicationID string, req *dto.UpdateApplicationRequest) (*dto.ApplicationResponse, error)
	Delete(db *gorm.DB, orgID, applicationID string) error
}

type ApplicationServiceImpl struct {
	applicationRepo repositories.ApplicationRepository
	jobRepo         repositories.JobRepository
	userRepo        repositories.UserRepository
	profileRepo     repositories.ProfileRepository
	notifier        *EmailService
	now             func() time.Time
}

func NewApplicationService(
	applicationRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	notifier *EmailService,
) ApplicationService {
	return &ApplicationServiceImpl{
		applicationRepo: applicationRepo,
		jobRepo:         jobRepo,
		userRepo:        userRepo,
		profileRepo:     profileRepo,
		notifier:        notifier,
		now:             time.Now,
	}
}

func (s *ApplicationServiceImpl) Apply(db *gorm.DB, candidateID, jobID string, req *dto.ApplyRequest) (*dto.ApplicationResponse, error) {
	tx := db.Begin()
	defer tx.Rollback()

	job, err := findJob(s.jobRepo, tx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsOpen(s.now()) {
		return nil, apperrors.ErrJobNotOpen
	}

	answers, fieldErrs := ValidateAnswers(job.Fields, req.Answers)
	if len(fieldErrs) > 0 {
		return nil, apperrors.ValidationError(fieldErrs)
	}

	resumeURL := strings.TrimSpace(req.ResumeURL)
	if resumeURL == "" {
		if profile, err := s.profileRepo.FindByUserID(tx, candidateID); err == nil {
			resumeURL = profile.ResumeURL
		}
	}

	app := &models.Application{
		JobID:       job.ID,
		CandidateID: candidateID,
		Status:      models.ApplicationStatusApplied,
		CoverLetter: req.CoverLetter,
		ResumeURL:   resumeURL,
	}
	app.SetAnswers(answers)
	if err := s.applicationRepo.Create(tx, app); err != nil {
		if errors.Is(err, repositories.ErrAlreadyApplied) {
			return nil, apperrors.ErrAlreadyApplied
		}
		return nil, apperrors.InternalError(err)
	}

	candidate, err := s.userRepo.FindByID(tx, candidateID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	poster, err := s.userRepo.FindByID(tx, job.PostedByID)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.Info("Application submitted", "application_id", app.ID, "job_id", job.ID, "candidate_id", candidateID)
	s.notifier.NotifyApplicationReceived(candidate, job)
	s.notifier.NotifyNewApplication(poster, candidate, job, app.ID)

	app.Job = job
	app.Candidate = candidate
	return dto.NewApplicationResponse(app), nil
}

func (s *ApplicationServiceImpl) ListMine(db *gorm.DB, candidateID string, req *dto.ListApplicationsRequest) (*dto.PaginatedResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)
	return s.list(db, repositories.ApplicationFilter{
		CandidateID: candidateID,
		Status:      strings.TrimSpace(req.Status),
		Page:        page,
		PageSize:    pageSize,
	})
}

func (s *ApplicationServiceImpl) Withdraw(db *gorm.DB, candidateID, applicationID string) error {
	app, err := s.find(db, applicationID)
	if err != nil {
		return err
	}
	if app.CandidateID != candidateID {
		return apperrors.ErrApplicationNotFound
	}
	if app.Status != models.ApplicationStatusApplied {
		return apperrors.ErrCannotWithdraw
	}
	if err := s.applicationRepo.Delete(db, app.ID); err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return apperrors.ErrApplicationNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *ApplicationServiceImpl) ListForJob(db *gorm.DB, orgID, jobID string, req *dto.ListApplicationsRequest) (*dto.PaginatedResponse, error) {
	if _, err := findOwnedJob(s.jobRepo, db, orgID, jobID); err != nil {
		return nil, err
	}
	page, pageSize := normalizePage(req.Page, req.PageSize)
	return s.list(db, repositories.ApplicationFilter{
		JobID:    jobID,
		Status:   strings.TrimSpace(req.Status),
		Page:     page,
		PageSize: pageSize,
	})
}

func (s *ApplicationServiceImpl) list(db *gorm.DB, filter repositories.ApplicationFilter) (*dto.PaginatedResponse, error) {
	apps, total, err := s.applicationRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]*dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		out = append(out, dto.NewApplicationResponse(&apps[i]))
	}
	return dto.NewPaginatedResponse(out, total, filter.Page, filter.PageSize), nil
}

func (s *ApplicationServiceImpl) Stats(db *gorm.DB, orgID, jobID string) (*dto.JobApplicationStats, error) {
	if _, err := findOwnedJob(s.jobRepo, db, orgID, jobID); err != nil {
		return nil, err
	}
	counts, err := s.applicationRepo.CountByJobAndStatus(db, jobID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	stats := &dto.JobApplicationStats{JobID: jobID, ByStatus: counts}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *ApplicationServiceImpl) Get(db *gorm.DB, viewer *auth.Claims, applicationID string) (*dto.ApplicationResponse, error) {
	app, err := s.find(db, applicationID)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, apperrors.ErrApplicationNotFound
	}
	if app.CandidateID != viewer.UserID && !canManageApplication(viewer, app) {
		return nil, apperrors.ErrApplicationNotFound
	}
	return dto.NewApplicationResponse(app), nil
}

// Update changes the recruiter-facing fields. Status is free-form text; the
// candidate is emailed whenever it changes.
func (s *ApplicationServiceImpl) Update(db *gorm.DB, orgID, applicationID string, req *dto.UpdateApplicationRequest) (*dto.ApplicationResponse, error) {
	app, err := s.find(db, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Job == nil || app.Job.OrganizationID != orgID {
		return nil, apperrors.ErrApplicationNotFound
	}

	fields := map[string]interface{}{}
	statusChanged := false
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if status == "" || utf8.RuneCountInString(status) > maxStatusLength {
			return nil, apperrors.ValidationError(map[string]string{
				"status": "Status must be between 1 and " + strconv.Itoa(maxStatusLength) + " characters",
			})
		}
		if status != app.Status {
			statusChanged = true
			app.Status = status
			fields["status"] = status
		}
	}
	if req.Notes != nil {
		app.Notes = *req.Notes
		fields["notes"] = app.Notes
	}
	if req.Rating != nil {
		app.Rating = req.Rating
		fields["rating"] = *req.Rating
	}
	if len(fields) == 0 {
		return dto.NewApplicationResponse(app), nil
	}

	if err := s.applicationRepo.UpdateFields(db, app.ID, fields); err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if statusChanged {
		logger.Info("Application status changed", "application_id", app.ID, "status", app.Status)
		s.notifier.NotifyStatusChanged(app.Candidate, app.Job, app.Status)
	}
	return dto.NewApplicationResponse(app), nil
}

func (s *ApplicationServiceImpl) Delete(db *gorm.DB, orgID, applicationID string) error {
	app, err := s.find(db, applicationID)
	if err != nil {
		return err
	}
	if app.Job == nil || app.Job.OrganizationID != orgID {
		return apperrors.ErrApplicationNotFound
	}
	if err := s.applicationRepo.Delete(db, app.ID); err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return apperrors.ErrApplicationNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *ApplicationServiceImpl) find(db *gorm.DB, id string) (*models.Application, error) {
	app, err := s.applicationRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return app, nil
}

func canManageApplication(viewer *auth.Claims, app *models.Application) bool {
	if app.Job == nil {
		return auth.IsAdmin(viewer)
	}
	return auth.CanAccessTenant(viewer, app.Job.OrganizationID)
}

// ValidateAnswers checks submitted answers against the job's form fields. It
// returns the trimmed answers for known fields and a message per failing field.
func ValidateAnswers(fields []models.ApplicationFormField, answers map[string]string) (map[string]string, map[string]string) {
	clean := make(map[string]string, len(fields))
	errs := map[string]string{}

	for _, f := range fields {
		value := strings.TrimSpace(answers[f.Name])

		if f.Type == models.FieldTypeCheckbox {
			checked, ok := parseCheckbox(value)
			if !ok {
				errs[f.Name] = "Must be true or false"
				continue
			}
			if f.Required && !checked {
				errs[f.Name] = "This field is required"
				continue
			}
			clean[f.Name] = strconv.FormatBool(checked)
			continue
		}

		if value == "" {
			if f.Required {
				errs[f.Name] = "This field is required"
			}
			continue
		}

		if msg := checkAnswer(f, value); msg != "" {
			errs[f.Name] = msg
			continue
		}
		clean[f.Name] = value
	}
	return clean, errs
}

func checkAnswer(f models.ApplicationFormField, value string) string {
	switch f.Type {
	case models.FieldTypeEmail:
		if !validator.IsEmail(value) {
			return "Invalid email address"
		}
	case models.FieldTypePhone:
		if !validator.IsPhone(value) {
			return "Invalid phone number"
		}
	case models.FieldTypeURL, models.FieldTypeFile:
		if !validator.IsURL(value) {
			return "Invalid URL"
		}
	case models.FieldTypeNumber:
		if _, err := decimal.NewFromString(value); err != nil {
			return "Must be a number"
		}
	case models.FieldTypeDate:
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return "Must be a date (YYYY-MM-DD)"
		}
	case models.FieldTypeSelect:
		for _, opt := range f.GetOptions() {
			if opt == value {
				return ""
			}
		}
		return "Must be one of the listed options"
	case models.FieldTypeText:
		if utf8.RuneCountInString(value) > 1000 {
			return "Must be at most 1000 characters"
		}
	case models.FieldTypeTextarea:
		if utf8.RuneCountInString(value) > 10000 {
			return "Must be at most 10000 characters"
		}
	}
	return ""
}

func parseCheckbox(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "", "false", "0", "off", "no":
		return false, true
	case "true", "1", "on", "yes":
		return true, true
	default:
		return false, false
	}
}
