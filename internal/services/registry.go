package services

import (
	"portal_backend/internal/auth"
	"portal_backend/internal/cache"
	"portal_backend/internal/config"
	"portal_backend/internal/email"
	"portal_backend/internal/ocr"
	"portal_backend/internal/repositories"
	"portal_backend/internal/sheets"
	"portal_backend/internal/storage"
)

// ServiceContainer holds every service the handlers need.
type ServiceContainer struct {
	AuthService        AuthService
	ProfileService     ProfileService
	JobService         JobService
	FormFieldService   FormFieldService
	ApplicationService ApplicationService
	FinanceService     FinanceService
	QurbanService      QurbanService
	ItikafService      ItikafService
	UploadService      UploadService
	OCRService         OCRService
	EmailService       *EmailService
}

// Dependencies are the infrastructure pieces built by the app before services.
type Dependencies struct {
	Config    *config.Config
	JWT       *auth.JWTService
	Blacklist auth.TokenBlacklist
	Google    *auth.GoogleOAuth
	Cache     cache.Cache
	Sheets    sheets.Store
	Storage   storage.Storage
	Email     email.Provider
	OCR       ocr.Client
	Publisher EventPublisher
}

func NewServiceContainer(deps Dependencies) *ServiceContainer {
	cfg := deps.Config

	userRepo := repositories.NewUserRepository()
	profileRepo := repositories.NewProfileRepository()
	refreshTokenRepo := repositories.NewRefreshTokenRepository()
	jobRepo := repositories.NewJobRepository()
	applicationRepo := repositories.NewApplicationRepository()
	financeRepo := repositories.NewFinanceRepository()
	qurbanRepo := repositories.NewQurbanRepository()
	itikafRepo := repositories.NewItikafRepository()
	uploadRepo := repositories.NewUploadRepository()

	emailService := NewEmailService(deps.Email, cfg.Server.PublicURL)

	return &ServiceContainer{
		AuthService:        NewAuthService(userRepo, profileRepo, refreshTokenRepo, deps.JWT, deps.Blacklist, deps.Google),
		ProfileService:     NewProfileService(userRepo, profileRepo, applicationRepo),
		JobService:         NewJobService(jobRepo, applicationRepo),
		FormFieldService:   NewFormFieldService(jobRepo),
		ApplicationService: NewApplicationService(applicationRepo, jobRepo, userRepo, profileRepo, emailService),
		FinanceService:     NewFinanceService(financeRepo, userRepo, deps.Sheets, cfg.Google.FinanceSpreadsheet),
		QurbanService:      NewQurbanService(qurbanRepo, deps.Cache, deps.Publisher),
		ItikafService:      NewItikafService(itikafRepo, deps.Sheets, cfg.Google.ItikafSpreadsheetID),
		UploadService:      NewUploadService(uploadRepo, deps.Storage, cfg.Upload),
		OCRService:         NewOCRService(deps.OCR),
		EmailService:       emailService,
	}
}
