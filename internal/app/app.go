package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"portal_backend/database"
	"portal_backend/internal/auth"
	"portal_backend/internal/config"
	"portal_backend/internal/handlers"
	"portal_backend/internal/logger"
	"portal_backend/internal/middleware"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/routes"
	"portal_backend/internal/services"
	"portal_backend/internal/validator"
	"portal_backend/internal/workers"
	"portal_backend/pkg/apperrors"
	"portal_backend/ws"
)

const shutdownTimeout = 15 * time.Second

// App is a fully wired server: services, handlers, router and the relay hub.
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Router   *gin.Engine
	Relay    *ws.WebSocketManager
	Services *services.ServiceContainer

	infra *infrastructure
}

// New wires every component on top of an open, migrated database. Nothing
// runs in the background until Start.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB) (*App, error) {
	infra, err := buildInfrastructure(ctx, cfg)
	if err != nil {
		return nil, err
	}

	qurbanRepo := repositories.NewQurbanRepository()
	counts := func(ctx context.Context, orgID string) (map[string]int64, error) {
		byStatus, err := qurbanRepo.CountHewanByStatus(db.WithContext(ctx), orgID)
		if err != nil {
			return nil, err
		}
		out := make(map[string]int64, len(models.HewanStatuses))
		for _, s := range models.HewanStatuses {
			out[string(s)] = byStatus[s]
		}
		return out, nil
	}

	var relayOpts []ws.Option
	if infra.bridge != nil {
		relayOpts = append(relayOpts, ws.WithBridge(infra.bridge))
	}
	relay := ws.NewWebSocketManager(counts, relayOpts...)

	jwtService := auth.NewJWTService(cfg.JWT)
	container := services.NewServiceContainer(services.Dependencies{
		Config:    cfg,
		JWT:       jwtService,
		Blacklist: infra.blacklist,
		Google:    auth.NewGoogleOAuth(cfg),
		Cache:     infra.cache,
		Sheets:    infra.sheets,
		Storage:   infra.storage,
		Email:     infra.email,
		OCR:       infra.ocr,
		Publisher: relay,
	})

	requireAuth := middleware.AuthMiddleware(jwtService, infra.blacklist)
	optionalAuth := middleware.OptionalAuth(jwtService)

	appHandlers := initializeHandlers(container, infra, relay, requireAuth, optionalAuth)
	wsHandler := ws.NewWebSocketHandler(relay, cfg.Server.CORSOrigins)

	router := initializeGinRouter(cfg, db)
	routes.RegisterRoutes(router, appHandlers, wsHandler, requireAuth)

	return &App{
		Config:   cfg,
		DB:       db,
		Router:   router,
		Relay:    relay,
		Services: container,
		infra:    infra,
	}, nil
}

func initializeHandlers(
	container *services.ServiceContainer,
	infra *infrastructure,
	relay *ws.WebSocketManager,
	requireAuth, optionalAuth gin.HandlerFunc,
) *handlers.AppHandlers {
	base := handlers.NewBaseHandler(validator.New(), requireAuth, optionalAuth)

	return &handlers.AppHandlers{
		AuthHandler:        handlers.NewAuthHandler(base, container.AuthService),
		ProfileHandler:     handlers.NewProfileHandler(base, container.ProfileService),
		JobHandler:         handlers.NewJobHandler(base, container.JobService, container.FormFieldService),
		ApplicationHandler: handlers.NewApplicationHandler(base, container.ApplicationService),
		FinanceHandler:     handlers.NewFinanceHandler(base, container.FinanceService),
		QurbanHandler:      handlers.NewQurbanHandler(base, container.QurbanService),
		ItikafHandler:      handlers.NewItikafHandler(base, container.ItikafService),
		UploadHandler:      handlers.NewUploadHandler(base, container.UploadService),
		FileHandler:        handlers.NewFileHandler(base, container.UploadService),
		OCRHandler:         handlers.NewOCRHandler(base, container.OCRService),
		SearchHandler:      handlers.NewSearchHandler(base, infra.regions),
		HealthHandler:      handlers.NewHealthHandler(base, relay),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	apperrors.SetDebug(cfg.Server.Env == "development")

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	router.MaxMultipartMemory = 8 << 20
	return router
}

// Start runs the relay hub and the workers until ctx is cancelled. The
// returned function blocks until they have all stopped.
func (a *App) Start(ctx context.Context) (wait func()) {
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		a.Relay.Run(ctx)
	}()

	jobDone := workers.NewJobWorker(a.DB, a.Services.JobService, a.Config.Workers.JobCloseInterval).Start(ctx)
	syncDone := workers.NewItikafSyncWorker(a.DB, a.Services.ItikafService, a.Config.Workers.ItikafSyncInterval).Start(ctx)

	return func() {
		<-relayDone
		<-jobDone
		<-syncDone
	}
}

// Close waits for queued emails and releases external connections.
func (a *App) Close() {
	a.Services.EmailService.Wait()
	a.infra.close()
}

// Run is the process entry point: load config, connect, migrate, serve until SIGINT/SIGTERM.
func Run() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Serve(ctx, cfg); err != nil {
		logger.Fatal("Server stopped with error", "error", err)
	}
}

// Serve opens the database, migrates, seeds the first admin and serves HTTP until ctx ends.
func Serve(ctx context.Context, cfg *config.Config) error {
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	a, err := New(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.SeedFirstAdmin(); err != nil {
		return fmt.Errorf("failed to seed first admin: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	wait := a.Start(runCtx)

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		logger.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	cancel()
	wait()
	logger.Info("Server stopped")
	return err
}

// SeedFirstAdmin creates the platform admin from FIRST_ADMIN_EMAIL/FIRST_ADMIN_PASSWORD.
func (a *App) SeedFirstAdmin() error {
	if a.Config.FirstAdminEmail == "" || a.Config.FirstAdminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	created, err := a.Services.AuthService.SeedAdmin(a.DB, a.Config.FirstAdminEmail, a.Config.FirstAdminPassword)
	if err != nil {
		return err
	}
	if created {
		logger.Info("First admin user created", "email", a.Config.FirstAdminEmail)
	} else {
		logger.Info("Admin user already exists. Skipping creation.")
	}
	return nil
}
