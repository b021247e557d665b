package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"portal_backend/internal/auth"
	"portal_backend/internal/cache"
	"portal_backend/internal/config"
	"portal_backend/internal/email"
	"portal_backend/internal/logger"
	"portal_backend/internal/ocr"
	"portal_backend/internal/regions"
	"portal_backend/internal/sheets"
	"portal_backend/internal/storage"
	"portal_backend/ws"
)

// infrastructure is everything the services talk to besides the database.
// Optional integrations fall back to in-process implementations.
type infrastructure struct {
	redis     *redis.Client
	cache     cache.Cache
	blacklist auth.TokenBlacklist
	bridge    ws.Bridge
	sheets    sheets.Store
	storage   storage.Storage
	email     email.Provider
	ocr       ocr.Client
	regions   *regions.Index
}

func buildInfrastructure(ctx context.Context, cfg *config.Config) (*infrastructure, error) {
	infra := &infrastructure{}

	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, using in-memory cache, blacklist and relay", "error", err)
		} else {
			infra.redis = client
			logger.Info("Redis connected", "addr", cfg.Redis.Addr)
		}
	}

	if infra.redis != nil {
		infra.cache = cache.NewRedisCache(infra.redis, "portal:")
		infra.blacklist = auth.NewRedisTokenBlacklist(infra.redis)
		infra.bridge = ws.NewRedisBridge(infra.redis, ws.DefaultBridgeChannel)
	} else {
		infra.cache = cache.NewMemoryCache()
		infra.blacklist = auth.NewInMemoryTokenBlacklist()
	}

	// typed nils would make the services believe the integration is present
	if cfg.Google.SheetsEnabled() {
		store, err := sheets.NewGoogleStore(ctx, cfg.Google)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize google sheets: %w", err)
		}
		infra.sheets = store
		logger.Info("Google Sheets connected")
	} else if cfg.Google.ItikafSpreadsheetID != "" || cfg.Google.FinanceSpreadsheet != "" {
		logger.Warn("Spreadsheet ids set without credentials, using in-memory sheets")
		infra.sheets = sheets.NewMemoryStore()
	}

	store, err := storage.NewStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	infra.storage = store
	logger.Info("Storage initialized", "type", store.Provider())

	provider, err := email.NewProvider(cfg.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email: %w", err)
	}
	infra.email = provider

	if cfg.OCR.Endpoint != "" {
		infra.ocr = ocr.NewHTTPClient(cfg.OCR)
	}

	index, err := regions.Load(cfg.Regions.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load regions: %w", err)
	}
	infra.regions = index
	logger.Info("Region index built", "regions", index.Len())

	return infra, nil
}

func (i *infrastructure) close() {
	if i.email != nil {
		if err := i.email.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close email provider")
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close redis")
		}
	}
}
