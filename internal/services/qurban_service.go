package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"portal_backend/internal/cache"
	"portal_backend/internal/logger"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/pkg/apperrors"
)

// Relay event names, shared with the websocket hub.
const (
	EventUpdateHewan   = "update-hewan"
	EventUpdateProduct = "update-product"
)

const dashboardTTL = 30 * time.Second

// EventPublisher fans counter updates out to connected dashboards.
type EventPublisher interface {
	Publish(ctx context.Context, orgID, event string, data interface{})
}

type QurbanService interface {
	ListHewan(db *gorm.DB, orgID string, req *dto.HewanListRequest) (*dto.PaginatedResponse, error)
	GetHewan(db *gorm.DB, orgID, id string) (*dto.HewanResponse, error)
	CreateHewan(ctx context.Context, db *gorm.DB, orgID string, req *dto.CreateHewanRequest) (*dto.HewanResponse, error)
	UpdateHewan(ctx context.Context, db *gorm.DB, orgID, id string, req *dto.UpdateHewanRequest) (*dto.HewanResponse, error)
	UpdateHewanStatus(ctx context.Context, db *gorm.DB, orgID, id string, status models.HewanStatus) (*dto.HewanResponse, error)
	DeleteHewan(ctx context.Context, db *gorm.DB, orgID, id string) error
	AddShohibul(ctx context.Context, db *gorm.DB, orgID, id, name string) (*dto.HewanResponse, error)
	RemoveShohibul(ctx context.Context, db *gorm.DB, orgID, id string, index int) (*dto.HewanResponse, error)
	CountByStatus(db *gorm.DB, orgID string) (map[models.HewanStatus]int64, error)

	ListProducts(db *gorm.DB, orgID string) ([]models.Product, error)
	CreateProduct(ctx context.Context, db *gorm.DB, orgID string, req *dto.ProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, db *gorm.DB, orgID, id string, req *dto.ProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, db *gorm.DB, orgID, id string) error
	Distribute(ctx context.Context, db *gorm.DB, orgID, id string, qty int) (*models.Product, error)

	Dashboard(ctx context.Context, db *gorm.DB, orgID string) (*dto.QurbanDashboard, error)
}

type QurbanServiceImpl struct {
	qurbanRepo repositories.QurbanRepository
	cache      cache.Cache
	publisher  EventPublisher
}

func NewQurbanService(qurbanRepo repositories.QurbanRepository, c cache.Cache, publisher EventPublisher) QurbanService {
	return &QurbanServiceImpl{
		qurbanRepo: qurbanRepo,
		cache:      c,
		publisher:  publisher,
	}
}

func (s *QurbanServiceImpl) ListHewan(db *gorm.DB, orgID string, req *dto.HewanListRequest) (*dto.PaginatedResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)
	list, total, err := s.qurbanRepo.ListHewan(db, repositories.HewanFilter{
		OrganizationID: orgID,
		Type:           models.HewanType(req.Type),
		Status:         models.HewanStatus(req.Status),
		Query:          req.Query,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]*dto.HewanResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.NewHewanResponse(&list[i]))
	}
	return dto.NewPaginatedResponse(out, total, page, pageSize), nil
}

func (s *QurbanServiceImpl) GetHewan(db *gorm.DB, orgID, id string) (*dto.HewanResponse, error) {
	h, err := s.findHewan(db, orgID, id)
	if err != nil {
		return nil, err
	}
	return dto.NewHewanResponse(h), nil
}

func (s *QurbanServiceImpl) CreateHewan(ctx context.Context, db *gorm.DB, orgID string, req *dto.CreateHewanRequest) (*dto.HewanResponse, error) {
	if req.Price.IsNegative() {
		return nil, apperrors.ValidationError(map[string]string{"price": "Must not be negative"})
	}
	names := cleanNames(req.Shohibul)
	maxShares := req.Type.MaxShares()
	if len(names) > maxShares {
		return nil, apperrors.ErrSharesFull
	}

	h := &models.Hewan{
		OrganizationID: orgID,
		Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
		Type:           req.Type,
		Weight:         req.Weight,
		Price:          req.Price.Round(2),
		Status:         models.HewanStatusRegistered,
		MaxShares:      maxShares,
		PhotoURL:       req.PhotoURL,
		Notes:          req.Notes,
	}
	h.SetShohibul(names)
	if err := s.qurbanRepo.CreateHewan(db, h); err != nil {
		if errors.Is(err, repositories.ErrHewanCodeTaken) {
			return nil, apperrors.ErrHewanCodeTaken
		}
		return nil, apperrors.InternalError(err)
	}

	s.hewanChanged(ctx, orgID)
	return dto.NewHewanResponse(h), nil
}

func (s *QurbanServiceImpl) UpdateHewan(ctx context.Context, db *gorm.DB, orgID, id string, req *dto.UpdateHewanRequest) (*dto.HewanResponse, error) {
	tx := db.Begin()
	defer tx.Rollback()

	h, err := s.findHewan(tx, orgID, id)
	if err != nil {
		return nil, err
	}
	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if code == "" {
			return nil, apperrors.ValidationError(map[string]string{"code": "Must not be empty"})
		}
		taken, err := s.qurbanRepo.HewanCodeExists(tx, orgID, code, h.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if taken {
			return nil, apperrors.ErrHewanCodeTaken
		}
		h.Code = code
	}
	if req.Weight != nil {
		h.Weight = *req.Weight
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apperrors.ValidationError(map[string]string{"price": "Must not be negative"})
		}
		h.Price = req.Price.Round(2)
	}
	if req.PhotoURL != nil {
		h.PhotoURL = *req.PhotoURL
	}
	if req.Notes != nil {
		h.Notes = *req.Notes
	}

	if err := s.qurbanRepo.UpdateHewan(tx, h); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.hewanChanged(ctx, orgID)
	return dto.NewHewanResponse(h), nil
}

func (s *QurbanServiceImpl) UpdateHewanStatus(ctx context.Context, db *gorm.DB, orgID, id string, status models.HewanStatus) (*dto.HewanResponse, error) {
	h, err := s.findHewan(db, orgID, id)
	if err != nil {
		return nil, err
	}
	if h.Status == status {
		return dto.NewHewanResponse(h), nil
	}
	if err := s.qurbanRepo.UpdateHewanFields(db, orgID, id, map[string]interface{}{"status": status}); err != nil {
		if errors.Is(err, repositories.ErrHewanNotFound) {
			return nil, apperrors.ErrHewanNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "Hewan status changed", "hewan_id", id, "from", h.Status, "to", status)
	h.Status = status

	s.hewanChanged(ctx, orgID)
	return dto.NewHewanResponse(h), nil
}

func (s *QurbanServiceImpl) DeleteHewan(ctx context.Context, db *gorm.DB, orgID, id string) error {
	if err := s.qurbanRepo.DeleteHewan(db, orgID, id); err != nil {
		if errors.Is(err, repositories.ErrHewanNotFound) {
			return apperrors.ErrHewanNotFound
		}
		return apperrors.InternalError(err)
	}
	s.hewanChanged(ctx, orgID)
	return nil
}

// AddShohibul appends a participant to the animal's shares. Concurrent writers
// can race on the share list; the last write wins.
func (s *QurbanServiceImpl) AddShohibul(ctx context.Context, db *gorm.DB, orgID, id, name string) (*dto.HewanResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ValidationError(map[string]string{"name": "Must not be empty"})
	}

	tx := db.Begin()
	defer tx.Rollback()

	h, err := s.findHewan(tx, orgID, id)
	if err != nil {
		return nil, err
	}
	names := h.GetShohibul()
	if len(names) >= h.MaxShares {
		return nil, apperrors.ErrSharesFull
	}
	h.SetShohibul(append(names, name))
	if err := s.qurbanRepo.UpdateHewanFields(tx, orgID, id, map[string]interface{}{"shohibul": h.Shohibul}); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.hewanChanged(ctx, orgID)
	return dto.NewHewanResponse(h), nil
}

func (s *QurbanServiceImpl) RemoveShohibul(ctx context.Context, db *gorm.DB, orgID, id string, index int) (*dto.HewanResponse, error) {
	tx := db.Begin()
	defer tx.Rollback()

	h, err := s.findHewan(tx, orgID, id)
	if err != nil {
		return nil, err
	}
	names := h.GetShohibul()
	if index < 0 || index >= len(names) {
		return nil, apperrors.NotFound("qurban", "Shohibul not found")
	}
	h.SetShohibul(append(names[:index:index], names[index+1:]...))
	if err := s.qurbanRepo.UpdateHewanFields(tx, orgID, id, map[string]interface{}{"shohibul": h.Shohibul}); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.hewanChanged(ctx, orgID)
	return dto.NewHewanResponse(h), nil
}

func (s *QurbanServiceImpl) CountByStatus(db *gorm.DB, orgID string) (map[models.HewanStatus]int64, error) {
	counts, err := s.qurbanRepo.CountHewanByStatus(db, orgID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return counts, nil
}

// Products

func (s *QurbanServiceImpl) ListProducts(db *gorm.DB, orgID string) ([]models.Product, error) {
	list, err := s.qurbanRepo.ListProducts(db, orgID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if list == nil {
		list = []models.Product{}
	}
	return list, nil
}

func (s *QurbanServiceImpl) CreateProduct(ctx context.Context, db *gorm.DB, orgID string, req *dto.ProductRequest) (*models.Product, error) {
	p := &models.Product{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(req.Name),
		Unit:           strings.TrimSpace(req.Unit),
		Stock:          req.Stock,
	}
	if err := s.qurbanRepo.CreateProduct(db, p); err != nil {
		return nil, apperrors.InternalError(err)
	}
	s.productChanged(ctx, orgID, p)
	return p, nil
}

func (s *QurbanServiceImpl) UpdateProduct(ctx context.Context, db *gorm.DB, orgID, id string, req *dto.ProductRequest) (*models.Product, error) {
	p, err := s.findProduct(db, orgID, id)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(req.Name)
	p.Unit = strings.TrimSpace(req.Unit)
	p.Stock = req.Stock
	if err := s.qurbanRepo.UpdateProduct(db, p); err != nil {
		return nil, apperrors.InternalError(err)
	}
	s.productChanged(ctx, orgID, p)
	return p, nil
}

func (s *QurbanServiceImpl) DeleteProduct(ctx context.Context, db *gorm.DB, orgID, id string) error {
	if err := s.qurbanRepo.DeleteProduct(db, orgID, id); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return apperrors.ErrProductNotFound
		}
		return apperrors.InternalError(err)
	}
	s.productChanged(ctx, orgID, map[string]string{"id": id, "deleted": "true"})
	return nil
}

// Distribute moves qty units from stock to distributed in a single conditional update.
func (s *QurbanServiceImpl) Distribute(ctx context.Context, db *gorm.DB, orgID, id string, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, apperrors.ValidationError(map[string]string{"quantity": "Must be greater than zero"})
	}
	if err := s.qurbanRepo.Distribute(db, orgID, id, qty); err != nil {
		switch {
		case errors.Is(err, repositories.ErrProductNotFound):
			return nil, apperrors.ErrProductNotFound
		case errors.Is(err, repositories.ErrInsufficientStock):
			return nil, apperrors.ErrInsufficientStock
		}
		return nil, apperrors.InternalError(err)
	}
	p, err := s.findProduct(db, orgID, id)
	if err != nil {
		return nil, err
	}
	s.productChanged(ctx, orgID, p)
	return p, nil
}

// Dashboard aggregates hewan and product figures. Results are cached briefly and
// dropped on every mutation.
func (s *QurbanServiceImpl) Dashboard(ctx context.Context, db *gorm.DB, orgID string) (*dto.QurbanDashboard, error) {
	key := dashboardKey(orgID)
	if s.cache != nil {
		var cached dto.QurbanDashboard
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			logger.CtxWarn(ctx, "Dashboard cache read failed", "error", err)
		}
	}

	var (
		byStatus map[models.HewanStatus]int64
		byType   map[models.HewanType]int64
		hewan    []models.Hewan
		products []models.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byStatus, err = s.qurbanRepo.CountHewanByStatus(db.WithContext(gctx), orgID)
		return err
	})
	g.Go(func() error {
		var err error
		byType, err = s.qurbanRepo.CountHewanByType(db.WithContext(gctx), orgID)
		return err
	})
	g.Go(func() error {
		var err error
		hewan, _, err = s.qurbanRepo.ListHewan(db.WithContext(gctx), repositories.HewanFilter{OrganizationID: orgID})
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.qurbanRepo.ListProducts(db.WithContext(gctx), orgID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.InternalError(err)
	}

	d := &dto.QurbanDashboard{
		ByStatus:   byStatus,
		ByType:     byType,
		TotalHewan: int64(len(hewan)),
		TotalValue: decimal.Zero,
		Products:   products,
	}
	if d.Products == nil {
		d.Products = []models.Product{}
	}
	for i := range hewan {
		d.TotalShohibul += len(hewan[i].GetShohibul())
		d.TotalValue = d.TotalValue.Add(hewan[i].Price)
	}
	for _, p := range products {
		d.TotalStock += p.Stock
		d.TotalDistributed += p.Distributed
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, d, dashboardTTL); err != nil {
			logger.CtxWarn(ctx, "Dashboard cache write failed", "error", err)
		}
	}
	return d, nil
}

func (s *QurbanServiceImpl) hewanChanged(ctx context.Context, orgID string) {
	s.invalidate(ctx, orgID)
	if s.publisher != nil {
		s.publisher.Publish(ctx, orgID, EventUpdateHewan, nil)
	}
}

func (s *QurbanServiceImpl) productChanged(ctx context.Context, orgID string, data interface{}) {
	s.invalidate(ctx, orgID)
	if s.publisher != nil {
		s.publisher.Publish(ctx, orgID, EventUpdateProduct, data)
	}
}

func (s *QurbanServiceImpl) invalidate(ctx context.Context, orgID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboardKey(orgID)); err != nil {
		logger.CtxWarn(ctx, "Dashboard cache invalidation failed", "organization_id", orgID, "error", err)
	}
}

func (s *QurbanServiceImpl) findHewan(db *gorm.DB, orgID, id string) (*models.Hewan, error) {
	h, err := s.qurbanRepo.FindHewan(db, orgID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrHewanNotFound) {
			return nil, apperrors.ErrHewanNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return h, nil
}

func (s *QurbanServiceImpl) findProduct(db *gorm.DB, orgID, id string) (*models.Product, error) {
	p, err := s.qurbanRepo.FindProduct(db, orgID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return p, nil
}

func dashboardKey(orgID string) string {
	return "qurban:dashboard:" + orgID
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
