package dto

import (
	"github.com/shopspring/decimal"

	"portal_backend/internal/models"
)

type HewanListRequest struct {
	Type     string `form:"type" validate:"omitempty,is-hewan-type"`
	Status   string `form:"status" validate:"omitempty,is-hewan-status"`
	Query    string `form:"q" validate:"omitempty,max=50"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type CreateHewanRequest struct {
	Code     string           `json:"code" validate:"required,max=32"`
	Type     models.HewanType `json:"type" validate:"required,is-hewan-type"`
	Weight   float64          `json:"weight" validate:"gte=0"`
	Price    decimal.Decimal  `json:"price"`
	Shohibul []string         `json:"shohibul" validate:"omitempty,dive,min=1,max=100"`
	PhotoURL string           `json:"photo_url" validate:"omitempty,max=500"`
	Notes    string           `json:"notes" validate:"max=1000"`
}

type UpdateHewanRequest struct {
	Code     *string          `json:"code" validate:"omitempty,max=32"`
	Weight   *float64         `json:"weight" validate:"omitempty,gte=0"`
	Price    *decimal.Decimal `json:"price"`
	PhotoURL *string          `json:"photo_url" validate:"omitempty,max=500"`
	Notes    *string          `json:"notes" validate:"omitempty,max=1000"`
}

type HewanStatusRequest struct {
	Status models.HewanStatus `json:"status" validate:"required,is-hewan-status"`
}

type ShohibulRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type ProductRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Unit  string `json:"unit" validate:"max=20"`
	Stock int    `json:"stock" validate:"gte=0"`
}

type DistributeRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type HewanResponse struct {
	*models.Hewan
	ShohibulNames []string `json:"shohibul_names"`
	SharesLeft    int      `json:"shares_left"`
}

func NewHewanResponse(h *models.Hewan) *HewanResponse {
	names := h.GetShohibul()
	left := h.MaxShares - len(names)
	if left < 0 {
		left = 0
	}
	return &HewanResponse{Hewan: h, ShohibulNames: names, SharesLeft: left}
}

type QurbanDashboard struct {
	ByStatus         map[models.HewanStatus]int64 `json:"by_status"`
	ByType           map[models.HewanType]int64   `json:"by_type"`
	TotalHewan       int64                        `json:"total_hewan"`
	TotalShohibul    int                          `json:"total_shohibul"`
	TotalValue       decimal.Decimal              `json:"total_value"`
	Products         []models.Product             `json:"products"`
	TotalStock       int                          `json:"total_stock"`
	TotalDistributed int                          `json:"total_distributed"`
}
