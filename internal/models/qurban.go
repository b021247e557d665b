package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Hewan struct {
	BaseModel
	OrganizationID string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_hewan_org_code" json:"organization_id"`
	Code           string          `gorm:"not null;uniqueIndex:idx_hewan_org_code" json:"code"`
	Type           HewanType       `gorm:"type:varchar(10);not null" json:"type"`
	Weight         float64         `json:"weight"`
	Price          decimal.Decimal `gorm:"type:decimal(14,2)" json:"price"`
	Status         HewanStatus     `gorm:"type:varchar(20);default:'registered';index" json:"status"`
	Shohibul       datatypes.JSON  `json:"shohibul"`
	MaxShares      int             `json:"max_shares"`
	PhotoURL       string          `json:"photo_url,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

func (h *Hewan) TenantID() string { return h.OrganizationID }

func (h *Hewan) GetShohibul() []string {
	return decodeStrings(h.Shohibul)
}

func (h *Hewan) SetShohibul(names []string) {
	h.Shohibul = encodeStrings(names)
}

// Product is a distribution package (meat parcels and the like).
type Product struct {
	BaseModel
	OrganizationID string `gorm:"type:varchar(36);not null;index" json:"organization_id"`
	Name           string `gorm:"not null" json:"name"`
	Unit           string `json:"unit"`
	Stock          int    `gorm:"not null;default:0" json:"stock"`
	Distributed    int    `gorm:"not null;default:0" json:"distributed"`
}

func (p *Product) TenantID() string { return p.OrganizationID }
