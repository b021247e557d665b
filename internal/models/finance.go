package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	BaseModel
	OrganizationID string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_category_org_name_type" json:"organization_id"`
	Name           string          `gorm:"not null;uniqueIndex:idx_category_org_name_type" json:"name"`
	Type           TransactionType `gorm:"type:varchar(10);not null;uniqueIndex:idx_category_org_name_type" json:"type"`
	Color          string          `gorm:"type:varchar(16)" json:"color,omitempty"`
}

func (c *Category) TenantID() string { return c.OrganizationID }

type Transaction struct {
	BaseModel
	OrganizationID string          `gorm:"type:varchar(36);not null;index" json:"organization_id"`
	CategoryID     string          `gorm:"type:varchar(36);not null;index" json:"category_id"`
	Type           TransactionType `gorm:"type:varchar(10);not null;index" json:"type"`
	Amount         decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"amount"`
	Description    string          `json:"description"`
	OccurredAt     time.Time       `gorm:"not null;index" json:"occurred_at"`
	ReceiptURL     string          `json:"receipt_url,omitempty"`
	CreatedByID    string          `gorm:"type:varchar(36)" json:"created_by_id"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (t *Transaction) TenantID() string { return t.OrganizationID }
