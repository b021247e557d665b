package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"portal_backend/internal/models"
)

type CategoryRequest struct {
	Name  string                 `json:"name" validate:"required,min=1,max=100"`
	Type  models.TransactionType `json:"type" validate:"required,is-transaction-type"`
	Color string                 `json:"color" validate:"omitempty,max=16"`
}

type TransactionRequest struct {
	CategoryID  string                 `json:"category_id" validate:"required"`
	Type        models.TransactionType `json:"type" validate:"required,is-transaction-type"`
	Amount      decimal.Decimal        `json:"amount"`
	Description string                 `json:"description" validate:"max=500"`
	OccurredAt  *time.Time             `json:"occurred_at"`
	ReceiptURL  string                 `json:"receipt_url" validate:"omitempty,max=500"`
}

type TransactionListRequest struct {
	Type       string `form:"type" validate:"omitempty,is-transaction-type"`
	CategoryID string `form:"category_id"`
	From       string `form:"from"`
	To         string `form:"to"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

type CategoryTotal struct {
	CategoryID string                 `json:"category_id"`
	Name       string                 `json:"name"`
	Type       models.TransactionType `json:"type"`
	Total      decimal.Decimal        `json:"total"`
	Count      int                    `json:"count"`
}

type MonthTotal struct {
	Month   string          `json:"month"` // YYYY-MM
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

type FinanceSummary struct {
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Balance    decimal.Decimal `json:"balance"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"by_category"`
	ByMonth    []MonthTotal    `json:"by_month"`
}

type SheetExportResponse struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	Sheet         string `json:"sheet"`
	Rows          int    `json:"rows"`
}

type SheetImportRequest struct {
	Sheet string `json:"sheet" validate:"required,max=100"`
}

type SheetImportResponse struct {
	Imported int              `json:"imported"`
	Skipped  []ImportRowError `json:"skipped"`
}

type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
