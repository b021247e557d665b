package services

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"portal_backend/internal/logger"
	"portal_backend/internal/models"
	"portal_backend/internal/ocr"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/internal/sheets"
	"portal_backend/pkg/apperrors"
)

// Column order shared by CSV and spreadsheet exports. Imports look columns up by
// header name so reordered sheets still work.
var financeHeader = []string{"Date", "Type", "Category", "Amount", "Description", "Receipt"}

type FinanceService interface {
	ListCategories(db *gorm.DB, orgID string, txType models.TransactionType) ([]models.Category, error)
	CreateCategory(db *gorm.DB, orgID string, req *dto.CategoryRequest) (*models.Category, error)
	UpdateCategory(db *gorm.DB, orgID, id string, req *dto.CategoryRequest) (*models.Category, error)
	DeleteCategory(db *gorm.DB, orgID, id string) error

	ListTransactions(db *gorm.DB, orgID string, req *dto.TransactionListRequest) (*dto.PaginatedResponse, error)
	GetTransaction(db *gorm.DB, orgID, id string) (*models.Transaction, error)
	CreateTransaction(db *gorm.DB, orgID, userID string, req *dto.TransactionRequest) (*models.Transaction, error)
	UpdateTransaction(db *gorm.DB, orgID, id string, req *dto.TransactionRequest) (*models.Transaction, error)
	DeleteTransaction(db *gorm.DB, orgID, id string) error

	Summary(db *gorm.DB, orgID string, req *dto.TransactionListRequest) (*dto.FinanceSummary, error)
	ExportCSV(db *gorm.DB, orgID string, req *dto.TransactionListRequest, w io.Writer) error
	ExportToSheet(ctx context.Context, db *gorm.DB, orgID string, req *dto.TransactionListRequest) (*dto.SheetExportResponse, error)
	ImportFromSheet(ctx context.Context, db *gorm.DB, orgID, userID, sheet string) (*dto.SheetImportResponse, error)
}

type FinanceServiceImpl struct {
	financeRepo   repositories.FinanceRepository
	userRepo      repositories.UserRepository
	sheets        sheets.Store
	spreadsheetID string
	now           func() time.Time
}

func NewFinanceService(
	financeRepo repositories.FinanceRepository,
	userRepo repositories.UserRepository,
	store sheets.Store,
	spreadsheetID string,
) FinanceService {
	return &FinanceServiceImpl{
		financeRepo:   financeRepo,
		userRepo:      userRepo,
		sheets:        store,
		spreadsheetID: spreadsheetID,
		now:           time.Now,
	}
}

// Categories

func (s *FinanceServiceImpl) ListCategories(db *gorm.DB, orgID string, txType models.TransactionType) ([]models.Category, error) {
	list, err := s.financeRepo.ListCategories(db, orgID, txType)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if list == nil {
		list = []models.Category{}
	}
	return list, nil
}

func (s *FinanceServiceImpl) CreateCategory(db *gorm.DB, orgID string, req *dto.CategoryRequest) (*models.Category, error) {
	category := &models.Category{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(req.Name),
		Type:           req.Type,
		Color:          req.Color,
	}
	if err := s.financeRepo.CreateCategory(db, category); err != nil {
		if errors.Is(err, repositories.ErrCategoryExists) {
			return nil, apperrors.ErrConflict(err, "finance", "Category already exists")
		}
		return nil, apperrors.InternalError(err)
	}
	return category, nil
}

// UpdateCategory renames or recolors a category. The type is fixed once created.
func (s *FinanceServiceImpl) UpdateCategory(db *gorm.DB, orgID, id string, req *dto.CategoryRequest) (*models.Category, error) {
	category, err := s.findCategory(db, orgID, id)
	if err != nil {
		return nil, err
	}
	if req.Type != category.Type {
		return nil, apperrors.ErrInvalidOperation("finance", "Category type cannot be changed")
	}

	name := strings.TrimSpace(req.Name)
	if !strings.EqualFold(name, category.Name) {
		if _, err := s.financeRepo.FindCategoryByName(db, orgID, name, category.Type); err == nil {
			return nil, apperrors.ErrConflict(repositories.ErrCategoryExists, "finance", "Category already exists")
		} else if !errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.InternalError(err)
		}
	}
	category.Name = name
	category.Color = req.Color
	if err := s.financeRepo.UpdateCategory(db, category); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return category, nil
}

func (s *FinanceServiceImpl) DeleteCategory(db *gorm.DB, orgID, id string) error {
	if _, err := s.findCategory(db, orgID, id); err != nil {
		return err
	}
	inUse, err := s.financeRepo.CategoryInUse(db, id)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if inUse {
		return apperrors.ErrConflict(nil, "finance", "Category still has transactions")
	}
	if err := s.financeRepo.DeleteCategory(db, orgID, id); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// Transactions

func (s *FinanceServiceImpl) ListTransactions(db *gorm.DB, orgID string, req *dto.TransactionListRequest) (*dto.PaginatedResponse, error) {
	filter, err := transactionFilter(orgID, req)
	if err != nil {
		return nil, err
	}
	filter.Page, filter.PageSize = normalizePage(req.Page, req.PageSize)

	list, total, err := s.financeRepo.ListTransactions(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if list == nil {
		list = []models.Transaction{}
	}
	return dto.NewPaginatedResponse(list, total, filter.Page, filter.PageSize), nil
}

func (s *FinanceServiceImpl) GetTransaction(db *gorm.DB, orgID, id string) (*models.Transaction, error) {
	t, err := s.financeRepo.FindTransaction(db, orgID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return t, nil
}

func (s *FinanceServiceImpl) CreateTransaction(db *gorm.DB, orgID, userID string, req *dto.TransactionRequest) (*models.Transaction, error) {
	category, err := s.checkTransaction(db, orgID, req)
	if err != nil {
		return nil, err
	}

	t := &models.Transaction{
		OrganizationID: orgID,
		CategoryID:     category.ID,
		Type:           req.Type,
		Amount:         req.Amount.Round(2),
		Description:    strings.TrimSpace(req.Description),
		OccurredAt:     s.now().UTC(),
		ReceiptURL:     req.ReceiptURL,
		CreatedByID:    userID,
	}
	if req.OccurredAt != nil {
		t.OccurredAt = req.OccurredAt.UTC()
	}
	if err := s.financeRepo.CreateTransaction(db, t); err != nil {
		return nil, apperrors.InternalError(err)
	}
	t.Category = category
	return t, nil
}

func (s *FinanceServiceImpl) UpdateTransaction(db *gorm.DB, orgID, id string, req *dto.TransactionRequest) (*models.Transaction, error) {
	t, err := s.GetTransaction(db, orgID, id)
	if err != nil {
		return nil, err
	}
	category, err := s.checkTransaction(db, orgID, req)
	if err != nil {
		return nil, err
	}

	t.CategoryID = category.ID
	t.Category = category
	t.Type = req.Type
	t.Amount = req.Amount.Round(2)
	t.Description = strings.TrimSpace(req.Description)
	t.ReceiptURL = req.ReceiptURL
	if req.OccurredAt != nil {
		t.OccurredAt = req.OccurredAt.UTC()
	}
	if err := s.financeRepo.UpdateTransaction(db, t); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return t, nil
}

func (s *FinanceServiceImpl) DeleteTransaction(db *gorm.DB, orgID, id string) error {
	if err := s.financeRepo.DeleteTransaction(db, orgID, id); err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return apperrors.ErrTransactionNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *FinanceServiceImpl) checkTransaction(db *gorm.DB, orgID string, req *dto.TransactionRequest) (*models.Category, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.ValidationError(map[string]string{"amount": "Must be greater than zero"})
	}
	category, err := s.findCategory(db, orgID, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.Type != req.Type {
		return nil, apperrors.ErrCategoryTypeMismatch
	}
	return category, nil
}

// Reports

// Summary totals the filtered transactions overall, per category and per month.
func (s *FinanceServiceImpl) Summary(db *gorm.DB, orgID string, req *dto.TransactionListRequest) (*dto.FinanceSummary, error) {
	list, err := s.allTransactions(db, orgID, req)
	if err != nil {
		return nil, err
	}

	summary := &dto.FinanceSummary{
		Count:      len(list),
		ByCategory: []dto.CategoryTotal{},
		ByMonth:    []dto.MonthTotal{},
	}
	byCategory := map[string]*dto.CategoryTotal{}
	byMonth := map[string]*dto.MonthTotal{}

	for _, t := range list {
		if t.Type == models.TransactionIncome {
			summary.Income = summary.Income.Add(t.Amount)
		} else {
			summary.Expense = summary.Expense.Add(t.Amount)
		}

		ct, ok := byCategory[t.CategoryID]
		if !ok {
			ct = &dto.CategoryTotal{CategoryID: t.CategoryID, Type: t.Type}
			if t.Category != nil {
				ct.Name = t.Category.Name
			}
			byCategory[t.CategoryID] = ct
		}
		ct.Total = ct.Total.Add(t.Amount)
		ct.Count++

		month := t.OccurredAt.UTC().Format("2006-01")
		mt, ok := byMonth[month]
		if !ok {
			mt = &dto.MonthTotal{Month: month}
			byMonth[month] = mt
		}
		if t.Type == models.TransactionIncome {
			mt.Income = mt.Income.Add(t.Amount)
		} else {
			mt.Expense = mt.Expense.Add(t.Amount)
		}
	}
	summary.Balance = summary.Income.Sub(summary.Expense)

	for _, ct := range byCategory {
		summary.ByCategory = append(summary.ByCategory, *ct)
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		a, b := summary.ByCategory[i], summary.ByCategory[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.Name < b.Name
	})

	for _, mt := range byMonth {
		mt.Balance = mt.Income.Sub(mt.Expense)
		summary.ByMonth = append(summary.ByMonth, *mt)
	}
	sort.Slice(summary.ByMonth, func(i, j int) bool {
		return summary.ByMonth[i].Month < summary.ByMonth[j].Month
	})
	return summary, nil
}

func (s *FinanceServiceImpl) ExportCSV(db *gorm.DB, orgID string, req *dto.TransactionListRequest, w io.Writer) error {
	list, err := s.allTransactions(db, orgID, req)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(financeHeader); err != nil {
		return apperrors.InternalError(err)
	}
	for i := range list {
		if err := cw.Write(transactionRow(&list[i])); err != nil {
			return apperrors.InternalError(err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// ExportToSheet replaces the organization's tab in the finance spreadsheet with
// the filtered transactions.
func (s *FinanceServiceImpl) ExportToSheet(ctx context.Context, db *gorm.DB, orgID string, req *dto.TransactionListRequest) (*dto.SheetExportResponse, error) {
	if !s.sheetsConfigured() {
		return nil, apperrors.ErrSheetsNotConfigured
	}
	org, err := s.userRepo.FindOrganizationByID(db, orgID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	list, err := s.allTransactions(db, orgID, req)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(list)+1)
	rows = append(rows, financeHeader)
	for i := range list {
		rows = append(rows, transactionRow(&list[i]))
	}

	sheet := org.Slug
	if err := s.sheets.EnsureSheet(ctx, s.spreadsheetID, sheet); err != nil {
		return nil, apperrors.ExternalError(err, "sheets", "Failed to prepare spreadsheet")
	}
	if err := s.sheets.ClearAndWrite(ctx, s.spreadsheetID, sheet, rows); err != nil {
		return nil, apperrors.ExternalError(err, "sheets", "Failed to write spreadsheet")
	}

	logger.CtxInfo(ctx, "Exported transactions to spreadsheet", "organization_id", orgID, "rows", len(list))
	return &dto.SheetExportResponse{SpreadsheetID: s.spreadsheetID, Sheet: sheet, Rows: len(list)}, nil
}

// ImportFromSheet reads transactions from a tab of the finance spreadsheet.
// Unknown categories are created; rows that cannot be parsed are reported and skipped.
func (s *FinanceServiceImpl) ImportFromSheet(ctx context.Context, db *gorm.DB, orgID, userID, sheet string) (*dto.SheetImportResponse, error) {
	if !s.sheetsConfigured() {
		return nil, apperrors.ErrSheetsNotConfigured
	}
	rows, err := s.sheets.ReadRows(ctx, s.spreadsheetID, sheet)
	if err != nil {
		if errors.Is(err, sheets.ErrSheetNotFound) {
			return nil, apperrors.NotFound("sheets", "Sheet not found")
		}
		return nil, apperrors.ExternalError(err, "sheets", "Failed to read spreadsheet")
	}
	resp := &dto.SheetImportResponse{Skipped: []dto.ImportRowError{}}
	if len(rows) < 2 {
		return resp, nil
	}

	idx := sheets.HeaderIndex(rows)
	col := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i > len(row) {
			return ""
		}
		return strings.TrimSpace(row[i-1])
	}
	for _, required := range []string{"date", "type", "category", "amount"} {
		if _, ok := idx[required]; !ok {
			return nil, apperrors.ValidationError(map[string]string{"sheet": "Missing column: " + required})
		}
	}

	tx := db.Begin()
	defer tx.Rollback()

	categories := map[string]*models.Category{}
	var batch []models.Transaction
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlankRow(row) {
			continue
		}

		occurredAt, ok := parseSheetDate(col(row, "date"))
		if !ok {
			resp.Skipped = append(resp.Skipped, dto.ImportRowError{Row: rowNum, Reason: "invalid date"})
			continue
		}
		txType, ok := parseTransactionType(col(row, "type"))
		if !ok {
			resp.Skipped = append(resp.Skipped, dto.ImportRowError{Row: rowNum, Reason: "invalid type"})
			continue
		}
		amount, ok := ocr.ParseAmount(col(row, "amount"))
		if !ok {
			resp.Skipped = append(resp.Skipped, dto.ImportRowError{Row: rowNum, Reason: "invalid amount"})
			continue
		}
		name := col(row, "category")
		if name == "" {
			resp.Skipped = append(resp.Skipped, dto.ImportRowError{Row: rowNum, Reason: "missing category"})
			continue
		}

		category, err := s.importCategory(tx, orgID, name, txType, categories)
		if err != nil {
			return nil, err
		}
		batch = append(batch, models.Transaction{
			OrganizationID: orgID,
			CategoryID:     category.ID,
			Type:           txType,
			Amount:         amount.Round(2),
			Description:    col(row, "description"),
			OccurredAt:     occurredAt.UTC(),
			ReceiptURL:     col(row, "receipt"),
			CreatedByID:    userID,
		})
	}

	if len(batch) > 0 {
		if err := s.financeRepo.CreateTransactions(tx, batch); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp.Imported = len(batch)

	logger.CtxInfo(ctx, "Imported transactions from spreadsheet",
		"organization_id", orgID, "sheet", sheet, "imported", resp.Imported, "skipped", len(resp.Skipped))
	return resp, nil
}

func (s *FinanceServiceImpl) importCategory(tx *gorm.DB, orgID, name string, txType models.TransactionType, seen map[string]*models.Category) (*models.Category, error) {
	key := string(txType) + ":" + strings.ToLower(name)
	if c, ok := seen[key]; ok {
		return c, nil
	}
	c, err := s.financeRepo.FindCategoryByName(tx, orgID, name, txType)
	if errors.Is(err, repositories.ErrCategoryNotFound) {
		c = &models.Category{OrganizationID: orgID, Name: name, Type: txType}
		err = s.financeRepo.CreateCategory(tx, c)
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	seen[key] = c
	return c, nil
}

func (s *FinanceServiceImpl) allTransactions(db *gorm.DB, orgID string, req *dto.TransactionListRequest) ([]models.Transaction, error) {
	filter, err := transactionFilter(orgID, req)
	if err != nil {
		return nil, err
	}
	list, _, err := s.financeRepo.ListTransactions(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return list, nil
}

func (s *FinanceServiceImpl) findCategory(db *gorm.DB, orgID, id string) (*models.Category, error) {
	c, err := s.financeRepo.FindCategory(db, orgID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return c, nil
}

func (s *FinanceServiceImpl) sheetsConfigured() bool {
	return s.sheets != nil && s.spreadsheetID != ""
}

// transactionFilter parses the list query. A date-only "to" bound covers the whole day.
func transactionFilter(orgID string, req *dto.TransactionListRequest) (repositories.TransactionFilter, error) {
	filter := repositories.TransactionFilter{
		OrganizationID: orgID,
		Type:           models.TransactionType(req.Type),
		CategoryID:     req.CategoryID,
	}
	from, ok := parseDateParam(req.From)
	if !ok {
		return filter, apperrors.ValidationError(map[string]string{"from": "Must be YYYY-MM-DD or RFC3339"})
	}
	to, ok := parseDateParam(req.To)
	if !ok {
		return filter, apperrors.ValidationError(map[string]string{"to": "Must be YYYY-MM-DD or RFC3339"})
	}
	if to != nil && len(strings.TrimSpace(req.To)) == len("2006-01-02") {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && from.After(*to) {
		return filter, apperrors.ValidationError(map[string]string{"from": "Must not be after to"})
	}
	filter.From, filter.To = from, to
	return filter, nil
}

func transactionRow(t *models.Transaction) []string {
	category := ""
	if t.Category != nil {
		category = t.Category.Name
	}
	return []string{
		t.OccurredAt.UTC().Format("2006-01-02"),
		string(t.Type),
		category,
		t.Amount.StringFixed(2),
		t.Description,
		t.ReceiptURL,
	}
}

// parseSheetDate also accepts the DD/MM/YYYY form spreadsheets show by default in id-ID.
func parseSheetDate(s string) (*time.Time, bool) {
	if t, ok := parseDateParam(s); ok && t != nil {
		return t, true
	}
	if t, err := time.Parse("02/01/2006", strings.TrimSpace(s)); err == nil {
		return &t, true
	}
	return nil, false
}

func parseTransactionType(s string) (models.TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "pemasukan", "masuk", "in":
		return models.TransactionIncome, true
	case "expense", "pengeluaran", "keluar", "out":
		return models.TransactionExpense, true
	}
	return "", false
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
