package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/internal/sheets"
	"portal_backend/internal/testutil"
	"portal_backend/pkg/apperrors"
)

const testSpreadsheet = "sheet-id"

type financeFixture struct {
	db    *gorm.DB
	svc   FinanceService
	store *sheets.MemoryStore
	org   *models.Organization
	user  *models.User
}

func newFinanceFixture(t *testing.T) *financeFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := sheets.NewMemoryStore()
	org := testutil.CreateOrganization(t, db, models.OrganizationKindMosque)
	return &financeFixture{
		db:    db,
		svc:   NewFinanceService(repositories.NewFinanceRepository(), repositories.NewUserRepository(), store, testSpreadsheet),
		store: store,
		org:   org,
		user:  testutil.CreateUser(t, db, models.UserRoleMosqueAdmin, org),
	}
}

func (f *financeFixture) category(t *testing.T, name string, typ models.TransactionType) *models.Category {
	t.Helper()
	c, err := f.svc.CreateCategory(f.db, f.org.ID, &dto.CategoryRequest{Name: name, Type: typ})
	require.NoError(t, err)
	return c
}

func (f *financeFixture) record(t *testing.T, c *models.Category, amount string, at time.Time) *models.Transaction {
	t.Helper()
	tx, err := f.svc.CreateTransaction(f.db, f.org.ID, f.user.ID, &dto.TransactionRequest{
		CategoryID: c.ID,
		Type:       c.Type,
		Amount:     decimal.RequireFromString(amount),
		OccurredAt: &at,
	})
	require.NoError(t, err)
	return tx
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func TestFinanceService_Categories(t *testing.T) {
	f := newFinanceFixture(t)
	infaq := f.category(t, "Infaq Jumat", models.TransactionIncome)

	_, err := f.svc.CreateCategory(f.db, f.org.ID, &dto.CategoryRequest{Name: "Infaq Jumat", Type: models.TransactionIncome})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)

	// same name is allowed for the other transaction type
	f.category(t, "Infaq Jumat", models.TransactionExpense)

	f.record(t, infaq, "100000", day(2026, 3, 1))
	err = f.svc.DeleteCategory(f.db, f.org.ID, infaq.ID)
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)

	incomes, err := f.svc.ListCategories(f.db, f.org.ID, models.TransactionIncome)
	require.NoError(t, err)
	assert.Len(t, incomes, 1)
}

func TestFinanceService_CreateTransactionChecks(t *testing.T) {
	f := newFinanceFixture(t)
	listrik := f.category(t, "Listrik", models.TransactionExpense)

	_, err := f.svc.CreateTransaction(f.db, f.org.ID, f.user.ID, &dto.TransactionRequest{
		CategoryID: listrik.ID, Type: models.TransactionIncome, Amount: decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, apperrors.ErrCategoryTypeMismatch)

	_, err = f.svc.CreateTransaction(f.db, f.org.ID, f.user.ID, &dto.TransactionRequest{
		CategoryID: listrik.ID, Type: models.TransactionExpense, Amount: decimal.Zero,
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)

	other := testutil.CreateOrganization(t, f.db, models.OrganizationKindMosque)
	_, err = f.svc.CreateTransaction(f.db, other.ID, f.user.ID, &dto.TransactionRequest{
		CategoryID: listrik.ID, Type: models.TransactionExpense, Amount: decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestFinanceService_Summary(t *testing.T) {
	f := newFinanceFixture(t)
	infaq := f.category(t, "Infaq", models.TransactionIncome)
	zakat := f.category(t, "Zakat", models.TransactionIncome)
	listrik := f.category(t, "Listrik", models.TransactionExpense)

	f.record(t, infaq, "150000", day(2026, 3, 6))
	f.record(t, infaq, "250000.50", day(2026, 3, 13))
	f.record(t, zakat, "1000000", day(2026, 4, 2))
	f.record(t, listrik, "300000", day(2026, 4, 10))

	summary, err := f.svc.Summary(f.db, f.org.ID, &dto.TransactionListRequest{})
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Count)
	assert.True(t, decimal.RequireFromString("1400000.50").Equal(summary.Income), summary.Income.String())
	assert.True(t, decimal.NewFromInt(300000).Equal(summary.Expense))
	assert.True(t, decimal.RequireFromString("1100000.50").Equal(summary.Balance))

	require.Len(t, summary.ByCategory, 3)
	assert.Equal(t, "Zakat", summary.ByCategory[0].Name)
	assert.Equal(t, "Infaq", summary.ByCategory[1].Name)
	assert.Equal(t, 2, summary.ByCategory[1].Count)

	require.Len(t, summary.ByMonth, 2)
	assert.Equal(t, "2026-03", summary.ByMonth[0].Month)
	assert.Equal(t, "2026-04", summary.ByMonth[1].Month)
	assert.True(t, decimal.NewFromInt(700000).Equal(summary.ByMonth[1].Balance))

	march, err := f.svc.Summary(f.db, f.org.ID, &dto.TransactionListRequest{From: "2026-03-01", To: "2026-03-31"})
	require.NoError(t, err)
	assert.Equal(t, 2, march.Count)

	_, err = f.svc.Summary(f.db, f.org.ID, &dto.TransactionListRequest{From: "2026-04-01", To: "2026-03-01"})
	assert.Error(t, err)
}

func TestFinanceService_ExportCSV(t *testing.T) {
	f := newFinanceFixture(t)
	infaq := f.category(t, "Infaq", models.TransactionIncome)
	f.record(t, infaq, "150000", day(2026, 3, 6))

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportCSV(f.db, f.org.ID, &dto.TransactionListRequest{}, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, financeHeader, rows[0])
	assert.Equal(t, []string{"2026-03-06", "income", "Infaq", "150000.00", "", ""}, rows[1])
}

func TestFinanceService_SheetRoundTrip(t *testing.T) {
	f := newFinanceFixture(t)
	ctx := context.Background()
	infaq := f.category(t, "Infaq", models.TransactionIncome)
	f.record(t, infaq, "150000", day(2026, 3, 6))

	exported, err := f.svc.ExportToSheet(ctx, f.db, f.org.ID, &dto.TransactionListRequest{})
	require.NoError(t, err)
	assert.Equal(t, f.org.Slug, exported.Sheet)
	assert.Equal(t, 1, exported.Rows)

	rows, err := f.store.ReadRows(ctx, testSpreadsheet, f.org.Slug)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	require.NoError(t, f.store.ClearAndWrite(ctx, testSpreadsheet, "Kas Maret", [][]string{
		{"Tanggal", "Type", "Category", "Amount", "Description", "Date"},
	}))
	_, err = f.svc.ImportFromSheet(ctx, f.db, f.org.ID, f.user.ID, "Kas Maret")
	assert.NoError(t, err, "header-only sheet imports nothing")

	require.NoError(t, f.store.ClearAndWrite(ctx, testSpreadsheet, "Kas Maret", [][]string{
		{"Date", "Type", "Category", "Amount", "Description"},
		{"2026-03-20", "Pemasukan", "Infaq", "Rp 1.250.000", "Kotak amal"},
		{"21/03/2026", "keluar", "Kebersihan", "75,000", "Sabun"},
		{"", "", "", "", ""},
		{"kemarin", "income", "Infaq", "10", ""},
		{"2026-03-22", "hibah", "Infaq", "10", ""},
		{"2026-03-22", "income", "Infaq", "sepuluh", ""},
	}))

	imported, err := f.svc.ImportFromSheet(ctx, f.db, f.org.ID, f.user.ID, "Kas Maret")
	require.NoError(t, err)
	assert.Equal(t, 2, imported.Imported)
	require.Len(t, imported.Skipped, 3)
	assert.Equal(t, 5, imported.Skipped[0].Row)

	expenses, err := f.svc.ListCategories(f.db, f.org.ID, models.TransactionExpense)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Kebersihan", expenses[0].Name)

	summary, err := f.svc.Summary(f.db, f.org.ID, &dto.TransactionListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count)
	assert.True(t, decimal.NewFromInt(1400000).Equal(summary.Income), summary.Income.String())
	assert.True(t, decimal.NewFromInt(75000).Equal(summary.Expense), summary.Expense.String())

	_, err = f.svc.ImportFromSheet(ctx, f.db, f.org.ID, f.user.ID, "Missing")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestFinanceService_SheetsNotConfigured(t *testing.T) {
	f := newFinanceFixture(t)
	svc := NewFinanceService(repositories.NewFinanceRepository(), repositories.NewUserRepository(), nil, "")

	_, err := svc.ExportToSheet(context.Background(), f.db, f.org.ID, &dto.TransactionListRequest{})
	assert.ErrorIs(t, err, apperrors.ErrSheetsNotConfigured)
}
