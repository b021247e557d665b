package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"portal_backend/internal/middleware"
	"portal_backend/internal/models"
	"portal_backend/internal/services"
	"portal_backend/internal/services/dto"
	"portal_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type FinanceHandler struct {
	*BaseHandler
	financeService services.FinanceService
}

func NewFinanceHandler(base *BaseHandler, financeService services.FinanceService) *FinanceHandler {
	return &FinanceHandler{
		BaseHandler:    base,
		financeService: financeService,
	}
}

func (h *FinanceHandler) RegisterRoutes(r *gin.RouterGroup) {
	finance := r.Group("/finance")
	finance.Use(h.requireAuth, middleware.RequireRoles(models.UserRoleMosqueAdmin), middleware.TenantMiddleware())
	{
		finance.GET("/categories", h.ListCategories)
		finance.POST("/categories", h.CreateCategory)
		finance.PUT("/categories/:id", h.UpdateCategory)
		finance.DELETE("/categories/:id", h.DeleteCategory)

		finance.GET("/transactions", h.ListTransactions)
		finance.POST("/transactions", h.CreateTransaction)
		finance.GET("/transactions/:id", h.GetTransaction)
		finance.PUT("/transactions/:id", h.UpdateTransaction)
		finance.DELETE("/transactions/:id", h.DeleteTransaction)

		finance.GET("/summary", h.Summary)
		finance.GET("/export/csv", h.ExportCSV)
		finance.POST("/export/sheet", h.ExportToSheet)
		finance.POST("/import/sheet", h.ImportFromSheet)
	}
}

func (h *FinanceHandler) ListCategories(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	txType := models.TransactionType(c.Query("type"))
	if txType != "" && txType != models.TransactionIncome && txType != models.TransactionExpense {
		apperrors.HandleError(c, apperrors.NewBadRequestError("type must be income or expense"))
		return
	}

	categories, err := h.financeService.ListCategories(h.GetDB(c), orgID, txType)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *FinanceHandler) CreateCategory(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.CategoryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	category, err := h.financeService.CreateCategory(h.GetDB(c), orgID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *FinanceHandler) UpdateCategory(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.CategoryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	category, err := h.financeService.UpdateCategory(h.GetDB(c), orgID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *FinanceHandler) DeleteCategory(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	if err := h.financeService.DeleteCategory(h.GetDB(c), orgID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTransactions godoc
// @Summary List transactions
// @Tags finance
// @Produce json
// @Security BearerAuth
// @Param type query string false "income or expense"
// @Param category_id query string false "Category"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Success 200 {object} dto.PaginatedResponse
// @Router /finance/transactions [get]
func (h *FinanceHandler) ListTransactions(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.TransactionListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	resp, err := h.financeService.ListTransactions(h.GetDB(c), orgID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FinanceHandler) GetTransaction(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	tx, err := h.financeService.GetTransaction(h.GetDB(c), orgID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *FinanceHandler) CreateTransaction(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	tx, err := h.financeService.CreateTransaction(h.GetDB(c), orgID, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *FinanceHandler) UpdateTransaction(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	tx, err := h.financeService.UpdateTransaction(h.GetDB(c), orgID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *FinanceHandler) DeleteTransaction(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	if err := h.financeService.DeleteTransaction(h.GetDB(c), orgID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Summary godoc
// @Summary Income, expense and balance with per-category and per-month totals
// @Tags finance
// @Produce json
// @Security BearerAuth
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Success 200 {object} dto.FinanceSummary
// @Router /finance/summary [get]
func (h *FinanceHandler) Summary(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.TransactionListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	summary, err := h.financeService.Summary(h.GetDB(c), orgID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportCSV renders into memory first so a failure still produces a JSON error.
func (h *FinanceHandler) ExportCSV(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.TransactionListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	var buf bytes.Buffer
	if err := h.financeService.ExportCSV(h.GetDB(c), orgID, &req, &buf); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *FinanceHandler) ExportToSheet(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.TransactionListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	resp, err := h.financeService.ExportToSheet(c.Request.Context(), h.GetDB(c), orgID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ImportFromSheet godoc
// @Summary Import transactions from a tab of the finance spreadsheet
// @Tags finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SheetImportRequest true "Sheet tab"
// @Success 200 {object} dto.SheetImportResponse
// @Failure 503 {object} apperrors.ErrorResponse
// @Router /finance/import/sheet [post]
func (h *FinanceHandler) ImportFromSheet(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SheetImportRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.financeService.ImportFromSheet(c.Request.Context(), h.GetDB(c), orgID, userID, req.Sheet)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
