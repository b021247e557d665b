package handlers

import (
	"net/http"

	"portal_backend/internal/middleware"
	"portal_backend/internal/models"
	"portal_backend/internal/services"
	"portal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// QurbanHandler manages sacrificial animals, their shohibul and the meat packages.
type QurbanHandler struct {
	*BaseHandler
	qurbanService services.QurbanService
}

func NewQurbanHandler(base *BaseHandler, qurbanService services.QurbanService) *QurbanHandler {
	return &QurbanHandler{
		BaseHandler:   base,
		qurbanService: qurbanService,
	}
}

func (h *QurbanHandler) RegisterRoutes(r *gin.RouterGroup) {
	qurban := r.Group("/qurban")
	qurban.Use(h.requireAuth, middleware.RequireRoles(models.UserRoleMosqueAdmin), middleware.TenantMiddleware())
	{
		qurban.GET("/dashboard", h.Dashboard)
		qurban.GET("/counts", h.CountByStatus)

		qurban.GET("/hewan", h.ListHewan)
		qurban.POST("/hewan", h.CreateHewan)
		qurban.GET("/hewan/:id", h.GetHewan)
		qurban.PUT("/hewan/:id", h.UpdateHewan)
		qurban.PATCH("/hewan/:id/status", h.UpdateHewanStatus)
		qurban.DELETE("/hewan/:id", h.DeleteHewan)
		qurban.POST("/hewan/:id/shohibul", h.AddShohibul)
		qurban.DELETE("/hewan/:id/shohibul/:index", h.RemoveShohibul)

		qurban.GET("/products", h.ListProducts)
		qurban.POST("/products", h.CreateProduct)
		qurban.PUT("/products/:id", h.UpdateProduct)
		qurban.DELETE("/products/:id", h.DeleteProduct)
		qurban.POST("/products/:id/distribute", h.Distribute)
	}
}

// Dashboard godoc
// @Summary Qurban dashboard counters
// @Tags qurban
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.QurbanDashboard
// @Router /qurban/dashboard [get]
func (h *QurbanHandler) Dashboard(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	resp, err := h.qurbanService.Dashboard(c.Request.Context(), h.GetDB(c), orgID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QurbanHandler) CountByStatus(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	counts, err := h.qurbanService.CountByStatus(h.GetDB(c), orgID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

func (h *QurbanHandler) ListHewan(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.HewanListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	resp, err := h.qurbanService.ListHewan(h.GetDB(c), orgID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QurbanHandler) GetHewan(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	resp, err := h.qurbanService.GetHewan(h.GetDB(c), orgID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateHewan godoc
// @Summary Register a hewan
// @Description Shares are capped by type: sapi and kerbau 7, kambing and domba 1.
// @Tags qurban
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateHewanRequest true "Hewan"
// @Success 201 {object} dto.HewanResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /qurban/hewan [post]
func (h *QurbanHandler) CreateHewan(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.CreateHewanRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.qurbanService.CreateHewan(c.Request.Context(), h.GetDB(c), orgID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *QurbanHandler) UpdateHewan(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.UpdateHewanRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.qurbanService.UpdateHewan(c.Request.Context(), h.GetDB(c), orgID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QurbanHandler) UpdateHewanStatus(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.HewanStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.qurbanService.UpdateHewanStatus(c.Request.Context(), h.GetDB(c), orgID, c.Param("id"), req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QurbanHandler) DeleteHewan(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	if err := h.qurbanService.DeleteHewan(c.Request.Context(), h.GetDB(c), orgID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QurbanHandler) AddShohibul(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.ShohibulRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.qurbanService.AddShohibul(c.Request.Context(), h.GetDB(c), orgID, c.Param("id"), req.Name)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveShohibul drops the name at the zero-based index.
func (h *QurbanHandler) RemoveShohibul(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	index, err := ParseParamInt(c, "index")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	resp, err := h.qurbanService.RemoveShohibul(c.Request.Context(), h.GetDB(c), orgID, c.Param("id"), index)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QurbanHandler) ListProducts(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	products, err := h.qurbanService.ListProducts(h.GetDB(c), orgID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *QurbanHandler) CreateProduct(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.ProductRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	product, err := h.qurbanService.CreateProduct(c.Request.Context(), h.GetDB(c), orgID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *QurbanHandler) UpdateProduct(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.ProductRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	product, err := h.qurbanService.UpdateProduct(c.Request.Context(), h.GetDB(c), orgID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *QurbanHandler) DeleteProduct(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	if err := h.qurbanService.DeleteProduct(c.Request.Context(), h.GetDB(c), orgID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QurbanHandler) Distribute(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.DistributeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	product, err := h.qurbanService.Distribute(c.Request.Context(), h.GetDB(c), orgID, c.Param("id"), req.Quantity)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
