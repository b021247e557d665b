package handlers

import (
	"net/http"

	"portal_backend/internal/middleware"
	"portal_backend/internal/models"
	"portal_backend/internal/services"
	"portal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService services.ApplicationService
}

func NewApplicationHandler(base *BaseHandler, applicationService services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        base,
		applicationService: applicationService,
	}
}

func (h *ApplicationHandler) RegisterRoutes(r *gin.RouterGroup) {
	candidate := r.Group("")
	candidate.Use(h.requireAuth, middleware.RequireRoles(models.UserRoleCandidate))
	{
		candidate.POST("/jobs/:jobId/apply", h.Apply)
		candidate.GET("/me/applications", h.ListMine)
		candidate.DELETE("/me/applications/:applicationId", h.Withdraw)
	}

	// visibility is decided per application by the service
	shared := r.Group("/applications")
	shared.Use(h.requireAuth)
	{
		shared.GET("/:applicationId", h.Get)
	}

	org := r.Group("/org")
	org.Use(h.requireAuth, middleware.RequireRoles(models.UserRoleRecruiter), middleware.TenantMiddleware())
	{
		org.GET("/jobs/:jobId/applications", h.ListForJob)
		org.GET("/jobs/:jobId/applications/stats", h.Stats)
		org.PUT("/applications/:applicationId", h.Update)
		org.DELETE("/applications/:applicationId", h.Delete)
	}
}

// Apply godoc
// @Summary Apply to a job
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "Job ID"
// @Param request body dto.ApplyRequest true "Cover letter and form answers"
// @Success 201 {object} dto.ApplicationResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /jobs/{jobId}/apply [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ApplyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.applicationService.Apply(h.GetDB(c), userID, c.Param("jobId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ListApplicationsRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	resp, err := h.applicationService.ListMine(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.applicationService.Withdraw(h.GetDB(c), userID, c.Param("applicationId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	claims, ok := h.GetAndAuthorizeClaims(c)
	if !ok {
		return
	}

	resp, err := h.applicationService.Get(h.GetDB(c), claims, c.Param("applicationId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.ListApplicationsRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	resp, err := h.applicationService.ListForJob(h.GetDB(c), orgID, c.Param("jobId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApplicationHandler) Stats(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	stats, err := h.applicationService.Stats(h.GetDB(c), orgID, c.Param("jobId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Update godoc
// @Summary Update application status, notes or rating
// @Description Status is free-form text, 1 to 32 characters after trimming.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Application ID"
// @Param request body dto.UpdateApplicationRequest true "Changes"
// @Success 200 {object} dto.ApplicationResponse
// @Router /org/applications/{applicationId} [put]
func (h *ApplicationHandler) Update(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.UpdateApplicationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.applicationService.Update(h.GetDB(c), orgID, c.Param("applicationId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApplicationHandler) Delete(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	if err := h.applicationService.Delete(h.GetDB(c), orgID, c.Param("applicationId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
