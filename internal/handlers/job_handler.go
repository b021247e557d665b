package handlers

import (
	"net/http"

	"portal_backend/internal/middleware"
	"portal_backend/internal/models"
	"portal_backend/internal/services"
	"portal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// JobHandler serves the public job board and the recruiter's job and form-field management.
type JobHandler struct {
	*BaseHandler
	jobService   services.JobService
	fieldService services.FormFieldService
}

func NewJobHandler(base *BaseHandler, jobService services.JobService, fieldService services.FormFieldService) *JobHandler {
	return &JobHandler{
		BaseHandler:  base,
		jobService:   jobService,
		fieldService: fieldService,
	}
}

func (h *JobHandler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/jobs")
	public.Use(h.optionalAuth)
	{
		public.GET("", h.Search)
		public.GET("/:jobId", h.GetJob)
		public.GET("/:jobId/fields", h.ListFields)
	}

	org := r.Group("/org/jobs")
	org.Use(h.requireAuth, middleware.RequireRoles(models.UserRoleRecruiter), middleware.TenantMiddleware())
	{
		org.GET("", h.ListOrgJobs)
		org.POST("", h.CreateJob)
		org.PUT("/:jobId", h.UpdateJob)
		org.PATCH("/:jobId/status", h.ChangeStatus)
		org.DELETE("/:jobId", h.DeleteJob)

		org.POST("/:jobId/fields", h.CreateField)
		org.POST("/:jobId/fields/reorder", h.ReorderFields)
		org.PUT("/:jobId/fields/:fieldId", h.UpdateField)
		org.DELETE("/:jobId/fields/:fieldId", h.DeleteField)
	}
}

// Search godoc
// @Summary Search open jobs
// @Tags jobs
// @Produce json
// @Param q query string false "Title or description text"
// @Param location query string false "Location"
// @Param employment_type query string false "full_time, part_time, contract, internship, volunteer"
// @Param remote query bool false "Remote only"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.PaginatedResponse
// @Router /jobs [get]
func (h *JobHandler) Search(c *gin.Context) {
	var req dto.JobSearchRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	resp, err := h.jobService.Search(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetJob accepts an id or a slug.
func (h *JobHandler) GetJob(c *gin.Context) {
	resp, err := h.jobService.Get(h.GetDB(c), middleware.GetClaims(c), c.Param("jobId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *JobHandler) ListOrgJobs(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.JobSearchRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	resp, err := h.jobService.ListOrg(h.GetDB(c), orgID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateJob godoc
// @Summary Post a job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateJobRequest true "Job"
// @Success 201 {object} models.Job
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /org/jobs [post]
func (h *JobHandler) CreateJob(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.Create(h.GetDB(c), orgID, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.UpdateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.Update(h.GetDB(c), orgID, c.Param("jobId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) ChangeStatus(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.ChangeJobStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.ChangeStatus(h.GetDB(c), orgID, c.Param("jobId"), req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	if err := h.jobService.Delete(h.GetDB(c), orgID, c.Param("jobId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFields returns the apply form of a job.
func (h *JobHandler) ListFields(c *gin.Context) {
	fields, err := h.fieldService.List(h.GetDB(c), middleware.GetClaims(c), c.Param("jobId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields})
}

func (h *JobHandler) CreateField(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.CreateFieldRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	field, err := h.fieldService.Create(h.GetDB(c), orgID, c.Param("jobId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, field)
}

func (h *JobHandler) UpdateField(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.UpdateFieldRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	field, err := h.fieldService.Update(h.GetDB(c), orgID, c.Param("jobId"), c.Param("fieldId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, field)
}

func (h *JobHandler) DeleteField(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	if err := h.fieldService.Delete(h.GetDB(c), orgID, c.Param("jobId"), c.Param("fieldId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *JobHandler) ReorderFields(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.ReorderFieldsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	fields, err := h.fieldService.Reorder(h.GetDB(c), orgID, c.Param("jobId"), req.FieldIDs)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields})
}
