package handlers

import (
	"net/http"

	"portal_backend/internal/middleware"
	"portal_backend/internal/models"
	"portal_backend/internal/services"
	"portal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ItikafHandler struct {
	*BaseHandler
	itikafService services.ItikafService
}

func NewItikafHandler(base *BaseHandler, itikafService services.ItikafService) *ItikafHandler {
	return &ItikafHandler{
		BaseHandler:   base,
		itikafService: itikafService,
	}
}

func (h *ItikafHandler) RegisterRoutes(r *gin.RouterGroup) {
	events := r.Group("/itikaf/events")
	events.Use(h.requireAuth, middleware.RequireRoles(models.UserRoleMosqueAdmin), middleware.TenantMiddleware())
	{
		events.GET("", h.ListEvents)
		events.POST("", h.CreateEvent)
		events.GET("/:id", h.GetEvent)
		events.PUT("/:id", h.UpdateEvent)
		events.DELETE("/:id", h.DeleteEvent)

		events.GET("/:id/participants", h.ListParticipants)
		events.POST("/:id/participants", h.RegisterParticipant)
		events.DELETE("/:id/participants/:participantId", h.DeleteParticipant)

		events.POST("/:id/check-in", h.CheckIn)
		events.GET("/:id/attendance", h.Attendance)
		events.POST("/:id/sync", h.Sync)
	}
}

func (h *ItikafHandler) ListEvents(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	events, err := h.itikafService.ListEvents(h.GetDB(c), orgID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *ItikafHandler) GetEvent(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	event, err := h.itikafService.GetEvent(h.GetDB(c), orgID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// CreateEvent godoc
// @Summary Create an itikaf event and prepare its attendance tab
// @Tags itikaf
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ItikafEventRequest true "Event"
// @Success 201 {object} models.ItikafEvent
// @Router /itikaf/events [post]
func (h *ItikafHandler) CreateEvent(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.ItikafEventRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	event, err := h.itikafService.CreateEvent(c.Request.Context(), h.GetDB(c), orgID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *ItikafHandler) UpdateEvent(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.ItikafEventRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	event, err := h.itikafService.UpdateEvent(c.Request.Context(), h.GetDB(c), orgID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *ItikafHandler) DeleteEvent(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	if err := h.itikafService.DeleteEvent(h.GetDB(c), orgID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ItikafHandler) ListParticipants(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	participants, err := h.itikafService.ListParticipants(h.GetDB(c), orgID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

func (h *ItikafHandler) RegisterParticipant(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.RegisterParticipantRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	p, err := h.itikafService.RegisterParticipant(c.Request.Context(), h.GetDB(c), orgID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ItikafHandler) DeleteParticipant(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	if err := h.itikafService.DeleteParticipant(h.GetDB(c), orgID, c.Param("id"), c.Param("participantId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckIn godoc
// @Summary Mark a participant present for a night
// @Description Night defaults to the current night of the event.
// @Tags itikaf
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body dto.CheckInRequest true "Participant code and night"
// @Success 200 {object} dto.CheckInResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 503 {object} apperrors.ErrorResponse
// @Router /itikaf/events/{id}/check-in [post]
func (h *ItikafHandler) CheckIn(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	var req dto.CheckInRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.itikafService.CheckIn(c.Request.Context(), h.GetDB(c), orgID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ItikafHandler) Attendance(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	resp, err := h.itikafService.Attendance(c.Request.Context(), h.GetDB(c), orgID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ItikafHandler) Sync(c *gin.Context) {
	orgID, ok := h.GetTenantID(c)
	if !ok {
		return
	}

	resp, err := h.itikafService.Sync(c.Request.Context(), h.GetDB(c), orgID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
