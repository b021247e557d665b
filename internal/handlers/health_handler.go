package handlers

import (
	"context"
	"net/http"
	"time"

	"portal_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// ConnectionCounter reports live relay connections on this instance.
type ConnectionCounter interface {
	GetClientCount() int
}

type HealthHandler struct {
	*BaseHandler
	relay ConnectionCounter
}

func NewHealthHandler(base *BaseHandler, relay ConnectionCounter) *HealthHandler {
	return &HealthHandler{
		BaseHandler: base,
		relay:       relay,
	}
}

func (h *HealthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health", h.Health)
}

func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "ok"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := h.GetDB(c).DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "Health check: database unavailable", err)
		status = http.StatusServiceUnavailable
		dbStatus = "unavailable"
	}

	body := gin.H{
		"status":   http.StatusText(status),
		"database": dbStatus,
		"time":     time.Now().UTC(),
	}
	if h.relay != nil {
		body["connections"] = h.relay.GetClientCount()
	}
	c.JSON(status, body)
}
