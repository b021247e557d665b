package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"portal_backend/internal/logger"
	"portal_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// FileHandler streams stored uploads. Paths are unguessable so files are public.
type FileHandler struct {
	*BaseHandler
	uploadService services.UploadService
}

func NewFileHandler(base *BaseHandler, uploadService services.UploadService) *FileHandler {
	return &FileHandler{
		BaseHandler:   base,
		uploadService: uploadService,
	}
}

func (h *FileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/files/*path", h.ServeFile)
}

func (h *FileHandler) ServeFile(c *gin.Context) {
	filePath := strings.TrimPrefix(c.Param("path"), "/")

	reader, contentType, err := h.uploadService.Open(c.Request.Context(), h.GetDB(c), filePath)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=31536000")
	c.Header("X-Content-Type-Options", "nosniff")
	if c.Query("download") == "true" {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, path.Base(filePath)))
	} else {
		c.Header("Content-Disposition", "inline")
	}
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		// headers are already out
		logger.CtxWithError(c.Request.Context(), "Failed to stream file", err, "path", filePath)
	}
}
