package handlers

import (
	"net/http"

	"portal_backend/internal/middleware"
	"portal_backend/internal/models"
	"portal_backend/internal/services"
	"portal_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// receipts are photos, a few megabytes at most
const maxReceiptSize = 10 << 20

type OCRHandler struct {
	*BaseHandler
	ocrService services.OCRService
}

func NewOCRHandler(base *BaseHandler, ocrService services.OCRService) *OCRHandler {
	return &OCRHandler{
		BaseHandler: base,
		ocrService:  ocrService,
	}
}

func (h *OCRHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/ocr", h.requireAuth, middleware.RequireRoles(models.UserRoleMosqueAdmin), h.Scan)
}

// Scan godoc
// @Summary Read a receipt photo
// @Description Returns the recognised text and, when one is found, the total amount.
// @Tags ocr
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Receipt image"
// @Success 200 {object} ocr.Result
// @Failure 502 {object} apperrors.ErrorResponse
// @Failure 503 {object} apperrors.ErrorResponse
// @Router /ocr [post]
func (h *OCRHandler) Scan(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("no file provided"))
		return
	}
	if fileHeader.Size > maxReceiptSize {
		apperrors.HandleError(c, apperrors.ErrFileTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	defer file.Close()

	result, err := h.ocrService.Scan(c.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
