package handlers

import (
	"net/http"

	"portal_backend/internal/services"
	"portal_backend/internal/services/dto"
	"portal_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// multipart bodies beyond this stay on disk while parsing
const multipartMemory = 8 << 20

type UploadHandler struct {
	*BaseHandler
	uploadService services.UploadService
}

func NewUploadHandler(base *BaseHandler, uploadService services.UploadService) *UploadHandler {
	return &UploadHandler{
		BaseHandler:   base,
		uploadService: uploadService,
	}
}

func (h *UploadHandler) RegisterRoutes(r *gin.RouterGroup) {
	uploads := r.Group("/uploads")
	uploads.Use(h.requireAuth)
	{
		uploads.POST("", h.UploadFile)
		uploads.GET("/mine", h.ListMine)
		uploads.DELETE("/:uploadId", h.DeleteUpload)
	}
}

// UploadFile godoc
// @Summary Upload a file
// @Description Usage decides what is accepted: avatar and hewan_photo take images, resume and receipt take images or PDF.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param usage formData string true "resume, avatar, hewan_photo or receipt"
// @Param entity_type formData string false "Owning entity type"
// @Param entity_id formData string false "Owning entity id"
// @Param file formData file true "File"
// @Success 201 {object} models.Upload
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /uploads [post]
func (h *UploadHandler) UploadFile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to parse form: "+err.Error()))
		return
	}

	var req dto.UploadRequest
	if !h.BindAndValidate_Form(c, &req) {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("no file provided"))
		return
	}
	req.File = fileHeader

	file, err := fileHeader.Open()
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	defer file.Close()

	upload, err := h.uploadService.Upload(c.Request.Context(), h.GetDB(c), userID, &req, fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, upload)
}

func (h *UploadHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	uploads, err := h.uploadService.ListMine(h.GetDB(c), userID, c.Query("usage"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploads": uploads})
}

func (h *UploadHandler) DeleteUpload(c *gin.Context) {
	claims, ok := h.GetAndAuthorizeClaims(c)
	if !ok {
		return
	}

	if err := h.uploadService.Delete(c.Request.Context(), h.GetDB(c), claims, c.Param("uploadId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
