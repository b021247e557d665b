package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"portal_backend/internal/auth"
	"portal_backend/internal/config"
	"portal_backend/internal/imageprocessor"
	"portal_backend/internal/logger"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/internal/storage"
	"portal_backend/pkg/apperrors"
)

var mimeExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

type UploadService interface {
	// Upload sniffs, stores and records a file. r is read at most once.
	Upload(ctx context.Context, db *gorm.DB, userID string, req *dto.UploadRequest, filename string, size int64, r io.Reader) (*models.Upload, error)
	ListMine(db *gorm.DB, userID, usage string) ([]models.Upload, error)
	Delete(ctx context.Context, db *gorm.DB, viewer *auth.Claims, id string) error
	// Open streams a stored file by its storage path.
	Open(ctx context.Context, db *gorm.DB, filePath string) (io.ReadCloser, string, error)
}

type UploadServiceImpl struct {
	uploadRepo   repositories.UploadRepository
	storage      storage.Storage
	processor    *imageprocessor.Processor
	maxSize      int64
	allowedTypes map[string]bool
	now          func() time.Time
}

func NewUploadService(uploadRepo repositories.UploadRepository, store storage.Storage, cfg config.UploadConfig) UploadService {
	allowed := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(t)] = true
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	return &UploadServiceImpl{
		uploadRepo:   uploadRepo,
		storage:      store,
		processor:    imageprocessor.NewProcessor(cfg.ImageQuality),
		maxSize:      maxSize,
		allowedTypes: allowed,
		now:          time.Now,
	}
}

func (s *UploadServiceImpl) Upload(ctx context.Context, db *gorm.DB, userID string, req *dto.UploadRequest, filename string, size int64, r io.Reader) (*models.Upload, error) {
	if !validUsage(req.Usage) {
		return nil, apperrors.ErrInvalidUploadUsage
	}
	if size > s.maxSize {
		return nil, apperrors.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("read upload: %w", err))
	}
	if int64(len(data)) > s.maxSize {
		return nil, apperrors.ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, apperrors.ValidationError(map[string]string{"file": "File is empty"})
	}

	mimeType := sniffMimeType(data)
	if !s.allowedTypes[mimeType] || !usageAccepts(req.Usage, mimeType) {
		return nil, apperrors.ErrInvalidFileType
	}

	now := s.now().UTC()
	id := uuid.NewString()
	key := path.Join(req.Usage, now.Format("2006"), now.Format("01"), id+mimeExtensions[mimeType])
	if err := s.storage.Save(ctx, key, bytes.NewReader(data), mimeType); err != nil {
		return nil, apperrors.ExternalError(err, "upload", "Failed to store file")
	}

	upload := &models.Upload{
		UserID:          userID,
		EntityType:      req.EntityType,
		EntityID:        req.EntityID,
		Usage:           req.Usage,
		Path:            key,
		MimeType:        mimeType,
		Size:            int64(len(data)),
		OriginalName:    truncate(path.Base(strings.ReplaceAll(filename, "\\", "/")), 255),
		StorageProvider: s.storage.Provider(),
	}
	upload.ID = id
	if upload.URL, err = s.storage.GetURL(ctx, key); err != nil {
		s.discard(ctx, key)
		return nil, apperrors.InternalError(err)
	}

	if upload.IsImage() {
		s.attachThumbnail(ctx, upload, data)
	}

	if err := s.uploadRepo.Create(db, upload); err != nil {
		s.discard(ctx, upload.Path, upload.ThumbnailPath)
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "File uploaded", "upload_id", upload.ID, "usage", upload.Usage, "size", upload.Size)
	return upload, nil
}

// attachThumbnail stores a scaled copy next to the original. Failures only
// cost the thumbnail.
func (s *UploadServiceImpl) attachThumbnail(ctx context.Context, upload *models.Upload, data []byte) {
	thumb, err := s.processor.Thumbnail(bytes.NewReader(data), imageprocessor.SizeThumbnail)
	if err != nil {
		logger.CtxWarn(ctx, "Thumbnail not generated", "upload_id", upload.ID, "error", err)
		return
	}
	key := strings.TrimSuffix(upload.Path, path.Ext(upload.Path)) + "_thumb" + thumb.Extension
	if err := s.storage.Save(ctx, key, bytes.NewReader(thumb.Data), thumb.ContentType); err != nil {
		logger.CtxWarn(ctx, "Thumbnail not stored", "upload_id", upload.ID, "error", err)
		return
	}
	url, err := s.storage.GetURL(ctx, key)
	if err != nil {
		s.discard(ctx, key)
		return
	}
	upload.ThumbnailPath = key
	upload.ThumbnailURL = url
}

func (s *UploadServiceImpl) ListMine(db *gorm.DB, userID, usage string) ([]models.Upload, error) {
	if usage != "" && !validUsage(usage) {
		return nil, apperrors.ErrInvalidUploadUsage
	}
	list, err := s.uploadRepo.ListByUser(db, userID, usage)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if list == nil {
		list = []models.Upload{}
	}
	return list, nil
}

func (s *UploadServiceImpl) Delete(ctx context.Context, db *gorm.DB, viewer *auth.Claims, id string) error {
	upload, err := s.uploadRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUploadNotFound) {
			return apperrors.ErrUploadNotFound
		}
		return apperrors.InternalError(err)
	}
	if viewer == nil || (upload.UserID != viewer.UserID && !auth.IsAdmin(viewer)) {
		// hide other users' files entirely
		return apperrors.ErrUploadNotFound
	}

	if err := s.uploadRepo.Delete(db, upload.ID); err != nil {
		if errors.Is(err, repositories.ErrUploadNotFound) {
			return apperrors.ErrUploadNotFound
		}
		return apperrors.InternalError(err)
	}
	s.discard(ctx, upload.Path, upload.ThumbnailPath)
	return nil
}

func (s *UploadServiceImpl) Open(ctx context.Context, db *gorm.DB, filePath string) (io.ReadCloser, string, error) {
	key, err := storage.CleanPath(filePath)
	if err != nil {
		return nil, "", apperrors.ErrUploadNotFound
	}
	upload, err := s.uploadRepo.FindByPath(db, key)
	if err != nil {
		if errors.Is(err, repositories.ErrUploadNotFound) {
			return nil, "", apperrors.ErrUploadNotFound
		}
		return nil, "", apperrors.InternalError(err)
	}

	contentType := upload.MimeType
	if key == upload.ThumbnailPath {
		contentType = extensionMimeType(path.Ext(key))
	}
	rc, err := s.storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", apperrors.ErrUploadNotFound
		}
		return nil, "", apperrors.InternalError(err)
	}
	return rc, contentType, nil
}

func (s *UploadServiceImpl) discard(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.CtxWarn(ctx, "Failed to delete stored file", "path", key, "error", err)
		}
	}
}

func sniffMimeType(data []byte) string {
	mimeType := http.DetectContentType(data)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.TrimSpace(mimeType)
}

func extensionMimeType(ext string) string {
	for mimeType, e := range mimeExtensions {
		if e == ext {
			return mimeType
		}
	}
	return "application/octet-stream"
}

func validUsage(usage string) bool {
	for _, u := range models.UploadUsages {
		if u == usage {
			return true
		}
	}
	return false
}

// usageAccepts restricts photos to images. Resumes and receipts may also be PDFs.
func usageAccepts(usage, mimeType string) bool {
	isImage := strings.HasPrefix(mimeType, "image/")
	switch usage {
	case models.UsageAvatar, models.UsageHewanPhoto:
		return isImage
	case models.UsageResume, models.UsageReceipt:
		return isImage || mimeType == "application/pdf"
	}
	return false
}
