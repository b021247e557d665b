package services

import (
	"context"
	"errors"
	"io"

	"portal_backend/internal/logger"
	"portal_backend/internal/ocr"
	"portal_backend/pkg/apperrors"
)

type OCRService interface {
	// Scan sends a receipt image to the OCR endpoint and extracts the total.
	Scan(ctx context.Context, image io.Reader, filename string) (*ocr.Result, error)
}

type OCRServiceImpl struct {
	client ocr.Client
}

// NewOCRService accepts a nil client when no endpoint is configured.
func NewOCRService(client ocr.Client) OCRService {
	return &OCRServiceImpl{client: client}
}

func (s *OCRServiceImpl) Scan(ctx context.Context, image io.Reader, filename string) (*ocr.Result, error) {
	if s.client == nil {
		return nil, apperrors.ErrOCRNotConfigured
	}
	res, err := s.client.Recognize(ctx, image, filename)
	if err != nil {
		switch {
		case errors.Is(err, ocr.ErrNotConfigured):
			return nil, apperrors.ErrOCRNotConfigured
		case errors.Is(err, ocr.ErrNoText):
			return nil, apperrors.ValidationError(map[string]string{"file": "No text could be read from the image"})
		}
		logger.CtxWithError(ctx, "OCR request failed", err, "filename", filename)
		return nil, apperrors.ExternalError(err, "ocr", "OCR service unavailable")
	}
	if res.Lines == nil {
		res.Lines = []string{}
	}
	return res, nil
}
