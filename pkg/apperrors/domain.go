package apperrors

import (
	"net/http"
)

// ErrNotFound converts a repository miss (gorm.ErrRecordNotFound and friends) into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// NotFound builds a 404 for a named domain.
func NotFound(domain, message string) *AppError {
	return New(CodeNotFound, domain, message, http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

var (
	ErrInvalidCredentials = New(CodeInvalidCredentials, "auth", "Invalid email or password", http.StatusUnauthorized)
	ErrInvalidToken       = New(CodeInvalidToken, "auth", "Invalid or expired token", http.StatusUnauthorized)
	ErrUserSuspended      = New(CodeForbidden, "auth", "User account suspended", http.StatusForbidden)
	ErrEmailAlreadyExists = New(CodeAlreadyExists, "auth", "Email already registered", http.StatusConflict)
	ErrWeakPassword       = New(CodeValidationFailed, "auth", "Password must be at least 8 characters", http.StatusBadRequest)
	ErrInvalidUserRole    = New(CodeInvalidOperation, "auth", "Invalid user role for this operation", http.StatusBadRequest)
	ErrNoOrganization     = New(CodeForbidden, "tenant", "User does not belong to an organization", http.StatusForbidden)

	ErrInsufficientPermissions = New(CodeForbidden, "auth", "Insufficient permissions", http.StatusForbidden)

	ErrJobNotFound         = New(CodeNotFound, "job", "Job not found", http.StatusNotFound)
	ErrJobNotOpen          = New(CodeInvalidStatus, "job", "Job is not accepting applications", http.StatusBadRequest)
	ErrFieldNotFound       = New(CodeNotFound, "form_field", "Form field not found", http.StatusNotFound)
	ErrDuplicateFieldName  = New(CodeAlreadyExists, "form_field", "Field name already used on this job", http.StatusConflict)
	ErrApplicationNotFound = New(CodeNotFound, "application", "Application not found", http.StatusNotFound)
	ErrAlreadyApplied      = New(CodeAlreadyExists, "application", "You have already applied to this job", http.StatusConflict)
	ErrCannotWithdraw      = New(CodeInvalidStatus, "application", "Application can no longer be withdrawn", http.StatusBadRequest)

	ErrCategoryNotFound     = New(CodeNotFound, "finance", "Category not found", http.StatusNotFound)
	ErrTransactionNotFound  = New(CodeNotFound, "finance", "Transaction not found", http.StatusNotFound)
	ErrCategoryTypeMismatch = New(CodeInvalidOperation, "finance", "Category type does not match transaction type", http.StatusBadRequest)

	ErrHewanNotFound     = New(CodeNotFound, "qurban", "Hewan not found", http.StatusNotFound)
	ErrHewanCodeTaken    = New(CodeAlreadyExists, "qurban", "Hewan code already used", http.StatusConflict)
	ErrSharesFull        = New(CodeLimitExceeded, "qurban", "All shares of this hewan are taken", http.StatusBadRequest)
	ErrProductNotFound   = New(CodeNotFound, "qurban", "Product not found", http.StatusNotFound)
	ErrInsufficientStock = New(CodeLimitExceeded, "qurban", "Insufficient stock", http.StatusBadRequest)

	ErrItikafEventNotFound = New(CodeNotFound, "itikaf", "Itikaf event not found", http.StatusNotFound)
	ErrParticipantNotFound = New(CodeNotFound, "itikaf", "Participant not found", http.StatusNotFound)
	ErrEventFull           = New(CodeLimitExceeded, "itikaf", "Event capacity reached", http.StatusBadRequest)
	ErrNightOutOfRange     = New(CodeInvalidOperation, "itikaf", "Night is outside the event dates", http.StatusBadRequest)

	ErrUploadNotFound     = New(CodeNotFound, "upload", "Upload not found", http.StatusNotFound)
	ErrFileTooLarge       = New(CodeValidationFailed, "upload", "File too large", http.StatusBadRequest)
	ErrInvalidFileType    = New(CodeValidationFailed, "upload", "Invalid file type", http.StatusBadRequest)
	ErrInvalidUploadUsage = New(CodeValidationFailed, "upload", "Invalid upload usage", http.StatusBadRequest)

	ErrSheetsNotConfigured = New(CodeInvalidOperation, "sheets", "Spreadsheet integration is not configured", http.StatusServiceUnavailable)
	ErrOCRNotConfigured    = New(CodeInvalidOperation, "ocr", "OCR integration is not configured", http.StatusServiceUnavailable)
)
