package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTenantInactive     = errors.New("tenant is inactive")
	ErrUserInactive       = errors.New("user is inactive")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateTenantSlug = errors.New("tenant slug already exists")

	ErrDocumentNotFound = errors.New("document not found")
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrInvalidPayment signals the quote/payment exclusion invariant: a quote
	// may never carry payments or a positive amount paid at creation time.
	ErrInvalidPayment = errors.New("quotes cannot have payments")

	// ErrDuplicateNumber signals a document number collision that survived
	// the numbering fallback. Callers recover by regenerating and retrying.
	ErrDuplicateNumber = errors.New("document number already in use")

	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")

	ErrAssistantUnavailable = errors.New("assistant is not configured")
)

// ValidationError reports missing or malformed required fields on a write.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// NewValidationError builds a ValidationError for the given field names.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}
