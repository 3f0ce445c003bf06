package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"invois/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrDocumentNotFound, http.StatusNotFound, "DOCUMENT_NOT_FOUND"},
		{domain.ErrCustomerNotFound, http.StatusNotFound, "CUSTOMER_NOT_FOUND"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{domain.ErrTenantInactive, http.StatusForbidden, "TENANT_INACTIVE"},
		{domain.ErrUserInactive, http.StatusForbidden, "USER_INACTIVE"},
		{domain.ErrDuplicateEmail, http.StatusConflict, "DUPLICATE_EMAIL"},
		{domain.ErrDuplicateTenantSlug, http.StatusConflict, "DUPLICATE_SLUG"},
		{domain.ErrDuplicateNumber, http.StatusConflict, "DUPLICATE_NUMBER"},
		{domain.ErrInvalidPayment, http.StatusBadRequest, "INVALID_PAYMENT"},
		{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
		{domain.ErrAssistantUnavailable, http.StatusServiceUnavailable, "ASSISTANT_UNAVAILABLE"},
		{errors.New("something unexpected"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.wantCode, func(t *testing.T) {
			status, code, _ := MapDomainError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantCode, code)
		})
	}
}

func TestMapDomainError_WrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("documentService.Create: %w", domain.ErrDuplicateNumber)

	status, code, _ := MapDomainError(wrapped)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_NUMBER", code)
}

func TestMapDomainError_ValidationFields(t *testing.T) {
	status, code, msg := MapDomainError(domain.NewValidationError("client_name", "line_items"))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", code)
	assert.Equal(t, "missing or invalid fields: client_name, line_items", msg)
}

func testContextWithQuery(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/documents?"+rawQuery, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		wantOffset int
		wantLimit  int
	}{
		{"defaults", "", 0, 20},
		{"explicit", "offset=40&limit=10", 40, 10},
		{"limit capped", "limit=500", 0, 20},
		{"zero limit", "limit=0", 0, 20},
		{"negative offset", "offset=-5", 0, 20},
		{"non numeric", "offset=abc&limit=xyz", 0, 20},
		{"max limit allowed", "limit=100", 0, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offset, limit := parsePagination(testContextWithQuery(tc.query))
			assert.Equal(t, tc.wantOffset, offset)
			assert.Equal(t, tc.wantLimit, limit)
		})
	}
}
