package domain

// DocumentType distinguishes invoices from quotes. It drives the numbering
// prefix and payment eligibility.
type DocumentType string

const (
	DocumentTypeInvoice DocumentType = "invoice"
	DocumentTypeQuote   DocumentType = "quote"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	return t == DocumentTypeInvoice || t == DocumentTypeQuote
}

// DocumentStatus is the caller-set lifecycle state of a document. The core
// never auto-transitions it.
type DocumentStatus string

const (
	DocumentStatusDraft   DocumentStatus = "draft"
	DocumentStatusSent    DocumentStatus = "sent"
	DocumentStatusPaid    DocumentStatus = "paid"
	DocumentStatusOverdue DocumentStatus = "overdue"
)

// Valid reports whether s is a known document status.
func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusSent, DocumentStatusPaid, DocumentStatusOverdue:
		return true
	}
	return false
}

// AmountType selects between a fixed amount and a percentage of the subtotal
// for discount and tax specs.
type AmountType string

const (
	AmountTypeFixed   AmountType = "amount"
	AmountTypePercent AmountType = "percent"
)

// UserRole defines the role hierarchy.
type UserRole string

const (
	RoleSuperadmin UserRole = "superadmin"
	RoleUser       UserRole = "user"
)

// ImageType represents the allowed image types for logo/QR uploads.
type ImageType string

const (
	ImageTypeJPG ImageType = "jpg"
	ImageTypePNG ImageType = "png"
)

// AllowedImageExtensions maps file extensions (without dot) to ImageType.
var AllowedImageExtensions = map[string]ImageType{
	"jpg":  ImageTypeJPG,
	"jpeg": ImageTypeJPG,
	"png":  ImageTypePNG,
}

// AllowedImageContentTypes maps MIME content types to ImageType.
var AllowedImageContentTypes = map[string]ImageType{
	"image/jpeg": ImageTypeJPG,
	"image/png":  ImageTypePNG,
}
