package port

import (
	"context"

	"invois/internal/domain"
)

// EmailSender defines the contract for sending documents to customers.
type EmailSender interface {
	SendDocumentEmail(ctx context.Context, toEmail, toName string, doc *domain.Document) error
}
