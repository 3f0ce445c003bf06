package noop

import (
	"context"
	"log"

	"invois/internal/domain"
	"invois/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs sends to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendDocumentEmail(_ context.Context, toEmail, toName string, doc *domain.Document) error {
	log.Printf("[NOOP EMAIL] %s %s for %s (%s), total %.2f",
		doc.DocumentType, doc.DocumentNumber, toName, toEmail, doc.Total)
	return nil
}
