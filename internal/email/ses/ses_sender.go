package ses

import (
	"context"
	"fmt"
	"html"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"invois/internal/domain"
	"invois/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendDocumentEmail(ctx context.Context, toEmail, toName string, doc *domain.Document) error {
	kind := "Invoice"
	if doc.DocumentType == domain.DocumentTypeQuote {
		kind = "Quote"
	}

	subject := fmt.Sprintf("%s %s from %s", kind, doc.DocumentNumber, senderName(doc, s.fromName))
	htmlBody := buildDocumentHTML(toName, kind, doc)
	textBody := buildDocumentText(toName, kind, doc)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func senderName(doc *domain.Document, fallback string) string {
	if doc.SenderName != "" {
		return doc.SenderName
	}
	return fallback
}

func buildDocumentText(toName, kind string, doc *domain.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", toName)
	fmt.Fprintf(&b, "Please find %s %s below.\n\n", strings.ToLower(kind), doc.DocumentNumber)
	for _, item := range doc.LineItems {
		fmt.Fprintf(&b, "  %s  x%.2f @ %.2f = %.2f\n", item.Description, item.Quantity, item.UnitPrice, item.Amount)
	}
	fmt.Fprintf(&b, "\nSubtotal: %.2f\nTotal: %.2f\n", doc.Subtotal, doc.Total)
	if doc.DocumentType == domain.DocumentTypeInvoice {
		fmt.Fprintf(&b, "Paid: %.2f\nOutstanding: %.2f\n", doc.AmountPaid, doc.Outstanding)
	}
	if !doc.DueDate.IsZero() {
		fmt.Fprintf(&b, "Due: %s\n", doc.DueDate.Format("2 Jan 2006"))
	}
	if doc.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", doc.Notes)
	}
	fmt.Fprintf(&b, "\n%s\n", senderName(doc, "Invois"))
	return b.String()
}

func buildDocumentHTML(toName, kind string, doc *domain.Document) string {
	var rows strings.Builder
	for _, item := range doc.LineItems {
		fmt.Fprintf(&rows, `<tr>
      <td style="padding: 8px; border-bottom: 1px solid #eee;">%s</td>
      <td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%.2f</td>
      <td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%.2f</td>
      <td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%.2f</td>
    </tr>`, html.EscapeString(item.Description), item.Quantity, item.UnitPrice, item.Amount)
	}

	balance := ""
	if doc.DocumentType == domain.DocumentTypeInvoice {
		balance = fmt.Sprintf(`<p style="margin: 4px 0;">Paid: %.2f</p>
  <p style="margin: 4px 0; font-weight: bold;">Outstanding: %.2f</p>`, doc.AmountPaid, doc.Outstanding)
	}

	due := ""
	if !doc.DueDate.IsZero() {
		due = fmt.Sprintf(`<p style="color: #666;">Due by %s</p>`, doc.DueDate.Format("2 Jan 2006"))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">%s %s</h2>
  <p>Hi %s,</p>
  <p>Please find your %s from %s below.</p>
  <table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
    <tr>
      <th style="padding: 8px; text-align: left; border-bottom: 2px solid #333;">Description</th>
      <th style="padding: 8px; text-align: right; border-bottom: 2px solid #333;">Qty</th>
      <th style="padding: 8px; text-align: right; border-bottom: 2px solid #333;">Unit Price</th>
      <th style="padding: 8px; text-align: right; border-bottom: 2px solid #333;">Amount</th>
    </tr>
    %s
  </table>
  <p style="margin: 4px 0;">Subtotal: %.2f</p>
  <p style="margin: 4px 0; font-weight: bold;">Total: %.2f</p>
  %s
  %s
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">%s</p>
</body>
</html>`,
		kind, doc.DocumentNumber,
		html.EscapeString(toName),
		strings.ToLower(kind), html.EscapeString(senderName(doc, "Invois")),
		rows.String(),
		doc.Subtotal, doc.Total,
		balance, due,
		html.EscapeString(senderName(doc, "Invois")))
}
