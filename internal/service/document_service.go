package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"invois/internal/domain"
	"invois/internal/ledger"
	"invois/internal/money"
	"invois/internal/numbering"
	"invois/internal/port"
)

// LineItemInput is a single line item in a document payload. Quantity and
// UnitPrice tolerate numeric strings and garbage, coercing to 0; the stored
// amount is always recomputed server-side.
type LineItemInput struct {
	Description string           `json:"description"`
	Quantity    domain.FlexFloat `json:"quantity"`
	UnitPrice   domain.FlexFloat `json:"unit_price"`
}

// PaymentInput is a single payment in a document payload.
type PaymentInput struct {
	Amount domain.FlexFloat `json:"amount"`
	Date   time.Time        `json:"date"`
	Note   string           `json:"note"`
}

// CreateDocumentInput is the DTO for creating a document.
type CreateDocumentInput struct {
	OwnerID uuid.UUID `json:"-"`

	DocumentType domain.DocumentType   `json:"document_type"`
	Status       domain.DocumentStatus `json:"status"`
	CustomerID   *uuid.UUID            `json:"customer_id"`

	SenderName    string `json:"sender_name"`
	SenderAddress string `json:"sender_address"`
	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email"`
	ClientAddress string `json:"client_address"`

	CompanyLogo   string `json:"company_logo"`
	PaymentQRCode string `json:"payment_qr_code"`

	LineItems []LineItemInput `json:"line_items"`

	DiscountValue domain.FlexFloat  `json:"discount_value"`
	DiscountType  domain.AmountType `json:"discount_type"`
	TaxValue      domain.FlexFloat  `json:"tax_value"`
	TaxType       domain.AmountType `json:"tax_type"`

	Payments   []PaymentInput   `json:"payments"`
	AmountPaid domain.FlexFloat `json:"amount_paid"`

	IssueDate time.Time `json:"issue_date"`
	DueDate   time.Time `json:"due_date"`

	Notes string `json:"notes"`
	Terms string `json:"terms"`
}

// UpdateDocumentInput is the DTO for a partial document update. Every field
// is three-state: absent leaves the stored value untouched, null clears it,
// and a value replaces it.
type UpdateDocumentInput struct {
	OwnerID    uuid.UUID `json:"-"`
	DocumentID uuid.UUID `json:"-"`

	DocumentType domain.Optional[domain.DocumentType]   `json:"document_type"`
	Status       domain.Optional[domain.DocumentStatus] `json:"status"`
	CustomerID   domain.Optional[uuid.UUID]             `json:"customer_id"`

	SenderName    domain.Optional[string] `json:"sender_name"`
	SenderAddress domain.Optional[string] `json:"sender_address"`
	ClientName    domain.Optional[string] `json:"client_name"`
	ClientEmail   domain.Optional[string] `json:"client_email"`
	ClientAddress domain.Optional[string] `json:"client_address"`

	CompanyLogo   domain.Optional[string] `json:"company_logo"`
	PaymentQRCode domain.Optional[string] `json:"payment_qr_code"`

	LineItems domain.Optional[[]LineItemInput] `json:"line_items"`

	DiscountValue domain.Optional[domain.FlexFloat]  `json:"discount_value"`
	DiscountType  domain.Optional[domain.AmountType] `json:"discount_type"`
	TaxValue      domain.Optional[domain.FlexFloat]  `json:"tax_value"`
	TaxType       domain.Optional[domain.AmountType] `json:"tax_type"`

	Payments   domain.Optional[[]PaymentInput]   `json:"payments"`
	AmountPaid domain.Optional[domain.FlexFloat] `json:"amount_paid"`

	IssueDate domain.Optional[time.Time] `json:"issue_date"`
	DueDate   domain.Optional[time.Time] `json:"due_date"`

	Notes domain.Optional[string] `json:"notes"`
	Terms domain.Optional[string] `json:"terms"`
}

// DocumentService defines the document management contract.
type DocumentService interface {
	Create(ctx context.Context, input *CreateDocumentInput) (*domain.Document, error)
	GetByID(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, ownerID uuid.UUID, filter port.DocumentFilter, offset, limit int) ([]domain.Document, int, error)
	Update(ctx context.Context, input *UpdateDocumentInput) (*domain.Document, error)
	Delete(ctx context.Context, ownerID, docID uuid.UUID) error
	ExportXLSX(ctx context.Context, ownerID uuid.UUID, filter port.DocumentFilter) (*bytes.Buffer, string, error)
	SendEmail(ctx context.Context, ownerID, docID uuid.UUID) error
}

type documentService struct {
	docRepo port.DocumentRepository
	numGen  *numbering.Generator
	fileSvc FileService
	email   port.EmailSender
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	numGen *numbering.Generator,
	fileSvc FileService,
	email port.EmailSender,
) DocumentService {
	return &documentService{
		docRepo: docRepo,
		numGen:  numGen,
		fileSvc: fileSvc,
		email:   email,
	}
}

func (s *documentService) Create(ctx context.Context, input *CreateDocumentInput) (*domain.Document, error) {
	var missing []string
	if !input.DocumentType.Valid() {
		missing = append(missing, "document_type")
	}
	if input.SenderName == "" {
		missing = append(missing, "sender_name")
	}
	if input.ClientName == "" {
		missing = append(missing, "client_name")
	}
	if len(input.LineItems) == 0 {
		missing = append(missing, "line_items")
	}
	if input.DueDate.IsZero() {
		missing = append(missing, "due_date")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError(missing...)
	}

	status := input.Status
	if status == "" {
		status = domain.DocumentStatusDraft
	}
	if !status.Valid() {
		return nil, domain.NewValidationError("status")
	}

	payments := convertPayments(input.Payments)
	if err := ledger.ValidateCreate(input.DocumentType, payments, input.AmountPaid.Float64()); err != nil {
		return nil, err
	}

	items := convertLineItems(input.LineItems)
	subtotal := money.Round2(money.Subtotal(items))

	discountType := normalizeAmountType(input.DiscountType)
	taxType := normalizeAmountType(input.TaxType)
	discount := money.Effective(input.DiscountValue.Float64(), discountType, subtotal)
	tax := money.Effective(input.TaxValue.Float64(), taxType, subtotal)
	total := money.Round2(money.Total(subtotal, discount, tax))

	// Explicit payments win over a direct amount_paid figure.
	paid := money.AmountPaid(payments)
	if len(payments) == 0 {
		paid = input.AmountPaid.Float64()
	}
	paid = money.Round2(paid)

	now := time.Now().UTC()
	issueDate := input.IssueDate
	if issueDate.IsZero() {
		issueDate = now
	}

	doc := &domain.Document{
		ID:             uuid.New(),
		OwnerID:        input.OwnerID,
		DocumentNumber: s.numGen.Next(ctx, input.DocumentType, now),
		DocumentType:   input.DocumentType,
		Status:         status,
		CustomerID:     input.CustomerID,
		SenderName:     input.SenderName,
		SenderAddress:  input.SenderAddress,
		ClientName:     input.ClientName,
		ClientEmail:    input.ClientEmail,
		ClientAddress:  input.ClientAddress,
		CompanyLogo:    input.CompanyLogo,
		PaymentQRCode:  input.PaymentQRCode,
		LineItems:      items,
		Subtotal:       subtotal,
		DiscountValue:  input.DiscountValue.Float64(),
		DiscountType:   discountType,
		TaxValue:       input.TaxValue.Float64(),
		TaxType:        taxType,
		Total:          total,
		Payments:       payments,
		AmountPaid:     paid,
		IssueDate:      issueDate,
		DueDate:        input.DueDate,
		Notes:          input.Notes,
		Terms:          input.Terms,
	}

	err := s.docRepo.Create(ctx, doc)
	if errors.Is(err, domain.ErrDuplicateNumber) {
		// Two creations in the same scope can race to the same sequence.
		// Regenerate once against the now-committed winner.
		log.Printf("documentService.Create: number %s collided, regenerating", doc.DocumentNumber)
		doc.DocumentNumber = s.numGen.Next(ctx, input.DocumentType, now)
		err = s.docRepo.Create(ctx, doc)
	}
	if err != nil {
		return nil, fmt.Errorf("documentService.Create: %w", err)
	}

	decorate(doc)
	return doc, nil
}

func (s *documentService) GetByID(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, ownerID, docID)
	if err != nil {
		return nil, err
	}
	decorate(doc)
	return doc, nil
}

func (s *documentService) List(ctx context.Context, ownerID uuid.UUID, filter port.DocumentFilter, offset, limit int) ([]domain.Document, int, error) {
	docs, total, err := s.docRepo.ListByOwner(ctx, ownerID, filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	for i := range docs {
		decorate(&docs[i])
	}
	return docs, total, nil
}

func (s *documentService) Update(ctx context.Context, input *UpdateDocumentInput) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, input.OwnerID, input.DocumentID)
	if err != nil {
		return nil, err
	}

	effectiveType := doc.DocumentType
	if input.DocumentType.Present && input.DocumentType.Valid {
		if !input.DocumentType.Value.Valid() {
			return nil, domain.NewValidationError("document_type")
		}
		effectiveType = input.DocumentType.Value
	}

	typeChanged := effectiveType != doc.DocumentType
	oldLogo, oldQR := doc.CompanyLogo, doc.PaymentQRCode

	if input.Status.Present && input.Status.Valid {
		if !input.Status.Value.Valid() {
			return nil, domain.NewValidationError("status")
		}
		doc.Status = input.Status.Value
	}

	if input.CustomerID.Present {
		if input.CustomerID.Valid {
			id := input.CustomerID.Value
			doc.CustomerID = &id
		} else {
			doc.CustomerID = nil
		}
	}

	applyString(&doc.SenderName, input.SenderName)
	applyString(&doc.SenderAddress, input.SenderAddress)
	applyString(&doc.ClientName, input.ClientName)
	applyString(&doc.ClientEmail, input.ClientEmail)
	applyString(&doc.ClientAddress, input.ClientAddress)
	applyString(&doc.CompanyLogo, input.CompanyLogo)
	applyString(&doc.PaymentQRCode, input.PaymentQRCode)
	applyString(&doc.Notes, input.Notes)
	applyString(&doc.Terms, input.Terms)

	if input.LineItems.Present {
		var items []LineItemInput
		if input.LineItems.Valid {
			items = input.LineItems.Value
		}
		doc.LineItems = convertLineItems(items)
	}
	doc.Subtotal = money.Round2(money.Subtotal(doc.LineItems))

	if input.DiscountValue.Present {
		doc.DiscountValue = input.DiscountValue.Value.Float64()
	}
	if input.DiscountType.Present && input.DiscountType.Valid {
		doc.DiscountType = normalizeAmountType(input.DiscountType.Value)
	}
	if input.TaxValue.Present {
		doc.TaxValue = input.TaxValue.Value.Float64()
	}
	if input.TaxType.Present && input.TaxType.Valid {
		doc.TaxType = normalizeAmountType(input.TaxType.Value)
	}

	discount := money.Effective(doc.DiscountValue, doc.DiscountType, doc.Subtotal)
	tax := money.Effective(doc.TaxValue, doc.TaxType, doc.Subtotal)
	doc.Total = money.Round2(money.Total(doc.Subtotal, discount, tax))

	paymentsOpt := domain.Optional[[]domain.Payment]{
		Present: input.Payments.Present,
		Valid:   input.Payments.Valid,
		Value:   convertPayments(input.Payments.Value),
	}
	paidOpt := domain.Optional[float64]{
		Present: input.AmountPaid.Present,
		Valid:   input.AmountPaid.Valid,
		Value:   input.AmountPaid.Value.Float64(),
	}
	if err := ledger.ValidateUpdate(effectiveType, paymentsOpt, paidOpt); err != nil {
		return nil, err
	}
	payments, paid := ledger.Apply(effectiveType, paymentsOpt, paidOpt, doc.Payments, doc.AmountPaid)
	doc.Payments = payments
	doc.AmountPaid = money.Round2(paid)

	if typeChanged {
		doc.DocumentNumber = s.numGen.Renumber(ctx, doc.DocumentNumber, effectiveType, doc.ID)
		doc.DocumentType = effectiveType
	}

	if input.IssueDate.Present && input.IssueDate.Valid {
		doc.IssueDate = input.IssueDate.Value
	}
	if input.DueDate.Present {
		if input.DueDate.Valid {
			doc.DueDate = input.DueDate.Value
		} else {
			doc.DueDate = time.Time{}
		}
	}

	err = s.docRepo.Update(ctx, doc)
	if errors.Is(err, domain.ErrDuplicateNumber) && typeChanged {
		log.Printf("documentService.Update: number %s collided after type change, regenerating", doc.DocumentNumber)
		doc.DocumentNumber = s.numGen.Next(ctx, effectiveType, time.Now().UTC())
		err = s.docRepo.Update(ctx, doc)
	}
	if err != nil {
		return nil, fmt.Errorf("documentService.Update: %w", err)
	}

	s.cleanupReplaced(ctx, oldLogo, doc.CompanyLogo)
	s.cleanupReplaced(ctx, oldQR, doc.PaymentQRCode)

	decorate(doc)
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, ownerID, docID uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, ownerID, docID)
	if err != nil {
		return err
	}
	if err := s.docRepo.Delete(ctx, ownerID, docID); err != nil {
		return err
	}

	// Storage cleanup is best-effort; the record is already gone.
	s.cleanupReplaced(ctx, doc.CompanyLogo, "")
	s.cleanupReplaced(ctx, doc.PaymentQRCode, "")
	return nil
}

// ExportXLSX renders the owner's documents as a spreadsheet and returns the
// file contents plus a suggested filename.
func (s *documentService) ExportXLSX(ctx context.Context, ownerID uuid.UUID, filter port.DocumentFilter) (*bytes.Buffer, string, error) {
	docs, _, err := s.docRepo.ListByOwner(ctx, ownerID, filter, 0, 10000)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Documents"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Number", "Type", "Status", "Client", "Issue Date", "Due Date",
		"Subtotal", "Discount", "Tax", "Total", "Paid", "Outstanding",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, "", fmt.Errorf("documentService.ExportXLSX: %w", err)
		}
	}

	for row, doc := range docs {
		decorate(&docs[row])
		discount := money.Round2(money.Effective(doc.DiscountValue, doc.DiscountType, doc.Subtotal))
		tax := money.Round2(money.Effective(doc.TaxValue, doc.TaxType, doc.Subtotal))

		values := []interface{}{
			doc.DocumentNumber,
			string(doc.DocumentType),
			string(doc.Status),
			doc.ClientName,
			formatDate(doc.IssueDate),
			formatDate(doc.DueDate),
			doc.Subtotal,
			discount,
			tax,
			doc.Total,
			doc.AmountPaid,
			docs[row].Outstanding,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", fmt.Errorf("documentService.ExportXLSX: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("documentService.ExportXLSX: %w", err)
	}

	name := fmt.Sprintf("documents-%s.xlsx", time.Now().UTC().Format("20060102"))
	return buf, name, nil
}

func (s *documentService) SendEmail(ctx context.Context, ownerID, docID uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, ownerID, docID)
	if err != nil {
		return err
	}
	if doc.ClientEmail == "" {
		return domain.NewValidationError("client_email")
	}
	decorate(doc)
	if err := s.email.SendDocumentEmail(ctx, doc.ClientEmail, doc.ClientName, doc); err != nil {
		return fmt.Errorf("documentService.SendEmail: %w", err)
	}
	return nil
}

// cleanupReplaced deletes an object key that is no longer referenced. Errors
// are logged, not propagated.
func (s *documentService) cleanupReplaced(ctx context.Context, oldKey, newKey string) {
	if s.fileSvc == nil || oldKey == "" || oldKey == newKey {
		return
	}
	if err := s.fileSvc.Delete(ctx, oldKey); err != nil {
		log.Printf("documentService: cleanup of %s failed: %v", oldKey, err)
	}
}

// decorate fills read-time derived fields.
func decorate(doc *domain.Document) {
	doc.Outstanding = money.Round2(money.Outstanding(doc.Total, doc.AmountPaid))
}

func convertLineItems(inputs []LineItemInput) domain.LineItems {
	items := make(domain.LineItems, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, domain.LineItem{
			Description: in.Description,
			Quantity:    in.Quantity.Float64(),
			UnitPrice:   in.UnitPrice.Float64(),
			Amount:      money.Round2(money.LineAmount(in.Quantity.Float64(), in.UnitPrice.Float64())),
		})
	}
	return items
}

func convertPayments(inputs []PaymentInput) []domain.Payment {
	payments := make([]domain.Payment, 0, len(inputs))
	for _, in := range inputs {
		payments = append(payments, domain.Payment{
			Amount: in.Amount.Float64(),
			Date:   in.Date,
			Note:   in.Note,
		})
	}
	return payments
}

func normalizeAmountType(t domain.AmountType) domain.AmountType {
	if t == domain.AmountTypePercent {
		return domain.AmountTypePercent
	}
	return domain.AmountTypeFixed
}

func applyString(dst *string, opt domain.Optional[string]) {
	if !opt.Present {
		return
	}
	if opt.Valid {
		*dst = opt.Value
	} else {
		*dst = ""
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
