package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"invois/internal/domain"
	"invois/internal/numbering"
	"invois/internal/port"
	"invois/internal/service"
	"invois/mocks"
)

func newDocumentService(repo *mocks.MockDocumentRepo, fileSvc service.FileService, email *mocks.MockEmailSender) service.DocumentService {
	if email == nil {
		email = new(mocks.MockEmailSender)
	}
	return service.NewDocumentService(repo, numbering.NewGenerator(repo), fileSvc, email)
}

func invoiceInput(ownerID uuid.UUID) *service.CreateDocumentInput {
	return &service.CreateDocumentInput{
		OwnerID:      ownerID,
		DocumentType: domain.DocumentTypeInvoice,
		SenderName:   "Studio Brightside",
		ClientName:   "Acme Pte Ltd",
		DueDate:      time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
		LineItems: []service.LineItemInput{
			{Description: "Consulting", Quantity: 10, UnitPrice: 10},
			{Description: "Setup fee", Quantity: 1, UnitPrice: 25},
		},
		DiscountValue: 10,
		DiscountType:  domain.AmountTypePercent,
		TaxValue:      5,
		TaxType:       domain.AmountTypeFixed,
	}
}

func storedInvoice(ownerID uuid.UUID) *domain.Document {
	return &domain.Document{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		DocumentNumber: "INV-202501-003",
		DocumentType:   domain.DocumentTypeInvoice,
		Status:         domain.DocumentStatusSent,
		ClientName:     "Acme Pte Ltd",
		ClientEmail:    "billing@acme.test",
		LineItems: domain.LineItems{
			{Description: "Consulting", Quantity: 10, UnitPrice: 10, Amount: 100},
			{Description: "Setup fee", Quantity: 1, UnitPrice: 25, Amount: 25},
		},
		Subtotal:      125,
		DiscountValue: 10,
		DiscountType:  domain.AmountTypePercent,
		TaxValue:      5,
		TaxType:       domain.AmountTypeFixed,
		Total:         117.5,
		Payments: domain.Payments{
			{Amount: 60, Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
		},
		AmountPaid: 60,
		IssueDate:  time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestDocumentCreate_ComputesTotalsAndNumber(t *testing.T) {
	repo := new(mocks.MockDocumentRepo)
	repo.On("MaxNumberWithPrefix", mock.Anything, mock.AnythingOfType("string")).Return("", domain.ErrNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	svc := newDocumentService(repo, nil, nil)

	input := invoiceInput(uuid.New())
	input.Payments = []service.PaymentInput{
		{Amount: 60, Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
		{Amount: 57.5, Date: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)},
	}

	doc, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 125.0, doc.Subtotal)
	assert.Equal(t, 117.5, doc.Total)
	assert.Equal(t, 117.5, doc.AmountPaid)
	assert.Equal(t, 0.0, doc.Outstanding)
	assert.Equal(t, domain.DocumentStatusDraft, doc.Status)

	wantNumber := fmt.Sprintf("INV-%s-001", time.Now().UTC().Format("200601"))
	assert.Equal(t, wantNumber, doc.DocumentNumber)

	assert.False(t, doc.IssueDate.IsZero())
	repo.AssertExpectations(t)
}

func TestDocumentCreate_AmountPaidUsedWithoutPayments(t *testing.T) {
	repo := new(mocks.MockDocumentRepo)
	repo.On("MaxNumberWithPrefix", mock.Anything, mock.AnythingOfType("string")).Return("", domain.ErrNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	svc := newDocumentService(repo, nil, nil)

	input := invoiceInput(uuid.New())
	input.AmountPaid = 50

	doc, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	assert.Empty(t, doc.Payments)
	assert.Equal(t, 50.0, doc.AmountPaid)
	assert.Equal(t, 67.5, doc.Outstanding)
}

func TestDocumentCreate_QuoteWithPaymentsRejected(t *testing.T) {
	repo := new(mocks.MockDocumentRepo)
	svc := newDocumentService(repo, nil, nil)

	input := invoiceInput(uuid.New())
	input.DocumentType = domain.DocumentTypeQuote
	input.Payments = []service.PaymentInput{{Amount: 10}}

	_, err := svc.Create(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDocumentCreate_QuoteWithAmountPaidRejected(t *testing.T) {
	svc := newDocumentService(new(mocks.MockDocumentRepo), nil, nil)

	input := invoiceInput(uuid.New())
	input.DocumentType = domain.DocumentTypeQuote
	input.AmountPaid = 25

	_, err := svc.Create(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)
}

func TestDocumentCreate_MissingFields(t *testing.T) {
	svc := newDocumentService(new(mocks.MockDocumentRepo), nil, nil)

	_, err := svc.Create(context.Background(), &service.CreateDocumentInput{OwnerID: uuid.New()})

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t,
		[]string{"document_type", "sender_name", "client_name", "line_items", "due_date"},
		vErr.Fields)
}

func TestDocumentCreate_RequiresSenderAndDueDate(t *testing.T) {
	svc := newDocumentService(new(mocks.MockDocumentRepo), nil, nil)

	input := invoiceInput(uuid.New())
	input.SenderName = ""
	input.DueDate = time.Time{}

	_, err := svc.Create(context.Background(), input)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{"sender_name", "due_date"}, vErr.Fields)
}

func TestDocumentCreate_RetriesOnNumberCollision(t *testing.T) {
	repo := new(mocks.MockDocumentRepo)
	repo.On("MaxNumberWithPrefix", mock.Anything, mock.AnythingOfType("string")).Return("", domain.ErrNotFound).Once()
	repo.On("MaxNumberWithPrefix", mock.Anything, mock.AnythingOfType("string")).Return("INV-202501-001", nil).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(domain.ErrDuplicateNumber).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil).Once()

	svc := newDocumentService(repo, nil, nil)

	doc, err := svc.Create(context.Background(), invoiceInput(uuid.New()))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(doc.DocumentNumber, "-002"))
	repo.AssertExpectations(t)
}

func TestDocumentUpdate_NotesOnlyPreservesPayments(t *testing.T) {
	ownerID := uuid.New()
	existing := storedInvoice(ownerID)

	repo := new(mocks.MockDocumentRepo)
	repo.On("GetByID", mock.Anything, ownerID, existing.ID).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	svc := newDocumentService(repo, nil, nil)

	doc, err := svc.Update(context.Background(), &service.UpdateDocumentInput{
		OwnerID:    ownerID,
		DocumentID: existing.ID,
		Notes:      domain.Set("thanks for your business"),
	})
	require.NoError(t, err)

	assert.Equal(t, "thanks for your business", doc.Notes)
	assert.Len(t, doc.Payments, 1)
	assert.Equal(t, 60.0, doc.AmountPaid)
	assert.Equal(t, 57.5, doc.Outstanding)
	assert.Equal(t, "INV-202501-003", doc.DocumentNumber)
}

func TestDocumentUpdate_NullNotesClears(t *testing.T) {
	ownerID := uuid.New()
	existing := storedInvoice(ownerID)
	existing.Notes = "old note"

	repo := new(mocks.MockDocumentRepo)
	repo.On("GetByID", mock.Anything, ownerID, existing.ID).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	svc := newDocumentService(repo, nil, nil)

	doc, err := svc.Update(context.Background(), &service.UpdateDocumentInput{
		OwnerID:    ownerID,
		DocumentID: existing.ID,
		Notes:      domain.Optional[string]{Present: true},
	})
	require.NoError(t, err)

	assert.Equal(t, "", doc.Notes)
}

func TestDocumentUpdate_PaymentsReplacedAndSummed(t *testing.T) {
	ownerID := uuid.New()
	existing := storedInvoice(ownerID)

	repo := new(mocks.MockDocumentRepo)
	repo.On("GetByID", mock.Anything, ownerID, existing.ID).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	svc := newDocumentService(repo, nil, nil)

	doc, err := svc.Update(context.Background(), &service.UpdateDocumentInput{
		OwnerID:    ownerID,
		DocumentID: existing.ID,
		Payments: domain.Set([]service.PaymentInput{
			{Amount: 60, Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
			{Amount: 57.5, Date: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)},
		}),
	})
	require.NoError(t, err)

	assert.Len(t, doc.Payments, 2)
	assert.Equal(t, 117.5, doc.AmountPaid)
	assert.Equal(t, 0.0, doc.Outstanding)
}

func TestDocumentUpdate_SwitchToQuoteClearsPaymentsAndRenumbers(t *testing.T) {
	ownerID := uuid.New()
	existing := storedInvoice(ownerID)

	repo := new(mocks.MockDocumentRepo)
	repo.On("GetByID", mock.Anything, ownerID, existing.ID).Return(existing, nil)
	repo.On("NumberInUse", mock.Anything, "QUO-202501-003", existing.ID).Return(false, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	svc := newDocumentService(repo, nil, nil)

	doc, err := svc.Update(context.Background(), &service.UpdateDocumentInput{
		OwnerID:      ownerID,
		DocumentID:   existing.ID,
		DocumentType: domain.Set(domain.DocumentTypeQuote),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DocumentTypeQuote, doc.DocumentType)
	assert.Equal(t, "QUO-202501-003", doc.DocumentNumber)
	assert.Empty(t, doc.Payments)
	assert.Equal(t, 0.0, doc.AmountPaid)
	repo.AssertExpectations(t)
}

func TestDocumentUpdate_QuoteWithExplicitPaymentsRejected(t *testing.T) {
	ownerID := uuid.New()
	existing := storedInvoice(ownerID)

	repo := new(mocks.MockDocumentRepo)
	repo.On("GetByID", mock.Anything, ownerID, existing.ID).Return(existing, nil)

	svc := newDocumentService(repo, nil, nil)

	_, err := svc.Update(context.Background(), &service.UpdateDocumentInput{
		OwnerID:      ownerID,
		DocumentID:   existing.ID,
		DocumentType: domain.Set(domain.DocumentTypeQuote),
		Payments: domain.Set([]service.PaymentInput{
			{Amount: 25, Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
		}),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidPayment)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDocumentUpdate_QuoteWithAmountPaidRejected(t *testing.T) {
	ownerID := uuid.New()
	existing := storedInvoice(ownerID)
	existing.DocumentType = domain.DocumentTypeQuote
	existing.DocumentNumber = "QUO-202501-003"
	existing.Payments = nil
	existing.AmountPaid = 0

	repo := new(mocks.MockDocumentRepo)
	repo.On("GetByID", mock.Anything, ownerID, existing.ID).Return(existing, nil)

	svc := newDocumentService(repo, nil, nil)

	_, err := svc.Update(context.Background(), &service.UpdateDocumentInput{
		OwnerID:    ownerID,
		DocumentID: existing.ID,
		AmountPaid: domain.Set(domain.FlexFloat(50)),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidPayment)
}

func TestDocumentUpdate_RenumberSlotTakenResequences(t *testing.T) {
	ownerID := uuid.New()
	existing := storedInvoice(ownerID)

	repo := new(mocks.MockDocumentRepo)
	repo.On("GetByID", mock.Anything, ownerID, existing.ID).Return(existing, nil)
	repo.On("NumberInUse", mock.Anything, "QUO-202501-003", existing.ID).Return(true, nil)
	repo.On("MaxNumberWithPrefix", mock.Anything, "QUO-202501-").Return("QUO-202501-005", nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	svc := newDocumentService(repo, nil, nil)

	doc, err := svc.Update(context.Background(), &service.UpdateDocumentInput{
		OwnerID:      ownerID,
		DocumentID:   existing.ID,
		DocumentType: domain.Set(domain.DocumentTypeQuote),
	})
	require.NoError(t, err)

	assert.Equal(t, "QUO-202501-006", doc.DocumentNumber)
}

func TestDocumentUpdate_LineItemsRecomputeTotals(t *testing.T) {
	ownerID := uuid.New()
	existing := storedInvoice(ownerID)

	repo := new(mocks.MockDocumentRepo)
	repo.On("GetByID", mock.Anything, ownerID, existing.ID).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	svc := newDocumentService(repo, nil, nil)

	doc, err := svc.Update(context.Background(), &service.UpdateDocumentInput{
		OwnerID:    ownerID,
		DocumentID: existing.ID,
		LineItems: domain.Set([]service.LineItemInput{
			{Description: "Retainer", Quantity: 2, UnitPrice: 100},
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, 200.0, doc.Subtotal)
	// 10% discount and 5 fixed tax carried over from the stored document
	assert.Equal(t, 185.0, doc.Total)
	assert.Equal(t, 200.0, doc.LineItems[0].Amount)
}

func TestDocumentUpdate_ReplacedLogoCleanedUp(t *testing.T) {
	ownerID := uuid.New()
	existing := storedInvoice(ownerID)
	existing.CompanyLogo = "users/x/logo/old.png"

	repo := new(mocks.MockDocumentRepo)
	repo.On("GetByID", mock.Anything, ownerID, existing.ID).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	fileSvc := new(mocks.MockFileService)
	fileSvc.On("Delete", mock.Anything, "users/x/logo/old.png").Return(nil)

	svc := newDocumentService(repo, fileSvc, nil)

	_, err := svc.Update(context.Background(), &service.UpdateDocumentInput{
		OwnerID:     ownerID,
		DocumentID:  existing.ID,
		CompanyLogo: domain.Set("users/x/logo/new.png"),
	})
	require.NoError(t, err)
	fileSvc.AssertExpectations(t)
}

func TestDocumentDelete_CleansUpStoredImages(t *testing.T) {
	ownerID := uuid.New()
	existing := storedInvoice(ownerID)
	existing.CompanyLogo = "users/x/logo/a.png"
	existing.PaymentQRCode = "users/x/qrcode/b.png"

	repo := new(mocks.MockDocumentRepo)
	repo.On("GetByID", mock.Anything, ownerID, existing.ID).Return(existing, nil)
	repo.On("Delete", mock.Anything, ownerID, existing.ID).Return(nil)

	fileSvc := new(mocks.MockFileService)
	fileSvc.On("Delete", mock.Anything, "users/x/logo/a.png").Return(nil)
	fileSvc.On("Delete", mock.Anything, "users/x/qrcode/b.png").Return(nil)

	svc := newDocumentService(repo, fileSvc, nil)

	require.NoError(t, svc.Delete(context.Background(), ownerID, existing.ID))
	fileSvc.AssertExpectations(t)
}

func TestDocumentSendEmail_RequiresClientEmail(t *testing.T) {
	ownerID := uuid.New()
	existing := storedInvoice(ownerID)
	existing.ClientEmail = ""

	repo := new(mocks.MockDocumentRepo)
	repo.On("GetByID", mock.Anything, ownerID, existing.ID).Return(existing, nil)

	sender := new(mocks.MockEmailSender)
	svc := service.NewDocumentService(repo, numbering.NewGenerator(repo), nil, sender)

	err := svc.SendEmail(context.Background(), ownerID, existing.ID)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"client_email"}, vErr.Fields)
	sender.AssertNotCalled(t, "SendDocumentEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentSendEmail_DeliversDecoratedDocument(t *testing.T) {
	ownerID := uuid.New()
	existing := storedInvoice(ownerID)

	repo := new(mocks.MockDocumentRepo)
	repo.On("GetByID", mock.Anything, ownerID, existing.ID).Return(existing, nil)

	sender := new(mocks.MockEmailSender)
	sender.On("SendDocumentEmail", mock.Anything, "billing@acme.test", "Acme Pte Ltd", mock.AnythingOfType("*domain.Document")).
		Run(func(args mock.Arguments) {
			doc := args.Get(3).(*domain.Document)
			assert.Equal(t, 57.5, doc.Outstanding)
		}).
		Return(nil)

	svc := service.NewDocumentService(repo, numbering.NewGenerator(repo), nil, sender)

	require.NoError(t, svc.SendEmail(context.Background(), ownerID, existing.ID))
	sender.AssertExpectations(t)
}

func TestDocumentExportXLSX(t *testing.T) {
	ownerID := uuid.New()
	docs := []domain.Document{*storedInvoice(ownerID)}

	repo := new(mocks.MockDocumentRepo)
	repo.On("ListByOwner", mock.Anything, ownerID, mock.Anything, 0, 10000).Return(docs, 1, nil)

	svc := newDocumentService(repo, nil, nil)

	buf, name, err := svc.ExportXLSX(context.Background(), ownerID, port.DocumentFilter{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(name, "documents-"))
	assert.True(t, strings.HasSuffix(name, ".xlsx"))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Documents", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Number", header)

	number, err := f.GetCellValue("Documents", "A2")
	require.NoError(t, err)
	assert.Equal(t, "INV-202501-003", number)

	outstanding, err := f.GetCellValue("Documents", "L2")
	require.NoError(t, err)
	assert.Equal(t, "57.5", outstanding)
}

func TestDocumentList_DecoratesOutstanding(t *testing.T) {
	ownerID := uuid.New()
	docs := []domain.Document{*storedInvoice(ownerID)}

	repo := new(mocks.MockDocumentRepo)
	repo.On("ListByOwner", mock.Anything, ownerID, mock.Anything, 0, 20).Return(docs, 1, nil)

	svc := newDocumentService(repo, nil, nil)

	got, total, err := svc.List(context.Background(), ownerID, port.DocumentFilter{}, 0, 20)
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	assert.Equal(t, 57.5, got[0].Outstanding)
}
