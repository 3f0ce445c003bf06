package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"invois/internal/domain"
	"invois/internal/ledger"
)

func somePayments() []domain.Payment {
	return []domain.Payment{
		{Amount: 60, Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
		{Amount: 57.5, Date: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)},
	}
}

func TestApply_QuoteForceClears(t *testing.T) {
	payments, paid := ledger.Apply(
		domain.DocumentTypeQuote,
		domain.Optional[[]domain.Payment]{Present: true, Valid: true, Value: somePayments()},
		domain.Optional[float64]{Present: true, Valid: true, Value: 117.5},
		somePayments(), 117.5,
	)

	assert.Empty(t, payments)
	assert.NotNil(t, payments)
	assert.Equal(t, 0.0, paid)
}

func TestApply_IncomingListReplacesAndSums(t *testing.T) {
	payments, paid := ledger.Apply(
		domain.DocumentTypeInvoice,
		domain.Optional[[]domain.Payment]{Present: true, Valid: true, Value: somePayments()},
		domain.Optional[float64]{},
		[]domain.Payment{{Amount: 1}}, 1,
	)

	assert.Len(t, payments, 2)
	assert.Equal(t, 117.5, paid)
}

func TestApply_IncomingListWinsOverAmountPaidOverride(t *testing.T) {
	_, paid := ledger.Apply(
		domain.DocumentTypeInvoice,
		domain.Optional[[]domain.Payment]{Present: true, Valid: true, Value: somePayments()},
		domain.Optional[float64]{Present: true, Valid: true, Value: 999},
		nil, 0,
	)

	assert.Equal(t, 117.5, paid)
}

func TestApply_NullIncomingListClears(t *testing.T) {
	payments, paid := ledger.Apply(
		domain.DocumentTypeInvoice,
		domain.Optional[[]domain.Payment]{Present: true, Valid: false},
		domain.Optional[float64]{},
		somePayments(), 117.5,
	)

	assert.Empty(t, payments)
	assert.NotNil(t, payments)
	assert.Equal(t, 0.0, paid)
}

func TestApply_AmountPaidOverrideKeepsList(t *testing.T) {
	payments, paid := ledger.Apply(
		domain.DocumentTypeInvoice,
		domain.Optional[[]domain.Payment]{},
		domain.Optional[float64]{Present: true, Valid: true, Value: 80},
		somePayments(), 117.5,
	)

	assert.Len(t, payments, 2)
	assert.Equal(t, 80.0, paid)
}

func TestApply_BothAbsentLeavesStateUntouched(t *testing.T) {
	payments, paid := ledger.Apply(
		domain.DocumentTypeInvoice,
		domain.Optional[[]domain.Payment]{},
		domain.Optional[float64]{},
		somePayments(), 117.5,
	)

	assert.Len(t, payments, 2)
	assert.Equal(t, 117.5, paid)
}

func TestApply_NullAmountPaidIsIgnored(t *testing.T) {
	_, paid := ledger.Apply(
		domain.DocumentTypeInvoice,
		domain.Optional[[]domain.Payment]{},
		domain.Optional[float64]{Present: true, Valid: false},
		somePayments(), 117.5,
	)

	assert.Equal(t, 117.5, paid)
}

func TestValidateUpdate_RejectsExplicitPaymentsOnQuote(t *testing.T) {
	err := ledger.ValidateUpdate(
		domain.DocumentTypeQuote,
		domain.Optional[[]domain.Payment]{Present: true, Valid: true, Value: somePayments()},
		domain.Optional[float64]{},
	)
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)
}

func TestValidateUpdate_RejectsPositivePaidOnQuote(t *testing.T) {
	err := ledger.ValidateUpdate(
		domain.DocumentTypeQuote,
		domain.Optional[[]domain.Payment]{},
		domain.Optional[float64]{Present: true, Valid: true, Value: 50},
	)
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)
}

func TestValidateUpdate_AllowsExplicitClearOnQuote(t *testing.T) {
	assert.NoError(t, ledger.ValidateUpdate(
		domain.DocumentTypeQuote,
		domain.Optional[[]domain.Payment]{Present: true, Valid: true, Value: []domain.Payment{}},
		domain.Optional[float64]{Present: true, Valid: true, Value: 0},
	))
	assert.NoError(t, ledger.ValidateUpdate(
		domain.DocumentTypeQuote,
		domain.Optional[[]domain.Payment]{Present: true, Valid: false},
		domain.Optional[float64]{Present: true, Valid: false},
	))
}

func TestValidateUpdate_AbsentFieldsOnQuoteAllowed(t *testing.T) {
	assert.NoError(t, ledger.ValidateUpdate(
		domain.DocumentTypeQuote,
		domain.Optional[[]domain.Payment]{},
		domain.Optional[float64]{},
	))
}

func TestValidateUpdate_InvoiceUnrestricted(t *testing.T) {
	assert.NoError(t, ledger.ValidateUpdate(
		domain.DocumentTypeInvoice,
		domain.Optional[[]domain.Payment]{Present: true, Valid: true, Value: somePayments()},
		domain.Optional[float64]{Present: true, Valid: true, Value: 117.5},
	))
}

func TestValidateCreate_RejectsPaymentsOnQuote(t *testing.T) {
	err := ledger.ValidateCreate(domain.DocumentTypeQuote, somePayments(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)
}

func TestValidateCreate_RejectsPositivePaidOnQuote(t *testing.T) {
	err := ledger.ValidateCreate(domain.DocumentTypeQuote, nil, 50)
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)
}

func TestValidateCreate_AllowsCleanQuote(t *testing.T) {
	assert.NoError(t, ledger.ValidateCreate(domain.DocumentTypeQuote, nil, 0))
}

func TestValidateCreate_InvoiceUnrestricted(t *testing.T) {
	assert.NoError(t, ledger.ValidateCreate(domain.DocumentTypeInvoice, somePayments(), 117.5))
}
