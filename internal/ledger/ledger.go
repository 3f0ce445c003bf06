// Package ledger maintains the payment list attached to a document and
// enforces the invariant that quotes never carry payments.
package ledger

import (
	"invois/internal/domain"
	"invois/internal/money"
)

// Apply resolves the final payment state of a document update.
//
// Quotes are force-cleared regardless of inputs. For invoices, a payments
// field present in the payload (even empty or null) replaces the current
// list wholesale; an absent payments field with a direct amountPaid override
// keeps the list and takes the override; absence of both leaves payment
// state untouched, which is what lets payments survive unrelated-field
// updates.
func Apply(
	docType domain.DocumentType,
	incoming domain.Optional[[]domain.Payment],
	amountPaid domain.Optional[float64],
	current []domain.Payment,
	currentPaid float64,
) ([]domain.Payment, float64) {
	if docType == domain.DocumentTypeQuote {
		return []domain.Payment{}, 0
	}

	if incoming.Present {
		replacement := incoming.Value
		if !incoming.Valid || replacement == nil {
			replacement = []domain.Payment{}
		}
		return replacement, money.AmountPaid(replacement)
	}

	if amountPaid.Present && amountPaid.Valid {
		return current, amountPaid.Value
	}

	return current, currentPaid
}

// ValidateUpdate rejects an update payload that explicitly attaches non-empty
// payments or a positive amount paid to a document that is, or is becoming, a
// quote. Prior-state payments and explicit clears still go through Apply's
// silent force-clear.
func ValidateUpdate(
	docType domain.DocumentType,
	incoming domain.Optional[[]domain.Payment],
	amountPaid domain.Optional[float64],
) error {
	if docType != domain.DocumentTypeQuote {
		return nil
	}
	if incoming.Present && incoming.Valid && len(incoming.Value) > 0 {
		return domain.ErrInvalidPayment
	}
	if amountPaid.Present && amountPaid.Valid && amountPaid.Value > 0 {
		return domain.ErrInvalidPayment
	}
	return nil
}

// ValidateCreate rejects a creation payload that attaches payments or a
// positive amount paid to a quote. Unlike the silent clearing during update
// merges, creation is a hard reject.
func ValidateCreate(docType domain.DocumentType, payments []domain.Payment, amountPaid float64) error {
	if docType != domain.DocumentTypeQuote {
		return nil
	}
	if len(payments) > 0 || amountPaid > 0 {
		return domain.ErrInvalidPayment
	}
	return nil
}
