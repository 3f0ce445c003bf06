package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tenant represents an isolated business tenant.
type Tenant struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// User represents an authenticated user belonging to a tenant.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TenantID     uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Customer is a billing counterparty owned by a user.
type Customer struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OwnerID     uuid.UUID `db:"owner_id" json:"owner_id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	Company     string    `db:"company" json:"company"`
	Address     string    `db:"address" json:"address"`
	TaxID       string    `db:"tax_id" json:"tax_id"`
	BankAccount string    `db:"bank_account" json:"bank_account"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// LineItem is a single billable row on a document. Amount is derived from
// Quantity * UnitPrice and recomputed on every write.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// Payment records money received against a document.
type Payment struct {
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
	Note   string    `json:"note,omitempty"`
}

// LineItems is a jsonb-stored ordered list of line items.
type LineItems []LineItem

// Payments is a jsonb-stored ordered list of payments.
type Payments []Payment

// Value implements driver.Valuer for jsonb storage.
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for jsonb storage.
func (l *LineItems) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// Value implements driver.Valuer for jsonb storage.
func (p Payments) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for jsonb storage.
func (p *Payments) Scan(src interface{}) error {
	return scanJSON(src, p)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

// Document is the central entity: an invoice or quote, distinguished by
// DocumentType. Subtotal, Total, AmountPaid, and item amounts are derived
// fields, recomputed from source fields on every write. Outstanding is
// computed on read and never persisted.
type Document struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	OwnerID        uuid.UUID      `db:"owner_id" json:"owner_id"`
	DocumentNumber string         `db:"document_number" json:"document_number"`
	DocumentType   DocumentType   `db:"document_type" json:"document_type"`
	Status         DocumentStatus `db:"status" json:"status"`

	CustomerID *uuid.UUID `db:"customer_id" json:"customer_id"`

	SenderName    string `db:"sender_name" json:"sender_name"`
	SenderAddress string `db:"sender_address" json:"sender_address"`
	ClientName    string `db:"client_name" json:"client_name"`
	ClientEmail   string `db:"client_email" json:"client_email"`
	ClientAddress string `db:"client_address" json:"client_address"`

	// Opaque object keys managed by the upload collaborator.
	CompanyLogo   string `db:"company_logo" json:"company_logo"`
	PaymentQRCode string `db:"payment_qr_code" json:"payment_qr_code"`

	LineItems LineItems `db:"line_items" json:"line_items"`
	Subtotal  float64   `db:"subtotal" json:"subtotal"`

	DiscountValue float64    `db:"discount_value" json:"discount_value"`
	DiscountType  AmountType `db:"discount_type" json:"discount_type"`
	TaxValue      float64    `db:"tax_value" json:"tax_value"`
	TaxType       AmountType `db:"tax_type" json:"tax_type"`

	Total      float64  `db:"total" json:"total"`
	Payments   Payments `db:"payments" json:"payments"`
	AmountPaid float64  `db:"amount_paid" json:"amount_paid"`

	Outstanding float64 `db:"-" json:"outstanding"`

	IssueDate time.Time `db:"issue_date" json:"issue_date"`
	DueDate   time.Time `db:"due_date" json:"due_date"`

	Notes string `db:"notes" json:"notes"`
	Terms string `db:"terms" json:"terms"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Stats holds aggregate operational telemetry for the superadmin panel.
type Stats struct {
	TotalTenants     int     `db:"total_tenants" json:"total_tenants"`
	TotalUsers       int     `db:"total_users" json:"total_users"`
	TotalCustomers   int     `db:"total_customers" json:"total_customers"`
	TotalDocuments   int     `db:"total_documents" json:"total_documents"`
	InvoiceCount     int     `db:"invoice_count" json:"invoice_count"`
	QuoteCount       int     `db:"quote_count" json:"quote_count"`
	PaidCount        int     `db:"paid_count" json:"paid_count"`
	OverdueCount     int     `db:"overdue_count" json:"overdue_count"`
	TotalBilled      float64 `db:"total_billed" json:"total_billed"`
	TotalCollected   float64 `db:"total_collected" json:"total_collected"`
	TotalOutstanding float64 `db:"total_outstanding" json:"total_outstanding"`
}
