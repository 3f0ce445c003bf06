package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invois/internal/domain"
	"invois/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `INSERT INTO documents (
		id, owner_id, document_number, document_type, status, customer_id,
		sender_name, sender_address, client_name, client_email, client_address,
		company_logo, payment_qr_code,
		line_items, subtotal, discount_value, discount_type, tax_value, tax_type,
		total, payments, amount_paid,
		issue_date, due_date, notes, terms,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11,
		$12, $13,
		$14, $15, $16, $17, $18, $19,
		$20, $21, $22,
		$23, $24, $25, $26,
		$27, $28
	)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.OwnerID, doc.DocumentNumber, doc.DocumentType, doc.Status, doc.CustomerID,
		doc.SenderName, doc.SenderAddress, doc.ClientName, doc.ClientEmail, doc.ClientAddress,
		doc.CompanyLogo, doc.PaymentQRCode,
		doc.LineItems, doc.Subtotal, doc.DiscountValue, doc.DiscountType, doc.TaxValue, doc.TaxType,
		doc.Total, doc.Payments, doc.AmountPaid,
		doc.IssueDate, doc.DueDate, doc.Notes, doc.Terms,
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "document_number") {
			return domain.ErrDuplicateNumber
		}
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM documents WHERE id = $1 AND owner_id = $2", docID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter port.DocumentFilter, offset, limit int) ([]domain.Document, int, error) {
	where := "WHERE owner_id = $1"
	args := []interface{}{ownerID}

	if filter.DocumentType != "" {
		args = append(args, filter.DocumentType)
		where += fmt.Sprintf(" AND document_type = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM documents "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByOwner count: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT * FROM documents %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args))

	var docs []domain.Document
	err = r.db.SelectContext(ctx, &docs, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByOwner: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) Update(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			document_number = $1, document_type = $2, status = $3, customer_id = $4,
			sender_name = $5, sender_address = $6, client_name = $7,
			client_email = $8, client_address = $9,
			company_logo = $10, payment_qr_code = $11,
			line_items = $12, subtotal = $13,
			discount_value = $14, discount_type = $15, tax_value = $16, tax_type = $17,
			total = $18, payments = $19, amount_paid = $20,
			issue_date = $21, due_date = $22, notes = $23, terms = $24,
			updated_at = $25
		 WHERE id = $26 AND owner_id = $27`,
		doc.DocumentNumber, doc.DocumentType, doc.Status, doc.CustomerID,
		doc.SenderName, doc.SenderAddress, doc.ClientName,
		doc.ClientEmail, doc.ClientAddress,
		doc.CompanyLogo, doc.PaymentQRCode,
		doc.LineItems, doc.Subtotal,
		doc.DiscountValue, doc.DiscountType, doc.TaxValue, doc.TaxType,
		doc.Total, doc.Payments, doc.AmountPaid,
		doc.IssueDate, doc.DueDate, doc.Notes, doc.Terms,
		doc.UpdatedAt,
		doc.ID, doc.OwnerID)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "document_number") {
			return domain.ErrDuplicateNumber
		}
		return fmt.Errorf("documentRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, ownerID, docID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM documents WHERE id = $1 AND owner_id = $2",
		docID, ownerID)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// MaxNumberWithPrefix relies on the zero-padded sequence: lexicographic MAX
// matches numeric order up to 999. Deliberately not owner-scoped.
func (r *documentRepo) MaxNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	var number sql.NullString
	err := r.db.GetContext(ctx, &number,
		"SELECT MAX(document_number) FROM documents WHERE document_number LIKE $1",
		prefix+"%")
	if err != nil {
		return "", fmt.Errorf("documentRepo.MaxNumberWithPrefix: %w", err)
	}
	if !number.Valid {
		return "", domain.ErrNotFound
	}
	return number.String, nil
}

func (r *documentRepo) NumberInUse(ctx context.Context, number string, excludeID uuid.UUID) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM documents WHERE document_number = $1 AND id != $2",
		number, excludeID)
	if err != nil {
		return false, fmt.Errorf("documentRepo.NumberInUse: %w", err)
	}
	return count > 0, nil
}
