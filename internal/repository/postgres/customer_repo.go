package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invois/internal/domain"
	"invois/internal/port"
)

type customerRepo struct {
	db *sqlx.DB
}

// NewCustomerRepo creates a new PostgreSQL-backed CustomerRepository.
func NewCustomerRepo(db *sqlx.DB) port.CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (
			id, owner_id, name, email, company, address, tax_id, bank_account,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		customer.ID, customer.OwnerID, customer.Name, customer.Email,
		customer.Company, customer.Address, customer.TaxID, customer.BankAccount,
		customer.CreatedAt, customer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("customerRepo.Create: %w", err)
	}
	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, ownerID, customerID uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.GetContext(ctx, &customer,
		"SELECT * FROM customers WHERE id = $1 AND owner_id = $2", customerID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("customerRepo.GetByID: %w", err)
	}
	return &customer, nil
}

func (r *customerRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Customer, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM customers WHERE owner_id = $1", ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("customerRepo.ListByOwner count: %w", err)
	}

	var customers []domain.Customer
	err = r.db.SelectContext(ctx, &customers,
		`SELECT * FROM customers WHERE owner_id = $1
		 ORDER BY name ASC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("customerRepo.ListByOwner: %w", err)
	}
	return customers, total, nil
}

func (r *customerRepo) FindMatch(ctx context.Context, ownerID uuid.UUID, query string) (*domain.Customer, error) {
	var customer domain.Customer
	pattern := "%" + query + "%"
	err := r.db.GetContext(ctx, &customer,
		`SELECT * FROM customers
		 WHERE owner_id = $1 AND (name ILIKE $2 OR company ILIKE $2)
		 ORDER BY name ASC LIMIT 1`,
		ownerID, pattern)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("customerRepo.FindMatch: %w", err)
	}
	return &customer, nil
}

func (r *customerRepo) Update(ctx context.Context, customer *domain.Customer) error {
	customer.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE customers SET
			name = $1, email = $2, company = $3, address = $4,
			tax_id = $5, bank_account = $6, updated_at = $7
		 WHERE id = $8 AND owner_id = $9`,
		customer.Name, customer.Email, customer.Company, customer.Address,
		customer.TaxID, customer.BankAccount, customer.UpdatedAt,
		customer.ID, customer.OwnerID)
	if err != nil {
		return fmt.Errorf("customerRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, ownerID, customerID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM customers WHERE id = $1 AND owner_id = $2",
		customerID, ownerID)
	if err != nil {
		return fmt.Errorf("customerRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}
