package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"invois/internal/domain"
	"invois/internal/port"
)

// CreateCustomerInput is the DTO for creating a customer.
type CreateCustomerInput struct {
	OwnerID     uuid.UUID `json:"-"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Company     string    `json:"company"`
	Address     string    `json:"address"`
	TaxID       string    `json:"tax_id"`
	BankAccount string    `json:"bank_account"`
}

// UpdateCustomerInput is the DTO for a partial customer update.
type UpdateCustomerInput struct {
	OwnerID    uuid.UUID `json:"-"`
	CustomerID uuid.UUID `json:"-"`

	Name        domain.Optional[string] `json:"name"`
	Email       domain.Optional[string] `json:"email"`
	Company     domain.Optional[string] `json:"company"`
	Address     domain.Optional[string] `json:"address"`
	TaxID       domain.Optional[string] `json:"tax_id"`
	BankAccount domain.Optional[string] `json:"bank_account"`
}

// CustomerService defines the customer management contract.
type CustomerService interface {
	Create(ctx context.Context, input *CreateCustomerInput) (*domain.Customer, error)
	GetByID(ctx context.Context, ownerID, customerID uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Customer, int, error)
	Update(ctx context.Context, input *UpdateCustomerInput) (*domain.Customer, error)
	Delete(ctx context.Context, ownerID, customerID uuid.UUID) error
	// ResolveOrCreate finds an existing customer loosely matching name and
	// returns it, or creates a minimal record when none matches.
	ResolveOrCreate(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Customer, error)
}

type customerService struct {
	customerRepo port.CustomerRepository
}

// NewCustomerService creates a new CustomerService implementation.
func NewCustomerService(customerRepo port.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) Create(ctx context.Context, input *CreateCustomerInput) (*domain.Customer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.NewValidationError("name")
	}

	customer := &domain.Customer{
		ID:          uuid.New(),
		OwnerID:     input.OwnerID,
		Name:        strings.TrimSpace(input.Name),
		Email:       input.Email,
		Company:     input.Company,
		Address:     input.Address,
		TaxID:       input.TaxID,
		BankAccount: input.BankAccount,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("customerService.Create: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetByID(ctx context.Context, ownerID, customerID uuid.UUID) (*domain.Customer, error) {
	return s.customerRepo.GetByID(ctx, ownerID, customerID)
}

func (s *customerService) List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Customer, int, error) {
	return s.customerRepo.ListByOwner(ctx, ownerID, offset, limit)
}

func (s *customerService) Update(ctx context.Context, input *UpdateCustomerInput) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, input.OwnerID, input.CustomerID)
	if err != nil {
		return nil, err
	}

	applyString(&customer.Name, input.Name)
	applyString(&customer.Email, input.Email)
	applyString(&customer.Company, input.Company)
	applyString(&customer.Address, input.Address)
	applyString(&customer.TaxID, input.TaxID)
	applyString(&customer.BankAccount, input.BankAccount)

	if strings.TrimSpace(customer.Name) == "" {
		return nil, domain.NewValidationError("name")
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("customerService.Update: %w", err)
	}
	return customer, nil
}

func (s *customerService) Delete(ctx context.Context, ownerID, customerID uuid.UUID) error {
	return s.customerRepo.Delete(ctx, ownerID, customerID)
}

func (s *customerService) ResolveOrCreate(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name")
	}

	existing, err := s.customerRepo.FindMatch(ctx, ownerID, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		return nil, fmt.Errorf("customerService.ResolveOrCreate: %w", err)
	}

	// No match: create a placeholder record so the document can reference
	// someone. The synthetic email marks it for later completion.
	customer := &domain.Customer{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    name,
		Email:   placeholderEmail(name),
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("customerService.ResolveOrCreate: %w", err)
	}
	return customer, nil
}

// placeholderEmail derives a synthetic address from the customer name, e.g.
// "Acme Pte Ltd" -> "acme.pte.ltd@placeholder.local".
func placeholderEmail(name string) string {
	var parts []string
	for _, word := range strings.Fields(strings.ToLower(name)) {
		var b strings.Builder
		for _, r := range word {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			parts = append(parts, b.String())
		}
	}
	local := strings.Join(parts, ".")
	if local == "" {
		local = fmt.Sprintf("customer.%d", time.Now().UnixMilli())
	}
	return local + "@placeholder.local"
}
