package port

import (
	"context"

	"github.com/google/uuid"

	"invois/internal/domain"
)

// TenantRepository defines the contract for tenant persistence.
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
	List(ctx context.Context, offset, limit int) ([]domain.Tenant, int, error)
	Update(ctx context.Context, tenant *domain.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository defines the contract for user persistence. Emails are
// unique across the whole deployment, so lookups by email are unscoped.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CustomerRepository defines the contract for customer persistence. All
// query methods include ownerID to enforce owner isolation at the data layer.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, ownerID, customerID uuid.UUID) (*domain.Customer, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Customer, int, error)
	// FindMatch returns the first customer whose name or company contains the
	// query, case-insensitively, or domain.ErrCustomerNotFound.
	FindMatch(ctx context.Context, ownerID uuid.UUID, query string) (*domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, ownerID, customerID uuid.UUID) error
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	DocumentType domain.DocumentType
	Status       domain.DocumentStatus
}

// DocumentRepository defines the contract for document persistence. Query
// methods are owner-scoped except the numbering lookups, which are global:
// the number namespace is shared across all owners.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter DocumentFilter, offset, limit int) ([]domain.Document, int, error)
	Update(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, ownerID, docID uuid.UUID) error

	// MaxNumberWithPrefix returns the lexicographically highest document
	// number starting with prefix, or domain.ErrNotFound.
	MaxNumberWithPrefix(ctx context.Context, prefix string) (string, error)
	// NumberInUse reports whether a different document already holds number.
	NumberInUse(ctx context.Context, number string, excludeID uuid.UUID) (bool, error)
}

// StatsRepository provides aggregate telemetry queries for the superadmin
// panel.
type StatsRepository interface {
	GetGlobalStats(ctx context.Context) (*domain.Stats, error)
}
