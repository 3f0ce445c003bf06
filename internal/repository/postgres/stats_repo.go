package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"invois/internal/domain"
	"invois/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) GetGlobalStats(ctx context.Context) (*domain.Stats, error) {
	var stats domain.Stats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM tenants) AS total_tenants,
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM customers) AS total_customers,
			(SELECT COUNT(*) FROM documents) AS total_documents,
			(SELECT COUNT(*) FROM documents WHERE document_type = 'invoice') AS invoice_count,
			(SELECT COUNT(*) FROM documents WHERE document_type = 'quote') AS quote_count,
			(SELECT COUNT(*) FROM documents WHERE status = 'paid') AS paid_count,
			(SELECT COUNT(*) FROM documents WHERE status = 'overdue') AS overdue_count,
			(SELECT COALESCE(SUM(total), 0) FROM documents WHERE document_type = 'invoice') AS total_billed,
			(SELECT COALESCE(SUM(amount_paid), 0) FROM documents WHERE document_type = 'invoice') AS total_collected,
			(SELECT COALESCE(SUM(GREATEST(total - amount_paid, 0)), 0) FROM documents WHERE document_type = 'invoice') AS total_outstanding`)
	if err != nil {
		return nil, fmt.Errorf("statsRepo.GetGlobalStats: %w", err)
	}
	return &stats, nil
}
