package service

import (
	"context"

	"invois/internal/domain"
	"invois/internal/port"
)

// StatsService exposes aggregate platform telemetry to superadmins.
type StatsService interface {
	GlobalStats(ctx context.Context) (*domain.Stats, error)
}

type statsService struct {
	repo port.StatsRepository
}

// NewStatsService creates a new StatsService implementation.
func NewStatsService(repo port.StatsRepository) StatsService {
	return &statsService{repo: repo}
}

func (s *statsService) GlobalStats(ctx context.Context) (*domain.Stats, error) {
	return s.repo.GetGlobalStats(ctx)
}
