package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/vncsmyrnk/nightout/internal/core/domain"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
)

type browseService struct {
	directory ports.DirectoryClient
	logger    zerolog.Logger

	mu     sync.RWMutex
	venues []domain.Venue
}

func NewBrowseService(directory ports.DirectoryClient, logger zerolog.Logger) ports.BrowseService {
	return &browseService{
		directory: directory,
		logger:    logger,
	}
}

// Refresh replaces the cached list in backend order. On failure the last
// good list is kept and the error is returned.
func (s *browseService) Refresh(ctx context.Context) ([]domain.Venue, error) {
	venues, err := s.directory.ListVenues(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to refresh venue list")
		return s.Venues(), fmt.Errorf("failed to list venues: %w", err)
	}

	s.mu.Lock()
	s.venues = slices.Clone(venues)
	s.mu.Unlock()

	return slices.Clone(venues), nil
}

func (s *browseService) Venues() []domain.Venue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.venues)
}
