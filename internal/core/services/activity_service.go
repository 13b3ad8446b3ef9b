package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
)

// reportConcurrency bounds the per-venue reads issued by Report.
const reportConcurrency = 8

type activityService struct {
	venueRepo    ports.VenueRepository
	activityRepo ports.ActivityRepository
	logger       zerolog.Logger
}

func NewActivityService(venueRepo ports.VenueRepository, activityRepo ports.ActivityRepository, logger zerolog.Logger) ports.ActivityService {
	return &activityService{
		venueRepo:    venueRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

func (s *activityService) Handle(ctx context.Context, update domain.VenueUpdate) error {
	if update.Action == "" || update.Venue.ID == "" {
		return fmt.Errorf("incomplete venue update: action %q venue %q", update.Action, update.Venue.ID)
	}
	if update.OccurredAt.IsZero() {
		return fmt.Errorf("venue update for %s has no timestamp", update.Venue.ID)
	}
	if err := s.activityRepo.Record(ctx, update); err != nil {
		return err
	}
	s.logger.Debug().Str("venue_id", update.Venue.ID.String()).Str("action", string(update.Action)).Msg("activity recorded")
	return nil
}

// Report returns the activity of every venue, grouped by venue in list order.
func (s *activityService) Report(ctx context.Context) ([]domain.ActivityStat, error) {
	venues, err := s.venueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch all venues: %w", err)
	}

	perVenue := make([][]domain.ActivityStat, len(venues))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reportConcurrency)
	for i, venue := range venues {
		g.Go(func() error {
			stats, err := s.activityRepo.ListByVenue(gctx, venue.ID)
			if err != nil {
				return fmt.Errorf("failed to read activity for venue %s: %w", venue.ID, err)
			}
			perVenue[i] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := []domain.ActivityStat{}
	for _, stats := range perVenue {
		report = append(report, stats...)
	}
	return report, nil
}
