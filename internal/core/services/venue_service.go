package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vncsmyrnk/nightout/internal/core/domain"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
)

type venueService struct {
	venueRepo ports.VenueRepository
	photoRepo ports.PhotoRepository
	storage   ports.PhotoStorage
	events    ports.EventPublisher
	logger    zerolog.Logger
}

func NewVenueService(
	venueRepo ports.VenueRepository,
	photoRepo ports.PhotoRepository,
	storage ports.PhotoStorage,
	events ports.EventPublisher,
	logger zerolog.Logger,
) ports.VenueService {
	return &venueService{
		venueRepo: venueRepo,
		photoRepo: photoRepo,
		storage:   storage,
		events:    events,
		logger:    logger,
	}
}

func (s *venueService) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	return s.venueRepo.List(ctx)
}

func (s *venueService) GetVenue(ctx context.Context, id string) (*domain.Venue, error) {
	venueID, err := domain.ParseVenueID(id)
	if err != nil {
		return nil, err
	}
	return s.venueRepo.GetByID(ctx, venueID)
}

func (s *venueService) ListPhotos(ctx context.Context, id string) ([]domain.Photo, error) {
	venue, err := s.GetVenue(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.photoRepo.ListByVenue(ctx, venue.ID)
}

// Vote has no notion of who is voting; repeat votes are counted.
func (s *venueService) Vote(ctx context.Context, input ports.VoteInput) (*domain.Venue, error) {
	if _, err := domain.ParseVoteChoice(string(input.Choice)); err != nil {
		return nil, err
	}
	venue, err := s.venueRepo.ApplyVote(ctx, input.VenueID, input.Choice)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, *venue, domain.ActionVote)
	return venue, nil
}

func (s *venueService) SetCover(ctx context.Context, id string, amount *float64) (*domain.Venue, error) {
	venueID, err := domain.ParseVenueID(id)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateCover(amount); err != nil {
		return nil, err
	}
	venue, err := s.venueRepo.SetCover(ctx, venueID, amount)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, *venue, domain.ActionCover)
	return venue, nil
}

func (s *venueService) CheckIn(ctx context.Context, id string) (*domain.Venue, error) {
	venueID, err := domain.ParseVenueID(id)
	if err != nil {
		return nil, err
	}
	venue, err := s.venueRepo.IncrementPop(ctx, venueID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, *venue, domain.ActionCheckIn)
	return venue, nil
}

func (s *venueService) AddPhoto(ctx context.Context, id string, image domain.Image) (*domain.Photo, error) {
	if image.Empty() {
		return nil, domain.ErrCaptureDenied
	}
	venue, err := s.GetVenue(ctx, id)
	if err != nil {
		return nil, err
	}

	photoID := uuid.New()
	key := fmt.Sprintf("venues/%s/%s%s", venue.ID, photoID, extensionFor(image.ContentType))
	url, err := s.storage.Put(ctx, key, image)
	if err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	photo := &domain.Photo{
		ID:      photoID.String(),
		VenueID: venue.ID,
		URL:     url,
	}
	if err := s.photoRepo.Save(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}

	s.publish(ctx, *venue, domain.ActionPhoto)
	return photo, nil
}

// publish logs and drops publishing errors.
func (s *venueService) publish(ctx context.Context, venue domain.Venue, action domain.ActionKind) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishVenueUpdated(ctx, venue, action); err != nil {
		s.logger.Warn().Err(err).Str("venue_id", venue.ID.String()).Str("action", string(action)).Msg("failed to publish venue update")
	}
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	default:
		return ".jpg"
	}
}
