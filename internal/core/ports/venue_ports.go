package ports

import (
	"context"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
)

// The ports below serve the reference backend only.

type VenueRepository interface {
	List(ctx context.Context) ([]domain.Venue, error)
	GetByID(ctx context.Context, id domain.VenueID) (*domain.Venue, error)
	ApplyVote(ctx context.Context, id domain.VenueID, choice domain.VoteChoice) (*domain.Venue, error)
	SetCover(ctx context.Context, id domain.VenueID, amount *float64) (*domain.Venue, error)
	IncrementPop(ctx context.Context, id domain.VenueID) (*domain.Venue, error)
	Create(ctx context.Context, venue *domain.Venue) error
}

type PhotoRepository interface {
	ListByVenue(ctx context.Context, venueID domain.VenueID) ([]domain.Photo, error)
	Save(ctx context.Context, photo *domain.Photo) error
}

// PhotoStorage stores image bytes and returns a public URL.
type PhotoStorage interface {
	Put(ctx context.Context, key string, image domain.Image) (string, error)
}

type EventPublisher interface {
	PublishVenueUpdated(ctx context.Context, venue domain.Venue, action domain.ActionKind) error
}

type VoteInput struct {
	VenueID domain.VenueID
	Choice  domain.VoteChoice
}

type VenueService interface {
	ListVenues(ctx context.Context) ([]domain.Venue, error)
	GetVenue(ctx context.Context, id string) (*domain.Venue, error)
	ListPhotos(ctx context.Context, id string) ([]domain.Photo, error)
	Vote(ctx context.Context, input VoteInput) (*domain.Venue, error)
	SetCover(ctx context.Context, id string, amount *float64) (*domain.Venue, error)
	CheckIn(ctx context.Context, id string) (*domain.Venue, error)
	AddPhoto(ctx context.Context, id string, image domain.Image) (*domain.Photo, error)
}
