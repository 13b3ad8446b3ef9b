package ports

import (
	"context"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
)

// DirectoryClient is the request/response view of the venue backend.
// Transport failures match domain.ErrNetwork, unknown venues
// domain.ErrVenueNotFound and other non-success statuses domain.ErrServer.
// No method retries.
type DirectoryClient interface {
	ListVenues(ctx context.Context) ([]domain.Venue, error)
	GetVenue(ctx context.Context, id domain.VenueID) (*domain.Venue, error)
	ListPhotos(ctx context.Context, venueID domain.VenueID) ([]domain.Photo, error)
	SubmitVote(ctx context.Context, venueID domain.VenueID, choice domain.VoteChoice) (*domain.Venue, error)
	SetCover(ctx context.Context, venueID domain.VenueID, amount *float64) (*domain.Venue, error)
	RecordCheckIn(ctx context.Context, venueID domain.VenueID) (*domain.Venue, error)
	UploadPhoto(ctx context.Context, venueID domain.VenueID, image domain.Image) (*domain.Photo, error)
}
