package ports

import (
	"context"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
)

// ImageCapturer supplies the bytes of a captured photo. It returns
// domain.ErrCaptureDenied when permission is refused or the user cancels.
type ImageCapturer interface {
	Capture(ctx context.Context) (domain.Image, error)
}

type InteractionService interface {
	Open(ctx context.Context, venueID domain.VenueID) (domain.VenueView, error)
	View(venueID domain.VenueID) (domain.VenueView, bool)
	RefreshVenue(ctx context.Context, venueID domain.VenueID) (domain.VenueView, error)
	CastVote(ctx context.Context, venueID domain.VenueID, choice domain.VoteChoice) (*domain.Venue, error)
	CheckIn(ctx context.Context, venueID domain.VenueID) (*domain.Venue, error)
	SetCover(ctx context.Context, venueID domain.VenueID, amount *float64) (*domain.Venue, error)
	UploadPhoto(ctx context.Context, venueID domain.VenueID, capturer ImageCapturer) ([]domain.Photo, error)
}

type BrowseService interface {
	Refresh(ctx context.Context) ([]domain.Venue, error)
	Venues() []domain.Venue
}
