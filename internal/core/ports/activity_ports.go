package ports

import (
	"context"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
)

type ActivityRepository interface {
	Record(ctx context.Context, update domain.VenueUpdate) error
	ListByVenue(ctx context.Context, venueID domain.VenueID) ([]domain.ActivityStat, error)
}

type ActivityService interface {
	Handle(ctx context.Context, update domain.VenueUpdate) error
	Report(ctx context.Context) ([]domain.ActivityStat, error)
}
