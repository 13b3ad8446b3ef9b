package ports

import (
	"context"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
)

// LedgerStore is the durable key-value backend of the action ledger.
// Get reports found=false for an absent key; an error means the state
// is indeterminate.
type LedgerStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

type ActionLedger interface {
	Record(ctx context.Context, venueID domain.VenueID) (domain.ActionRecord, error)
	MarkVoted(ctx context.Context, venueID domain.VenueID, choice domain.VoteChoice) error
	MarkCheckedIn(ctx context.Context, venueID domain.VenueID) error
}
