package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vncsmyrnk/nightout/internal/core/domain"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
)

const (
	ledgerKeyPrefix = "nightout:v1"
	visitedValue    = "true"
)

func VoteKey(venueID domain.VenueID) string {
	return fmt.Sprintf("%s:%s:%s", ledgerKeyPrefix, domain.ActionVote, venueID)
}

func VisitKey(venueID domain.VenueID) string {
	return fmt.Sprintf("%s:%s:%s", ledgerKeyPrefix, domain.ActionCheckIn, venueID)
}

type actionLedger struct {
	store  ports.LedgerStore
	logger zerolog.Logger
}

func NewActionLedger(store ports.LedgerStore, logger zerolog.Logger) ports.ActionLedger {
	return &actionLedger{
		store:  store,
		logger: logger,
	}
}

// Record never defaults to "not acted" on a read failure or an unreadable
// value; both are reported as domain.ErrLedgerUnavailable.
func (l *actionLedger) Record(ctx context.Context, venueID domain.VenueID) (domain.ActionRecord, error) {
	rec := domain.ActionRecord{VenueID: venueID}

	vote, found, err := l.store.Get(ctx, VoteKey(venueID))
	if err != nil {
		return rec, fmt.Errorf("%w: failed to read vote record: %v", domain.ErrLedgerUnavailable, err)
	}
	if found {
		choice, err := domain.ParseVoteChoice(vote)
		if err != nil {
			return rec, fmt.Errorf("%w: unreadable vote record %q for venue %s", domain.ErrLedgerUnavailable, vote, venueID)
		}
		rec.HasVoted = true
		rec.VoteChoice = choice
	}

	visited, found, err := l.store.Get(ctx, VisitKey(venueID))
	if err != nil {
		return rec, fmt.Errorf("%w: failed to read visit record: %v", domain.ErrLedgerUnavailable, err)
	}
	if found {
		if visited != visitedValue {
			return rec, fmt.Errorf("%w: unreadable visit record %q for venue %s", domain.ErrLedgerUnavailable, visited, venueID)
		}
		rec.HasCheckedIn = true
	}

	return rec, nil
}

func (l *actionLedger) MarkVoted(ctx context.Context, venueID domain.VenueID, choice domain.VoteChoice) error {
	if _, err := domain.ParseVoteChoice(string(choice)); err != nil {
		return err
	}
	if err := l.store.Set(ctx, VoteKey(venueID), string(choice)); err != nil {
		l.logger.Error().Err(err).Str("venue_id", venueID.String()).Msg("failed to persist vote record")
		return fmt.Errorf("%w: failed to write vote record: %v", domain.ErrLedgerUnavailable, err)
	}
	return nil
}

func (l *actionLedger) MarkCheckedIn(ctx context.Context, venueID domain.VenueID) error {
	if err := l.store.Set(ctx, VisitKey(venueID), visitedValue); err != nil {
		l.logger.Error().Err(err).Str("venue_id", venueID.String()).Msg("failed to persist visit record")
		return fmt.Errorf("%w: failed to write visit record: %v", domain.ErrLedgerUnavailable, err)
	}
	return nil
}
