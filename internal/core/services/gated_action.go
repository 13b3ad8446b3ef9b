package services

import (
	"context"
	"errors"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
)

// gatedAction is the shared shape of every mutating venue action: check
// the ledger, call the backend, then apply and persist the confirmed
// result. Nothing is applied locally before call succeeds.
type gatedAction[T any] struct {
	kind    domain.ActionKind
	require func(rec domain.ActionRecord) error
	call    func(ctx context.Context) (T, error)
	confirm func(ctx context.Context, sess *venueSession, result T) error
}

func runAction[T any](ctx context.Context, s *interactionService, venueID domain.VenueID, a gatedAction[T]) (T, error) {
	var zero T
	log := s.logger.With().Str("venue_id", venueID.String()).Str("action", string(a.kind)).Logger()

	sess := s.session(venueID)
	if !sess.acquire(a.kind) {
		log.Debug().Msg("rejecting concurrent invocation")
		return zero, domain.ErrActionInFlight
	}
	defer sess.release(a.kind)

	if a.require != nil {
		stored, err := s.ledger.Record(ctx, venueID)
		if err != nil {
			log.Error().Err(err).Msg("ledger state indeterminate, not proceeding")
			return zero, err
		}
		if err := a.require(sess.mergeRecord(stored)); err != nil {
			if errors.Is(err, domain.ErrAlreadyActed) {
				log.Warn().Msg("action already performed, control should have been disabled")
			}
			return zero, err
		}
	}

	result, err := a.call(ctx)
	if err != nil {
		log.Info().Err(err).Msg("action failed, local state unchanged")
		return zero, err
	}

	if err := a.confirm(ctx, sess, result); err != nil {
		return result, err
	}
	log.Info().Msg("action confirmed")
	return result, nil
}
