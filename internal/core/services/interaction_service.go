package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
)

type interactionService struct {
	directory ports.DirectoryClient
	ledger    ports.ActionLedger
	logger    zerolog.Logger

	mu       sync.Mutex
	sessions map[domain.VenueID]*venueSession
}

func NewInteractionService(directory ports.DirectoryClient, ledger ports.ActionLedger, logger zerolog.Logger) ports.InteractionService {
	return &interactionService{
		directory: directory,
		ledger:    ledger,
		logger:    logger,
		sessions:  make(map[domain.VenueID]*venueSession),
	}
}

func (s *interactionService) session(venueID domain.VenueID) *venueSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[venueID]
	if !ok {
		sess = newVenueSession(venueID)
		s.sessions[venueID] = sess
	}
	return sess
}

// Open loads the venue, its ledger record and its photos concurrently.
// A failed photo fetch degrades to an empty gallery with PhotosErr set.
func (s *interactionService) Open(ctx context.Context, venueID domain.VenueID) (domain.VenueView, error) {
	sess := s.session(venueID)
	venueGen, photoGen := sess.generations()

	var (
		venue  *domain.Venue
		record domain.ActionRecord
		photos []domain.Photo
		phErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.directory.GetVenue(gctx, venueID)
		if err != nil {
			return fmt.Errorf("failed to load venue %s: %w", venueID, err)
		}
		venue = v
		return nil
	})
	g.Go(func() error {
		rec, err := s.ledger.Record(gctx, venueID)
		if err != nil {
			return err
		}
		record = rec
		return nil
	})
	g.Go(func() error {
		photos, phErr = s.directory.ListPhotos(gctx, venueID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.VenueView{}, err
	}

	if phErr != nil {
		s.logger.Warn().Err(phErr).Str("venue_id", venueID.String()).Msg("failed to load photos")
	}
	if !sess.applyRead(venue, venueGen) {
		s.logger.Debug().Str("venue_id", venueID.String()).Msg("discarding venue read older than applied mutation")
	}
	sess.applyPhotosRead(photos, phErr, photoGen)
	sess.mergeRecord(record)

	view, _ := sess.view()
	return view, nil
}

func (s *interactionService) View(venueID domain.VenueID) (domain.VenueView, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[venueID]
	s.mu.Unlock()
	if !ok {
		return domain.VenueView{}, false
	}
	return sess.view()
}

// RefreshVenue re-reads server state only; the ledger record is kept.
func (s *interactionService) RefreshVenue(ctx context.Context, venueID domain.VenueID) (domain.VenueView, error) {
	sess := s.session(venueID)
	venueGen, photoGen := sess.generations()

	var (
		venue  *domain.Venue
		photos []domain.Photo
		phErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.directory.GetVenue(gctx, venueID)
		if err != nil {
			return fmt.Errorf("failed to refresh venue %s: %w", venueID, err)
		}
		venue = v
		return nil
	})
	g.Go(func() error {
		photos, phErr = s.directory.ListPhotos(gctx, venueID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.VenueView{}, err
	}

	sess.applyRead(venue, venueGen)
	sess.applyPhotosRead(photos, phErr, photoGen)

	view, _ := sess.view()
	return view, nil
}

func (s *interactionService) CastVote(ctx context.Context, venueID domain.VenueID, choice domain.VoteChoice) (*domain.Venue, error) {
	if _, err := domain.ParseVoteChoice(string(choice)); err != nil {
		return nil, err
	}

	return runAction(ctx, s, venueID, gatedAction[*domain.Venue]{
		kind: domain.ActionVote,
		require: func(rec domain.ActionRecord) error {
			if rec.HasVoted {
				return domain.ErrAlreadyActed
			}
			return nil
		},
		call: func(ctx context.Context) (*domain.Venue, error) {
			return s.directory.SubmitVote(ctx, venueID, choice)
		},
		confirm: func(ctx context.Context, sess *venueSession, v *domain.Venue) error {
			sess.applyMutation(v, func(rec *domain.ActionRecord) {
				rec.HasVoted = true
				rec.VoteChoice = choice
			})
			return s.ledger.MarkVoted(ctx, venueID, choice)
		},
	})
}

func (s *interactionService) CheckIn(ctx context.Context, venueID domain.VenueID) (*domain.Venue, error) {
	return runAction(ctx, s, venueID, gatedAction[*domain.Venue]{
		kind: domain.ActionCheckIn,
		require: func(rec domain.ActionRecord) error {
			if rec.HasCheckedIn {
				return domain.ErrAlreadyActed
			}
			return nil
		},
		call: func(ctx context.Context) (*domain.Venue, error) {
			return s.directory.RecordCheckIn(ctx, venueID)
		},
		confirm: func(ctx context.Context, sess *venueSession, v *domain.Venue) error {
			sess.applyMutation(v, func(rec *domain.ActionRecord) {
				rec.HasCheckedIn = true
			})
			return s.ledger.MarkCheckedIn(ctx, venueID)
		},
	})
}

// SetCover is not ledger gated; the last confirmed response wins.
func (s *interactionService) SetCover(ctx context.Context, venueID domain.VenueID, amount *float64) (*domain.Venue, error) {
	if err := domain.ValidateCover(amount); err != nil {
		return nil, err
	}

	return runAction(ctx, s, venueID, gatedAction[*domain.Venue]{
		kind: domain.ActionCover,
		call: func(ctx context.Context) (*domain.Venue, error) {
			return s.directory.SetCover(ctx, venueID, amount)
		},
		confirm: func(_ context.Context, sess *venueSession, v *domain.Venue) error {
			sess.applyMutation(v, nil)
			return nil
		},
	})
}

// UploadPhoto requires a prior vote, then captures, uploads and reloads
// the whole gallery from the server.
func (s *interactionService) UploadPhoto(ctx context.Context, venueID domain.VenueID, capturer ports.ImageCapturer) ([]domain.Photo, error) {
	_, err := runAction(ctx, s, venueID, gatedAction[*domain.Photo]{
		kind: domain.ActionPhoto,
		require: func(rec domain.ActionRecord) error {
			if !rec.HasVoted {
				return domain.ErrVoteRequired
			}
			return nil
		},
		call: func(ctx context.Context) (*domain.Photo, error) {
			if capturer == nil {
				return nil, domain.ErrCaptureDenied
			}
			image, err := capturer.Capture(ctx)
			if err != nil {
				if errors.Is(err, domain.ErrCaptureDenied) {
					return nil, err
				}
				return nil, fmt.Errorf("%w: %v", domain.ErrCaptureDenied, err)
			}
			if image.Empty() {
				return nil, domain.ErrCaptureDenied
			}
			return s.directory.UploadPhoto(ctx, venueID, image)
		},
		confirm: func(ctx context.Context, sess *venueSession, _ *domain.Photo) error {
			photos, err := s.directory.ListPhotos(ctx, venueID)
			if err != nil {
				return fmt.Errorf("photo uploaded but failed to refresh gallery: %w", err)
			}
			sess.replacePhotos(photos)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return s.session(venueID).photoSnapshot(), nil
}
