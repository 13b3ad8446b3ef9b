package services

import (
	"slices"
	"sync"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
)

// venueSession is the cached state of one venue screen. Generations count
// applied mutation responses so that a read started before a mutation can
// be discarded when it completes after it.
type venueSession struct {
	mu        sync.Mutex
	venue     *domain.Venue
	record    domain.ActionRecord
	photos    []domain.Photo
	photosErr error
	venueGen  uint64
	photoGen  uint64
	inflight  map[domain.ActionKind]bool
}

func newVenueSession(id domain.VenueID) *venueSession {
	return &venueSession{
		record:   domain.ActionRecord{VenueID: id},
		inflight: make(map[domain.ActionKind]bool),
	}
}

func (s *venueSession) acquire(kind domain.ActionKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[kind] {
		return false
	}
	s.inflight[kind] = true
	return true
}

func (s *venueSession) release(kind domain.ActionKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, kind)
}

func (s *venueSession) generations() (venueGen, photoGen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.venueGen, s.photoGen
}

// applyRead stores a plain read unless a mutation has been applied since gen was taken.
func (s *venueSession) applyRead(v *domain.Venue, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.venueGen != gen {
		return false
	}
	cp := *v
	s.venue = &cp
	return true
}

func (s *venueSession) applyMutation(v *domain.Venue, mark func(*domain.ActionRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.venue = &cp
	s.venueGen++
	if mark != nil {
		mark(&s.record)
	}
}

func (s *venueSession) applyPhotosRead(photos []domain.Photo, err error, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.photoGen != gen {
		return
	}
	if err != nil {
		s.photosErr = err
		return
	}
	s.photos = slices.Clone(photos)
	s.photosErr = nil
}

func (s *venueSession) replacePhotos(photos []domain.Photo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos = slices.Clone(photos)
	s.photosErr = nil
	s.photoGen++
}

// mergeRecord folds a ledger read into the cached record. Flags only move
// from false to true.
func (s *venueSession) mergeRecord(rec domain.ActionRecord) domain.ActionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.HasVoted && !s.record.HasVoted {
		s.record.HasVoted = true
		s.record.VoteChoice = rec.VoteChoice
	}
	if rec.HasCheckedIn {
		s.record.HasCheckedIn = true
	}
	return s.record
}

func (s *venueSession) view() (domain.VenueView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.venue == nil {
		return domain.VenueView{}, false
	}
	view := domain.NewVenueView(*s.venue, s.record, slices.Clone(s.photos))
	view.PhotosErr = s.photosErr
	return view, true
}

func (s *venueSession) photoSnapshot() []domain.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.photos)
}
