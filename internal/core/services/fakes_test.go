package services

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/vncsmyrnk/nightout/internal/adapters/ledger/memory"
	"github.com/vncsmyrnk/nightout/internal/core/domain"
)

const (
	opGetVenue   = "GetVenue"
	opListVenues = "ListVenues"
	opListPhotos = "ListPhotos"
	opVote       = "SubmitVote"
	opCover      = "SetCover"
	opCheckIn    = "RecordCheckIn"
	opUpload     = "UploadPhoto"
)

// fakeDirectory behaves like the backend: it has no device identity and
// counts every vote it receives.
type fakeDirectory struct {
	mu     sync.Mutex
	order  []domain.VenueID
	venues map[domain.VenueID]domain.Venue
	photos map[domain.VenueID][]domain.Photo
	calls  map[string]int
	errs   map[string]error
	hooks  map[string]func()
}

func newFakeDirectory(venues ...domain.Venue) *fakeDirectory {
	f := &fakeDirectory{
		venues: make(map[domain.VenueID]domain.Venue),
		photos: make(map[domain.VenueID][]domain.Photo),
		calls:  make(map[string]int),
		errs:   make(map[string]error),
		hooks:  make(map[string]func()),
	}
	for _, v := range venues {
		f.order = append(f.order, v.ID)
		f.venues[v.ID] = v
	}
	return f
}

func (f *fakeDirectory) failWith(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[op] = err
}

func (f *fakeDirectory) onCall(op string, hook func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[op] = hook
}

func (f *fakeDirectory) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeDirectory) venue(id domain.VenueID) domain.Venue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.venues[id]
}

// enter records the call, runs its hook outside the lock and returns the
// injected error, if any.
func (f *fakeDirectory) enter(op string) error {
	f.mu.Lock()
	f.calls[op]++
	hook := f.hooks[op]
	err := f.errs[op]
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return err
}

func (f *fakeDirectory) ListVenues(_ context.Context) ([]domain.Venue, error) {
	f.mu.Lock()
	venues := make([]domain.Venue, 0, len(f.order))
	for _, id := range f.order {
		venues = append(venues, f.venues[id])
	}
	f.mu.Unlock()

	if err := f.enter(opListVenues); err != nil {
		return nil, err
	}
	return venues, nil
}

func (f *fakeDirectory) GetVenue(_ context.Context, id domain.VenueID) (*domain.Venue, error) {
	f.mu.Lock()
	v, ok := f.venues[id]
	f.mu.Unlock()

	if err := f.enter(opGetVenue); err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrVenueNotFound
	}
	return &v, nil
}

func (f *fakeDirectory) ListPhotos(_ context.Context, id domain.VenueID) ([]domain.Photo, error) {
	f.mu.Lock()
	photos := slices.Clone(f.photos[id])
	f.mu.Unlock()

	if err := f.enter(opListPhotos); err != nil {
		return nil, err
	}
	return photos, nil
}

func (f *fakeDirectory) SubmitVote(_ context.Context, id domain.VenueID, choice domain.VoteChoice) (*domain.Venue, error) {
	if err := f.enter(opVote); err != nil {
		return nil, err
	}
	return f.mutate(id, func(v *domain.Venue) {
		if choice == domain.Upvote {
			v.Upvotes++
		} else {
			v.Downvotes++
		}
	})
}

func (f *fakeDirectory) SetCover(_ context.Context, id domain.VenueID, amount *float64) (*domain.Venue, error) {
	if err := f.enter(opCover); err != nil {
		return nil, err
	}
	return f.mutate(id, func(v *domain.Venue) {
		v.Cover = nil
		if amount != nil {
			c := *amount
			v.Cover = &c
		}
	})
}

func (f *fakeDirectory) RecordCheckIn(_ context.Context, id domain.VenueID) (*domain.Venue, error) {
	if err := f.enter(opCheckIn); err != nil {
		return nil, err
	}
	return f.mutate(id, func(v *domain.Venue) { v.Pop++ })
}

func (f *fakeDirectory) UploadPhoto(_ context.Context, id domain.VenueID, image domain.Image) (*domain.Photo, error) {
	if err := f.enter(opUpload); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.venues[id]; !ok {
		return nil, domain.ErrVenueNotFound
	}
	photo := domain.Photo{
		ID:      image.Filename,
		VenueID: id,
		URL:     "https://cdn.example.com/" + image.Filename,
	}
	f.photos[id] = append(f.photos[id], photo)
	return &photo, nil
}

func (f *fakeDirectory) mutate(id domain.VenueID, fn func(*domain.Venue)) (*domain.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.venues[id]
	if !ok {
		return nil, domain.ErrVenueNotFound
	}
	fn(&v)
	f.venues[id] = v
	return &v, nil
}

// flakyStore wraps the in-memory ledger and can be told to fail.
type flakyStore struct {
	*memory.Store
	mu      sync.Mutex
	failGet bool
	failSet bool
}

var errDiskFull = errors.New("disk full")

func newFlakyStore() *flakyStore {
	return &flakyStore{Store: memory.NewStore()}
}

func (s *flakyStore) setFailures(get, set bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet, s.failSet = get, set
}

func (s *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	fail := s.failGet
	s.mu.Unlock()
	if fail {
		return "", false, errDiskFull
	}
	return s.Store.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	fail := s.failSet
	s.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return s.Store.Set(ctx, key, value)
}

type capturerFunc func(ctx context.Context) (domain.Image, error)

func (f capturerFunc) Capture(ctx context.Context) (domain.Image, error) {
	return f(ctx)
}

func jpeg(name string) capturerFunc {
	return func(context.Context) (domain.Image, error) {
		return domain.Image{Data: []byte{0xFF, 0xD8, 0xFF}, Filename: name, ContentType: "image/jpeg"}, nil
	}
}

func loft() domain.Venue {
	return domain.Venue{ID: "1", Name: "Loft", Type: "Club", Upvotes: 10, Downvotes: 2, Pop: 5}
}
