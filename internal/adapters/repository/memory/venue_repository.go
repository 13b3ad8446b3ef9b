package memory

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
)

// VenueRepository keeps venues and their photos in memory, in insertion
// order. It implements both ports.VenueRepository and ports.PhotoRepository.
type VenueRepository struct {
	mu     sync.RWMutex
	order  []domain.VenueID
	venues map[domain.VenueID]*domain.Venue
	photos map[domain.VenueID][]domain.Photo
	nextID int64
}

func NewVenueRepository() *VenueRepository {
	return &VenueRepository{
		venues: make(map[domain.VenueID]*domain.Venue),
		photos: make(map[domain.VenueID][]domain.Photo),
		nextID: 1,
	}
}

// Seed adds a few venues for local development.
func (r *VenueRepository) Seed() {
	five := 5.0
	for _, v := range []domain.Venue{
		{Name: "Loft", Type: "Club", Upvotes: 10, Downvotes: 2, Pop: 5},
		{Name: "The Anchor", Type: "Pub", Upvotes: 4, Downvotes: 1, Cover: &five, Pop: 2},
		{Name: "Skyline", Type: "Rooftop", Upvotes: 7, Downvotes: 3, Pop: 0},
	} {
		_ = r.Create(context.Background(), &v)
	}
}

func (r *VenueRepository) Create(_ context.Context, v *domain.Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v.ID == "" {
		v.ID = domain.VenueID(strconv.FormatInt(r.nextID, 10))
		r.nextID++
	}
	stored := cloneVenue(*v)
	if _, exists := r.venues[v.ID]; !exists {
		r.order = append(r.order, v.ID)
	}
	r.venues[v.ID] = &stored
	return nil
}

func (r *VenueRepository) List(_ context.Context) ([]domain.Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	venues := make([]domain.Venue, 0, len(r.order))
	for _, id := range r.order {
		venues = append(venues, cloneVenue(*r.venues[id]))
	}
	return venues, nil
}

func (r *VenueRepository) GetByID(_ context.Context, id domain.VenueID) (*domain.Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.venues[id]
	if !ok {
		return nil, domain.ErrVenueNotFound
	}
	out := cloneVenue(*v)
	return &out, nil
}

func (r *VenueRepository) ApplyVote(_ context.Context, id domain.VenueID, choice domain.VoteChoice) (*domain.Venue, error) {
	return r.update(id, func(v *domain.Venue) error {
		switch choice {
		case domain.Upvote:
			v.Upvotes++
		case domain.Downvote:
			v.Downvotes++
		default:
			return domain.ErrInvalidVoteChoice
		}
		return nil
	})
}

func (r *VenueRepository) SetCover(_ context.Context, id domain.VenueID, amount *float64) (*domain.Venue, error) {
	return r.update(id, func(v *domain.Venue) error {
		if amount == nil {
			v.Cover = nil
			return nil
		}
		c := *amount
		v.Cover = &c
		return nil
	})
}

func (r *VenueRepository) IncrementPop(_ context.Context, id domain.VenueID) (*domain.Venue, error) {
	return r.update(id, func(v *domain.Venue) error {
		v.Pop++
		return nil
	})
}

func (r *VenueRepository) ListByVenue(_ context.Context, venueID domain.VenueID) ([]domain.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.venues[venueID]; !ok {
		return nil, domain.ErrVenueNotFound
	}
	photos := slices.Clone(r.photos[venueID])
	if photos == nil {
		photos = []domain.Photo{}
	}
	return photos, nil
}

func (r *VenueRepository) Save(_ context.Context, photo *domain.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.venues[photo.VenueID]; !ok {
		return domain.ErrVenueNotFound
	}
	r.photos[photo.VenueID] = append(r.photos[photo.VenueID], *photo)
	return nil
}

func (r *VenueRepository) update(id domain.VenueID, fn func(*domain.Venue) error) (*domain.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.venues[id]
	if !ok {
		return nil, domain.ErrVenueNotFound
	}
	next := cloneVenue(*v)
	if err := fn(&next); err != nil {
		return nil, err
	}
	r.venues[id] = &next
	out := cloneVenue(next)
	return &out, nil
}

func cloneVenue(v domain.Venue) domain.Venue {
	if v.Cover != nil {
		c := *v.Cover
		v.Cover = &c
	}
	return v
}
