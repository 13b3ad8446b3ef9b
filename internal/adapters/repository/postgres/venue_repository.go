package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
)

const venueColumns = `id, name, type, upvotes, downvotes, cover, pop`

type venueRepository struct {
	db *sql.DB
}

func NewVenueRepository(db *sql.DB) ports.VenueRepository {
	return &venueRepository{
		db: db,
	}
}

func (r *venueRepository) List(ctx context.Context) ([]domain.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	defer rows.Close()

	venues := []domain.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		venues = append(venues, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating venues: %w", err)
	}
	return venues, nil
}

func (r *venueRepository) GetByID(ctx context.Context, id domain.VenueID) (*domain.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE id = $1`
	return r.queryOne(ctx, "get venue", query, id)
}

func (r *venueRepository) ApplyVote(ctx context.Context, id domain.VenueID, choice domain.VoteChoice) (*domain.Venue, error) {
	var query string
	switch choice {
	case domain.Upvote:
		query = `UPDATE venues SET upvotes = upvotes + 1 WHERE id = $1 RETURNING ` + venueColumns
	case domain.Downvote:
		query = `UPDATE venues SET downvotes = downvotes + 1 WHERE id = $1 RETURNING ` + venueColumns
	default:
		return nil, domain.ErrInvalidVoteChoice
	}
	return r.queryOne(ctx, "apply vote", query, id)
}

func (r *venueRepository) SetCover(ctx context.Context, id domain.VenueID, amount *float64) (*domain.Venue, error) {
	query := `UPDATE venues SET cover = $2 WHERE id = $1 RETURNING ` + venueColumns
	return r.queryOne(ctx, "set cover", query, id, amount)
}

func (r *venueRepository) IncrementPop(ctx context.Context, id domain.VenueID) (*domain.Venue, error) {
	query := `UPDATE venues SET pop = pop + 1 WHERE id = $1 RETURNING ` + venueColumns
	return r.queryOne(ctx, "increment pop", query, id)
}

// Create inserts a venue and fills in its id.
func (r *venueRepository) Create(ctx context.Context, v *domain.Venue) error {
	query := `
		INSERT INTO venues (name, type, upvotes, downvotes, cover, pop)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, v.Name, v.Type, v.Upvotes, v.Downvotes, v.Cover, v.Pop).Scan(&id); err != nil {
		return fmt.Errorf("failed to insert venue: %w", err)
	}
	v.ID = domain.VenueID(strconv.FormatInt(id, 10))
	return nil
}

func (r *venueRepository) queryOne(ctx context.Context, op, query string, id domain.VenueID, args ...any) (*domain.Venue, error) {
	numericID, err := strconv.ParseInt(id.String(), 10, 64)
	if err != nil {
		return nil, domain.ErrVenueNotFound
	}

	v, err := scanVenue(r.db.QueryRowContext(ctx, query, append([]any{numericID}, args...)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVenueNotFound
		}
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return v, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVenue(row rowScanner) (*domain.Venue, error) {
	var (
		v     domain.Venue
		id    int64
		cover sql.NullFloat64
	)
	if err := row.Scan(&id, &v.Name, &v.Type, &v.Upvotes, &v.Downvotes, &cover, &v.Pop); err != nil {
		return nil, err
	}
	v.ID = domain.VenueID(strconv.FormatInt(id, 10))
	if cover.Valid {
		c := cover.Float64
		v.Cover = &c
	}
	return &v, nil
}
