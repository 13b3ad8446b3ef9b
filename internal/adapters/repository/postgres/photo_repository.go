package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/nightout/internal/core/domain"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
)

type photoRepository struct {
	db *sql.DB
}

func NewPhotoRepository(db *sql.DB) ports.PhotoRepository {
	return &photoRepository{
		db: db,
	}
}

func (r *photoRepository) ListByVenue(ctx context.Context, venueID domain.VenueID) ([]domain.Photo, error) {
	numericID, err := strconv.ParseInt(venueID.String(), 10, 64)
	if err != nil {
		return nil, domain.ErrVenueNotFound
	}

	query := `
		SELECT id, venue_id, url
		FROM photos
		WHERE venue_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, numericID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	photos := []domain.Photo{}
	for rows.Next() {
		var (
			p       domain.Photo
			id      uuid.UUID
			venueID int64
		)
		if err := rows.Scan(&id, &venueID, &p.URL); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		p.ID = id.String()
		p.VenueID = domain.VenueID(strconv.FormatInt(venueID, 10))
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}
	return photos, nil
}

func (r *photoRepository) Save(ctx context.Context, photo *domain.Photo) error {
	id, err := uuid.Parse(photo.ID)
	if err != nil {
		return fmt.Errorf("invalid photo id: %w", err)
	}
	venueID, err := strconv.ParseInt(photo.VenueID.String(), 10, 64)
	if err != nil {
		return domain.ErrVenueNotFound
	}

	query := `
		INSERT INTO photos (id, venue_id, url)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, id, venueID, photo.URL); err != nil {
		return fmt.Errorf("failed to save photo: %w", err)
	}
	return nil
}
