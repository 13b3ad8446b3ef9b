package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
)

type activityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) ports.ActivityRepository {
	return &activityRepository{
		db: db,
	}
}

// Record bumps the counter for the update's venue and action. Redelivered
// updates older than the stored timestamp do not move it backwards.
func (r *activityRepository) Record(ctx context.Context, update domain.VenueUpdate) error {
	venueID, err := strconv.ParseInt(update.Venue.ID.String(), 10, 64)
	if err != nil {
		return domain.ErrVenueNotFound
	}

	query := `
		INSERT INTO venue_activity (venue_id, action, count, last_seen_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (venue_id, action) DO UPDATE
		SET count = venue_activity.count + 1,
		    last_seen_at = GREATEST(venue_activity.last_seen_at, EXCLUDED.last_seen_at);
	`
	if _, err := r.db.ExecContext(ctx, query, venueID, string(update.Action), update.OccurredAt); err != nil {
		return fmt.Errorf("failed to record activity for venue %s: %w", update.Venue.ID, err)
	}
	return nil
}

func (r *activityRepository) ListByVenue(ctx context.Context, venueID domain.VenueID) ([]domain.ActivityStat, error) {
	numericID, err := strconv.ParseInt(venueID.String(), 10, 64)
	if err != nil {
		return nil, domain.ErrVenueNotFound
	}

	query := `
		SELECT action, count, last_seen_at
		FROM venue_activity
		WHERE venue_id = $1
		ORDER BY action
	`
	rows, err := r.db.QueryContext(ctx, query, numericID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	stats := []domain.ActivityStat{}
	for rows.Next() {
		s := domain.ActivityStat{VenueID: venueID}
		var action string
		if err := rows.Scan(&action, &s.Count, &s.LastSeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		s.Action = domain.ActionKind(action)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity: %w", err)
	}
	return stats, nil
}
