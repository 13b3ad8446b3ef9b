package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
)

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, connStr, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	db, err := Open(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, ApplyMigrations(ctx, db))
	// Migrations are re-runnable.
	require.NoError(t, ApplyMigrations(ctx, db))
	return db
}

func TestPostgres_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	db := setupTestDB(t)
	venues := NewVenueRepository(db)
	photos := NewPhotoRepository(db)

	t.Run("venues", func(t *testing.T) {
		loft := &domain.Venue{Name: "Loft", Type: "Club", Upvotes: 10, Downvotes: 2, Pop: 5}
		require.NoError(t, venues.Create(ctx, loft))
		require.NotEmpty(t, loft.ID)

		venue, err := venues.ApplyVote(ctx, loft.ID, domain.Upvote)
		require.NoError(t, err)
		assert.EqualValues(t, 11, venue.Upvotes)

		venue, err = venues.IncrementPop(ctx, loft.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 6, venue.Pop)

		ten := 10.0
		venue, err = venues.SetCover(ctx, loft.ID, &ten)
		require.NoError(t, err)
		require.NotNil(t, venue.Cover)
		assert.Equal(t, 10.0, *venue.Cover)

		venue, err = venues.SetCover(ctx, loft.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, venue.Cover)

		list, err := venues.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, *venue, list[0])

		_, err = venues.GetByID(ctx, "999999")
		assert.ErrorIs(t, err, domain.ErrVenueNotFound)
	})

	t.Run("negative cover violates the check constraint", func(t *testing.T) {
		list, err := venues.List(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, list)

		negative := -1.0
		_, err = venues.SetCover(ctx, list[0].ID, &negative)
		assert.Error(t, err)
	})

	t.Run("photos", func(t *testing.T) {
		list, err := venues.List(ctx)
		require.NoError(t, err)
		venueID := list[0].ID

		for _, url := range []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"} {
			require.NoError(t, photos.Save(ctx, &domain.Photo{ID: uuid.NewString(), VenueID: venueID, URL: url}))
		}

		got, err := photos.ListByVenue(ctx, venueID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "https://cdn.example.com/a.jpg", got[0].URL)
		assert.Equal(t, "https://cdn.example.com/b.jpg", got[1].URL)
	})

	t.Run("ledger", func(t *testing.T) {
		store := NewLedgerStore(db)

		_, found, err := store.Get(ctx, "nightout:v1:vote:1")
		require.NoError(t, err)
		assert.False(t, found)

		require.NoError(t, store.Set(ctx, "nightout:v1:vote:1", "upvote"))
		require.NoError(t, store.Set(ctx, "nightout:v1:vote:1", "upvote"))

		value, found, err := store.Get(ctx, "nightout:v1:vote:1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "upvote", value)
	})

	t.Run("activity", func(t *testing.T) {
		list, err := venues.List(ctx)
		require.NoError(t, err)
		venue := list[0]
		activity := NewActivityRepository(db)

		earlier := time.Date(2026, 10, 17, 22, 0, 0, 0, time.UTC)
		later := earlier.Add(time.Hour)
		require.NoError(t, activity.Record(ctx, domain.VenueUpdate{Action: domain.ActionVote, Venue: venue, OccurredAt: later}))
		require.NoError(t, activity.Record(ctx, domain.VenueUpdate{Action: domain.ActionVote, Venue: venue, OccurredAt: earlier}))
		require.NoError(t, activity.Record(ctx, domain.VenueUpdate{Action: domain.ActionCheckIn, Venue: venue, OccurredAt: earlier}))

		stats, err := activity.ListByVenue(ctx, venue.ID)
		require.NoError(t, err)
		require.Len(t, stats, 2)
		assert.Equal(t, domain.ActionCheckIn, stats[0].Action)
		assert.EqualValues(t, 1, stats[0].Count)
		assert.Equal(t, domain.ActionVote, stats[1].Action)
		assert.EqualValues(t, 2, stats[1].Count)
		assert.True(t, later.Equal(stats[1].LastSeenAt))
	})

	t.Run("single migration by name", func(t *testing.T) {
		require.NoError(t, ApplyMigration(ctx, db, "create_action_ledger.up"))
		assert.Error(t, ApplyMigration(ctx, db, "create_unicorns.up"))
	})
}
