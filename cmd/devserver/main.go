package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/vncsmyrnk/nightout/internal/adapters/events/amqp"
	"github.com/vncsmyrnk/nightout/internal/adapters/handler/http"
	"github.com/vncsmyrnk/nightout/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/nightout/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/nightout/internal/adapters/storage/cloudinary"
	memstorage "github.com/vncsmyrnk/nightout/internal/adapters/storage/memory"
	"github.com/vncsmyrnk/nightout/internal/adapters/storage/s3"
	"github.com/vncsmyrnk/nightout/internal/config"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
	"github.com/vncsmyrnk/nightout/internal/core/services"
	"github.com/vncsmyrnk/nightout/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("devserver stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	venueRepo, photoRepo, closeRepo, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	var media stdhttp.Handler
	var storage ports.PhotoStorage
	switch cfg.Storage.Backend {
	case config.StorageCloudinary:
		storage, err = cloudinary.NewStorage(cfg.Storage.CloudinaryURL)
	case config.StorageS3:
		storage, err = s3.NewStorage(ctx, s3.Options(cfg.Storage.S3))
	default:
		mem := memstorage.NewStorage(cfg.DevServer.PublicURL + "/media")
		storage, media = mem, mem
	}
	if err != nil {
		return err
	}

	var events ports.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		publisher, err := amqp.NewPublisher(cfg.RabbitMQ.URL, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		events = publisher
	}

	venueService := services.NewVenueService(venueRepo, photoRepo, storage, events, logger)
	handler := http.NewHandler(http.NewVenueHandler(venueService, logger), media)
	server := &stdhttp.Server{Addr: cfg.DevServer.Addr, Handler: handler}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.DevServer.Addr).Msg("devserver listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (ports.VenueRepository, ports.PhotoRepository, func(), error) {
	if cfg.DevServer.Repository != config.RepositoryPostgres {
		repo := memory.NewVenueRepository()
		repo.Seed()
		logger.Info().Msg("using seeded in-memory venues")
		return repo, repo, func() {}, nil
	}

	p := cfg.Postgres
	db, err := postgres.Open(ctx, postgres.ConnString(p.Host, p.Port, p.User, p.Password, p.DB))
	if err != nil {
		return nil, nil, nil, err
	}
	if err := postgres.ApplyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return postgres.NewVenueRepository(db), postgres.NewPhotoRepository(db), closer(db, logger), nil
}

func closer(db *sql.DB, logger zerolog.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close database")
		}
	}
}
