package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/vncsmyrnk/nightout/internal/adapters/events/amqp"
	"github.com/vncsmyrnk/nightout/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/nightout/internal/config"
	"github.com/vncsmyrnk/nightout/internal/core/domain"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
	"github.com/vncsmyrnk/nightout/internal/core/services"
	"github.com/vncsmyrnk/nightout/internal/logging"
)

func main() {
	_ = godotenv.Load()

	var (
		report   bool
		prefetch int
	)
	flag.BoolVar(&report, "report", false, "Print recorded activity per venue and exit")
	flag.IntVar(&prefetch, "prefetch", 50, "Unacknowledged deliveries held at once")
	flag.Parse()

	cfg, err := config.Load()
	if err == nil {
		err = cfg.RequirePostgres()
	}
	if err == nil && !report && cfg.RabbitMQ.URL == "" {
		err = errors.New("RABBITMQ_URL is required to consume venue updates")
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := cfg.Postgres
	db, err := postgres.Open(ctx, postgres.ConnString(p.Host, p.Port, p.User, p.Password, p.DB))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := postgres.ApplyMigrations(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply migrations")
	}

	activity := services.NewActivityService(postgres.NewVenueRepository(db), postgres.NewActivityRepository(db), logger)

	if report {
		// A timeout keeps the report from hanging on a stuck database.
		reportCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		if err := printReport(reportCtx, os.Stdout, activity); err != nil {
			logger.Fatal().Err(err).Msg("failed to build activity report")
		}
		return
	}

	if err := consume(ctx, cfg.RabbitMQ.URL, prefetch, activity, logger); err != nil {
		logger.Fatal().Err(err).Msg("venue activity worker stopped")
	}
	logger.Info().Msg("venue activity worker stopped")
}

func consume(ctx context.Context, url string, prefetch int, activity ports.ActivityService, logger zerolog.Logger) error {
	consumer, err := amqp.NewConsumer(url, prefetch, logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	logger.Info().Str("queue", amqp.VenueUpdatedQueue).Msg("consuming venue updates")
	return consumer.Run(ctx, activity.Handle)
}

func printReport(ctx context.Context, out io.Writer, activity ports.ActivityService) error {
	stats, err := activity.Report(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VENUE\tACTION\tCOUNT\tLAST SEEN")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.VenueID, actionLabel(s.Action), s.Count, s.LastSeenAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func actionLabel(action domain.ActionKind) string {
	if action == domain.ActionCheckIn {
		return "checkin"
	}
	return string(action)
}
