package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vncsmyrnk/nightout/internal/adapters/directory/rest"
	"github.com/vncsmyrnk/nightout/internal/adapters/ledger/file"
	"github.com/vncsmyrnk/nightout/internal/adapters/ledger/memory"
	"github.com/vncsmyrnk/nightout/internal/adapters/ledger/redis"
	"github.com/vncsmyrnk/nightout/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/nightout/internal/config"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
	"github.com/vncsmyrnk/nightout/internal/core/services"
	"github.com/vncsmyrnk/nightout/internal/logging"
)

const usage = `usage: nightout [flags] <command> [args]

commands:
  list                        list venues
  show <venue>                show a venue, its photos and what this device has done
  vote <venue> up|down        cast this device's one vote
  checkin <venue>             report that you are at the venue
  cover <venue> <amount|none> set or clear the cover charge
  photo <venue> <file>        upload a photo (requires a vote first)

flags:
`

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	flag.StringVar(&cfg.API.URL, "api", cfg.API.URL, "Venue backend base URL")
	flag.DurationVar(&cfg.API.Timeout, "timeout", cfg.API.Timeout, "HTTP timeout")
	flag.StringVar(&cfg.Ledger.Backend, "ledger", cfg.Ledger.Backend, "Ledger backend (file, memory, redis, postgres)")
	flag.StringVar(&cfg.Ledger.Path, "ledger-path", cfg.Ledger.Path, "Ledger file path")
	flag.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Log level")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, cfg, flag.Args(), os.Stdout, os.Stderr, openLedger)
	stop()
	os.Exit(code)
}

type ledgerOpener func(ctx context.Context, cfg *config.Config) (ports.LedgerStore, func(), error)

// execute runs one command and returns the process exit code. The ledger
// is closed before it returns.
func execute(ctx context.Context, cfg *config.Config, args []string, out, errOut io.Writer, open ledgerOpener) int {
	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: errOut})

	store, closeStore, err := open(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open action ledger")
		fmt.Fprintln(errOut, describe(err))
		return 1
	}
	defer closeStore()

	directory := rest.NewClient(cfg.API.URL, &http.Client{Timeout: cfg.API.Timeout}, logger)
	app := &cli{
		out:         out,
		browse:      services.NewBrowseService(directory, logger),
		interaction: services.NewInteractionService(directory, services.NewActionLedger(store, logger), logger),
	}

	if err := app.run(ctx, args); err != nil {
		fmt.Fprintln(errOut, describe(err))
		return 1
	}
	return 0
}

func openLedger(ctx context.Context, cfg *config.Config) (ports.LedgerStore, func(), error) {
	switch cfg.Ledger.Backend {
	case config.LedgerMemory:
		return memory.NewStore(), func() {}, nil
	case config.LedgerRedis:
		rdb, err := redis.Connect(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redis.NewStore(rdb, ""), func() { _ = rdb.Close() }, nil
	case config.LedgerPostgres:
		p := cfg.Postgres
		db, err := postgres.Open(ctx, postgres.ConnString(p.Host, p.Port, p.User, p.Password, p.DB))
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.ApplyMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewLedgerStore(db), func() { _ = db.Close() }, nil
	default:
		return file.NewStore(cfg.Ledger.Path), func() {}, nil
	}
}
