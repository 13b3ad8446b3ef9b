package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/nightout/internal/core/ports"
)

// LedgerStore persists action ledger entries in the action_ledger table.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

var _ ports.LedgerStore = (*LedgerStore)(nil)

func (s *LedgerStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM action_ledger WHERE key = $1`
	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read ledger entry: %w", err)
	}
	return value, true, nil
}

func (s *LedgerStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO action_ledger (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write ledger entry: %w", err)
	}
	return nil
}
