// Package archive persists extracted records to SQLite so repeated runs
// accumulate a queryable history next to the per-page files.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"sensibull-extractor/internal/interfaces"
	"sensibull-extractor/internal/types"
)

type Store struct {
	db *sql.DB
}

var _ interfaces.RecordArchiver = (*Store)(nil)

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open archive at %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping archive at %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.initializeSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	return s, nil
}

func (s *Store) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trade_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_at TEXT NOT NULL,
		page INTEGER NOT NULL,
		date TEXT,
		symbol TEXT NOT NULL,
		option_type TEXT NOT NULL,
		strike TEXT,
		expiry TEXT,
		qty TEXT,
		avg_price TEXT,
		ltp TEXT,
		pnl TEXT,
		daily_total_pnl TEXT,
		verification_timestamp TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_trade_records_symbol_date ON trade_records (symbol, date);
	CREATE INDEX IF NOT EXISTS idx_trade_records_run_at ON trade_records (run_at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// ArchiveRecords inserts one run's records in a single transaction.
func (s *Store) ArchiveRecords(ctx context.Context, runAt string, trades []types.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin archive transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trade_records
		(run_at, page, date, symbol, option_type, strike, expiry, qty, avg_price, ltp, pnl, daily_total_pnl, verification_timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare archive insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range trades {
		if _, err := stmt.ExecContext(ctx,
			runAt, t.Page, t.Date, t.Symbol, t.OptionType, t.Strike, t.Expiry,
			t.Qty, t.AvgPrice, t.LTP, t.PnL, t.DailyTotalPnL, t.VerificationTimestamp,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to archive record for %s: %w", t.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive transaction: %w", err)
	}
	return nil
}

// CountRecords returns the number of archived records for a run, or all
// records when runAt is empty.
func (s *Store) CountRecords(ctx context.Context, runAt string) (int, error) {
	var n int
	var err error
	if runAt == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trade_records`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trade_records WHERE run_at = ?`, runAt).Scan(&n)
	}
	return n, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
