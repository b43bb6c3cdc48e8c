package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"markettracker/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ BarStore = (*SQLiteStore)(nil)

const (
	liveTable    = "funds"
	stagingTable = "funds_staging"

	// Both tables share the bar shape. Table names are fixed constants, never
	// caller input; every value reaching SQL goes through placeholders.
	tableSchema = `(
		ticker TEXT NOT NULL,
		date TEXT NOT NULL,
		open REAL NOT NULL,
		close REAL NOT NULL
	)`
)

// SQLiteStore implements BarStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, ensures the
// live table exists, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db %s: %w", dbPath, err)
	}

	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS " + liveTable + tableSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating %s table: %w", liveTable, err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MaxDate returns the latest stored date in canonical form, or "" when the
// store is empty.
func (s *SQLiteStore) MaxDate(ctx context.Context) (string, error) {
	var d sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT MAX(date) FROM "+liveTable).Scan(&d)
	if err != nil {
		return "", fmt.Errorf("querying max date: %w", err)
	}
	if !d.Valid {
		return "", nil
	}
	return d.String, nil
}

// HasDate reports whether any bar exists for the given date.
func (s *SQLiteStore) HasDate(ctx context.Context, date string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM "+liveTable+" WHERE date = ?)", date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking date %s: %w", date, err)
	}
	return exists, nil
}

// HasTicker reports whether any bar exists for the given ticker.
func (s *SQLiteStore) HasTicker(ctx context.Context, ticker string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM "+liveTable+" WHERE ticker = ?)", ticker).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking ticker %s: %w", ticker, err)
	}
	return exists, nil
}

// Tickers returns the sorted distinct tickers present in the store.
func (s *SQLiteStore) Tickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT ticker FROM "+liveTable+" ORDER BY ticker")
	if err != nil {
		return nil, fmt.Errorf("querying tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// CloseAt returns the close price for (ticker, date), with ok=false when the
// row does not exist.
func (s *SQLiteStore) CloseAt(ctx context.Context, ticker, date string) (float64, bool, error) {
	var c float64
	err := s.db.QueryRowContext(ctx,
		"SELECT close FROM "+liveTable+" WHERE ticker = ? AND date = ?", ticker, date).Scan(&c)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying close for %s@%s: %w", ticker, date, err)
	}
	return c, true, nil
}

// BarsBetween returns all bars for the given tickers with date in
// [start, end] inclusive, ordered by ticker then date.
func (s *SQLiteStore) BarsBetween(ctx context.Context, tickers []string, start, end string) ([]domain.Bar, error) {
	if len(tickers) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(tickers))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(tickers)+2)
	for _, t := range tickers {
		args = append(args, t)
	}
	args = append(args, start, end)

	query := "SELECT ticker, date, open, close FROM " + liveTable +
		" WHERE ticker IN (" + placeholders + ") AND date BETWEEN ? AND ?" +
		" ORDER BY ticker, date"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying bars between %s and %s: %w", start, end, err)
	}
	defer rows.Close()

	return scanBars(rows)
}

// AllBars returns every stored bar, ordered by ticker then date.
func (s *SQLiteStore) AllBars(ctx context.Context) ([]domain.Bar, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT ticker, date, open, close FROM "+liveTable+" ORDER BY ticker, date")
	if err != nil {
		return nil, fmt.Errorf("querying all bars: %w", err)
	}
	defer rows.Close()

	return scanBars(rows)
}

// Count returns the total number of stored bars.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+liveTable).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting bars: %w", err)
	}
	return n, nil
}

// BeginRebuild drops any stale staging table and creates a fresh empty one.
// Idempotent.
func (s *SQLiteStore) BeginRebuild(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+stagingTable); err != nil {
		return fmt.Errorf("dropping staging table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "CREATE TABLE "+stagingTable+tableSchema); err != nil {
		return fmt.Errorf("creating staging table: %w", err)
	}
	return nil
}

// InsertBars appends a batch of bars to the staging table.
func (s *SQLiteStore) InsertBars(ctx context.Context, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning insert tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+stagingTable+" (ticker, date, open, close) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, b.Ticker, b.Date, b.Open, b.Close); err != nil {
			return fmt.Errorf("inserting bar %s@%s: %w", b.Ticker, b.Date, err)
		}
	}
	return tx.Commit()
}

// CommitRebuild atomically replaces the live table with the staging table.
// Readers see either the old complete table or the new one, never a mix.
func (s *SQLiteStore) CommitRebuild(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning swap tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+liveTable); err != nil {
		return fmt.Errorf("dropping live table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "ALTER TABLE "+stagingTable+" RENAME TO "+liveTable); err != nil {
		return fmt.Errorf("swapping staging table in: %w", err)
	}
	return tx.Commit()
}

func scanBars(rows *sql.Rows) ([]domain.Bar, error) {
	var bars []domain.Bar
	for rows.Next() {
		var b domain.Bar
		if err := rows.Scan(&b.Ticker, &b.Date, &b.Open, &b.Close); err != nil {
			return nil, fmt.Errorf("scanning bar: %w", err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}
