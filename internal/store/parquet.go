package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"markettracker/internal/domain"
)

// BarRecord is the Parquet schema for archived bar data.
type BarRecord struct {
	Ticker string  `parquet:"ticker"`
	Date   string  `parquet:"date"`
	Open   float64 `parquet:"open"`
	Close  float64 `parquet:"close"`
}

// Archive snapshots completed refreshes to Parquet files on disk. The
// SQLite cache is rebuilt wholesale on every refresh; the archive is the
// only record of what a past refresh contained.
type Archive struct {
	Dir string
}

// NewArchive creates an Archive rooted at dir.
func NewArchive(dir string) *Archive {
	return &Archive{Dir: dir}
}

// Snapshot writes all bars to <Dir>/funds-<asOf>.parquet, where asOf is the
// canonical refresh date. An existing snapshot for the same date is
// overwritten.
func (a *Archive) Snapshot(_ context.Context, asOf string, bars []domain.Bar) (string, error) {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating archive dir: %w", err)
	}

	records := make([]BarRecord, 0, len(bars))
	for _, b := range bars {
		records = append(records, BarRecord{
			Ticker: b.Ticker,
			Date:   b.Date,
			Open:   b.Open,
			Close:  b.Close,
		})
	}

	path := a.snapshotPath(asOf)
	if err := parquet.WriteFile(path, records); err != nil {
		return "", fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return path, nil
}

// ReadSnapshot loads the snapshot for the given refresh date.
func (a *Archive) ReadSnapshot(_ context.Context, asOf string) ([]domain.Bar, error) {
	path := a.snapshotPath(asOf)
	records, err := parquet.ReadFile[BarRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	bars := make([]domain.Bar, 0, len(records))
	for _, r := range records {
		bars = append(bars, domain.Bar{
			Ticker: r.Ticker,
			Date:   r.Date,
			Open:   r.Open,
			Close:  r.Close,
		})
	}
	return bars, nil
}

func (a *Archive) snapshotPath(asOf string) string {
	return filepath.Join(a.Dir, fmt.Sprintf("funds-%s.parquet", asOf))
}
