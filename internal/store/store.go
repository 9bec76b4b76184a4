// Package store persists flushed window averages as one CSV file per day,
// laid out as <root>/<YYYY>/<MM>_<Month>/<YYYY-MM-DD>.csv, and reads them
// back for the history, extremes and report endpoints.
package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"beehive_monitor/internal/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
	fileExt    = ".csv"
)

// Header is the first row of every daily file.
var Header = []string{
	"Date",
	"Time",
	"Temperature (°C)",
	"Humidity (%)",
	"External Temperature (°C)",
	"External Humidity (%)",
	"External Condition",
	"Temperature Level",
	"Humidity Level",
	"Message",
}

var (
	// ErrNoData is returned when no stored file (or no valid row) matches a query.
	ErrNoData = errors.New("no data available")
	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date; use YYYY-MM-DD")
)

// CSVStore appends window averages to daily files. Appends are serialized.
type CSVStore struct {
	root string
	mu   sync.Mutex
}

// NewCSVStore creates the root directory if needed.
func NewCSVStore(root string) (*CSVStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %q: %w", root, err)
	}
	return &CSVStore{root: root}, nil
}

// Root returns the data directory.
func (s *CSVStore) Root() string { return s.root }

// PathFor resolves the daily file for t.
func (s *CSVStore) PathFor(t time.Time) string {
	month := fmt.Sprintf("%02d_%s", int(t.Month()), t.Month().String())
	return filepath.Join(s.root, t.Format("2006"), month, t.Format(dateLayout)+fileExt)
}

// Append writes one row for avg, creating the file with Header first when
// it does not exist yet. Existing rows are never touched.
func (s *CSVStore) Append(ctx context.Context, avg models.WindowAverage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ts := avg.Timestamp
	if ts.IsZero() {
		return errors.New("append window average: zero timestamp")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.PathFor(ts)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create day dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(encodeRow(avg)); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %q: %w", path, err)
	}
	return nil
}

func encodeRow(avg models.WindowAverage) []string {
	date, clock := avg.Date, avg.Time
	if date == "" {
		date = avg.Timestamp.Format(dateLayout)
	}
	if clock == "" {
		clock = avg.Timestamp.Format(timeLayout)
	}
	return []string{
		date,
		clock,
		formatFloat(avg.AvgTemperature),
		formatFloat(avg.AvgHumidity),
		formatOptional(avg.ExternalTemperature),
		formatOptional(avg.ExternalHumidity),
		avg.ExternalCondition,
		string(avg.TempLevel),
		string(avg.HumLevel),
		avg.Message,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
