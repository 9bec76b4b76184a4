package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"beehive_monitor/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// table is a decoded daily file with the column positions we care about.
type table struct {
	rows                          [][]string
	date, clock, temp, hum        int
	extTemp, extHum, extCondition int
	tempLevel, humLevel, message  int
}

// decode returns a reader over raw as UTF-8. Files written by older
// deployments may be Latin-1; anything that is not valid UTF-8 is decoded
// as ISO-8859-1, which maps every byte and therefore never fails.
func decode(raw []byte) io.Reader {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder())
}

func readTable(path string) (*table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	r := csv.NewReader(decode(raw))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}
	return newTable(records[0], records[1:]), nil
}

func newTable(header []string, rows [][]string) *table {
	t := &table{
		rows: rows, date: -1, clock: -1, temp: -1, hum: -1,
		extTemp: -1, extHum: -1, extCondition: -1,
		tempLevel: -1, humLevel: -1, message: -1,
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		lower := strings.ToLower(name)
		switch {
		case lower == "date" || lower == "fecha":
			t.date = i
		case lower == "time" || lower == "hora":
			t.clock = i
		case strings.HasPrefix(lower, "external temp"):
			t.extTemp = i
		case strings.HasPrefix(lower, "external hum"):
			t.extHum = i
		case lower == "external condition":
			t.extCondition = i
		case lower == "temperature level":
			t.tempLevel = i
		case lower == "humidity level":
			t.humLevel = i
		case lower == "message":
			t.message = i
		// First "Temp"/"Hum" column wins, which also matches the legacy
		// Spanish headers "Temperatura (°C)" and "Humedad (%)".
		case t.temp < 0 && strings.Contains(name, "Temp"):
			t.temp = i
		case t.hum < 0 && strings.Contains(name, "Hum"):
			t.hum = i
		}
	}
	return t
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseCell(row []string, i int) (float64, bool) {
	v, err := strconv.ParseFloat(cell(row, i), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// values returns the temperature/humidity pairs of every row where both
// parse, dropping the rest.
func (t *table) values() (temps, hums []float64) {
	if t.temp < 0 || t.hum < 0 {
		return nil, nil
	}
	for _, row := range t.rows {
		tv, ok1 := parseCell(row, t.temp)
		hv, ok2 := parseCell(row, t.hum)
		if !ok1 || !ok2 {
			continue
		}
		temps = append(temps, tv)
		hums = append(hums, hv)
	}
	return temps, hums
}

func (t *table) averages() []models.WindowAverage {
	out := make([]models.WindowAverage, 0, len(t.rows))
	if t.temp < 0 || t.hum < 0 {
		return out
	}
	for _, row := range t.rows {
		tv, ok1 := parseCell(row, t.temp)
		hv, ok2 := parseCell(row, t.hum)
		if !ok1 || !ok2 {
			continue
		}
		avg := models.WindowAverage{
			Date:              cell(row, t.date),
			Time:              cell(row, t.clock),
			AvgTemperature:    tv,
			AvgHumidity:       hv,
			ExternalCondition: cell(row, t.extCondition),
			TempLevel:         models.Level(cell(row, t.tempLevel)),
			HumLevel:          models.Level(cell(row, t.humLevel)),
			Message:           cell(row, t.message),
		}
		if v, ok := parseCell(row, t.extTemp); ok {
			avg.ExternalTemperature = &v
		}
		if v, ok := parseCell(row, t.extHum); ok {
			avg.ExternalHumidity = &v
		}
		if ts, err := time.ParseInLocation(dateLayout+" "+timeLayout, avg.Date+" "+avg.Time, time.Local); err == nil {
			avg.Timestamp = ts
		}
		out = append(out, avg)
	}
	return out
}

// findDay locates the file for date anywhere under root. Month folder names
// depend on the locale of whoever wrote them, so the tree is walked rather
// than the path recomputed.
func (s *CSVStore) findDay(date string) (string, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", ErrInvalidDate
	}
	want := date + fileExt
	var found string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), want) {
			found = path
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("scan %q: %w", s.root, err)
	}
	if found == "" {
		return "", ErrNoData
	}
	return found, nil
}

// Day returns every stored window average for date (YYYY-MM-DD).
func (s *CSVStore) Day(ctx context.Context, date string) ([]models.WindowAverage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.findDay(date)
	if err != nil {
		return nil, err
	}
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	rows := t.averages()
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}

// History groups the rows of date into one-minute buckets and returns the
// per-bucket means rounded to two decimals, ordered by time.
func (s *CSVStore) History(ctx context.Context, date string) (models.DayHistory, error) {
	rows, err := s.Day(ctx, date)
	if err != nil {
		return models.DayHistory{}, err
	}

	type acc struct {
		temp, hum float64
		n         int
	}
	buckets := make(map[string]*acc)
	for _, r := range rows {
		label, ok := minuteLabel(r.Time)
		if !ok {
			continue
		}
		b := buckets[label]
		if b == nil {
			b = &acc{}
			buckets[label] = b
		}
		b.temp += r.AvgTemperature
		b.hum += r.AvgHumidity
		b.n++
	}
	if len(buckets) == 0 {
		return models.DayHistory{}, ErrNoData
	}

	labels := make([]string, 0, len(buckets))
	for l := range buckets {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	h := models.DayHistory{
		Date:     date,
		Labels:   labels,
		TempMean: make([]float64, 0, len(labels)),
		HumMean:  make([]float64, 0, len(labels)),
	}
	for _, l := range labels {
		b := buckets[l]
		h.TempMean = append(h.TempMean, round2(b.temp/float64(b.n)))
		h.HumMean = append(h.HumMean, round2(b.hum/float64(b.n)))
	}
	return h, nil
}

func minuteLabel(clock string) (string, bool) {
	for _, layout := range []string{timeLayout, "15:04"} {
		if t, err := time.Parse(layout, clock); err == nil {
			return t.Format("15:04"), true
		}
	}
	return "", false
}

// Extremes scans every stored day and summarises both metrics.
// Unreadable files are skipped.
func (s *CSVStore) Extremes(ctx context.Context) (models.Extremes, error) {
	var temps, hums []float64
	days := 0
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), fileExt) {
			return nil
		}
		t, rerr := readTable(path)
		if rerr != nil {
			return nil
		}
		ts, hs := t.values()
		if len(ts) > 0 {
			days++
		}
		temps = append(temps, ts...)
		hums = append(hums, hs...)
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return models.Extremes{}, fmt.Errorf("scan %q: %w", s.root, err)
	}
	if len(temps) == 0 || len(hums) == 0 {
		return models.Extremes{}, ErrNoData
	}
	return models.Extremes{
		Temperature: summarize(temps),
		Humidity:    summarize(hums),
		Days:        days,
	}, nil
}

// summarize computes min/max/mean and the sample standard deviation
// (n-1 denominator; zero for a single value).
func summarize(vs []float64) models.Stats {
	st := models.Stats{Min: vs[0], Max: vs[0], Count: len(vs)}
	sum := 0.0
	for _, v := range vs {
		sum += v
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}
	st.Mean = sum / float64(len(vs))
	if len(vs) > 1 {
		ss := 0.0
		for _, v := range vs {
			d := v - st.Mean
			ss += d * d
		}
		st.StdDev = math.Sqrt(ss / float64(len(vs)-1))
	}
	return st
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
