// Package sensor turns device output into validated samples.
//
// Two delivery styles exist: pulled (the serial link, read one line per
// Next call) and pushed (an HTTP request or a NATS message carrying a
// Reading). Both end in the same validation.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"beehive_monitor/internal/models"
)

var (
	// ErrMalformedLine is returned for lines that are not "<float>,<float>".
	ErrMalformedLine = errors.New("malformed sensor line")
	// ErrMissingField is returned when a pushed reading lacks a value.
	ErrMissingField = errors.New("temperatura and humedad are required")
	// ErrNotFinite is returned for NaN or infinite values.
	ErrNotFinite = errors.New("reading must be a finite number")
)

// Source yields samples on demand. ok is false when nothing usable was read.
type Source interface {
	Next(ctx context.Context) (s models.Sample, ok bool)
}

// Ingester accepts validated samples.
type Ingester interface {
	Ingest(ctx context.Context, s models.Sample) (models.IngestResult, error)
}

// ParseLine parses one line of the sensor protocol: exactly two
// comma-separated floats, temperature first.
func ParseLine(line string) (temp, hum float64, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, 0, fmt.Errorf("%w: empty", ErrMalformedLine)
	}
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: want 2 fields, got %d in %q", ErrMalformedLine, len(parts), line)
	}
	temp, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: temperature %q", ErrMalformedLine, parts[0])
	}
	hum, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: humidity %q", ErrMalformedLine, parts[1])
	}
	if err := checkFinite(temp, hum); err != nil {
		return 0, 0, err
	}
	return temp, hum, nil
}

func checkFinite(vs ...float64) error {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNotFinite
		}
	}
	return nil
}

// Reading is the pushed payload, shared by the HTTP endpoint and NATS.
// Pointers distinguish a missing field from a legitimate zero.
type Reading struct {
	Temperature *float64 `json:"temperatura" binding:"required"`
	Humidity    *float64 `json:"humedad" binding:"required"`
}

// Sample validates r and stamps it with ts.
func (r Reading) Sample(ts time.Time, source string) (models.Sample, error) {
	if r.Temperature == nil || r.Humidity == nil {
		return models.Sample{}, ErrMissingField
	}
	if err := checkFinite(*r.Temperature, *r.Humidity); err != nil {
		return models.Sample{}, err
	}
	return models.Sample{
		Timestamp:   ts,
		Temperature: *r.Temperature,
		Humidity:    *r.Humidity,
		Source:      source,
	}, nil
}
