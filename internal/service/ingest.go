package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"beehive_monitor/internal/logger"
	"beehive_monitor/internal/metrics"
	"beehive_monitor/internal/models"
	"beehive_monitor/internal/threshold"
)

// ErrInvalidSample is returned for samples with non-finite values.
var ErrInvalidSample = errors.New("invalid sample")

const alertSubject = "ALERTA: hive conditions out of range"

// Alerter delivers notifications without blocking. notifier.Dispatcher
// implements it.
type Alerter interface {
	Notify(subject, body string)
}

// WindowSink receives closed windows for enrichment and persistence.
type WindowSink interface {
	Submit(avg models.WindowAverage)
}

// EventRecorder appends to the hive event log.
type EventRecorder interface {
	Record(ctx context.Context, e models.HiveEvent)
}

// WindowConfig bounds a window: it closes at MaxSamples samples or once
// MaxAge has passed since the previous flush, whichever comes first.
// CheckEvery is the WatchAge period; it defaults to one second, or
// MaxAge/10 when that is shorter.
type WindowConfig struct {
	MaxSamples int
	MaxAge     time.Duration
	CheckEvery time.Duration
}

// IngestService owns the sample window, the current alert state and the
// last flush time. Mutations happen under mu; notification, persistence
// and logging happen after it is released.
type IngestService struct {
	thresholds threshold.Set
	cfg        WindowConfig
	sink       WindowSink
	alerts     Alerter
	events     EventRecorder
	now        func() time.Time
	log        *logger.Logger

	mu      sync.Mutex
	window  []models.Sample
	alert   models.AlertState
	last    *models.Sample
	lastAvg *models.WindowAverage

	lastFlush atomic.Int64 // unix nanoseconds
}

func NewIngestService(th threshold.Set, cfg WindowConfig, sink WindowSink, alerts Alerter, events EventRecorder, log *logger.Logger) *IngestService {
	if cfg.MaxSamples <= 0 {
		cfg.MaxSamples = 10
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 10 * time.Minute
	}
	if cfg.CheckEvery <= 0 {
		cfg.CheckEvery = min(time.Second, cfg.MaxAge/10)
	}
	s := &IngestService{
		thresholds: th,
		cfg:        cfg,
		sink:       sink,
		alerts:     alerts,
		events:     events,
		now:        time.Now,
		log:        logger.OrNop(log),
		window:     make([]models.Sample, 0, cfg.MaxSamples),
	}
	s.lastFlush.Store(s.now().UnixNano())
	return s
}

// Ingest appends one sample, updates the alert state and closes the
// window when it is full or old enough. The arriving sample always
// belongs to the window it closes.
func (s *IngestService) Ingest(ctx context.Context, sample models.Sample) (models.IngestResult, error) {
	if math.IsNaN(sample.Temperature) || math.IsInf(sample.Temperature, 0) ||
		math.IsNaN(sample.Humidity) || math.IsInf(sample.Humidity, 0) {
		metrics.SamplesRejected.WithLabelValues(sourceLabel(sample)).Inc()
		return models.IngestResult{}, ErrInvalidSample
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = s.now()
	}
	alert := s.thresholds.CheckImmediate(sample)

	s.mu.Lock()
	s.window = append(s.window, sample)
	s.alert = alert
	last := sample
	s.last = &last

	var avg *models.WindowAverage
	now := s.now()
	switch {
	case len(s.window) >= s.cfg.MaxSamples:
		avg = s.flushLocked(now, models.TriggerCount)
	case now.Sub(s.LastFlush()) >= s.cfg.MaxAge:
		avg = s.flushLocked(now, models.TriggerAge)
	}
	s.mu.Unlock()

	metrics.ObserveSample(sourceLabel(sample), sample, alert)
	if alert.Active() {
		s.raise(ctx, sample, alert)
	}
	if avg != nil {
		s.publish(*avg)
	}
	return models.IngestResult{Flushed: avg != nil, Average: avg, Alert: alert}, nil
}

// Drain closes a partially filled window. It reports false when the
// window was empty.
func (s *IngestService) Drain(ctx context.Context) (*models.WindowAverage, bool) {
	s.mu.Lock()
	if len(s.window) == 0 {
		s.mu.Unlock()
		return nil, false
	}
	avg := s.flushLocked(s.now(), models.TriggerShutdown)
	s.mu.Unlock()

	s.publish(*avg)
	return avg, true
}

// FlushIfExpired closes a non-empty window once MaxAge has passed since
// the last flush, without waiting for another sample. An empty window is
// left alone so LastFlush keeps reporting when data stopped.
func (s *IngestService) FlushIfExpired() (*models.WindowAverage, bool) {
	s.mu.Lock()
	now := s.now()
	if len(s.window) == 0 || now.Sub(s.LastFlush()) < s.cfg.MaxAge {
		s.mu.Unlock()
		return nil, false
	}
	avg := s.flushLocked(now, models.TriggerAge)
	s.mu.Unlock()

	s.publish(*avg)
	return avg, true
}

// WatchAge runs FlushIfExpired every CheckEvery until ctx is cancelled.
func (s *IngestService) WatchAge(ctx context.Context) {
	t := time.NewTicker(s.cfg.CheckEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.FlushIfExpired()
		}
	}
}

// flushLocked averages the window and resets it. Callers hold mu.
func (s *IngestService) flushLocked(at time.Time, trigger string) *models.WindowAverage {
	var sumT, sumH float64
	for _, smp := range s.window {
		sumT += smp.Temperature
		sumH += smp.Humidity
	}
	n := len(s.window)
	avgT, avgH := sumT/float64(n), sumH/float64(n)
	ev := s.thresholds.EvaluateWindow(avgT, avgH)

	avg := &models.WindowAverage{
		Timestamp:      at,
		Date:           at.Format("2006-01-02"),
		Time:           at.Format("15:04:05"),
		AvgTemperature: avgT,
		AvgHumidity:    avgH,
		TempLevel:      ev.TempLevel,
		HumLevel:       ev.HumLevel,
		Message:        ev.Message,
		Samples:        n,
		Trigger:        trigger,
	}
	s.window = make([]models.Sample, 0, s.cfg.MaxSamples)
	s.lastAvg = avg
	s.lastFlush.Store(at.UnixNano())
	return avg
}

func (s *IngestService) publish(avg models.WindowAverage) {
	metrics.ObserveFlush(avg)
	s.log.Infow("ingest_flush",
		"trigger", avg.Trigger,
		"samples", avg.Samples,
		"avg_temperature", avg.AvgTemperature,
		"avg_humidity", avg.AvgHumidity,
		"temp_level", avg.TempLevel,
		"hum_level", avg.HumLevel,
	)
	if s.sink != nil {
		s.sink.Submit(avg)
	}
}

func (s *IngestService) raise(ctx context.Context, sample models.Sample, alert models.AlertState) {
	s.log.Warnw("ingest_alert", "message", alert.Message)
	if s.alerts != nil {
		s.alerts.Notify(alertSubject, alert.Message)
	}
	if s.events != nil {
		s.events.Record(ctx, models.HiveEvent{
			OccurredAt:  sample.Timestamp,
			Type:        models.EventAlert,
			Description: alert.Message,
			Metadata: map[string]any{
				"temperature": sample.Temperature,
				"humidity":    sample.Humidity,
				"source":      sample.Source,
			},
		})
	}
}

// Alert returns the state produced by the most recent sample.
func (s *IngestService) Alert() models.AlertState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alert
}

// LastFlush returns when the last window closed, or the service start
// time if none has.
func (s *IngestService) LastFlush() time.Time {
	return time.Unix(0, s.lastFlush.Load())
}

// Snapshot returns the dashboard view of the current state.
func (s *IngestService) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := models.Snapshot{
		LastFlushAt: s.LastFlush(),
		WindowSize:  len(s.window),
		Alert:       s.alert,
	}
	if s.last != nil {
		ts := s.last.Timestamp
		snap.Temperature = s.last.Temperature
		snap.Humidity = s.last.Humidity
		snap.SampledAt = &ts
	}
	if s.lastAvg != nil {
		t, h := s.lastAvg.AvgTemperature, s.lastAvg.AvgHumidity
		snap.AvgTemperature = &t
		snap.AvgHumidity = &h
	}
	return snap
}

func sourceLabel(s models.Sample) string {
	if s.Source == "" {
		return metrics.SourcePush
	}
	return s.Source
}
