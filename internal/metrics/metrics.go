// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"beehive_monitor/internal/models"
)

// Sample sources, used as the "source" label.
const (
	SourceSerial = "serial"
	SourcePush   = "push"
	SourceNATS   = "nats"
)

// SamplesIngested counts accepted samples per source.
var SamplesIngested = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "beehive_samples_ingested_total",
		Help: "Samples accepted into the ingestion window",
	},
	[]string{"source"},
)

// SamplesRejected counts malformed input per source.
var SamplesRejected = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "beehive_samples_rejected_total",
		Help: "Malformed sensor lines or payloads that were discarded",
	},
	[]string{"source"},
)

// WindowFlushes counts closed windows by trigger (count, age, shutdown).
var WindowFlushes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "beehive_window_flushes_total",
		Help: "Windows closed and averaged",
	},
	[]string{"trigger"},
)

// WindowSize records how many samples each flushed window held.
var WindowSize = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "beehive_window_samples",
		Help:    "Samples per flushed window",
		Buckets: []float64{1, 2, 5, 8, 10},
	},
)

// ImmediateAlerts counts samples that tripped the per-sample check.
var ImmediateAlerts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "beehive_immediate_alerts_total",
		Help: "Samples outside the immediate band",
	},
	[]string{"metric"},
)

// WindowLevels counts window classifications per metric and level.
var WindowLevels = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "beehive_window_levels_total",
		Help: "Window average classifications",
	},
	[]string{"metric", "level"},
)

// Notifications counts outbound notification attempts by kind and result.
var Notifications = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "beehive_notifications_total",
		Help: "Notification attempts",
	},
	[]string{"result"},
)

// WeatherLookups counts weather lookups by result (ok, unavailable).
var WeatherLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "beehive_weather_lookups_total",
		Help: "External weather lookups",
	},
	[]string{"result"},
)

// StoreErrors counts failed aggregate appends.
var StoreErrors = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "beehive_store_append_errors_total",
		Help: "Window averages that could not be persisted",
	},
)

// LastReading holds the most recent raw sample per metric.
var LastReading = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "beehive_last_reading",
		Help: "Most recent raw reading",
	},
	[]string{"metric"},
)

// LastFlush is the unix time of the last window flush.
var LastFlush = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "beehive_last_flush_timestamp_seconds",
		Help: "Unix time of the last window flush",
	},
)

// ObserveSample updates the per-sample collectors.
func ObserveSample(source string, s models.Sample, alert models.AlertState) {
	SamplesIngested.WithLabelValues(source).Inc()
	LastReading.WithLabelValues("temperature").Set(s.Temperature)
	LastReading.WithLabelValues("humidity").Set(s.Humidity)
	if alert.TempOutOfRange {
		ImmediateAlerts.WithLabelValues("temperature").Inc()
	}
	if alert.HumOutOfRange {
		ImmediateAlerts.WithLabelValues("humidity").Inc()
	}
}

// ObserveFlush updates the per-window collectors.
func ObserveFlush(avg models.WindowAverage) {
	WindowFlushes.WithLabelValues(avg.Trigger).Inc()
	WindowSize.Observe(float64(avg.Samples))
	WindowLevels.WithLabelValues("temperature", string(avg.TempLevel)).Inc()
	WindowLevels.WithLabelValues("humidity", string(avg.HumLevel)).Inc()
	LastFlush.Set(float64(avg.Timestamp.Unix()))
}
