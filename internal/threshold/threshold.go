// Package threshold classifies hive readings against nested bands.
package threshold

import (
	"fmt"
	"strings"
	"time"

	"beehive_monitor/internal/config"
	"beehive_monitor/internal/models"
)

// Band is an inclusive [Min, Max] range.
type Band struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the band, bounds included.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

func (b Band) String() string {
	return fmt.Sprintf("[%.1f, %.1f]", b.Min, b.Max)
}

// Classify places v in one of three levels: outside critical is Critical,
// outside optimal (but inside critical) is Caution, otherwise Optimal.
func Classify(v float64, critical, optimal Band) models.Level {
	switch {
	case !critical.Contains(v):
		return models.LevelCritical
	case !optimal.Contains(v):
		return models.LevelCaution
	default:
		return models.LevelOptimal
	}
}

// Metric groups the bands used for one measured quantity.
type Metric struct {
	Critical  Band
	Optimal   Band
	Immediate Band
}

// Set holds the bands for both metrics.
type Set struct {
	Temperature Metric
	Humidity    Metric
}

// Defaults are the bands tuned for a brood nest.
var Defaults = Set{
	Temperature: Metric{
		Critical:  Band{Min: 30, Max: 38},
		Optimal:   Band{Min: 32, Max: 36},
		Immediate: Band{Min: 30, Max: 39},
	},
	Humidity: Metric{
		Critical:  Band{Min: 40, Max: 85},
		Optimal:   Band{Min: 50, Max: 75},
		Immediate: Band{Min: 40, Max: 85},
	},
}

// FromConfig converts the configured thresholds.
func FromConfig(c config.ThresholdsConfig) Set {
	conv := func(m config.MetricThresholds) Metric {
		return Metric{
			Critical:  Band(m.Critical),
			Optimal:   Band(m.Optimal),
			Immediate: Band(m.Immediate),
		}
	}
	return Set{Temperature: conv(c.Temperature), Humidity: conv(c.Humidity)}
}

// Evaluation is the windowed classification of an average.
type Evaluation struct {
	TempLevel models.Level
	HumLevel  models.Level
	Message   string
}

// EvaluateWindow classifies a window average for both metrics.
func (s Set) EvaluateWindow(avgTemp, avgHum float64) Evaluation {
	ev := Evaluation{
		TempLevel: Classify(avgTemp, s.Temperature.Critical, s.Temperature.Optimal),
		HumLevel:  Classify(avgHum, s.Humidity.Critical, s.Humidity.Optimal),
	}
	ev.Message = fmt.Sprintf("temperature %s, humidity %s",
		strings.ToLower(string(ev.TempLevel)), strings.ToLower(string(ev.HumLevel)))
	return ev
}

// CheckImmediate runs the per-sample check against the immediate bands.
// The returned state has an empty message when both metrics are in range.
func (s Set) CheckImmediate(sample models.Sample) models.AlertState {
	st := models.AlertState{
		TempOutOfRange: !s.Temperature.Immediate.Contains(sample.Temperature),
		HumOutOfRange:  !s.Humidity.Immediate.Contains(sample.Humidity),
		UpdatedAt:      sample.Timestamp,
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now().UTC()
	}

	var parts []string
	if st.TempOutOfRange {
		parts = append(parts, fmt.Sprintf("temperature %.1f°C outside %s", sample.Temperature, s.Temperature.Immediate))
	}
	if st.HumOutOfRange {
		parts = append(parts, fmt.Sprintf("humidity %.1f%% outside %s", sample.Humidity, s.Humidity.Immediate))
	}
	st.Message = strings.Join(parts, "; ")
	return st
}
