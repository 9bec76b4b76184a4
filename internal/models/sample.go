package models

import "time"

// Sample is one raw temperature/humidity reading.
type Sample struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"` // °C
	Humidity    float64   `json:"humidity"`    // %
	Source      string    `json:"source,omitempty"`
}

// Level is the three-step classification of a metric against nested bands.
type Level string

const (
	LevelOptimal  Level = "OPTIMAL"
	LevelCaution  Level = "CAUTION"
	LevelCritical Level = "CRITICAL"
)

// Severity orders levels so the worse of two can be picked.
func (l Level) Severity() int {
	switch l {
	case LevelCritical:
		return 2
	case LevelCaution:
		return 1
	default:
		return 0
	}
}

// Flush triggers.
const (
	TriggerCount    = "count"
	TriggerAge      = "age"
	TriggerShutdown = "shutdown"
)

// WindowAverage is the persisted summary of one flushed window.
type WindowAverage struct {
	Timestamp           time.Time `json:"timestamp"`
	Date                string    `json:"date"` // YYYY-MM-DD
	Time                string    `json:"time"` // HH:MM:SS
	AvgTemperature      float64   `json:"avg_temperature"`
	AvgHumidity         float64   `json:"avg_humidity"`
	ExternalTemperature *float64  `json:"external_temperature,omitempty"`
	ExternalHumidity    *float64  `json:"external_humidity,omitempty"`
	ExternalCondition   string    `json:"external_condition,omitempty"`
	TempLevel           Level     `json:"temp_level"`
	HumLevel            Level     `json:"hum_level"`
	Message             string    `json:"message"`
	Samples             int       `json:"samples"`
	Trigger             string    `json:"trigger,omitempty"`
}

// WorstLevel returns the more severe of the two metric levels.
func (w WindowAverage) WorstLevel() Level {
	if w.HumLevel.Severity() > w.TempLevel.Severity() {
		return w.HumLevel
	}
	return w.TempLevel
}

// AlertState is the result of the immediate per-sample check.
type AlertState struct {
	TempOutOfRange bool      `json:"temp_out_of_range"`
	HumOutOfRange  bool      `json:"hum_out_of_range"`
	Message        string    `json:"message"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// Active reports whether any metric is out of range.
func (a AlertState) Active() bool {
	return a.TempOutOfRange || a.HumOutOfRange
}

// ExternalWeather is the outside conditions at flush time.
// When Available is false the other fields are meaningless.
type ExternalWeather struct {
	Available   bool    `json:"available"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Condition   string  `json:"condition"`
}

// Snapshot is what the dashboard poll returns.
// temperatura/humedad keep the field names the dashboard already consumes.
type Snapshot struct {
	Temperature    float64    `json:"temperatura"`
	Humidity       float64    `json:"humedad"`
	SampledAt      *time.Time `json:"sampled_at,omitempty"`
	AvgTemperature *float64   `json:"avg_temperature,omitempty"`
	AvgHumidity    *float64   `json:"avg_humidity,omitempty"`
	LastFlushAt    time.Time  `json:"last_flush_at"`
	WindowSize     int        `json:"window_size"`
	Alert          AlertState `json:"alert"`
}

// IngestResult reports what happened to one accepted sample.
type IngestResult struct {
	Flushed bool           `json:"flushed"`
	Average *WindowAverage `json:"average,omitempty"`
	Alert   AlertState     `json:"alert"`
}

// DayHistory is the per-minute series for one day.
type DayHistory struct {
	Date     string    `json:"date"`
	Labels   []string  `json:"fechas"`
	TempMean []float64 `json:"temp_mean"`
	HumMean  []float64 `json:"hum_mean"`
}

// Stats summarises one metric.
type Stats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
	Count  int     `json:"count"`
}

// Extremes are global statistics across all stored days.
type Extremes struct {
	Temperature Stats `json:"temperature"`
	Humidity    Stats `json:"humidity"`
	Days        int   `json:"days"`
}
