package service

import (
	"context"
	"sync"

	"beehive_monitor/internal/logger"
	"beehive_monitor/internal/metrics"
	"beehive_monitor/internal/models"
	"beehive_monitor/internal/sensor"
	"beehive_monitor/internal/weather"
)

const recorderQueue = 64

// Appender persists one window average. store.CSVStore implements it.
type Appender interface {
	Append(ctx context.Context, avg models.WindowAverage) error
}

// Recorder enriches closed windows with outside weather and persists them
// on its own goroutine, keeping network and disk work off the ingest path.
type Recorder struct {
	store     Appender
	weather   weather.Provider
	events    EventRecorder
	publisher sensor.Publisher
	subject   string
	log       *logger.Logger

	queue    chan models.WindowAverage
	done     chan struct{}
	stopOnce sync.Once
}

// NewRecorder builds a recorder. weather, events and publisher may be nil.
func NewRecorder(st Appender, wp weather.Provider, events EventRecorder, pub sensor.Publisher, subject string, log *logger.Logger) *Recorder {
	return &Recorder{
		store:     st,
		weather:   wp,
		events:    events,
		publisher: pub,
		subject:   subject,
		log:       logger.OrNop(log),
		queue:     make(chan models.WindowAverage, recorderQueue),
		done:      make(chan struct{}),
	}
}

// Submit queues avg. It blocks while the queue is full and drops the
// window once the recorder has stopped.
func (r *Recorder) Submit(avg models.WindowAverage) {
	select {
	case <-r.done:
		metrics.StoreErrors.Inc()
		r.log.Errorw("recorder_stopped_window_dropped", "date", avg.Date, "time", avg.Time)
		return
	default:
	}
	select {
	case r.queue <- avg:
	case <-r.done:
		metrics.StoreErrors.Inc()
		r.log.Errorw("recorder_stopped_window_dropped", "date", avg.Date, "time", avg.Time)
	}
}

// Run processes windows until ctx is cancelled, then records whatever is
// still queued and returns.
func (r *Recorder) Run(ctx context.Context) {
	defer r.stopOnce.Do(func() { close(r.done) })
	for {
		select {
		case avg := <-r.queue:
			r.record(ctx, avg)
		case <-ctx.Done():
			r.drain(context.WithoutCancel(ctx))
			return
		}
	}
}

func (r *Recorder) drain(ctx context.Context) {
	for {
		select {
		case avg := <-r.queue:
			r.record(ctx, avg)
		default:
			return
		}
	}
}

// record looks the weather up once and reuses it for the stored row.
func (r *Recorder) record(ctx context.Context, avg models.WindowAverage) {
	if r.weather != nil {
		w := r.weather.Current(ctx)
		if w.Available {
			t, h := w.Temperature, w.Humidity
			avg.ExternalTemperature = &t
			avg.ExternalHumidity = &h
			avg.ExternalCondition = w.Condition
		}
	}

	if err := r.store.Append(ctx, avg); err != nil {
		metrics.StoreErrors.Inc()
		r.log.Errorw("recorder_append_failed", "date", avg.Date, "time", avg.Time, "err", err)
	}

	if r.events != nil {
		r.events.Record(ctx, models.HiveEvent{
			OccurredAt:  avg.Timestamp,
			Type:        models.EventFlush,
			Description: avg.Message,
			Metadata: map[string]any{
				"samples":         avg.Samples,
				"trigger":         avg.Trigger,
				"avg_temperature": avg.AvgTemperature,
				"avg_humidity":    avg.AvgHumidity,
			},
		})
	}

	if r.publisher != nil && r.subject != "" {
		if err := r.publisher.Publish(r.subject, avg); err != nil {
			r.log.Warnw("recorder_publish_failed", "subject", r.subject, "err", err)
		}
	}
}
