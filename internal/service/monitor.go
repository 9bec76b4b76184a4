package service

import (
	"context"
	"fmt"
	"time"

	"beehive_monitor/internal/logger"
	"beehive_monitor/internal/models"
)

const (
	heartbeatSubject = "Hive monitor: system running"
	staleSubject     = "ALERTA: hive monitor has stopped recording"
)

// FlushClock reports the time of the last window flush.
type FlushClock interface {
	LastFlush() time.Time
}

// MonitorConfig sets how often the monitor checks and when a gap counts
// as stale.
type MonitorConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
}

// MonitorService periodically reports whether windows are still being
// flushed: a heartbeat while they are, an alert once they stop.
type MonitorService struct {
	clock  FlushClock
	alerts Alerter
	events EventRecorder
	cfg    MonitorConfig
	now    func() time.Time
	log    *logger.Logger
}

func NewMonitorService(clock FlushClock, alerts Alerter, events EventRecorder, cfg MonitorConfig, log *logger.Logger) *MonitorService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 15 * time.Minute
	}
	return &MonitorService{
		clock:  clock,
		alerts: alerts,
		events: events,
		cfg:    cfg,
		now:    time.Now,
		log:    logger.OrNop(log),
	}
}

// Watch checks once per interval until ctx is cancelled. A failing check
// is logged and the loop keeps going.
func (m *MonitorService) Watch(ctx context.Context) {
	t := time.NewTicker(m.cfg.Interval)
	defer t.Stop()
	m.log.Infow("monitor_started", "interval", m.cfg.Interval, "stale_after", m.cfg.StaleAfter)
	for {
		select {
		case <-ctx.Done():
			m.log.Infow("monitor_stopped")
			return
		case <-t.C:
			m.safeCheck(ctx)
		}
	}
}

func (m *MonitorService) safeCheck(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Errorw("monitor_check_panic", "panic", r)
		}
	}()
	m.Check(ctx)
}

// Check runs one iteration and reports whether data was stale.
func (m *MonitorService) Check(ctx context.Context) bool {
	last := m.clock.LastFlush()
	gap := m.now().Sub(last)
	minutes := gap.Minutes()

	ev := models.HiveEvent{
		OccurredAt: m.now(),
		Metadata: map[string]any{
			"minutes_since_flush": minutes,
			"last_flush":          last.UTC().Format(time.RFC3339),
		},
	}
	var subject string
	stale := gap > m.cfg.StaleAfter
	if stale {
		subject = staleSubject
		ev.Type = models.EventStale
		ev.Description = fmt.Sprintf("no window recorded for %.0f minutes (last at %s)", minutes, last.Format("2006-01-02 15:04:05"))
		m.log.Warnw("monitor_stale", "minutes", minutes)
	} else {
		subject = heartbeatSubject
		ev.Type = models.EventHeartbeat
		ev.Description = fmt.Sprintf("running; last window recorded %.0f minutes ago", minutes)
		m.log.Infow("monitor_heartbeat", "minutes", minutes)
	}

	if m.alerts != nil {
		m.alerts.Notify(subject, ev.Description)
	}
	if m.events != nil {
		m.events.Record(ctx, ev)
	}
	return stale
}
