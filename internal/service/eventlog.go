package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"beehive_monitor/internal/logger"
	"beehive_monitor/internal/models"
	"beehive_monitor/internal/repository"
)

// LogFilter narrows an event log listing.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", FLUSH, ALERT, HEARTBEAT, STALE
}

type EventLogService struct {
	events repository.Events
	log    *logger.Logger
}

func NewEventLogService(events repository.Events, log *logger.Logger) *EventLogService {
	return &EventLogService{events: events, log: logger.OrNop(log)}
}

var errInvalidTimeRange = errors.New("invalid time range: from must be <= to")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}
	return from, to, normalizeEventType(f.Type), nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.HiveEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.events.List(ctx, from, to, typ)
}

// Record appends e. The event log is best effort: failures are logged,
// never returned to the pipeline.
func (s *EventLogService) Record(ctx context.Context, e models.HiveEvent) {
	if err := s.events.Append(ctx, e); err != nil {
		s.log.Errorw("event_record_failed", "type", e.Type, "err", err)
	}
}
