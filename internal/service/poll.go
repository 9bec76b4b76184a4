package service

import (
	"context"
	"errors"

	"beehive_monitor/internal/logger"
	"beehive_monitor/internal/models"
	"beehive_monitor/internal/sensor"
)

// PollService reads the attached sensor once per dashboard poll.
type PollService struct {
	source sensor.Source
	ingest *IngestService
	log    *logger.Logger
}

// NewPollService builds a poller; source may be nil when no device is
// attached, in which case Poll only reports the current state.
func NewPollService(source sensor.Source, ingest *IngestService, log *logger.Logger) *PollService {
	return &PollService{source: source, ingest: ingest, log: logger.OrNop(log)}
}

// Poll ingests at most one sample and returns the resulting snapshot.
// A missing or unreadable device is not an error; the last known values
// are returned.
func (p *PollService) Poll(ctx context.Context) models.Snapshot {
	if p.source != nil {
		if s, ok := p.source.Next(ctx); ok {
			if _, err := p.ingest.Ingest(ctx, s); err != nil && !errors.Is(err, ErrInvalidSample) {
				p.log.Errorw("poll_ingest_failed", "err", err)
			}
		}
	}
	return p.ingest.Snapshot()
}
