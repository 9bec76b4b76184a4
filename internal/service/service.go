package service

import (
	"context"
	"io"
	"time"

	"beehive_monitor/internal/config"
	"beehive_monitor/internal/logger"
	"beehive_monitor/internal/models"
	"beehive_monitor/internal/report"
	"beehive_monitor/internal/repository"
	"beehive_monitor/internal/sensor"
	"beehive_monitor/internal/store"
	"beehive_monitor/internal/threshold"
	"beehive_monitor/internal/weather"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
	EnsureUser(ctx context.Context, username, password string) (bool, error)
	SessionTTL() time.Duration
}

// Ingestion accepts samples and exposes the live window state.
type Ingestion interface {
	Ingest(ctx context.Context, s models.Sample) (models.IngestResult, error)
	Snapshot() models.Snapshot
	Alert() models.AlertState
	LastFlush() time.Time
	Drain(ctx context.Context) (*models.WindowAverage, bool)
	// WatchAge closes windows that outlive MaxAge without a new sample.
	// Stop it by cancelling ctx.
	WatchAge(ctx context.Context)
}

// Sensor reads the attached device on demand.
type Sensor interface {
	Poll(ctx context.Context) models.Snapshot
}

type History interface {
	ByDate(ctx context.Context, date string) (models.DayHistory, error)
	Extremes(ctx context.Context) (models.Extremes, error)
}

type Reports interface {
	PDF(ctx context.Context, date string, w io.Writer) error
	Excel(ctx context.Context, date string, w io.Writer) error
}

type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.HiveEvent, error)
}

// Monitor runs the periodic health check. Stop it by cancelling ctx.
type Monitor interface {
	Watch(ctx context.Context)
}

// Service aggregates everything the HTTP layer and main need.
type Service struct {
	Authorization
	Ingestion
	Sensor
	History
	Reports
	EventLog
	Monitor

	// Recorder must be running for closed windows to be persisted.
	Recorder *Recorder
}

// Deps are the collaborators NewService wires together. Source and
// Publisher may be nil.
type Deps struct {
	Config    *config.Config
	Repos     *repository.Repository
	Store     *store.CSVStore
	Weather   weather.Provider
	Alerts    Alerter
	Source    sensor.Source
	Publisher sensor.Publisher
	Log       *logger.Logger
}

func NewService(d Deps) *Service {
	cfg := d.Config
	events := NewEventLogService(d.Repos.Events, d.Log)

	var subject string
	if d.Publisher != nil {
		subject = cfg.NATS.WindowSubject
	}
	rec := NewRecorder(d.Store, d.Weather, events, d.Publisher, subject, d.Log)

	ingest := NewIngestService(
		threshold.FromConfig(cfg.Thresholds),
		WindowConfig{
			MaxSamples: cfg.Window.MaxSamples,
			MaxAge:     cfg.Window.MaxAge,
			CheckEvery: cfg.Window.CheckInterval,
		},
		rec, d.Alerts, events, d.Log,
	)

	return &Service{
		Authorization: NewAuthService(d.Repos.Users, cfg.Auth.SigningKey, cfg.Auth.SessionTTL),
		Ingestion:     ingest,
		Sensor:        NewPollService(d.Source, ingest, d.Log),
		History:       NewHistoryService(d.Store),
		Reports:       report.NewGenerator(d.Store),
		EventLog:      events,
		Monitor: NewMonitorService(ingest, d.Alerts, events,
			MonitorConfig{Interval: cfg.Monitor.Interval, StaleAfter: cfg.Monitor.StaleAfter}, d.Log),
		Recorder: rec,
	}
}
