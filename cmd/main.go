package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"beehive_monitor/internal/config"
	"beehive_monitor/internal/handlers"
	"beehive_monitor/internal/logger"
	"beehive_monitor/internal/notifier"
	"beehive_monitor/internal/repository"
	"beehive_monitor/internal/repository/db"
	"beehive_monitor/internal/sensor"
	"beehive_monitor/internal/server"
	"beehive_monitor/internal/service"
	"beehive_monitor/internal/store"
	"beehive_monitor/internal/weather"
)

const shutdownTimeout = 10 * time.Second

// @title           Beehive Monitor API
// @version         1.0
// @description     Hive temperature and humidity monitoring.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load("configs", ".")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DB.Path, "err", err)
	}
	csvStore, err := store.NewCSVStore(cfg.DataDir)
	if err != nil {
		log.Fatalw("failed to init data dir", "dir", cfg.DataDir, "err", err)
	}

	dispatcher := notifier.NewDispatcher(notifier.New(cfg.SMTP, log), cfg.SMTP.Timeout, log)

	var source sensor.Source
	var serialSource *sensor.SerialSource
	if cfg.Serial.Enabled {
		serialSource = sensor.NewSerialSource(sensor.SerialConfig{
			Port:        cfg.Serial.Port,
			Baud:        cfg.Serial.Baud,
			ReadTimeout: cfg.Serial.ReadTimeout,
			Settle:      cfg.Serial.Settle,
		}, nil, log)
		source = serialSource
	}

	nc := connectNATS(cfg.NATS.URL, log)
	var publisher sensor.Publisher
	if nc != nil {
		publisher = sensor.NewNATSPublisher(nc)
	}

	services := service.NewService(service.Deps{
		Config:    cfg,
		Repos:     repository.NewRepository(sqlDB),
		Store:     csvStore,
		Weather:   weather.NewClient(cfg.Weather, log),
		Alerts:    dispatcher,
		Source:    source,
		Publisher: publisher,
		Log:       log,
	})

	seedUser(services, cfg.Auth, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	var background sync.WaitGroup
	background.Add(3)
	go func() {
		defer background.Done()
		services.Recorder.Run(ctx)
	}()
	go func() {
		defer background.Done()
		services.Monitor.Watch(ctx)
	}()
	go func() {
		defer background.Done()
		services.WatchAge(ctx)
	}()

	var natsSource *sensor.NATSSource
	if nc != nil {
		natsSource = sensor.NewNATSSource(nc, cfg.NATS.ReadingSubject, services, log)
		if err := natsSource.Start(); err != nil {
			log.Errorw("nats_subscribe_failed", "subject", cfg.NATS.ReadingSubject, "err", err)
		}
	}

	apiHandler := handlers.NewHandler(services, log,
		handlers.WithSessionCookie(cfg.Auth.CookieName, cfg.Auth.CookieSecure),
		handlers.WithDeviceKey(cfg.Push.DeviceKey),
	)

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForSignal()
	log.Infow("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	if natsSource != nil {
		if err := natsSource.Stop(); err != nil {
			log.Warnw("nats_unsubscribe_failed", "err", err)
		}
	}
	if avg, ok := services.Drain(shutdownCtx); ok {
		log.Infow("partial_window_flushed", "samples", avg.Samples)
	}

	// stop background goroutines; the recorder persists what is queued first
	cancel()
	background.Wait()
	dispatcher.Wait()

	if serialSource != nil {
		_ = serialSource.Close()
	}
	if nc != nil {
		_ = nc.Drain()
	}
	closeDB(sqlDB, log)
}

// connectNATS returns nil when no URL is configured or the broker is
// unreachable; NATS is optional.
func connectNATS(url string, log *logger.Logger) *nats.Conn {
	if url == "" {
		return nil
	}
	nc, err := sensor.ConnectNATS(url, log)
	if err != nil {
		log.Errorw("nats_connect_failed", "url", url, "err", err)
		return nil
	}
	log.Infow("nats_connected", "url", nc.ConnectedUrl())
	return nc
}

func seedUser(services *service.Service, auth config.AuthConfig, log *logger.Logger) {
	if auth.SeedUser == "" || auth.SeedPassword == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	created, err := services.EnsureUser(ctx, auth.SeedUser, auth.SeedPassword)
	if err != nil {
		log.Fatalw("failed to seed user", "username", auth.SeedUser, "err", err)
	}
	if created {
		log.Infow("seed user created", "username", auth.SeedUser)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

func waitForSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

func closeDB(sqlDB *sql.DB, log *logger.Logger) {
	if err := sqlDB.Close(); err != nil {
		log.Errorw("failed to close sqlite", "err", err)
	}
}
