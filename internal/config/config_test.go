package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "5050" {
		t.Errorf("port: got %q", cfg.Port)
	}
	if cfg.Window.MaxSamples != 10 || cfg.Window.MaxAge != 600*time.Second || cfg.Window.CheckInterval != time.Second {
		t.Errorf("window defaults: %+v", cfg.Window)
	}
	if cfg.Thresholds.Temperature.Critical != (Band{Min: 30, Max: 38}) {
		t.Errorf("temperature critical: %+v", cfg.Thresholds.Temperature.Critical)
	}
	if cfg.Thresholds.Temperature.Immediate != (Band{Min: 30, Max: 39}) {
		t.Errorf("temperature immediate: %+v", cfg.Thresholds.Temperature.Immediate)
	}
	if cfg.Thresholds.Humidity.Optimal != (Band{Min: 50, Max: 75}) {
		t.Errorf("humidity optimal: %+v", cfg.Thresholds.Humidity.Optimal)
	}
	if cfg.Monitor.Interval != time.Hour || cfg.Monitor.StaleAfter != 15*time.Minute {
		t.Errorf("monitor defaults: %+v", cfg.Monitor)
	}
	if cfg.Auth.SessionTTL != 15*time.Minute {
		t.Errorf("session ttl: %s", cfg.Auth.SessionTTL)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
port: "9000"
window:
  max_samples: 5
  max_age: 2m
smtp:
  host: smtp.example.com
  to: [a@example.com, b@example.com]
`)
	t.Setenv("BEEHIVE_SMTP_PASSWORD", "s3cret")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("port: got %q", cfg.Port)
	}
	if cfg.Window.MaxSamples != 5 || cfg.Window.MaxAge != 2*time.Minute {
		t.Errorf("window: %+v", cfg.Window)
	}
	if cfg.SMTP.Host != "smtp.example.com" || len(cfg.SMTP.To) != 2 {
		t.Errorf("smtp: %+v", cfg.SMTP)
	}
	if cfg.SMTP.Password != "s3cret" {
		t.Errorf("env override not applied, password=%q", cfg.SMTP.Password)
	}
}

func TestLoad_RejectsInvertedBand(t *testing.T) {
	dir := writeConfig(t, `
thresholds:
  humidity:
    optimal: { min: 80, max: 50 }
`)
	if _, err := Load(dir); err == nil {
		t.Fatal("expected validation error for inverted band")
	}
}
