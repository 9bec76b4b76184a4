// Package weather looks up outside conditions for the hive location.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"beehive_monitor/internal/config"
	"beehive_monitor/internal/logger"
	"beehive_monitor/internal/metrics"
	"beehive_monitor/internal/models"
)

const defaultBaseURL = "https://api.openweathermap.org"

// Provider returns current conditions. It never fails; an unavailable
// result carries Available=false.
type Provider interface {
	Current(ctx context.Context) models.ExternalWeather
}

// Client queries the OpenWeatherMap current-weather endpoint.
type Client struct {
	cfg  config.WeatherConfig
	http *http.Client
	log  *logger.Logger
}

// NewClient builds a client; a disabled config makes every lookup unavailable.
func NewClient(cfg config.WeatherConfig, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  logger.OrNop(log),
	}
}

type owmResponse struct {
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

func (c *Client) Current(ctx context.Context) models.ExternalWeather {
	if !c.cfg.Enabled || c.cfg.APIKey == "" {
		return models.ExternalWeather{}
	}
	w, err := c.fetch(ctx)
	if err != nil {
		metrics.WeatherLookups.WithLabelValues("unavailable").Inc()
		c.log.Warnw("weather_unavailable", "err", err)
		return models.ExternalWeather{}
	}
	metrics.WeatherLookups.WithLabelValues("ok").Inc()
	return w
}

func (c *Client) fetch(ctx context.Context) (models.ExternalWeather, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(c.cfg.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(c.cfg.Lon, 'f', -1, 64))
	q.Set("appid", c.cfg.APIKey)
	q.Set("units", "metric")
	if c.cfg.Lang != "" {
		q.Set("lang", c.cfg.Lang)
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/data/2.5/weather?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.ExternalWeather{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return models.ExternalWeather{}, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ExternalWeather{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var body owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.ExternalWeather{}, fmt.Errorf("decode: %w", err)
	}
	if body.Main.Temp == nil || body.Main.Humidity == nil {
		return models.ExternalWeather{}, fmt.Errorf("response missing main.temp or main.humidity")
	}
	w := models.ExternalWeather{
		Available:   true,
		Temperature: *body.Main.Temp,
		Humidity:    *body.Main.Humidity,
	}
	if len(body.Weather) > 0 {
		w.Condition = body.Weather[0].Description
	}
	return w, nil
}
