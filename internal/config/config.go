package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full process configuration read from configs/config.yml.
// Every key can be overridden from the environment with the BEEHIVE_ prefix,
// e.g. BEEHIVE_SMTP_PASSWORD for smtp.password.
type Config struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`

	DB         DBConfig         `mapstructure:"db"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Serial     SerialConfig     `mapstructure:"serial"`
	Push       PushConfig       `mapstructure:"push"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Window     WindowConfig     `mapstructure:"window"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Weather    WeatherConfig    `mapstructure:"weather"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey   string        `mapstructure:"signing_key"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	SeedUser     string        `mapstructure:"seed_user"`
	SeedPassword string        `mapstructure:"seed_password"`
}

type SerialConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Port        string        `mapstructure:"port"`
	Baud        int           `mapstructure:"baud"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	Settle      time.Duration `mapstructure:"settle"`
}

type PushConfig struct {
	// DeviceKey, when set, must be sent as X-Device-Key on push requests.
	DeviceKey string `mapstructure:"device_key"`
}

type NATSConfig struct {
	URL            string `mapstructure:"url"`
	ReadingSubject string `mapstructure:"reading_subject"`
	WindowSubject  string `mapstructure:"window_subject"`
}

type WindowConfig struct {
	MaxSamples int           `mapstructure:"max_samples"`
	MaxAge     time.Duration `mapstructure:"max_age"`
	// CheckInterval is how often an idle window is tested against MaxAge.
	CheckInterval time.Duration `mapstructure:"check_interval"`
}

// Band is an inclusive [Min, Max] range.
type Band struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

type MetricThresholds struct {
	Critical  Band `mapstructure:"critical"`
	Optimal   Band `mapstructure:"optimal"`
	Immediate Band `mapstructure:"immediate"`
}

type ThresholdsConfig struct {
	Temperature MetricThresholds `mapstructure:"temperature"`
	Humidity    MetricThresholds `mapstructure:"humidity"`
}

type MonitorConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

type WeatherConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Lat     float64       `mapstructure:"lat"`
	Lon     float64       `mapstructure:"lon"`
	Lang    string        `mapstructure:"lang"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SMTPConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	To       []string      `mapstructure:"to"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

const envPrefix = "BEEHIVE"

// setDefaults mirrors the values of the reference deployment.
func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "5050")
	v.SetDefault("log_level", "info")
	v.SetDefault("data_dir", "data")

	v.SetDefault("db.path", "beehive.db")

	// Keys without a meaningful default are still registered so that
	// AutomaticEnv overrides reach Unmarshal.
	for _, key := range []string{
		"auth.signing_key", "auth.seed_password", "push.device_key", "nats.url",
		"weather.api_key", "smtp.host", "smtp.username", "smtp.password", "smtp.from",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("serial.enabled", false)
	v.SetDefault("weather.enabled", false)
	v.SetDefault("weather.lat", 0.0)
	v.SetDefault("weather.lon", 0.0)
	v.SetDefault("smtp.to", []string{})

	v.SetDefault("auth.session_ttl", 15*time.Minute)
	v.SetDefault("auth.cookie_name", "beehive_session")
	v.SetDefault("auth.seed_user", "admin")

	v.SetDefault("serial.port", "/dev/ttyUSB0")
	v.SetDefault("serial.baud", 9600)
	v.SetDefault("serial.read_timeout", 2*time.Second)
	v.SetDefault("serial.settle", 2*time.Second)

	v.SetDefault("nats.reading_subject", "beehive.readings")
	v.SetDefault("nats.window_subject", "beehive.windows")

	v.SetDefault("window.max_samples", 10)
	v.SetDefault("window.max_age", 600*time.Second)
	v.SetDefault("window.check_interval", time.Second)

	v.SetDefault("thresholds.temperature.critical.min", 30.0)
	v.SetDefault("thresholds.temperature.critical.max", 38.0)
	v.SetDefault("thresholds.temperature.optimal.min", 32.0)
	v.SetDefault("thresholds.temperature.optimal.max", 36.0)
	v.SetDefault("thresholds.temperature.immediate.min", 30.0)
	v.SetDefault("thresholds.temperature.immediate.max", 39.0)
	v.SetDefault("thresholds.humidity.critical.min", 40.0)
	v.SetDefault("thresholds.humidity.critical.max", 85.0)
	v.SetDefault("thresholds.humidity.optimal.min", 50.0)
	v.SetDefault("thresholds.humidity.optimal.max", 75.0)
	v.SetDefault("thresholds.humidity.immediate.min", 40.0)
	v.SetDefault("thresholds.humidity.immediate.max", 85.0)

	v.SetDefault("monitor.interval", time.Hour)
	v.SetDefault("monitor.stale_after", 15*time.Minute)

	v.SetDefault("weather.base_url", "https://api.openweathermap.org")
	v.SetDefault("weather.lang", "es")
	v.SetDefault("weather.timeout", 5*time.Second)

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.timeout", 10*time.Second)
}

// Load reads config.yml from the given directories (first match wins) and
// applies environment overrides. A missing file is not an error: defaults
// and environment still apply.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Window.MaxSamples <= 0 {
		return fmt.Errorf("window.max_samples must be > 0, got %d", c.Window.MaxSamples)
	}
	if c.Window.MaxAge <= 0 {
		return fmt.Errorf("window.max_age must be > 0, got %s", c.Window.MaxAge)
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be > 0, got %s", c.Monitor.Interval)
	}
	for name, b := range map[string]Band{
		"temperature.critical":  c.Thresholds.Temperature.Critical,
		"temperature.optimal":   c.Thresholds.Temperature.Optimal,
		"temperature.immediate": c.Thresholds.Temperature.Immediate,
		"humidity.critical":     c.Thresholds.Humidity.Critical,
		"humidity.optimal":      c.Thresholds.Humidity.Optimal,
		"humidity.immediate":    c.Thresholds.Humidity.Immediate,
	} {
		if b.Min > b.Max {
			return fmt.Errorf("thresholds.%s: min %.2f > max %.2f", name, b.Min, b.Max)
		}
	}
	return nil
}
