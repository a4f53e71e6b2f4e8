package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Relay modes.
const (
	RelayStrict      = "strict"
	RelayTransparent = "transparent"
)

const (
	defaultUpstreamURL = "https://www.homatherapie.de/en/Agnihotra_Zeitenprogramm/results.html"
	defaultUserAgent   = "Mozilla/5.0 (compatible; AgnihotraApp/1.0)"
)

// Config holds environment-based settings
type Config struct {
	Environment   string
	ServerAddress string
	LogLevel      string

	UpstreamURL    string
	RelayMode      string
	RelayCacheTTL  time.Duration
	RelayEndpoints []string
	IPServices     []string
	SunAPIURL      string
	GeocodeURL     string
	UserAgent      string
	HTTPTimeout    time.Duration
	Timezone       *time.Location

	Latitude  *float64
	Longitude *float64

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTTopicPrefix string
}

// Development reports whether APP_ENV selects a developer setup.
func (c *Config) Development() bool {
	return c.Environment == "" || c.Environment == "development"
}

// Load reads configuration from environment variables, after loading an
// optional .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:     os.Getenv("APP_ENV"),
		ServerAddress:   getenv("SERVER_ADDRESS", ":8080"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		UpstreamURL:     getenv("UPSTREAM_URL", defaultUpstreamURL),
		RelayMode:       getenv("RELAY_MODE", RelayStrict),
		RelayEndpoints:  list(os.Getenv("RELAY_ENDPOINTS")),
		IPServices:      list(os.Getenv("IP_GEO_SERVICES")),
		SunAPIURL:       os.Getenv("SUN_API_URL"),
		GeocodeURL:      os.Getenv("GEOCODE_URL"),
		UserAgent:       getenv("USER_AGENT", defaultUserAgent),
		RedisAddress:    os.Getenv("REDIS_ADDRESS"),
		RedisUsername:   os.Getenv("REDIS_USERNAME"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		MQTTBrokerURL:   os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:    getenv("MQTT_CLIENT_ID", "agnihotra"),
		MQTTTopicPrefix: getenv("MQTT_TOPIC_PREFIX", "agnihotra"),
	}

	if cfg.RelayMode != RelayStrict && cfg.RelayMode != RelayTransparent {
		return nil, fmt.Errorf("RELAY_MODE must be %q or %q, got %q", RelayStrict, RelayTransparent, cfg.RelayMode)
	}

	var err error
	if cfg.HTTPTimeout, err = duration("HTTP_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.RelayCacheTTL, err = duration("RELAY_CACHE_TTL", 6*time.Hour); err != nil {
		return nil, err
	}

	cfg.Timezone = time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		if cfg.Timezone, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("TIMEZONE: %w", err)
		}
	}

	if cfg.Latitude, err = coordinate("LATITUDE", -90, 90); err != nil {
		return nil, err
	}
	if cfg.Longitude, err = coordinate("LONGITUDE", -180, 180); err != nil {
		return nil, err
	}
	if (cfg.Latitude == nil) != (cfg.Longitude == nil) {
		return nil, fmt.Errorf("LATITUDE and LONGITUDE must be set together")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func list(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

func coordinate(key string, min, max float64) (*float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < min || f > max {
		return nil, fmt.Errorf("%s must be a number between %v and %v, got %q", key, min, max, v)
	}
	return &f, nil
}
