package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/i474232898/forecast-widget/internal/weather"
)

type AppConfig struct {
	Port     string
	LogLevel string

	// Provider is "darksky" or "openmeteo".
	Provider       string
	DarkSkyAPIKey  string
	DarkSkyBaseURL string

	// HTTPTimeout bounds one outbound HTTP call, FetchTimeout a whole
	// provider fetch including retries.
	HTTPTimeout  time.Duration
	FetchTimeout time.Duration

	// Outbound token bucket shared by all widgets (0 = unlimited).
	ProviderRPS   float64
	ProviderBurst int

	// GoogleMapsAPIKey enables driving distances and Google geocoding.
	GoogleMapsAPIKey string

	Timezone *time.Location
	Cities   []weather.CitySelector

	// Sessions idle for SessionMaxAge are swept every SessionSweepInterval.
	SessionMaxAge        time.Duration
	SessionSweepInterval time.Duration

	// PreferencesDB is the SQLite path for remembered cities; "off" disables it.
	PreferencesDB string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config: no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	cfg.Provider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", "openmeteo"))
	cfg.DarkSkyAPIKey = os.Getenv("DARKSKY_API_KEY")
	cfg.DarkSkyBaseURL = os.Getenv("DARKSKY_BASE_URL")
	switch cfg.Provider {
	case "openmeteo":
	case "darksky":
		if cfg.DarkSkyAPIKey == "" {
			return nil, fmt.Errorf("DARKSKY_API_KEY is required for the darksky provider")
		}
	default:
		return nil, fmt.Errorf("invalid WEATHER_PROVIDER %q: use darksky or openmeteo", cfg.Provider)
	}

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	if cfg.ProviderRPS, err = getenvFloat("PROVIDER_RPS", 5); err != nil {
		return nil, err
	}
	cfg.ProviderBurst = getenvInt("PROVIDER_BURST", 10)

	cfg.GoogleMapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")

	cfg.Timezone = time.Local
	if tz := os.Getenv("WIDGET_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid WIDGET_TIMEZONE: %w", err)
		}
		cfg.Timezone = loc
	}

	cfg.Cities = weather.DefaultCities()
	if raw := os.Getenv("WIDGET_CITIES"); raw != "" {
		cities, err := weather.ParseCities(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid WIDGET_CITIES: %w", err)
		}
		cfg.Cities = cities
	}

	if cfg.SessionMaxAge, err = getenvDuration("SESSION_MAX_AGE", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionSweepInterval, err = getenvDuration("SESSION_SWEEP_INTERVAL", time.Minute); err != nil {
		return nil, err
	}

	cfg.PreferencesDB = getenvDefault("PREFERENCES_DB", "forecast-widget.db")
	if strings.EqualFold(cfg.PreferencesDB, "off") {
		cfg.PreferencesDB = ""
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
