package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "WEATHER_PROVIDER", "DARKSKY_API_KEY", "HTTP_TIMEOUT", "FETCH_TIMEOUT",
		"PROVIDER_RPS", "PROVIDER_BURST", "WIDGET_TIMEZONE", "WIDGET_CITIES",
		"SESSION_MAX_AGE", "SESSION_SWEEP_INTERVAL", "PREFERENCES_DB",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Provider != "openmeteo" {
		t.Errorf("unexpected defaults: port=%q provider=%q", cfg.Port, cfg.Provider)
	}
	if cfg.FetchTimeout != 30*time.Second || cfg.SessionMaxAge != 30*time.Minute {
		t.Errorf("unexpected durations: %v %v", cfg.FetchTimeout, cfg.SessionMaxAge)
	}
	if len(cfg.Cities) != 3 || !cfg.Cities[0].Selected {
		t.Errorf("unexpected default cities %+v", cfg.Cities)
	}
	if cfg.Timezone != time.Local {
		t.Errorf("expected the local time zone, got %v", cfg.Timezone)
	}
	if cfg.PreferencesDB != "forecast-widget.db" {
		t.Errorf("PreferencesDB = %q", cfg.PreferencesDB)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WEATHER_PROVIDER", "DarkSky")
	t.Setenv("DARKSKY_API_KEY", "k")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("PROVIDER_RPS", "0.5")
	t.Setenv("WIDGET_TIMEZONE", "Asia/Tbilisi")
	t.Setenv("WIDGET_CITIES", "Batumi:41.6168:41.6367, Kutaisi:42.2679:42.6946")
	t.Setenv("PREFERENCES_DB", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Provider != "darksky" || cfg.FetchTimeout != 5*time.Second || cfg.ProviderRPS != 0.5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Timezone.String() != "Asia/Tbilisi" {
		t.Errorf("Timezone = %v", cfg.Timezone)
	}
	if len(cfg.Cities) != 2 || cfg.Cities[0].Name != "Batumi" || !cfg.Cities[0].Selected {
		t.Errorf("unexpected cities %+v", cfg.Cities)
	}
	if cfg.PreferencesDB != "" {
		t.Errorf("PreferencesDB should be disabled, got %q", cfg.PreferencesDB)
	}
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		desc string
		env  map[string]string
	}{
		{desc: "unknown provider", env: map[string]string{"WEATHER_PROVIDER": "metoffice"}},
		{desc: "darksky without key", env: map[string]string{"WEATHER_PROVIDER": "darksky", "DARKSKY_API_KEY": ""}},
		{desc: "bad duration", env: map[string]string{"FETCH_TIMEOUT": "soon"}},
		{desc: "bad rps", env: map[string]string{"PROVIDER_RPS": "fast"}},
		{desc: "bad time zone", env: map[string]string{"WIDGET_TIMEZONE": "Mars/Olympus"}},
		{desc: "bad cities", env: map[string]string{"WIDGET_CITIES": "Nowhere:north:east"}},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			t.Setenv("WEATHER_PROVIDER", "openmeteo")
			for k, v := range tC.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
