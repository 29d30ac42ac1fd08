package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/forecast-widget/internal/api/http"
	"github.com/i474232898/forecast-widget/internal/config"
	"github.com/i474232898/forecast-widget/internal/format"
	"github.com/i474232898/forecast-widget/internal/geo"
	"github.com/i474232898/forecast-widget/internal/logger"
	"github.com/i474232898/forecast-widget/internal/scheduler"
	"github.com/i474232898/forecast-widget/internal/store"
	"github.com/i474232898/forecast-widget/internal/view"
	"github.com/i474232898/forecast-widget/internal/weather"
	"github.com/i474232898/forecast-widget/internal/widget"
)

// preferenceRetention is how long a remembered city outlives its last change.
const preferenceRetention = 30 * 24 * time.Hour

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.AppConfig) error {
	logger.Init(serviceName, cfg.LogLevel)

	provider := newProvider(cfg)
	binder := view.NewBinder(format.Formatter{Location: cfg.Timezone})
	sessions := store.NewMemoryStore(cfg.SessionMaxAge)

	var prefs *store.PreferenceStore
	if cfg.PreferencesDB != "" {
		p, err := store.OpenPreferences(cfg.PreferencesDB)
		if err != nil {
			return err
		}
		defer p.Close()
		prefs = p
	}

	var matrix geo.DistanceMatrix = geo.GreatCircle{}
	if cfg.GoogleMapsAPIKey != "" {
		m, err := geo.NewGoogleMatrix(cfg.GoogleMapsAPIKey)
		if err != nil {
			return err
		}
		matrix = m
	}

	newWidget := func(ctx context.Context, sessionID string) (*widget.Controller, error) {
		opts := widget.Options{
			Provider:     provider,
			Binder:       binder,
			Cities:       cfg.Cities,
			FetchTimeout: cfg.FetchTimeout,
			Now:          clockIn(cfg.Timezone, time.Now),
			Logger:       slog.Default().With("session", sessionID),
		}
		if prefs != nil {
			if city, err := prefs.LoadCity(sessionID); err == nil {
				loc := city.Location
				opts.InitialCity = &loc
			}
			opts.OnCityChange = func(ctx context.Context, city weather.CitySelector) {
				if err := prefs.SaveCity(sessionID, city); err != nil {
					slog.WarnContext(ctx, "failed to remember city", "error", err)
				}
			}
		}
		return widget.New(opts), nil
	}

	jobs := []scheduler.Job{{
		Name: "session-sweep",
		Run: func() error {
			if n := sessions.Sweep(); n > 0 {
				slog.Info("swept idle sessions", "count", n, "remaining", sessions.Len())
			}
			return nil
		},
	}}
	if prefs != nil {
		jobs = append(jobs, scheduler.Job{
			Name: "preference-purge",
			Run: func() error {
				_, err := prefs.PurgeOlderThan(preferenceRetention)
				return err
			},
		})
	}

	sched := scheduler.New(cfg.SessionSweepInterval, jobs...)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app := httpapi.NewApp(serviceName)
	httpapi.RegisterRoutes(app, &httpapi.Handlers{
		Sessions:    sessions,
		NewWidget:   newWidget,
		Matrix:      matrix,
		Geocoder:    geo.NewGeocoder(cfg.GoogleMapsAPIKey),
		WaitTimeout: cfg.FetchTimeout,
	})

	go func() {
		slog.Info("listening", "port", cfg.Port, "provider", provider.Name())
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "error", err)
	}
	sessions.CloseAll()
	return nil
}
