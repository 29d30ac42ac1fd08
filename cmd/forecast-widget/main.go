package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/forecast-widget/internal/config"
	"github.com/i474232898/forecast-widget/internal/weather"
	"github.com/i474232898/forecast-widget/internal/weather/providers"
)

const serviceName = "forecast-widget"

func main() {
	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Weather forecast widget",
		Long:          "Serves a city/day weather forecast widget, or renders one in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd(), newRenderCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newProvider builds the configured forecast provider with a shared client
// and rate limiter.
func newProvider(cfg *config.AppConfig) weather.Provider {
	httpCfg := providers.HTTPClientConfig{
		Client:  &http.Client{Timeout: cfg.HTTPTimeout},
		Backoff: providers.DefaultBackoff,
		Limiter: providers.NewLimiter(cfg.ProviderRPS, cfg.ProviderBurst),
	}

	if cfg.Provider == "darksky" {
		return providers.NewDarkSkyProvider(httpCfg, cfg.DarkSkyBaseURL, cfg.DarkSkyAPIKey)
	}
	return providers.NewOpenMeteoProvider(httpCfg, "").WithTimezone(cfg.Timezone)
}

// clockIn reads now in loc, so that day labels and formatted dates agree on
// which day it is.
func clockIn(loc *time.Location, now func() time.Time) func() time.Time {
	if loc == nil {
		return now
	}
	return func() time.Time { return now().In(loc) }
}
