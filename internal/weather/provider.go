package weather

import (
	"context"
	"errors"
)

// ErrEmptySeries is returned when a provider answers without any daily record.
var ErrEmptySeries = errors.New("forecast response has no daily records")

// Provider abstracts a forecast source (e.g. a DarkSky-compatible API, Open-Meteo).
type Provider interface {
	Name() string
	// FetchDaily returns the single record covering day (epoch seconds) at loc.
	FetchDaily(ctx context.Context, loc Location, day int64) (ForecastRecord, error)
	// FetchWeekly returns the multi-day series at loc, independent of any day.
	FetchWeekly(ctx context.Context, loc Location) (WeeklyForecast, error)
}
