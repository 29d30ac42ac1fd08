package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/forecast-widget/internal/weather"
	"github.com/sony/gobreaker"
)

// DefaultDarkSkyURL points at Pirate Weather, which keeps the DarkSky API shape.
const DefaultDarkSkyURL = "https://api.pirateweather.net/forecast"

var (
	dailyExclude  = []string{"currently", "flags", "hourly"}
	weeklyExclude = []string{"currently", "minutely", "hourly"}
)

// DarkSkyProvider implements weather.Provider for DarkSky-compatible APIs.
type DarkSkyProvider struct {
	name    string
	apiKey  string
	baseURL string
	units   string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewDarkSkyProvider(httpCfg HTTPClientConfig, baseURL, apiKey string) *DarkSkyProvider {
	if baseURL == "" {
		baseURL = DefaultDarkSkyURL
	}
	if httpCfg.Backoff == (BackoffConfig{}) {
		httpCfg.Backoff = DefaultBackoff
	}

	return &DarkSkyProvider{
		name:    "darksky",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		units:   "si",
		httpCfg: httpCfg,
		circuit: newBreaker("darksky"),
	}
}

func (p *DarkSkyProvider) Name() string {
	return p.name
}

type darkSkyResponse struct {
	Daily struct {
		Icon    string                   `json:"icon"`
		Summary string                   `json:"summary"`
		Data    []weather.ForecastRecord `json:"data"`
	} `json:"daily"`
}

func (p *DarkSkyProvider) FetchDaily(ctx context.Context, loc weather.Location, day int64) (weather.ForecastRecord, error) {
	point := loc.Key() + "," + strconv.FormatInt(day, 10)

	payload, err := p.fetch(ctx, point, dailyExclude)
	if err != nil {
		return nil, err
	}
	if len(payload.Daily.Data) == 0 {
		return nil, fmt.Errorf("darksky daily %s: %w", point, weather.ErrEmptySeries)
	}

	return payload.Daily.Data[0], nil
}

func (p *DarkSkyProvider) FetchWeekly(ctx context.Context, loc weather.Location) (weather.WeeklyForecast, error) {
	payload, err := p.fetch(ctx, loc.Key(), weeklyExclude)
	if err != nil {
		return weather.WeeklyForecast{}, err
	}
	if len(payload.Daily.Data) == 0 {
		return weather.WeeklyForecast{}, fmt.Errorf("darksky weekly %s: %w", loc.Key(), weather.ErrEmptySeries)
	}

	return weather.WeeklyForecast{
		Icon:    payload.Daily.Icon,
		Summary: payload.Daily.Summary,
		Daily:   payload.Daily.Data,
	}, nil
}

func (p *DarkSkyProvider) fetch(ctx context.Context, point string, exclude []string) (darkSkyResponse, error) {
	if p.apiKey == "" {
		return darkSkyResponse{}, fmt.Errorf("darksky api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("exclude", strings.Join(exclude, ","))
		values.Set("units", p.units)

		u := fmt.Sprintf("%s/%s/%s?%s", p.baseURL, url.PathEscape(p.apiKey), point, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return darkSkyResponse{}, fmt.Errorf("darksky %s: %w", point, err)
	}
	defer resp.Body.Close()

	var payload darkSkyResponse
	if err := decodeJSON(resp.Body, &payload); err != nil {
		return darkSkyResponse{}, fmt.Errorf("darksky %s: %w", point, err)
	}
	return payload, nil
}
