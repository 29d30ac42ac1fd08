package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/forecast-widget/internal/weather"
	"github.com/sony/gobreaker"
)

const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

var openMeteoDaily = []string{
	"weathercode",
	"temperature_2m_max",
	"temperature_2m_min",
	"sunrise",
	"sunset",
	"precipitation_probability_max",
	"windspeed_10m_max",
}

// OpenMeteoProvider implements weather.Provider for Open-Meteo. Its daily
// arrays are reshaped into DarkSky-style records so that the same templates
// work for both providers.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker

	// timezone is sent as Open-Meteo's timezone parameter. Daily times in
	// the response are local midnights of that zone.
	timezone string
}

func NewOpenMeteoProvider(httpCfg HTTPClientConfig, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	if httpCfg.Backoff == (BackoffConfig{}) {
		httpCfg.Backoff = DefaultBackoff
	}

	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  baseURL,
		httpCfg:  httpCfg,
		circuit:  newBreaker("openmeteo"),
		timezone: "auto",
	}
}

// WithTimezone makes the provider's days start at midnight in loc, so the
// weekly series lines up with a day list built in the same zone. Zones
// without an IANA name keep Open-Meteo's per-city "auto" zone.
func (p *OpenMeteoProvider) WithTimezone(loc *time.Location) *OpenMeteoProvider {
	if loc != nil && loc != time.Local && loc.String() != "Local" {
		p.timezone = loc.String()
	}
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoResponse struct {
	Daily struct {
		Time         []int64   `json:"time"`
		WeatherCode  []int     `json:"weathercode"`
		TempMax      []float64 `json:"temperature_2m_max"`
		TempMin      []float64 `json:"temperature_2m_min"`
		Sunrise      []int64   `json:"sunrise"`
		Sunset       []int64   `json:"sunset"`
		PrecipProb   []float64 `json:"precipitation_probability_max"`
		WindSpeedMax []float64 `json:"windspeed_10m_max"`
	} `json:"daily"`
}

// FetchDaily returns the record of the local day containing the instant
// day. The local zone is not known before the response arrives, so the
// request spans the UTC date of day and its neighbours.
func (p *OpenMeteoProvider) FetchDaily(ctx context.Context, loc weather.Location, day int64) (weather.ForecastRecord, error) {
	utc := time.Unix(day, 0).UTC()
	from := utc.AddDate(0, 0, -1).Format(time.DateOnly)
	to := utc.AddDate(0, 0, 1).Format(time.DateOnly)

	payload, err := p.fetch(ctx, loc, url.Values{"start_date": {from}, "end_date": {to}})
	if err != nil {
		return nil, err
	}

	rec, ok := payload.recordAt(day)
	if !ok {
		return nil, fmt.Errorf("openmeteo daily %s %s: %w", loc.Key(), utc.Format(time.DateOnly), weather.ErrEmptySeries)
	}
	return rec, nil
}

func (p *OpenMeteoProvider) FetchWeekly(ctx context.Context, loc weather.Location) (weather.WeeklyForecast, error) {
	payload, err := p.fetch(ctx, loc, url.Values{"forecast_days": {strconv.Itoa(weather.WindowDays)}})
	if err != nil {
		return weather.WeeklyForecast{}, err
	}

	records := payload.records()
	if len(records) == 0 {
		return weather.WeeklyForecast{}, fmt.Errorf("openmeteo weekly %s: %w", loc.Key(), weather.ErrEmptySeries)
	}

	icon, summary := weather.AggregateWeek(records)
	return weather.WeeklyForecast{Icon: icon, Summary: summary, Daily: records}, nil
}

func (p *OpenMeteoProvider) fetch(ctx context.Context, loc weather.Location, extra url.Values) (openMeteoResponse, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
		values.Set("daily", strings.Join(openMeteoDaily, ","))
		values.Set("timeformat", "unixtime")
		values.Set("timezone", p.timezone)
		for k, v := range extra {
			values[k] = v
		}

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return openMeteoResponse{}, fmt.Errorf("openmeteo %s: %w", loc.Key(), err)
	}
	defer resp.Body.Close()

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return openMeteoResponse{}, fmt.Errorf("openmeteo %s: decode body: %w", loc.Key(), err)
	}
	return payload, nil
}

// recordAt returns the record whose day contains the instant ts. A day ends
// where the next one starts, or 24 hours later for the last record.
func (r openMeteoResponse) recordAt(ts int64) (weather.ForecastRecord, bool) {
	starts := r.Daily.Time
	for i, start := range starts {
		end := start + 24*60*60
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		if start <= ts && ts < end {
			return r.records()[i], true
		}
	}
	return nil, false
}

// records zips the column arrays into one record per day. Columns shorter
// than Time leave their field out of the affected records.
func (r openMeteoResponse) records() []weather.ForecastRecord {
	d := r.Daily
	out := make([]weather.ForecastRecord, 0, len(d.Time))

	for i, ts := range d.Time {
		rec := weather.ForecastRecord{"time": ts}

		if i < len(d.WeatherCode) {
			rec["icon"] = openMeteoIcon(d.WeatherCode[i])
			rec["summary"] = openMeteoSummary(d.WeatherCode[i])
		}
		if i < len(d.TempMax) {
			rec["temperatureHigh"] = d.TempMax[i]
		}
		if i < len(d.TempMin) {
			rec["temperatureLow"] = d.TempMin[i]
		}
		if i < len(d.Sunrise) {
			rec["sunriseTime"] = d.Sunrise[i]
		}
		if i < len(d.Sunset) {
			rec["sunsetTime"] = d.Sunset[i]
		}
		if i < len(d.PrecipProb) {
			rec["precipProbability"] = d.PrecipProb[i] / 100
		}
		if i < len(d.WindSpeedMax) {
			// km/h to m/s, matching units=si of the DarkSky provider.
			rec["windSpeed"] = math.Round(d.WindSpeedMax[i]/3.6*100) / 100
		}

		out = append(out, rec)
	}
	return out
}

// openMeteoIcon maps WMO weather codes onto DarkSky icon names.
func openMeteoIcon(code int) string {
	switch {
	case code == 0:
		return "clear-day"
	case code == 1 || code == 2:
		return "partly-cloudy-day"
	case code == 3:
		return "cloudy"
	case code == 45 || code == 48:
		return "fog"
	case code == 66 || code == 67:
		return "sleet"
	case (code >= 51 && code <= 65) || (code >= 80 && code <= 82):
		return "rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "snow"
	case code >= 95:
		return "thunderstorm"
	default:
		return "cloudy"
	}
}

func openMeteoSummary(code int) string {
	switch {
	case code == 0:
		return "Clear sky"
	case code == 1:
		return "Mainly clear"
	case code == 2:
		return "Partly cloudy"
	case code == 3:
		return "Overcast"
	case code == 45 || code == 48:
		return "Fog"
	case code >= 51 && code <= 57:
		return "Drizzle"
	case code == 66 || code == 67:
		return "Freezing rain"
	case (code >= 61 && code <= 65) || (code >= 80 && code <= 82):
		return "Rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "Snow"
	case code >= 95:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}
