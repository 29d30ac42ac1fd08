package weather

import (
	"encoding/json"
	"strconv"
)

// Location is a pair of coordinates a forecast can be requested for.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// Key returns the canonical "lat,lon" form used in provider URLs and logs.
func (l Location) Key() string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

// CitySelector is one entry of the fixed city list.
type CitySelector struct {
	Name     string   `json:"name"`
	Location Location `json:"location"`
	Selected bool     `json:"selected"`
}

// DaySelector is one entry of the day list. Timestamp is epoch seconds.
type DaySelector struct {
	Timestamp int64  `json:"timestamp"`
	Label     string `json:"label"`
	Active    bool   `json:"active"`
}

// ForecastRecord is one day's weather as returned by a provider: a flat
// mapping of field names to values. Keys ending in "Time" hold epoch
// seconds for a time of day, "time" holds the epoch seconds of the day
// itself. Everything else is passed through to the view untouched.
type ForecastRecord map[string]any

// Icon returns the record's icon code, if any.
func (r ForecastRecord) Icon() string {
	return r.String("icon")
}

// Summary returns the record's human readable summary, if any.
func (r ForecastRecord) Summary() string {
	return r.String("summary")
}

// String returns the textual value of key, or "" when the key is absent.
func (r ForecastRecord) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	return Text(v)
}

// Epoch returns the value of key as epoch seconds.
func (r ForecastRecord) Epoch(key string) (int64, bool) {
	return Int64(r[key])
}

// WeeklyForecast is the multi-day series plus its overall icon and summary.
// Daily is in provider order, which is taken to be chronological and is
// mapped positionally onto the day list.
type WeeklyForecast struct {
	Icon    string           `json:"icon"`
	Summary string           `json:"summary"`
	Daily   []ForecastRecord `json:"data"`
}

// Text renders a decoded JSON value without scientific notation or
// trailing zeros, so that 1700000000 stays 1700000000.
func Text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Int64 converts a decoded JSON value holding a number into int64.
// Fractional epochs are truncated.
func Int64(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return int64(f), true
	case float64:
		return int64(t), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
