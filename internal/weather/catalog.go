package weather

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WindowDays is the number of entries in the day list: today and the
// seven days after it. Weekly series are expected to be at least this long.
const WindowDays = 8

// DefaultCities returns the fixed city list with the first entry selected.
func DefaultCities() []CitySelector {
	return []CitySelector{
		{Name: "Tbilisi", Location: Location{Latitude: 41.693630, Longitude: 44.801620}, Selected: true},
		{Name: "Yerevan", Location: Location{Latitude: 40.173970, Longitude: 44.502750}},
		{Name: "Moscow", Location: Location{Latitude: 55.755871, Longitude: 37.617680}},
	}
}

// ParseCities parses "Name:lat:lon,Name:lat:lon" into a city list. The first
// city is selected.
func ParseCities(s string) ([]CitySelector, error) {
	var cities []CitySelector
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("city %q: expected name:lat:lon", entry)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("city %q: invalid latitude: %w", entry, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("city %q: invalid longitude: %w", entry, err)
		}

		cities = append(cities, CitySelector{
			Name:     strings.TrimSpace(parts[0]),
			Location: Location{Latitude: lat, Longitude: lon},
		})
	}

	if len(cities) == 0 {
		return nil, fmt.Errorf("no cities configured")
	}
	cities[0].Selected = true
	return cities, nil
}

// BuildDays returns the day list for the window starting at now: each entry
// keeps now's time of day and is labelled "<day of month> / <weekday>".
// The first entry is active.
func BuildDays(now time.Time) []DaySelector {
	days := make([]DaySelector, 0, WindowDays)
	for i := 0; i < WindowDays; i++ {
		d := now.AddDate(0, 0, i)
		days = append(days, DaySelector{
			Timestamp: d.Round(time.Second).Unix(),
			Label:     fmt.Sprintf("%d / %s", d.Day(), d.Weekday()),
			Active:    i == 0,
		})
	}
	return days
}
