package weather

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBuildDays(t *testing.T) {
	now := time.Date(2026, 10, 17, 14, 30, 0, 0, time.UTC) // a Saturday
	days := BuildDays(now)

	if len(days) != WindowDays {
		t.Fatalf("expected %d days, got %d", WindowDays, len(days))
	}

	active := 0
	for i, d := range days {
		if d.Active {
			active++
			if i != 0 {
				t.Errorf("day %d is active, expected only today", i)
			}
		}

		want := now.AddDate(0, 0, i).Unix()
		if d.Timestamp != want {
			t.Errorf("day %d timestamp = %d, want %d", i, d.Timestamp, want)
		}
	}
	if active != 1 {
		t.Errorf("expected exactly one active day, got %d", active)
	}

	if days[0].Label != "17 / Saturday" {
		t.Errorf("unexpected first label %q", days[0].Label)
	}
	if days[7].Label != "24 / Saturday" {
		t.Errorf("unexpected last label %q", days[7].Label)
	}
}

func TestParseCities(t *testing.T) {
	cities, err := ParseCities("Tbilisi:41.693630:44.801620, Yerevan:40.173970:44.502750")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cities) != 2 {
		t.Fatalf("expected 2 cities, got %d", len(cities))
	}
	if !cities[0].Selected || cities[1].Selected {
		t.Errorf("expected only the first city to be selected: %+v", cities)
	}
	if cities[1].Name != "Yerevan" || cities[1].Location.Latitude != 40.17397 {
		t.Errorf("unexpected second city: %+v", cities[1])
	}

	for _, bad := range []string{"", "Tbilisi", "Tbilisi:abc:44", "Tbilisi:41:xyz"} {
		if _, err := ParseCities(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestDefaultCities(t *testing.T) {
	cities := DefaultCities()
	if len(cities) != 3 || cities[0].Name != "Tbilisi" || cities[1].Name != "Yerevan" || cities[2].Name != "Moscow" {
		t.Fatalf("unexpected default cities: %+v", cities)
	}
	if !cities[0].Selected {
		t.Errorf("expected Tbilisi to be preselected")
	}
}

func TestRecordAccessors(t *testing.T) {
	r := ForecastRecord{
		"icon":        "rain",
		"summary":     "Light rain",
		"time":        json.Number("1700000000"),
		"sunriseTime": 1700020000.0,
		"pressure":    json.Number("1013.25"),
	}

	if r.Icon() != "rain" || r.Summary() != "Light rain" {
		t.Errorf("unexpected icon/summary: %q %q", r.Icon(), r.Summary())
	}
	if v, ok := r.Epoch("time"); !ok || v != 1700000000 {
		t.Errorf("Epoch(time) = %d, %v", v, ok)
	}
	if v, ok := r.Epoch("sunriseTime"); !ok || v != 1700020000 {
		t.Errorf("Epoch(sunriseTime) = %d, %v", v, ok)
	}
	if got := r.String("pressure"); got != "1013.25" {
		t.Errorf("String(pressure) = %q", got)
	}
	if got := r.String("missing"); got != "" {
		t.Errorf("String(missing) = %q", got)
	}
	if got := Text(1700000000.0); got != "1700000000" {
		t.Errorf("Text kept scientific notation: %q", got)
	}
}
