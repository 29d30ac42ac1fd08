package weather

import "testing"

func TestAggregateWeek(t *testing.T) {
	testCases := []struct {
		desc        string
		daily       []ForecastRecord
		wantIcon    string
		wantSummary string
	}{
		{
			desc: "empty series",
		},
		{
			desc: "majority icon and summary with temperature range",
			daily: []ForecastRecord{
				{"icon": "rain", "summary": "Rain", "temperatureLow": 3.2, "temperatureHigh": 9.6},
				{"icon": "clear-day", "summary": "Clear", "temperatureLow": 1.4, "temperatureHigh": 12.0},
				{"icon": "rain", "summary": "Rain", "temperatureLow": 4.0, "temperatureHigh": 8.0},
			},
			wantIcon:    "rain",
			wantSummary: "Rain through the week, temperatures from 1°C to 12°C.",
		},
		{
			desc: "a tie keeps the earliest value",
			daily: []ForecastRecord{
				{"icon": "cloudy", "summary": "Overcast"},
				{"icon": "snow", "summary": "Snow"},
			},
			wantIcon:    "cloudy",
			wantSummary: "Overcast",
		},
		{
			desc: "temperatures without summaries",
			daily: []ForecastRecord{
				{"temperatureLow": -2.0, "temperatureHigh": 4.4},
			},
			wantSummary: "Temperatures from -2°C to 4°C.",
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			icon, summary := AggregateWeek(tC.daily)
			if icon != tC.wantIcon {
				t.Errorf("icon = %q, want %q", icon, tC.wantIcon)
			}
			if summary != tC.wantSummary {
				t.Errorf("summary = %q, want %q", summary, tC.wantSummary)
			}
		})
	}
}
