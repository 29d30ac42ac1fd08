package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/forecast-widget/internal/config"
	"github.com/i474232898/forecast-widget/internal/weather"
)

type cannedProvider struct {
	weeklyErr error
}

func (cannedProvider) Name() string { return "canned" }

func (cannedProvider) FetchDaily(_ context.Context, loc weather.Location, day int64) (weather.ForecastRecord, error) {
	return weather.ForecastRecord{
		"time":            day,
		"summary":         "Clear at " + loc.Key(),
		"temperatureLow":  3,
		"temperatureHigh": 11,
	}, nil
}

func (p cannedProvider) FetchWeekly(_ context.Context, _ weather.Location) (weather.WeeklyForecast, error) {
	if p.weeklyErr != nil {
		return weather.WeeklyForecast{}, p.weeklyErr
	}
	wf := weather.WeeklyForecast{Icon: "clear-day", Summary: "Dry week"}
	for i := 0; i < weather.WindowDays; i++ {
		wf.Daily = append(wf.Daily, weather.ForecastRecord{"icon": "clear-day", "summary": "Sunny"})
	}
	return wf, nil
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{Timezone: time.UTC, Cities: weather.DefaultCities()}
}

func TestRenderTable(t *testing.T) {
	var out bytes.Buffer
	err := render(context.Background(), testConfig(), cannedProvider{}, renderOptions{city: "yerevan", output: "table", timeout: time.Second}, &out)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	table := out.String()
	for _, want := range []string{"YEREVAN", "Dry week [clear-day]", "Sunny [clear-day]", "Clear at 40.17397,44.50275"} {
		if !strings.Contains(table, want) {
			t.Errorf("table is missing %q:\n%s", want, table)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	var out bytes.Buffer
	err := render(context.Background(), testConfig(), cannedProvider{weeklyErr: errors.New("quota exceeded")}, renderOptions{day: 3, output: "json", timeout: time.Second}, &out)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var page struct {
		Days []weather.DaySelector `json:"days"`
		Slots struct {
			Primary struct{ State string } `json:"primary"`
			Weekly  struct {
				State string
				Error string
			} `json:"weekly"`
		} `json:"slots"`
	}
	if err := json.Unmarshal(out.Bytes(), &page); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if !page.Days[3].Active || page.Days[0].Active {
		t.Errorf("day 3 should be active: %+v", page.Days)
	}
	if page.Slots.Primary.State != "visible" {
		t.Errorf("primary state = %q", page.Slots.Primary.State)
	}
	if page.Slots.Weekly.State != "failed" || page.Slots.Weekly.Error != "quota exceeded" {
		t.Errorf("unexpected weekly slot %+v", page.Slots.Weekly)
	}
}

func TestRenderHTML(t *testing.T) {
	var out bytes.Buffer
	if err := render(context.Background(), testConfig(), cannedProvider{}, renderOptions{output: "html", timeout: time.Second}, &out); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.String(), "<!DOCTYPE html>") || !strings.Contains(out.String(), "Clear at 41.69363,44.80162") {
		t.Errorf("unexpected page:\n%s", out.String())
	}
}

func TestRenderLabelsDaysInWidgetTimezone(t *testing.T) {
	zone, err := time.LoadLocation("Asia/Tbilisi")
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.Timezone = zone

	// 22:00 UTC on Oct 17 is already Oct 18 in Tbilisi.
	now := func() time.Time { return time.Date(2026, 10, 17, 22, 0, 0, 0, time.UTC) }

	var out bytes.Buffer
	if err := render(context.Background(), cfg, cannedProvider{}, renderOptions{output: "json", timeout: time.Second, now: now}, &out); err != nil {
		t.Fatalf("render: %v", err)
	}

	var page struct {
		Days  []weather.DaySelector `json:"days"`
		Slots struct {
			Primary struct{ Content string } `json:"primary"`
		} `json:"slots"`
	}
	if err := json.Unmarshal(out.Bytes(), &page); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if page.Days[0].Label != "18 / Sunday" {
		t.Errorf("first day label = %q, want %q", page.Days[0].Label, "18 / Sunday")
	}
	if !strings.Contains(page.Slots.Primary.Content, "10/18/2026") {
		t.Errorf("primary panel should show 10/18/2026, got %q", page.Slots.Primary.Content)
	}
}

func TestRenderRejectsBadFlags(t *testing.T) {
	testCases := []struct {
		desc string
		opts renderOptions
	}{
		{desc: "unknown city", opts: renderOptions{city: "Atlantis", output: "table"}},
		{desc: "day out of range", opts: renderOptions{day: 8, output: "table"}},
		{desc: "unknown output", opts: renderOptions{output: "yaml"}},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			if err := render(context.Background(), testConfig(), cannedProvider{}, tC.opts, &bytes.Buffer{}); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
