package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/forecast-widget/internal/weather"
)

var tbilisi = weather.Location{Latitude: 41.69363, Longitude: 44.80162}

func testHTTPConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Client: &http.Client{Timeout: 2 * time.Second},
		Backoff: BackoffConfig{
			MaxRetries:      2,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
		},
	}
}

func TestDarkSkyFetchDaily(t *testing.T) {
	var gotPath, gotExclude, gotUnits string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotExclude = r.URL.Query().Get("exclude")
		gotUnits = r.URL.Query().Get("units")
		w.Write([]byte(`{"daily":{"data":[{"time":1700000000,"summary":"Clear","icon":"clear-day","sunriseTime":1700020000,"temperatureHigh":12.5}]}}`))
	}))
	defer srv.Close()

	p := NewDarkSkyProvider(testHTTPConfig(), srv.URL, "secret")
	rec, err := p.FetchDaily(context.Background(), tbilisi, 1700000000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/secret/41.69363,44.80162,1700000000" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotExclude != "currently,flags,hourly" || gotUnits != "si" {
		t.Errorf("unexpected query: exclude=%q units=%q", gotExclude, gotUnits)
	}
	if rec.Summary() != "Clear" || rec.Icon() != "clear-day" {
		t.Errorf("unexpected record %v", rec)
	}
	if got := rec.String("temperatureHigh"); got != "12.5" {
		t.Errorf("temperatureHigh = %q, want 12.5", got)
	}
	if v, ok := rec.Epoch("sunriseTime"); !ok || v != 1700020000 {
		t.Errorf("sunriseTime = %d, %v", v, ok)
	}
}

func TestDarkSkyFetchWeekly(t *testing.T) {
	var gotPath, gotExclude string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotExclude = r.URL.Query().Get("exclude")
		w.Write([]byte(`{"daily":{"icon":"rain","summary":"Rain all week.","data":[
			{"time":1,"icon":"rain","summary":"Rain"},
			{"time":2,"icon":"snow","summary":"Snow"}
		]}}`))
	}))
	defer srv.Close()

	p := NewDarkSkyProvider(testHTTPConfig(), srv.URL, "secret")
	wf, err := p.FetchWeekly(context.Background(), tbilisi)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/secret/41.69363,44.80162" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotExclude != "currently,minutely,hourly" {
		t.Errorf("unexpected exclude %q", gotExclude)
	}
	if wf.Icon != "rain" || wf.Summary != "Rain all week." {
		t.Errorf("unexpected overall %q %q", wf.Icon, wf.Summary)
	}
	if len(wf.Daily) != 2 || wf.Daily[0].Icon() != "rain" || wf.Daily[1].Icon() != "snow" {
		t.Errorf("series order not preserved: %v", wf.Daily)
	}
}

func TestDarkSkyErrors(t *testing.T) {
	t.Run("empty series", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"daily":{"data":[]}}`))
		}))
		defer srv.Close()

		p := NewDarkSkyProvider(testHTTPConfig(), srv.URL, "secret")
		if _, err := p.FetchDaily(context.Background(), tbilisi, 1); !errors.Is(err, weather.ErrEmptySeries) {
			t.Errorf("expected ErrEmptySeries, got %v", err)
		}
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		p := NewDarkSkyProvider(testHTTPConfig(), srv.URL, "secret")
		_, err := p.FetchWeekly(context.Background(), tbilisi)
		if !errors.Is(err, errUnexpected) {
			t.Errorf("expected errUnexpected, got %v", err)
		}
		if n := atomic.LoadInt32(&calls); n != 1 {
			t.Errorf("expected a single call, got %d", n)
		}
	})

	t.Run("server errors are retried", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte(`{"daily":{"data":[{"time":1}]}}`))
		}))
		defer srv.Close()

		p := NewDarkSkyProvider(testHTTPConfig(), srv.URL, "secret")
		if _, err := p.FetchDaily(context.Background(), tbilisi, 1); err != nil {
			t.Errorf("expected success after retries, got %v", err)
		}
		if n := atomic.LoadInt32(&calls); n != 3 {
			t.Errorf("expected 3 calls, got %d", n)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		p := NewDarkSkyProvider(testHTTPConfig(), "http://127.0.0.1:1", "")
		if _, err := p.FetchDaily(context.Background(), tbilisi, 1); err == nil {
			t.Error("expected an error without api key")
		}
	})
}

func TestRateLimiterIsHonoured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"daily":{"data":[{"time":1}]}}`))
	}))
	defer srv.Close()

	cfg := testHTTPConfig()
	cfg.Limiter = NewLimiter(0.001, 1)
	p := NewDarkSkyProvider(cfg, srv.URL, "secret")

	if _, err := p.FetchDaily(context.Background(), tbilisi, 1); err != nil {
		t.Fatalf("first call should use the burst: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.FetchDaily(ctx, tbilisi, 1); err == nil {
		t.Fatal("expected the second call to be throttled")
	}

	if NewLimiter(0, 5) != nil {
		t.Error("expected no limiter for non-positive rps")
	}
}
