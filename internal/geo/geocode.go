package geo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	geogolang "github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/openstreetmap"
	"github.com/kelvins/geocoder"

	"github.com/i474232898/forecast-widget/internal/weather"
)

// ErrNotFound is returned when an address cannot be geocoded.
var ErrNotFound = errors.New("address not found")

// Geocoder turns a free-form address into coordinates.
type Geocoder interface {
	Locate(ctx context.Context, address string) (weather.Location, error)
}

// NewGeocoder returns the Google geocoder when apiKey is set and the
// OpenStreetMap one otherwise.
func NewGeocoder(apiKey string) Geocoder {
	if apiKey != "" {
		return NewGoogleGeocoder(apiKey)
	}
	return NewOpenStreetMapGeocoder()
}

type osmGeocoder struct {
	geocoder geogolang.Geocoder
}

func NewOpenStreetMapGeocoder() Geocoder {
	return &osmGeocoder{geocoder: openstreetmap.Geocoder()}
}

func (g *osmGeocoder) Locate(ctx context.Context, address string) (weather.Location, error) {
	if err := ctx.Err(); err != nil {
		return weather.Location{}, err
	}

	location, err := g.geocoder.Geocode(address)
	if err != nil {
		return weather.Location{}, fmt.Errorf("openstreetmap geocode %q: %w", address, err)
	}
	if location == nil {
		return weather.Location{}, fmt.Errorf("openstreetmap geocode %q: %w", address, ErrNotFound)
	}

	return weather.Location{Latitude: location.Lat, Longitude: location.Lng}, nil
}

// kelvins/geocoder keeps its key in a package variable.
var googleKeyMu sync.Mutex

type googleGeocoder struct {
	apiKey string
}

func NewGoogleGeocoder(apiKey string) Geocoder {
	return &googleGeocoder{apiKey: apiKey}
}

func (g *googleGeocoder) Locate(ctx context.Context, address string) (weather.Location, error) {
	if err := ctx.Err(); err != nil {
		return weather.Location{}, err
	}

	googleKeyMu.Lock()
	geocoder.ApiKey = g.apiKey
	location, err := geocoder.Geocoding(geocoder.Address{Street: address})
	googleKeyMu.Unlock()

	if err != nil {
		return weather.Location{}, fmt.Errorf("google geocode %q: %w", address, err)
	}
	if location.Latitude == 0 && location.Longitude == 0 {
		return weather.Location{}, fmt.Errorf("google geocode %q: %w", address, ErrNotFound)
	}

	return weather.Location{Latitude: location.Latitude, Longitude: location.Longitude}, nil
}
