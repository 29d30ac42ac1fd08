// Package geo resolves a visitor's position to the nearest city of the widget.
package geo

import (
	"context"
	"errors"
	"fmt"
	"math"

	"googlemaps.github.io/maps"

	"github.com/i474232898/forecast-widget/internal/weather"
	"github.com/i474232898/forecast-widget/internal/widget"
)

// ErrNoRoute is returned when no city can be reached from the origin.
var ErrNoRoute = errors.New("no city is reachable from origin")

// DistanceMatrix measures the distance from origin to each destination.
// Unreachable destinations get +Inf.
type DistanceMatrix interface {
	Distances(ctx context.Context, origin weather.Location, destinations []weather.Location) ([]float64, error)
}

const earthRadiusMeters = 6371000.0

// GreatCircle returns haversine distances in meters. It needs no network access.
type GreatCircle struct{}

func (GreatCircle) Distances(_ context.Context, origin weather.Location, destinations []weather.Location) ([]float64, error) {
	out := make([]float64, len(destinations))
	for i, d := range destinations {
		out[i] = haversine(origin, d)
	}
	return out, nil
}

func haversine(a, b weather.Location) float64 {
	lat1, lat2 := radians(a.Latitude), radians(b.Latitude)
	dLat := lat2 - lat1
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// GoogleMatrix returns driving distances in meters from the Google Distance Matrix API.
type GoogleMatrix struct {
	client *maps.Client
}

func NewGoogleMatrix(apiKey string) (*GoogleMatrix, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("google maps client: %w", err)
	}
	return &GoogleMatrix{client: client}, nil
}

func (g *GoogleMatrix) Distances(ctx context.Context, origin weather.Location, destinations []weather.Location) ([]float64, error) {
	if len(destinations) == 0 {
		return nil, nil
	}

	req := &maps.DistanceMatrixRequest{
		Origins:      []string{origin.Key()},
		Destinations: make([]string, len(destinations)),
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsMetric,
	}
	for i, d := range destinations {
		req.Destinations[i] = d.Key()
	}

	resp, err := g.client.DistanceMatrix(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("distance matrix: %w", err)
	}
	if len(resp.Rows) == 0 {
		return nil, fmt.Errorf("distance matrix: empty response")
	}

	out := make([]float64, len(destinations))
	elements := resp.Rows[0].Elements
	for i := range out {
		out[i] = math.Inf(1)
		if i < len(elements) && elements[i] != nil && elements[i].Status == "OK" {
			out[i] = float64(elements[i].Distance.Meters)
		}
	}
	return out, nil
}

// Nearest returns the index of the city closest to origin.
func Nearest(ctx context.Context, matrix DistanceMatrix, origin weather.Location, cities []weather.CitySelector) (int, error) {
	destinations := make([]weather.Location, len(cities))
	for i, c := range cities {
		destinations[i] = c.Location
	}

	distances, err := matrix.Distances(ctx, origin, destinations)
	if err != nil {
		return -1, err
	}
	if len(distances) != len(cities) {
		return -1, fmt.Errorf("distance matrix returned %d distances for %d cities", len(distances), len(cities))
	}

	idx := widget.NearestIndex(distances)
	if idx < 0 || math.IsInf(distances[idx], 1) {
		return -1, ErrNoRoute
	}
	return idx, nil
}
