package widget

import "github.com/i474232898/forecast-widget/internal/weather"

// Command is an input event for a Controller.
type Command interface {
	command()
}

// DaySelected activates the day entry with the given timestamp.
type DaySelected struct {
	Timestamp int64
}

// CitySelected selects the city entry at the given location.
type CitySelected struct {
	Location weather.Location
}

// NearestCityResolved selects the city entry at Index, as resolved from the
// visitor's position.
type NearestCityResolved struct {
	Index int
}

func (DaySelected) command()         {}
func (CitySelected) command()        {}
func (NearestCityResolved) command() {}

// NearestIndex returns the index of the smallest distance, the lowest index
// on a tie, or -1 for an empty slice.
func NearestIndex(distances []float64) int {
	best := -1
	for i, d := range distances {
		if best == -1 || d < distances[best] {
			best = i
		}
	}
	return best
}
