// Package selection holds the city/day pair that drives everything a widget renders.
package selection

import (
	"sync"

	"github.com/i474232898/forecast-widget/internal/weather"
)

// Snapshot is a copy of the selection at one point in time. The revisions
// change on every write to their field and serve as request tags: a
// response issued under a snapshot is only current while the revisions it
// depends on are unchanged.
type Snapshot struct {
	City    weather.Location `json:"city"`
	Day     int64            `json:"day"`
	CityRev uint64           `json:"-"`
	DayRev  uint64           `json:"-"`
}

// SameDaily reports whether a daily forecast issued under s is still current at now.
func (s Snapshot) SameDaily(now Snapshot) bool {
	return s.CityRev == now.CityRev && s.DayRev == now.DayRev
}

// SameCity reports whether a weekly forecast issued under s is still current at now.
func (s Snapshot) SameCity(now Snapshot) bool {
	return s.CityRev == now.CityRev
}

// State is the single source of truth for the selected city and day.
// Setters are plain assignments; they neither validate nor notify.
type State struct {
	mu   sync.RWMutex
	snap Snapshot
}

// New returns a state with both fields already set.
func New(city weather.Location, day int64) *State {
	return &State{snap: Snapshot{City: city, Day: day}}
}

func (s *State) SetCity(city weather.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.City = city
	s.snap.CityRev++
}

func (s *State) SetDay(day int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Day = day
	s.snap.DayRev++
}

func (s *State) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snap
}
