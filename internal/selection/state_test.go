package selection

import (
	"testing"

	"github.com/i474232898/forecast-widget/internal/weather"
)

var (
	tbilisi = weather.Location{Latitude: 41.69363, Longitude: 44.80162}
	yerevan = weather.Location{Latitude: 40.17397, Longitude: 44.50275}
)

func TestStateStartsFullySet(t *testing.T) {
	s := New(tbilisi, 1700000000)

	cur := s.Current()
	if cur.City != tbilisi || cur.Day != 1700000000 {
		t.Fatalf("unexpected initial snapshot: %+v", cur)
	}
}

func TestSettersAreAssignments(t *testing.T) {
	s := New(tbilisi, 1)
	s.SetCity(yerevan)
	s.SetDay(2)

	cur := s.Current()
	if cur.City != yerevan {
		t.Errorf("city = %+v, want %+v", cur.City, yerevan)
	}
	if cur.Day != 2 {
		t.Errorf("day = %d, want 2", cur.Day)
	}
}

func TestSnapshotTags(t *testing.T) {
	testCases := []struct {
		desc      string
		mutate    func(s *State)
		wantDaily bool
		wantCity  bool
	}{
		{desc: "no change keeps both tags current", mutate: func(*State) {}, wantDaily: true, wantCity: true},
		{desc: "day change only invalidates daily", mutate: func(s *State) { s.SetDay(5) }, wantDaily: false, wantCity: true},
		{desc: "city change invalidates both", mutate: func(s *State) { s.SetCity(yerevan) }, wantDaily: false, wantCity: false},
		{
			desc:      "returning to the same city is still a new selection",
			mutate:    func(s *State) { s.SetCity(yerevan); s.SetCity(tbilisi) },
			wantDaily: false,
			wantCity:  false,
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			s := New(tbilisi, 1)
			issued := s.Current()

			tC.mutate(s)

			now := s.Current()
			if got := issued.SameDaily(now); got != tC.wantDaily {
				t.Errorf("SameDaily = %v, want %v", got, tC.wantDaily)
			}
			if got := issued.SameCity(now); got != tC.wantCity {
				t.Errorf("SameCity = %v, want %v", got, tC.wantCity)
			}
		})
	}
}
