package view

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/i474232898/forecast-widget/internal/format"
	"github.com/i474232898/forecast-widget/internal/weather"
)

var (
	//go:embed templates/forecast.html
	forecastTemplate string

	//go:embed templates/summary.html
	summaryTemplate string

	//go:embed templates/forecast.txt
	forecastText string

	//go:embed templates/summary.txt
	summaryText string
)

// ErrShortSeries marks day slots a weekly series had no record for.
var ErrShortSeries = errors.New("weekly series is shorter than the day list")

// SlotState is the display state of a slot.
type SlotState int

const (
	Hidden SlotState = iota
	Visible
	Failed
)

func (s SlotState) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Visible:
		return "visible"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("SlotState(%d)", int(s))
	}
}

func (s SlotState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Slot is a display region. Content is only replaced by a successful render;
// hiding or failing a slot keeps whatever it showed last.
type Slot struct {
	State   SlotState `json:"state"`
	Content string    `json:"content,omitempty"`
	Error   string    `json:"error,omitempty"`
}

func (s *Slot) hide() {
	s.State = Hidden
	s.Error = ""
}

func (s *Slot) show(content string) {
	s.State = Visible
	s.Content = content
	s.Error = ""
}

func (s *Slot) fail(err error) {
	s.State = Failed
	s.Error = err.Error()
}

// Surface holds every slot of one widget.
type Surface struct {
	mu      sync.RWMutex
	primary Slot
	weekly  Slot
	days    []Slot
}

// NewSurface returns a surface with n day slots, all hidden.
func NewSurface(n int) *Surface {
	return &Surface{days: make([]Slot, n)}
}

// SurfaceSnapshot is a copy of a Surface's slots.
type SurfaceSnapshot struct {
	Primary Slot   `json:"primary"`
	Weekly  Slot   `json:"weekly"`
	Days    []Slot `json:"days"`
}

// Snapshot returns a copy of the current slots.
func (s *Surface) Snapshot() SurfaceSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	days := make([]Slot, len(s.days))
	copy(days, s.days)
	return SurfaceSnapshot{Primary: s.primary, Weekly: s.weekly, Days: days}
}

// Binder renders records onto a Surface.
type Binder struct {
	Formatter format.Formatter

	forecast string
	summary  string
}

// NewBinder returns a binder using the embedded templates.
func NewBinder(f format.Formatter) *Binder {
	return &Binder{Formatter: f, forecast: forecastTemplate, summary: summaryTemplate}
}

// NewTextBinder returns a binder producing one-line plain text, for terminals.
func NewTextBinder(f format.Formatter) *Binder {
	return &Binder{Formatter: f, forecast: forecastText, summary: summaryText}
}

// NewBinderWithTemplates returns a binder using the given detailed and compact templates.
func NewBinderWithTemplates(f format.Formatter, forecast, summary string) *Binder {
	return &Binder{Formatter: f, forecast: forecast, summary: summary}
}

// HideForecast hides the primary slot.
func (b *Binder) HideForecast(s *Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.primary.hide()
}

// HideWeekly hides the weekly slot and every day slot.
func (b *Binder) HideWeekly(s *Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.weekly.hide()
	for i := range s.days {
		s.days[i].hide()
	}
}

// ShowForecast renders rec into the primary slot.
func (b *Binder) ShowForecast(s *Surface, rec weather.ForecastRecord) {
	content := Render(b.forecast, Fields(rec, b.Formatter))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.primary.show(content)
}

// ShowWeekly renders the overall icon and summary into the weekly slot and
// maps the series onto the day slots by position. Records beyond the day
// list are ignored; day slots without a record fail with ErrShortSeries.
func (b *Binder) ShowWeekly(s *Surface, wf weather.WeeklyForecast) {
	weekly := Render(b.summary, SummaryFields(wf.Icon, wf.Summary))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.weekly.show(weekly)
	for i := range s.days {
		if i >= len(wf.Daily) {
			s.days[i].fail(ErrShortSeries)
			continue
		}
		rec := wf.Daily[i]
		s.days[i].show(Render(b.summary, SummaryFields(rec.Icon(), rec.Summary())))
	}
}

// FailForecast moves the primary slot to Failed.
func (b *Binder) FailForecast(s *Surface, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.primary.fail(err)
}

// FailWeekly moves the weekly slot and every day slot to Failed.
func (b *Binder) FailWeekly(s *Surface, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.weekly.fail(err)
	for i := range s.days {
		s.days[i].fail(err)
	}
}
