// Package widget wires selection changes to forecast fetches and renders
// their results onto the widget's slots.
package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/i474232898/forecast-widget/internal/selection"
	"github.com/i474232898/forecast-widget/internal/view"
	"github.com/i474232898/forecast-widget/internal/weather"
)

var (
	ErrUnknownDay   = errors.New("unknown day")
	ErrUnknownCity  = errors.New("unknown city")
	ErrUnknownIndex = errors.New("city index out of range")
	ErrNotStarted   = errors.New("widget not started")
	ErrClosed       = errors.New("widget closed")
)

// Options configures a Controller.
type Options struct {
	Provider weather.Provider
	Binder   *view.Binder

	// Cities is the city list; exactly one entry should be selected.
	// Defaults to weather.DefaultCities.
	Cities []weather.CitySelector

	// InitialCity, when it matches an entry of Cities, replaces the
	// default selection at Start.
	InitialCity *weather.Location

	// FetchTimeout bounds each provider call. Zero means no limit.
	FetchTimeout time.Duration

	// OnCityChange is called with the newly selected city after a city
	// change. It runs on the dispatching goroutine once the controller lock
	// is released, so fetch completions are not held up by it.
	OnCityChange func(ctx context.Context, city weather.CitySelector)

	Now    func() time.Time
	Logger *slog.Logger
}

// Controller owns one widget: its lists, its selection state and its slots.
// Commands are applied one at a time.
type Controller struct {
	opts Options
	log  *slog.Logger

	mu         sync.Mutex
	started    bool
	closed     bool
	listBuilds int
	days       []weather.DaySelector
	cities     []weather.CitySelector
	state      *selection.State
	surface    *view.Surface

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a controller that does nothing until Start is called.
func New(opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.Cities) == 0 {
		opts.Cities = weather.DefaultCities()
	}

	base, cancel := context.WithCancel(context.Background())
	return &Controller{
		opts:   opts,
		log:    opts.Logger.With("component", "widget"),
		base:   base,
		cancel: cancel,
	}
}

// Start builds the day and city lists, selects the initial city and day and
// issues both fetches. Later calls are no-ops.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.started {
		return nil
	}
	if c.opts.Provider == nil || c.opts.Binder == nil {
		return errors.New("widget: provider and binder are required")
	}

	c.days = weather.BuildDays(c.opts.Now())
	c.cities = make([]weather.CitySelector, len(c.opts.Cities))
	copy(c.cities, c.opts.Cities)
	c.listBuilds++

	selected := 0
	for i, city := range c.cities {
		if city.Selected {
			selected = i
			break
		}
	}
	if c.opts.InitialCity != nil {
		if i := c.cityIndex(*c.opts.InitialCity); i >= 0 {
			selected = i
		} else {
			c.log.WarnContext(ctx, "initial city is not in the city list", "city", c.opts.InitialCity.Key())
		}
	}
	c.markCity(selected)

	c.state = selection.New(c.cities[selected].Location, c.days[0].Timestamp)
	c.surface = view.NewSurface(len(c.days))
	c.started = true

	c.log.InfoContext(ctx, "widget started",
		"city", c.cities[selected].Name,
		"provider", c.opts.Provider.Name(),
	)

	c.fetchDaily(ctx)
	c.fetchWeekly(ctx)
	return nil
}

// Dispatch applies cmd to the widget.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) error {
	changed, err := c.apply(ctx, cmd)
	if err != nil {
		return err
	}
	if changed != nil && c.opts.OnCityChange != nil {
		c.opts.OnCityChange(ctx, *changed)
	}
	return nil
}

// apply runs cmd under the controller lock and returns the newly selected
// city when cmd changed it.
func (c *Controller) apply(ctx context.Context, cmd Command) (*weather.CitySelector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if !c.started {
		return nil, ErrNotStarted
	}

	switch cmd := cmd.(type) {
	case DaySelected:
		return nil, c.selectDay(ctx, cmd.Timestamp)
	case CitySelected:
		i := c.cityIndex(cmd.Location)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCity, cmd.Location.Key())
		}
		return c.selectCity(ctx, i), nil
	case NearestCityResolved:
		if cmd.Index < 0 || cmd.Index >= len(c.cities) {
			return nil, fmt.Errorf("%w: %d", ErrUnknownIndex, cmd.Index)
		}
		return c.selectCity(ctx, cmd.Index), nil
	default:
		return nil, fmt.Errorf("widget: unsupported command %T", cmd)
	}
}

func (c *Controller) selectDay(ctx context.Context, ts int64) error {
	idx := -1
	for i, d := range c.days {
		if d.Timestamp == ts {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownDay, ts)
	}

	for i := range c.days {
		c.days[i].Active = i == idx
	}
	c.state.SetDay(ts)
	c.fetchDaily(ctx)
	return nil
}

func (c *Controller) selectCity(ctx context.Context, idx int) *weather.CitySelector {
	c.markCity(idx)
	c.state.SetCity(c.cities[idx].Location)

	c.fetchDaily(ctx)
	c.fetchWeekly(ctx)

	city := c.cities[idx]
	return &city
}

func (c *Controller) markCity(idx int) {
	for i := range c.cities {
		c.cities[i].Selected = i == idx
	}
}

func (c *Controller) cityIndex(loc weather.Location) int {
	for i, city := range c.cities {
		if city.Location == loc {
			return i
		}
	}
	return -1
}

// fetchContext detaches ctx from its caller's cancellation, keeping its
// values, and ties it to the controller's lifetime and the fetch timeout.
func (c *Controller) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	var (
		fctx   context.Context
		cancel context.CancelFunc
	)
	if c.opts.FetchTimeout > 0 {
		fctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), c.opts.FetchTimeout)
	} else {
		fctx, cancel = context.WithCancel(context.WithoutCancel(ctx))
	}

	stop := context.AfterFunc(c.base, cancel)
	return fctx, func() {
		stop()
		cancel()
	}
}

// fetchDaily must be called with c.mu held.
func (c *Controller) fetchDaily(ctx context.Context) {
	tag := c.state.Current()
	c.opts.Binder.HideForecast(c.surface)

	fctx, cancel := c.fetchContext(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		rec, err := c.opts.Provider.FetchDaily(fctx, tag.City, tag.Day)

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.closed {
			return
		}
		if !tag.SameDaily(c.state.Current()) {
			c.log.DebugContext(ctx, "discarding stale daily forecast", "city", tag.City.Key(), "day", tag.Day)
			return
		}
		if err != nil {
			c.log.WarnContext(ctx, "daily forecast failed", "city", tag.City.Key(), "day", tag.Day, "error", err)
			c.opts.Binder.FailForecast(c.surface, err)
			return
		}
		c.opts.Binder.ShowForecast(c.surface, rec)
	}()
}

// fetchWeekly must be called with c.mu held.
func (c *Controller) fetchWeekly(ctx context.Context) {
	tag := c.state.Current()
	c.opts.Binder.HideWeekly(c.surface)

	fctx, cancel := c.fetchContext(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		wf, err := c.opts.Provider.FetchWeekly(fctx, tag.City)

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.closed {
			return
		}
		if !tag.SameCity(c.state.Current()) {
			c.log.DebugContext(ctx, "discarding stale weekly forecast", "city", tag.City.Key())
			return
		}
		if err != nil {
			c.log.WarnContext(ctx, "weekly forecast failed", "city", tag.City.Key(), "error", err)
			c.opts.Binder.FailWeekly(c.surface, err)
			return
		}
		if len(wf.Daily) < len(c.days) {
			c.log.WarnContext(ctx, "weekly forecast is short", "city", tag.City.Key(), "records", len(wf.Daily))
		}
		c.opts.Binder.ShowWeekly(c.surface, wf)
	}()
}

// Wait blocks until every fetch issued so far has completed.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight fetches and waits for them. Later commands fail
// with ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// Days returns a copy of the day list.
func (c *Controller) Days() []weather.DaySelector {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]weather.DaySelector, len(c.days))
	copy(out, c.days)
	return out
}

// Cities returns a copy of the city list.
func (c *Controller) Cities() []weather.CitySelector {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]weather.CitySelector, len(c.cities))
	copy(out, c.cities)
	return out
}

// Current returns the selection, or the zero snapshot before Start.
func (c *Controller) Current() selection.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == nil {
		return selection.Snapshot{}
	}
	return c.state.Current()
}

// Surface returns a copy of the widget's slots.
func (c *Controller) Surface() view.SurfaceSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.surface == nil {
		return view.SurfaceSnapshot{}
	}
	return c.surface.Snapshot()
}

// Page returns everything needed to render the widget page.
func (c *Controller) Page() view.PageData {
	c.mu.Lock()
	defer c.mu.Unlock()

	page := view.PageData{
		Cities: make([]weather.CitySelector, len(c.cities)),
		Days:   make([]weather.DaySelector, len(c.days)),
	}
	copy(page.Cities, c.cities)
	copy(page.Days, c.days)
	if c.surface != nil {
		page.Slots = c.surface.Snapshot()
	}
	return page
}

// ListBuilds reports how many times the day and city lists were built.
func (c *Controller) ListBuilds() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.listBuilds
}
