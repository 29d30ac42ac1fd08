package httpapi

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"github.com/i474232898/forecast-widget/internal/geo"
	"github.com/i474232898/forecast-widget/internal/selection"
	"github.com/i474232898/forecast-widget/internal/store"
	"github.com/i474232898/forecast-widget/internal/view"
	"github.com/i474232898/forecast-widget/internal/weather"
	"github.com/i474232898/forecast-widget/internal/widget"
)

var validate = validator.New()

const (
	sessionCookie = "widget_session"
	widgetLocal   = "widget"
)

// Handlers serves one widget per visitor session.
type Handlers struct {
	Sessions *store.MemoryStore

	// NewWidget builds the widget for a new session. It is started by the caller.
	NewWidget func(ctx context.Context, sessionID string) (*widget.Controller, error)

	Matrix   geo.DistanceMatrix
	Geocoder geo.Geocoder

	// WaitTimeout bounds ?wait=true and the nearest city lookup.
	WaitTimeout time.Duration
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, h *Handlers) {
	if h.Matrix == nil {
		h.Matrix = geo.GreatCircle{}
	}
	if h.WaitTimeout <= 0 {
		h.WaitTimeout = 30 * time.Second
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "forecast-widget",
			"sessions": h.Sessions.Len(),
		})
	})

	app.Get("/", h.session, h.page)

	v1 := app.Group("/api/v1/widget", h.session)
	v1.Get("/", h.state)
	v1.Post("/day", h.selectDay)
	v1.Post("/city", h.selectCity)
	v1.Post("/locate", h.locate)
}

// session resolves the visitor's widget from the session cookie, creating
// and starting a new one when the cookie is missing or unknown.
func (h *Handlers) session(c *fiber.Ctx) error {
	// The cookie value aliases fiber's request buffer; the id outlives the request.
	id := utils.CopyString(c.Cookies(sessionCookie))
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	ctx := c.UserContext()
	w, created, err := h.Sessions.GetOrCreate(id, func() (*widget.Controller, error) {
		w, err := h.NewWidget(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := w.Start(ctx); err != nil {
			w.Close()
			return nil, err
		}
		return w, nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create widget", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create widget")
	}

	if created {
		c.Cookie(&fiber.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}

	c.Locals(widgetLocal, w)
	return c.Next()
}

func widgetOf(c *fiber.Ctx) *widget.Controller {
	return c.Locals(widgetLocal).(*widget.Controller)
}

// widgetResponse is the JSON view of a widget.
type widgetResponse struct {
	Cities    []weather.CitySelector `json:"cities"`
	Days      []weather.DaySelector  `json:"days"`
	Selection selection.Snapshot     `json:"selection"`
	Slots     view.SurfaceSnapshot   `json:"slots"`
}

func (h *Handlers) respond(c *fiber.Ctx, w *widget.Controller) error {
	if c.QueryBool("wait") {
		h.wait(c.UserContext(), w)
	}

	page := w.Page()
	return c.JSON(widgetResponse{
		Cities:    page.Cities,
		Days:      page.Days,
		Selection: w.Current(),
		Slots:     page.Slots,
	})
}

// wait blocks until w has no fetch in flight or WaitTimeout elapses.
func (h *Handlers) wait(ctx context.Context, w *widget.Controller) {
	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()

	timer := time.NewTimer(h.WaitTimeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		slog.WarnContext(ctx, "gave up waiting for forecasts", "timeout", h.WaitTimeout)
	}
}

func (h *Handlers) page(c *fiber.Ctx) error {
	w := widgetOf(c)
	if c.QueryBool("wait") {
		h.wait(c.UserContext(), w)
	}

	var buf bytes.Buffer
	if err := view.WritePage(&buf, w.Page()); err != nil {
		return err
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *Handlers) state(c *fiber.Ctx) error {
	return h.respond(c, widgetOf(c))
}

type dayRequest struct {
	Timestamp int64 `json:"timestamp" validate:"required,gt=0"`
}

func (h *Handlers) selectDay(c *fiber.Ctx) error {
	var req dayRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	w := widgetOf(c)
	if err := w.Dispatch(c.UserContext(), widget.DaySelected{Timestamp: req.Timestamp}); err != nil {
		return dispatchError(err)
	}
	return h.respond(c, w)
}

// cityRequest uses pointers so that 0 is a valid coordinate.
type cityRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

func (h *Handlers) selectCity(c *fiber.Ctx) error {
	var req cityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	loc := weather.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	w := widgetOf(c)
	if err := w.Dispatch(c.UserContext(), widget.CitySelected{Location: loc}); err != nil {
		return dispatchError(err)
	}
	return h.respond(c, w)
}

type locateRequest struct {
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	Address   string   `json:"address" validate:"omitempty,max=256"`
}

// locate selects the city nearest to the visitor's coordinates or address.
func (h *Handlers) locate(c *fiber.Ctx) error {
	var req locateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.WaitTimeout)
	defer cancel()

	var origin weather.Location
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		origin = weather.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	case req.Address != "":
		if h.Geocoder == nil {
			return fiber.NewError(fiber.StatusNotImplemented, "address lookup is not configured")
		}
		loc, err := h.Geocoder.Locate(ctx, req.Address)
		if errors.Is(err, geo.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "address not found")
		}
		if err != nil {
			slog.WarnContext(ctx, "geocoding failed", "error", err)
			return fiber.NewError(fiber.StatusBadGateway, "failed to geocode address")
		}
		origin = loc
	default:
		return fiber.NewError(fiber.StatusBadRequest, "latitude and longitude, or address, are required")
	}

	w := widgetOf(c)
	idx, err := geo.Nearest(ctx, h.Matrix, origin, w.Cities())
	if errors.Is(err, geo.ErrNoRoute) {
		return fiber.NewError(fiber.StatusNotFound, "no city is reachable from this location")
	}
	if err != nil {
		slog.WarnContext(ctx, "distance lookup failed", "error", err)
		return fiber.NewError(fiber.StatusBadGateway, "failed to measure distances")
	}

	if err := w.Dispatch(c.UserContext(), widget.NearestCityResolved{Index: idx}); err != nil {
		return dispatchError(err)
	}
	return h.respond(c, w)
}

func bindAndValidate(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func dispatchError(err error) error {
	switch {
	case errors.Is(err, widget.ErrUnknownDay),
		errors.Is(err, widget.ErrUnknownCity),
		errors.Is(err, widget.ErrUnknownIndex):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, widget.ErrClosed):
		return fiber.NewError(fiber.StatusGone, "session expired")
	default:
		return err
	}
}
