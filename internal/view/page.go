package view

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/i474232898/forecast-widget/internal/weather"
)

//go:embed templates/page.html
var pageSource string

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

// PageData is everything the page shell shows for one widget.
type PageData struct {
	Cities []weather.CitySelector `json:"cities"`
	Days   []weather.DaySelector  `json:"days"`
	Slots  SurfaceSnapshot        `json:"slots"`
}

type pageSlot struct {
	State   string
	Content template.HTML
	Error   string
}

type pageSlots struct {
	Primary pageSlot
	Weekly  pageSlot
	Days    []pageSlot
}

func toPageSlot(s Slot) pageSlot {
	// Slot content was produced by Render, which escapes every value.
	return pageSlot{State: s.State.String(), Content: template.HTML(s.Content), Error: s.Error}
}

// WritePage renders the full widget page to w.
func WritePage(w io.Writer, data PageData) error {
	slots := pageSlots{
		Primary: toPageSlot(data.Slots.Primary),
		Weekly:  toPageSlot(data.Slots.Weekly),
		Days:    make([]pageSlot, len(data.Days)),
	}
	for i := range slots.Days {
		if i < len(data.Slots.Days) {
			slots.Days[i] = toPageSlot(data.Slots.Days[i])
		} else {
			slots.Days[i] = pageSlot{State: Hidden.String()}
		}
	}

	err := pageTemplate.Execute(w, struct {
		Cities []weather.CitySelector
		Days   []weather.DaySelector
		Slots  pageSlots
	}{data.Cities, data.Days, slots})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
