package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/i474232898/forecast-widget/internal/config"
	"github.com/i474232898/forecast-widget/internal/format"
	"github.com/i474232898/forecast-widget/internal/logger"
	"github.com/i474232898/forecast-widget/internal/view"
	"github.com/i474232898/forecast-widget/internal/weather"
	"github.com/i474232898/forecast-widget/internal/widget"
)

type renderOptions struct {
	city    string
	day     int
	output  string
	timeout time.Duration
	now     func() time.Time
}

func newRenderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one widget to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.InitWriter(os.Stderr, serviceName, cfg.LogLevel)
			return render(cmd.Context(), cfg, newProvider(cfg), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.city, "city", "c", "", "City name from the city list (default: the first city)")
	cmd.Flags().IntVarP(&opts.day, "day", "d", 0, "Day offset from today, 0-7")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "Output format (html, json, table)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "How long to wait for the forecasts")

	return cmd
}

func render(ctx context.Context, cfg *config.AppConfig, provider weather.Provider, opts renderOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.day < 0 || opts.day >= weather.WindowDays {
		return fmt.Errorf("--day must be between 0 and %d", weather.WindowDays-1)
	}

	if opts.now == nil {
		opts.now = time.Now
	}

	f := format.Formatter{Location: cfg.Timezone}
	var binder *view.Binder
	switch opts.output {
	case "html", "json":
		binder = view.NewBinder(f)
	case "table":
		binder = view.NewTextBinder(f)
	default:
		return fmt.Errorf("unknown --output %q: use html, json or table", opts.output)
	}

	wopts := widget.Options{
		Provider:     provider,
		Binder:       binder,
		Cities:       cfg.Cities,
		FetchTimeout: opts.timeout,
		Now:          clockIn(cfg.Timezone, opts.now),
	}
	if opts.city != "" {
		city, ok := findCity(cfg.Cities, opts.city)
		if !ok {
			return fmt.Errorf("unknown city %q", opts.city)
		}
		wopts.InitialCity = &city.Location
	}

	w := widget.New(wopts)
	defer w.Close()

	if err := w.Start(ctx); err != nil {
		return err
	}
	if opts.day > 0 {
		day := w.Days()[opts.day]
		if err := w.Dispatch(ctx, widget.DaySelected{Timestamp: day.Timestamp}); err != nil {
			return err
		}
	}
	w.Wait()

	page := w.Page()
	switch opts.output {
	case "html":
		return view.WritePage(out, page)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	default:
		writeTable(out, page)
		return nil
	}
}

func findCity(cities []weather.CitySelector, name string) (weather.CitySelector, bool) {
	for _, c := range cities {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return weather.CitySelector{}, false
}

func writeTable(out io.Writer, page view.PageData) {
	var city string
	for _, c := range page.Cities {
		if c.Selected {
			city = c.Name
		}
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Day", city})
	table.SetAutoWrapText(false)

	for i, d := range page.Days {
		label := d.Label
		if d.Active {
			label = "> " + label
		}
		var slot view.Slot
		if i < len(page.Slots.Days) {
			slot = page.Slots.Days[i]
		}
		table.Append([]string{label, slotText(slot)})
	}
	table.Append([]string{"Week", slotText(page.Slots.Weekly)})
	table.Append([]string{"Selected", slotText(page.Slots.Primary)})

	table.Render()
}

func slotText(s view.Slot) string {
	switch s.State {
	case view.Visible:
		return s.Content
	case view.Failed:
		return "error: " + s.Error
	default:
		return "-"
	}
}
