// Package view renders forecast records into the widget's display slots.
package view

import (
	"html"
	"sort"
	"strings"

	"github.com/i474232898/forecast-widget/internal/format"
	"github.com/i474232898/forecast-widget/internal/weather"
)

// FieldMap holds the display string for each placeholder key.
type FieldMap map[string]string

// Render substitutes the first "%key%" of tmpl for every key in fields.
// Later occurrences of the same placeholder and placeholders without a field
// are left as they are. Values are HTML-escaped.
func Render(tmpl string, fields FieldMap) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := tmpl
	for _, k := range keys {
		out = strings.Replace(out, "%"+k+"%", html.EscapeString(fields[k]), 1)
	}
	return out
}

// Fields converts a record into display strings. Keys ending in "Time" are
// shown as a clock time, "time" as a calendar date, and everything else as
// text. A time field that is not a number is kept as text.
func Fields(rec weather.ForecastRecord, f format.Formatter) FieldMap {
	fields := make(FieldMap, len(rec))
	for k, v := range rec {
		switch {
		case k == "time":
			if epoch, ok := weather.Int64(v); ok {
				fields[k] = f.CalendarDate(epoch)
				continue
			}
		case strings.HasSuffix(k, "Time"):
			if epoch, ok := weather.Int64(v); ok {
				fields[k] = f.Clock(epoch)
				continue
			}
		}
		fields[k] = weather.Text(v)
	}
	return fields
}

// SummaryFields is the icon and summary pair used by the compact template.
func SummaryFields(icon, summary string) FieldMap {
	return FieldMap{"icon": icon, "summary": summary}
}
