// Package format turns epoch seconds into the strings shown in forecast panels.
package format

import "time"

const (
	clockLayout = "15:04"
	dateLayout  = "1/2/2006"
)

// Formatter formats epochs in a fixed time zone. The zero value uses time.Local.
type Formatter struct {
	Location *time.Location
}

// Clock returns the zero-padded 24-hour "HH:MM" time of epoch.
func (f Formatter) Clock(epoch int64) string {
	return time.Unix(epoch, 0).In(f.location()).Format(clockLayout)
}

// CalendarDate returns the calendar date of epoch as "M/D/YYYY".
func (f Formatter) CalendarDate(epoch int64) string {
	return time.Unix(epoch, 0).In(f.location()).Format(dateLayout)
}

func (f Formatter) location() *time.Location {
	if f.Location == nil {
		return time.Local
	}
	return f.Location
}

// FormatClock formats epoch as "HH:MM" in the local time zone.
func FormatClock(epoch int64) string {
	return Formatter{}.Clock(epoch)
}

// FormatCalendarDate formats epoch as a calendar date in the local time zone.
func FormatCalendarDate(epoch int64) string {
	return Formatter{}.CalendarDate(epoch)
}
