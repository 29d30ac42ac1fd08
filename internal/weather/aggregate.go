package weather

import (
	"fmt"
	"math"
	"strconv"
)

// AggregateWeek derives an overall icon and summary for a daily series from
// providers that do not report one. The icon and summary are the ones seen
// on most days (earliest wins a tie); the summary is completed with the
// temperature range of the week when the records carry one.
func AggregateWeek(daily []ForecastRecord) (icon, summary string) {
	if len(daily) == 0 {
		return "", ""
	}

	iconCounts := make(map[string]int)
	summaryCounts := make(map[string]int)
	var (
		bestIcon, bestSummary string
		iconBest, summaryBest int
		low, high             = math.Inf(1), math.Inf(-1)
	)

	for _, r := range daily {
		if ic := r.Icon(); ic != "" {
			iconCounts[ic]++
			if iconCounts[ic] > iconBest {
				iconBest = iconCounts[ic]
				bestIcon = ic
			}
		}
		if s := r.Summary(); s != "" {
			summaryCounts[s]++
			if summaryCounts[s] > summaryBest {
				summaryBest = summaryCounts[s]
				bestSummary = s
			}
		}

		if v, ok := number(r["temperatureLow"]); ok && v < low {
			low = v
		}
		if v, ok := number(r["temperatureHigh"]); ok && v > high {
			high = v
		}
	}

	summary = bestSummary
	if !math.IsInf(low, 1) && !math.IsInf(high, -1) {
		rng := fmt.Sprintf("temperatures from %s°C to %s°C", round(low), round(high))
		if summary == "" {
			summary = capitalize(rng) + "."
		} else {
			summary = fmt.Sprintf("%s through the week, %s.", summary, rng)
		}
	}

	return bestIcon, summary
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	default:
		f, err := strconv.ParseFloat(Text(v), 64)
		return f, err == nil
	}
}

func round(v float64) string {
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
