package analytics

import (
	"math"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseDate accepts the date shapes found in stored reviews. Anything else
// is reported as absent. Offsets are kept so the calendar date is the one
// the reader wrote.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// endYear returns the calendar year a review was finished in.
func endYear(endDate string) (int, bool) {
	t, ok := parseDate(endDate)
	if !ok {
		return 0, false
	}
	return t.Year(), true
}

// readingDays counts start and end inclusively. Partial days round up.
func readingDays(startDate, endDate string) (int, bool) {
	start, ok := parseDate(startDate)
	if !ok {
		return 0, false
	}
	end, ok := parseDate(endDate)
	if !ok {
		return 0, false
	}
	diff := int(math.Ceil(end.Sub(start).Hours() / 24))
	if diff < 0 {
		return 0, false
	}
	return diff + 1, true
}
