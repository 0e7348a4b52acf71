// Package analytics turns a snapshot of review records into reading
// statistics and chart-ready series. Every function is pure: inputs are
// never mutated and malformed fields are treated as absent rather than
// reported as errors.
package analytics

import (
	"time"

	"github.com/Clark-Hu/readlog/internal/domain"
)

// Options controls a Compute call. The zero value reports on the current
// year with the half-star scale and the default goal.
type Options struct {
	Year  *int
	Scale RatingScale
	Goal  int
	Now   time.Time
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// Report is the full analytics payload for one user and year.
type Report struct {
	LifetimeStats
	Year int `json:"year"`
	YearSeries
	AvailableYears []int        `json:"availableYears"`
	Goal           GoalProgress `json:"goal"`
}

// Compute builds the complete report in a single pass per section.
func Compute(records []domain.Review, opts Options) Report {
	now := opts.now()
	years := AvailableYears(records, now)
	year := ResolveYear(opts.Year, years, now)
	series := Series(records, year, opts.Scale)

	return Report{
		LifetimeStats:  Lifetime(records),
		Year:           year,
		YearSeries:     series,
		AvailableYears: years,
		Goal:           progressFor(series.Total(), opts.Goal),
	}
}
