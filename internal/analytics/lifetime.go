package analytics

import (
	"math"
	"strconv"

	"github.com/Clark-Hu/readlog/internal/domain"
)

// NoGenre is reported as the top genre when no review names one.
const NoGenre = "-"

// OneDecimal is a value rounded to one decimal place. It always renders with
// exactly one fractional digit, so zero encodes as 0.0.
type OneDecimal float64

// RoundOneDecimal rounds half away from zero.
func RoundOneDecimal(v float64) OneDecimal {
	return OneDecimal(math.Round(v*10) / 10)
}

func (d OneDecimal) String() string {
	return strconv.FormatFloat(float64(d), 'f', 1, 64)
}

// MarshalJSON renders the value as a JSON number with one decimal.
func (d OneDecimal) MarshalJSON() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts any JSON number.
func (d *OneDecimal) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*d = OneDecimal(v)
	return nil
}

// LifetimeStats summarises every review regardless of year.
type LifetimeStats struct {
	TotalBooks       int        `json:"totalBooks"`
	AverageRating    OneDecimal `json:"averageRating"`
	TotalReadingDays int        `json:"totalReadingDays"`
	TopGenre         string     `json:"topGenre"`
}

// Lifetime computes the all-time statistics.
//
// Unrated reviews count as 0 and stay in the denominator. Reading days sum
// each review's inclusive span, so overlapping reads count twice.
func Lifetime(records []domain.Review) LifetimeStats {
	stats := LifetimeStats{
		TotalBooks: len(records),
		TopGenre:   NoGenre,
	}
	if len(records) == 0 {
		return stats
	}

	var total float64
	genres := newGenreCounter()
	for i := range records {
		r := &records[i]
		total += ratingValue(r.Rating)
		if days, ok := readingDays(r.StartDate, r.EndDate); ok {
			stats.TotalReadingDays += days
		}
		genres.add(r.Genre)
	}

	stats.AverageRating = RoundOneDecimal(total / float64(len(records)))
	if top, ok := genres.top(); ok {
		stats.TopGenre = top
	}
	return stats
}

func ratingValue(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
