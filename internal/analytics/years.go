package analytics

import (
	"sort"
	"time"

	"github.com/Clark-Hu/readlog/internal/domain"
)

// AvailableYears lists every year a review was finished in, plus the current
// year, newest first.
func AvailableYears(records []domain.Review, now time.Time) []int {
	seen := map[int]struct{}{now.Year(): {}}
	for i := range records {
		if y, ok := endYear(records[i].EndDate); ok {
			seen[y] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// ResolveYear picks the year to report on: the requested one when it has
// data, otherwise the current year.
func ResolveYear(requested *int, available []int, now time.Time) int {
	if requested == nil {
		return now.Year()
	}
	for _, y := range available {
		if y == *requested {
			return y
		}
	}
	return now.Year()
}
