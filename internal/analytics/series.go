package analytics

import (
	"sort"
	"strings"

	"github.com/Clark-Hu/readlog/internal/domain"
)

// MonthLabels are the x-axis labels for the monthly and trend series.
var MonthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// GenreCount is one slice of the genre distribution.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// YearSeries holds the chart datasets for a single calendar year.
type YearSeries struct {
	MonthlyCounts   [12]int      `json:"monthlyCounts"`
	RatingBuckets   []int        `json:"ratingBuckets"`
	RatingLabels    []string     `json:"ratingLabels"`
	GenreCounts     []GenreCount `json:"genreCounts"`
	CumulativeTrend [12]int      `json:"cumulativeTrend"`
}

// Total is the number of reviews finished in the year.
func (s YearSeries) Total() int {
	return s.CumulativeTrend[11]
}

// Series computes the year-scoped datasets. Reviews without a parsable end
// date, or finished in another year, are excluded entirely.
func Series(records []domain.Review, year int, scale RatingScale) YearSeries {
	scale = scale.orDefault()
	series := YearSeries{
		RatingBuckets: make([]int, scale.Buckets()),
		RatingLabels:  scale.Labels(),
	}

	genres := newGenreCounter()
	for i := range records {
		r := &records[i]
		end, ok := parseDate(r.EndDate)
		if !ok || end.Year() != year {
			continue
		}
		series.MonthlyCounts[end.Month()-1]++
		if idx, ok := scale.Bucket(ratingValue(r.Rating)); ok {
			series.RatingBuckets[idx]++
		}
		genres.add(r.Genre)
	}

	running := 0
	for m, n := range series.MonthlyCounts {
		running += n
		series.CumulativeTrend[m] = running
	}
	series.GenreCounts = genres.sorted()
	return series
}

type genreCounter struct {
	counts map[string]int
}

func newGenreCounter() *genreCounter {
	return &genreCounter{counts: make(map[string]int)}
}

func (g *genreCounter) add(genre string) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return
	}
	g.counts[genre]++
}

// sorted orders by count descending, then genre ascending.
func (g *genreCounter) sorted() []GenreCount {
	out := make([]GenreCount, 0, len(g.counts))
	for genre, n := range g.counts {
		out = append(out, GenreCount{Genre: genre, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Genre < out[j].Genre
	})
	return out
}

func (g *genreCounter) top() (string, bool) {
	sorted := g.sorted()
	if len(sorted) == 0 {
		return "", false
	}
	return sorted[0].Genre, true
}
