// Package export renders a reader's journal into portable formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Clark-Hu/readlog/internal/domain"
)

// Header is the first row of every CSV export.
var Header = []string{"Title", "Author", "Genre", "Rating", "Started", "Finished", "Quote", "Review"}

// ContentType is the media type served for CSV exports.
const ContentType = "text/csv; charset=utf-8"

// Filename names an export produced at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("reading_journal_export_%s.csv", now.Format("2006-01-02"))
}

// WriteReviews writes one row per review, in the order given.
func WriteReviews(w io.Writer, reviews []domain.Review) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range reviews {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(r domain.Review) []string {
	return []string{
		r.Title,
		r.Author,
		r.Genre,
		formatRating(r.Rating),
		r.StartDate,
		r.EndDate,
		r.Quote,
		flatten(r.Body),
	}
}

func formatRating(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func flatten(s string) string {
	return newlines.Replace(s)
}
