package httpserver

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Clark-Hu/readlog/internal/analytics"
)

const (
	dateLayout    = "2006-01-02"
	maxCoverBytes = 800 << 10 // decoded
)

var (
	errTitleAuthorRequired = errors.New("title and author are required")
	errTitleRequired       = errors.New("title is required")
	errDateOrder           = errors.New("endDate must not be before startDate")
)

func validateRating(rating float64, scale analytics.RatingScale) error {
	if rating == 0 || scale.Allows(rating) {
		return nil
	}
	return fmt.Errorf("rating must be 0 or one of {%s}", strings.Join(scale.Labels(), ", "))
}

// validateDates accepts empty dates; when both are set the end may not
// precede the start.
func validateDates(start, end string) error {
	var startAt, endAt time.Time
	var err error
	if start != "" {
		if startAt, err = time.Parse(dateLayout, start); err != nil {
			return fmt.Errorf("startDate must follow YYYY-MM-DD format")
		}
	}
	if end != "" {
		if endAt, err = time.Parse(dateLayout, end); err != nil {
			return fmt.Errorf("endDate must follow YYYY-MM-DD format")
		}
	}
	if start != "" && end != "" && endAt.Before(startAt) {
		return errDateOrder
	}
	return nil
}

// validateCover checks that cover is an inline base64 image no larger than
// maxCoverBytes once decoded.
func validateCover(cover *string) error {
	if cover == nil {
		return nil
	}
	meta, payload, ok := strings.Cut(*cover, ",")
	if !ok || !strings.HasPrefix(meta, "data:image/") || !strings.HasSuffix(meta, ";base64") {
		return fmt.Errorf("cover must be a base64 data:image URL")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxCoverBytes+2 {
		return fmt.Errorf("cover must not exceed %d KiB", maxCoverBytes>>10)
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("cover is not valid base64")
	}
	if len(decoded) > maxCoverBytes {
		return fmt.Errorf("cover must not exceed %d KiB", maxCoverBytes>>10)
	}
	return nil
}

func validateLink(link *string) error {
	if link == nil {
		return nil
	}
	u, err := url.Parse(*link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("link must be an absolute http(s) URL")
	}
	return nil
}
