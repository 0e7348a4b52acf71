package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RatingScale describes the rating domain a journal uses. Two schemas exist
// in stored data: half stars (0.5 to 5) and whole stars (1 to 5).
type RatingScale struct {
	Name string
	Min  float64
	Max  float64
	Step float64
}

var (
	// HalfStar maps 0.5 -> bucket 0 ... 5.0 -> bucket 9.
	HalfStar = RatingScale{Name: "half", Min: 0.5, Max: 5, Step: 0.5}
	// WholeStar maps 1 -> bucket 0 ... 5 -> bucket 4.
	WholeStar = RatingScale{Name: "whole", Min: 1, Max: 5, Step: 1}
)

// ParseScale resolves a scale by name. An empty name selects HalfStar.
func ParseScale(name string) (RatingScale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", HalfStar.Name:
		return HalfStar, nil
	case WholeStar.Name:
		return WholeStar, nil
	default:
		return RatingScale{}, fmt.Errorf("unknown rating scale %q", name)
	}
}

func (s RatingScale) orDefault() RatingScale {
	if s.Step <= 0 || s.Max < s.Min {
		return HalfStar
	}
	return s
}

// Buckets returns the number of distribution slots for the scale.
func (s RatingScale) Buckets() int {
	s = s.orDefault()
	return int(math.Round((s.Max-s.Min)/s.Step)) + 1
}

// Bucket maps a rating to its distribution slot. Ratings outside the
// domain (including NaN) report ok=false. Half steps round to the nearest
// slot; whole-star scales drop ratings that fall between whole numbers.
func (s RatingScale) Bucket(rating float64) (int, bool) {
	s = s.orDefault()
	if math.IsNaN(rating) || rating < s.Min || rating > s.Max {
		return 0, false
	}
	if s.Step >= 1 && !s.onStep(rating) {
		return 0, false
	}
	idx := int(math.Round(rating/s.Step)) - int(math.Round(s.Min/s.Step))
	if idx < 0 || idx >= s.Buckets() {
		return 0, false
	}
	return idx, true
}

// Labels returns the display label of every bucket, lowest first.
func (s RatingScale) Labels() []string {
	s = s.orDefault()
	n := s.Buckets()
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		labels[i] = strconv.FormatFloat(s.Min+float64(i)*s.Step, 'f', -1, 64)
	}
	return labels
}

// Allows reports whether a rating is a value the scale can record:
// inside the domain and on a step boundary.
func (s RatingScale) Allows(rating float64) bool {
	s = s.orDefault()
	if math.IsNaN(rating) || rating < s.Min || rating > s.Max {
		return false
	}
	return s.onStep(rating)
}

func (s RatingScale) onStep(rating float64) bool {
	steps := rating / s.Step
	return math.Abs(steps-math.Round(steps)) < 1e-9
}
