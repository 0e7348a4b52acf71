package analytics

import (
	"math"
	"testing"

	"github.com/Clark-Hu/readlog/internal/domain"
)

func TestRatingScaleBucket(t *testing.T) {
	tests := []struct {
		scale  RatingScale
		rating float64
		want   int
		ok     bool
	}{
		{HalfStar, 0.5, 0, true},
		{HalfStar, 1, 1, true},
		{HalfStar, 4.5, 8, true},
		{HalfStar, 5, 9, true},
		{HalfStar, 0.4, 0, false},
		{HalfStar, 5.1, 0, false},
		{HalfStar, math.NaN(), 0, false},
		{WholeStar, 1, 0, true},
		{WholeStar, 4.5, 0, false},
		{WholeStar, 2.4, 0, false},
		{WholeStar, 3, 2, true},
		{WholeStar, 5, 4, true},
		{WholeStar, 0.5, 0, false},
	}
	for _, tt := range tests {
		got, ok := tt.scale.Bucket(tt.rating)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Fatalf("%s.Bucket(%v) = (%d, %v), want (%d, %v)", tt.scale.Name, tt.rating, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRatingScaleAllows(t *testing.T) {
	valid := []float64{0.5, 1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0, 4.5, 5.0}
	for _, rating := range valid {
		if !HalfStar.Allows(rating) {
			t.Fatalf("rating %v should be allowed on the half-star scale", rating)
		}
	}
	for _, rating := range []float64{0, 0.25, 3.7, 5.5} {
		if HalfStar.Allows(rating) {
			t.Fatalf("rating %v should not be allowed on the half-star scale", rating)
		}
	}
	if WholeStar.Allows(3.5) {
		t.Fatalf("3.5 should not be allowed on the whole-star scale")
	}
	if !WholeStar.Allows(3) {
		t.Fatalf("3 should be allowed on the whole-star scale")
	}
}

func TestParseScale(t *testing.T) {
	for name, want := range map[string]RatingScale{"": HalfStar, "half": HalfStar, " Whole ": WholeStar} {
		got, err := ParseScale(name)
		if err != nil {
			t.Fatalf("ParseScale(%q) error: %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseScale(%q) = %+v, want %+v", name, got, want)
		}
	}
	if _, err := ParseScale("tenths"); err == nil {
		t.Fatalf("expected error for unknown scale")
	}
}

func TestRoundOneDecimal(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "0.0"},
		{3.75, "3.8"},
		{2.74, "2.7"},
		{4.5, "4.5"},
		{199.94, "199.9"},
	}
	for _, tt := range tests {
		if got := RoundOneDecimal(tt.value).String(); got != tt.want {
			t.Fatalf("RoundOneDecimal(%v) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func BenchmarkCompute(b *testing.B) {
	records := make([]domain.Review, 0, 2000)
	for i := 0; i < 2000; i++ {
		records = append(records, domain.Review{
			StartDate: "2024-01-01",
			EndDate:   "2024-02-01",
			Rating:    float64(i%10+1) / 2,
			Genre:     "Genre",
		})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Compute(records, Options{Now: fixedNow})
	}
}
