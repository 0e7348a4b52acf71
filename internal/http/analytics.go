package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Clark-Hu/readlog/internal/analytics"
	"github.com/Clark-Hu/readlog/internal/domain"
)

func parseYear(raw string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("invalid year value")
	}
	return year, nil
}

func buildYearFilter(query url.Values) (*int, error) {
	val := strings.TrimSpace(query.Get("year"))
	if val == "" {
		return nil, nil
	}
	year, err := parseYear(val)
	if err != nil {
		return nil, err
	}
	return &year, nil
}

// handleAnalytics loads the caller's journal and goals concurrently and
// returns the aggregated report for the requested (or current) year.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	requested, err := buildYearFilter(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	userID := currentUser(r).ID

	var (
		reviews []domain.Review
		goals   []domain.Goal
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		reviews, err = s.repo.Reviews.All(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		goals, err = s.repo.Goals.List(ctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.respondInternal(w, r, "load analytics input", err)
		return
	}

	now := s.now()
	year := analytics.ResolveYear(requested, analytics.AvailableYears(reviews, now), now)

	report := analytics.Compute(reviews, analytics.Options{
		Year:  &year,
		Scale: s.cfg.RatingScale,
		Goal:  goalFor(goals, year, s.cfg.DefaultGoal),
		Now:   now,
	})
	s.respondJSON(w, http.StatusOK, report)
}

func goalFor(goals []domain.Goal, year, fallback int) int {
	for _, g := range goals {
		if g.Year == year {
			return g.Target
		}
	}
	return fallback
}
