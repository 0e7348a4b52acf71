package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/readlog/internal/analytics"
)

type goalRequest struct {
	Target int `json:"target"`
}

type goalResponse struct {
	Year int `json:"year"`
	analytics.GoalProgress
}

type goalListResponse struct {
	Items []goalResponse `json:"items"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	goals, err := s.repo.Goals.List(r.Context(), userID)
	if err != nil {
		s.respondInternal(w, r, "list goals", err)
		return
	}
	reviews, err := s.repo.Reviews.All(r.Context(), userID)
	if err != nil {
		s.respondInternal(w, r, "load reviews for goals", err)
		return
	}

	resp := goalListResponse{Items: make([]goalResponse, 0, len(goals))}
	for _, goal := range goals {
		resp.Items = append(resp.Items, goalResponse{
			Year:         goal.Year,
			GoalProgress: analytics.Progress(reviews, goal.Year, goal.Target),
		})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	userID := currentUser(r).ID

	target, err := s.repo.Goals.TargetOrDefault(r.Context(), userID, year, s.cfg.DefaultGoal)
	if err != nil {
		s.respondInternal(w, r, "get goal", err)
		return
	}
	reviews, err := s.repo.Reviews.All(r.Context(), userID)
	if err != nil {
		s.respondInternal(w, r, "load reviews for goal", err)
		return
	}
	s.respondJSON(w, http.StatusOK, goalResponse{Year: year, GoalProgress: analytics.Progress(reviews, year, target)})
}

func (s *Server) handlePutGoal(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req goalRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.Target <= 0 {
		s.respondValidation(w, errors.New("target must be positive"))
		return
	}

	userID := currentUser(r).ID
	goal, inserted, err := s.repo.Goals.Upsert(r.Context(), userID, year, req.Target)
	if err != nil {
		s.respondRepoError(w, r, "upsert goal", err)
		return
	}
	reviews, err := s.repo.Reviews.All(r.Context(), userID)
	if err != nil {
		s.respondInternal(w, r, "load reviews for goal", err)
		return
	}

	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, goalResponse{Year: goal.Year, GoalProgress: analytics.Progress(reviews, goal.Year, goal.Target)})
}
