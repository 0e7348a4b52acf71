package httpserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Clark-Hu/readlog/internal/domain"
	"github.com/Clark-Hu/readlog/internal/export"
	"github.com/Clark-Hu/readlog/internal/repository"
)

type reviewRequest struct {
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Genre     string  `json:"genre"`
	Rating    float64 `json:"rating"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Quote     string  `json:"quote"`
	Review    string  `json:"review"`
	Cover     *string `json:"cover"`
	Public    *bool   `json:"public"`
}

type reviewResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Genre     string    `json:"genre"`
	Rating    float64   `json:"rating"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	Quote     string    `json:"quote"`
	Review    string    `json:"review"`
	Cover     *string   `json:"cover,omitempty"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type reviewListResponse struct {
	Items      []reviewResponse `json:"items"`
	NextCursor *string          `json:"nextCursor,omitempty"`
}

// toReviewParams trims and validates the request against the configured scale.
func (s *Server) toReviewParams(userID string, req reviewRequest) (repository.ReviewParams, error) {
	params := repository.ReviewParams{
		UserID:    userID,
		Title:     strings.TrimSpace(req.Title),
		Author:    strings.TrimSpace(req.Author),
		Genre:     strings.TrimSpace(req.Genre),
		Rating:    req.Rating,
		StartDate: strings.TrimSpace(req.StartDate),
		EndDate:   strings.TrimSpace(req.EndDate),
		Quote:     req.Quote,
		Body:      req.Review,
		Cover:     normalizeStringPtr(req.Cover),
		Public:    true,
	}
	if req.Public != nil {
		params.Public = *req.Public
	}

	if params.Title == "" || params.Author == "" {
		return params, errTitleAuthorRequired
	}
	if err := validateRating(params.Rating, s.cfg.RatingScale); err != nil {
		return params, err
	}
	if err := validateDates(params.StartDate, params.EndDate); err != nil {
		return params, err
	}
	if err := validateCover(params.Cover); err != nil {
		return params, err
	}
	return params, nil
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	page, err := buildPageParams(r.URL.Query(), 0)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := s.repo.Reviews.List(r.Context(), repository.ReviewListFilters{
		UserID: currentUser(r).ID,
		Limit:  page.Limit,
		Cursor: page.Cursor,
	})
	if err != nil {
		s.respondInternal(w, r, "list reviews", err)
		return
	}

	items := make([]reviewResponse, 0, len(result.Items))
	for _, review := range result.Items {
		items = append(items, toReviewResponse(review))
	}
	s.respondJSON(w, http.StatusOK, reviewListResponse{Items: items, NextCursor: result.NextCursor})
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	params, err := s.toReviewParams(currentUser(r).ID, req)
	if err != nil {
		s.respondValidation(w, err)
		return
	}

	review, err := s.repo.Reviews.Create(r.Context(), params)
	if err != nil {
		s.respondInternal(w, r, "create review", err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/reviews/%s", review.ID))
	s.respondJSON(w, http.StatusCreated, toReviewResponse(review))
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	review, err := s.repo.Reviews.Get(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.respondRepoError(w, r, "get review", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toReviewResponse(review))
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	params, err := s.toReviewParams(currentUser(r).ID, req)
	if err != nil {
		s.respondValidation(w, err)
		return
	}

	review, err := s.repo.Reviews.Update(r.Context(), chi.URLParam(r, "id"), params)
	if err != nil {
		s.respondRepoError(w, r, "update review", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toReviewResponse(review))
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Reviews.Delete(r.Context(), currentUser(r).ID, chi.URLParam(r, "id")); err != nil {
		s.respondRepoError(w, r, "delete review", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.repo.Reviews.All(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondInternal(w, r, "load reviews for export", err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(s.now())))
	w.WriteHeader(http.StatusOK)
	if err := export.WriteReviews(w, reviews); err != nil {
		s.logger.Warn("write csv export", zap.Error(err))
	}
}

func toReviewResponse(review domain.Review) reviewResponse {
	return reviewResponse{
		ID:        review.ID,
		Title:     review.Title,
		Author:    review.Author,
		Genre:     review.Genre,
		Rating:    review.Rating,
		StartDate: review.StartDate,
		EndDate:   review.EndDate,
		Quote:     review.Quote,
		Review:    review.Body,
		Cover:     review.Cover,
		Public:    review.Public,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
}
