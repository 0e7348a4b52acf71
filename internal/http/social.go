package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/readlog/internal/domain"
	"github.com/Clark-Hu/readlog/internal/repository"
)

type userResponse struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	JournalTitle string `json:"journalTitle"`
}

type followListResponse struct {
	Items []userResponse `json:"items"`
}

type feedEntryResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Genre       string    `json:"genre"`
	Rating      float64   `json:"rating"`
	EndDate     string    `json:"endDate"`
	Quote       string    `json:"quote"`
	Review      string    `json:"review"`
	CreatedAt   time.Time `json:"createdAt"`
}

type feedResponse struct {
	Items      []feedEntryResponse `json:"items"`
	NextCursor *string             `json:"nextCursor,omitempty"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, toUserResponse(currentUser(r)))
}

func (s *Server) handleListFollows(w http.ResponseWriter, r *http.Request) {
	users, err := s.repo.Follows.Following(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondInternal(w, r, "list follows", err)
		return
	}
	resp := followListResponse{Items: make([]userResponse, 0, len(users))}
	for _, u := range users {
		resp.Items = append(resp.Items, toUserResponse(u))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	followee := strings.TrimSpace(chi.URLParam(r, "userId"))
	me := currentUser(r)
	if followee == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "missing userId parameter")
		return
	}
	if followee == me.ID {
		s.respondValidation(w, errors.New("cannot follow yourself"))
		return
	}

	created, err := s.repo.Follows.Follow(r.Context(), me.ID, followee)
	if err != nil {
		s.respondRepoError(w, r, "follow user", err)
		return
	}
	user, err := s.repo.Users.Get(r.Context(), followee)
	if err != nil {
		s.respondRepoError(w, r, "load followed user", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, toUserResponse(user))
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Follows.Unfollow(r.Context(), currentUser(r).ID, chi.URLParam(r, "userId")); err != nil {
		s.respondRepoError(w, r, "unfollow user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	page, err := buildPageParams(r.URL.Query(), s.cfg.FeedPageSize)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := s.repo.Follows.Feed(r.Context(), repository.FeedFilters{
		FollowerID: currentUser(r).ID,
		Limit:      page.Limit,
		Cursor:     page.Cursor,
	})
	if err != nil {
		s.respondInternal(w, r, "load feed", err)
		return
	}

	resp := feedResponse{Items: make([]feedEntryResponse, 0, len(result.Items)), NextCursor: result.NextCursor}
	for _, entry := range result.Items {
		resp.Items = append(resp.Items, toFeedEntryResponse(entry))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{ID: u.ID, DisplayName: u.DisplayName, JournalTitle: u.JournalTitle()}
}

func toFeedEntryResponse(e domain.FeedEntry) feedEntryResponse {
	return feedEntryResponse{
		ID:          e.Review.ID,
		UserID:      e.Review.UserID,
		DisplayName: e.DisplayName,
		Title:       e.Review.Title,
		Author:      e.Review.Author,
		Genre:       e.Review.Genre,
		Rating:      e.Review.Rating,
		EndDate:     e.Review.EndDate,
		Quote:       e.Review.Quote,
		Review:      e.Review.Body,
		CreatedAt:   e.Review.CreatedAt,
	}
}
