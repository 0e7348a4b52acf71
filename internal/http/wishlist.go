package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/readlog/internal/domain"
	"github.com/Clark-Hu/readlog/internal/repository"
	"github.com/Clark-Hu/readlog/internal/share"
)

type wishlistRequest struct {
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Link   *string `json:"link"`
	Cover  *string `json:"cover"`
}

type wishlistResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Link      *string   `json:"link,omitempty"`
	Cover     *string   `json:"cover,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type wishlistListResponse struct {
	Items []wishlistResponse `json:"items"`
}

// Author is optional here: items saved from a share sheet rarely carry one.
func toWishlistParams(userID string, req wishlistRequest) (repository.WishlistParams, error) {
	params := repository.WishlistParams{
		UserID: userID,
		Title:  strings.TrimSpace(req.Title),
		Author: strings.TrimSpace(req.Author),
		Link:   normalizeStringPtr(req.Link),
		Cover:  normalizeStringPtr(req.Cover),
	}
	if params.Title == "" {
		return params, errTitleRequired
	}
	if err := validateLink(params.Link); err != nil {
		return params, err
	}
	if err := validateCover(params.Cover); err != nil {
		return params, err
	}
	return params, nil
}

func (s *Server) handleListWishlist(w http.ResponseWriter, r *http.Request) {
	items, err := s.repo.Wishlist.List(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondInternal(w, r, "list wishlist", err)
		return
	}
	resp := wishlistListResponse{Items: make([]wishlistResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, toWishlistResponse(item))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateWishlistItem(w http.ResponseWriter, r *http.Request) {
	var req wishlistRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	params, err := toWishlistParams(currentUser(r).ID, req)
	if err != nil {
		s.respondValidation(w, err)
		return
	}

	item, err := s.repo.Wishlist.Create(r.Context(), params)
	if err != nil {
		s.respondInternal(w, r, "create wishlist item", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, toWishlistResponse(item))
}

func (s *Server) handleUpdateWishlistItem(w http.ResponseWriter, r *http.Request) {
	var req wishlistRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	params, err := toWishlistParams(currentUser(r).ID, req)
	if err != nil {
		s.respondValidation(w, err)
		return
	}

	item, err := s.repo.Wishlist.Update(r.Context(), chi.URLParam(r, "id"), params)
	if err != nil {
		s.respondRepoError(w, r, "update wishlist item", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toWishlistResponse(item))
}

func (s *Server) handleDeleteWishlistItem(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Wishlist.Delete(r.Context(), currentUser(r).ID, chi.URLParam(r, "id")); err != nil {
		s.respondRepoError(w, r, "delete wishlist item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleShare accepts the form a share target posts (title, text, url) and
// saves it to the wishlist.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxRequestBody)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Unable to parse share form")
		return
	}

	draft, err := share.Parse(r.FormValue("title"), r.FormValue("text"), r.FormValue("url"))
	if err != nil {
		if errors.Is(err, share.ErrEmptyShare) {
			s.respondValidation(w, errors.New("shared content has neither a title nor a link"))
			return
		}
		s.respondInternal(w, r, "parse share", err)
		return
	}

	item, err := s.repo.Wishlist.Create(r.Context(), repository.WishlistParams{
		UserID: currentUser(r).ID,
		Title:  draft.Title,
		Author: draft.Author,
		Link:   draft.Link,
	})
	if err != nil {
		s.respondInternal(w, r, "create shared wishlist item", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, toWishlistResponse(item))
}

func toWishlistResponse(item domain.WishlistItem) wishlistResponse {
	return wishlistResponse{
		ID:        item.ID,
		Title:     item.Title,
		Author:    item.Author,
		Link:      item.Link,
		Cover:     item.Cover,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}
