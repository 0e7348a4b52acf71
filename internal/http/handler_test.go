package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Clark-Hu/readlog/internal/analytics"
	"github.com/Clark-Hu/readlog/internal/config"
	"github.com/Clark-Hu/readlog/internal/identity"
	"github.com/Clark-Hu/readlog/internal/repository"
	"github.com/Clark-Hu/readlog/internal/store/storetest"
)

// fakeIdentity maps bearer tokens to sessions for handler tests.
type fakeIdentity map[string]identity.Session

func (f fakeIdentity) Verify(ctx context.Context, token string) (*identity.Session, error) {
	session, ok := f[token]
	if !ok {
		return nil, identity.ErrInvalidSession
	}
	return &session, nil
}

var testSessions = fakeIdentity{
	"alice-token": {UserID: "alice", DisplayName: "Alice"},
	"bob-token":   {UserID: "bob", DisplayName: "Bob"},
	"carol-token": {UserID: "carol", DisplayName: ""},
}

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func buildTestServer(tb testing.TB) *Server {
	tb.Helper()
	cfg := config.Config{
		Port:             "0",
		AuthTimeoutSecs:  1,
		ReadTimeoutSecs:  15,
		WriteTimeoutSecs: 15,
		IdleTimeoutSecs:  60,
		RatingScale:      analytics.HalfStar,
		DefaultGoal:      analytics.DefaultGoal,
		FeedPageSize:     20,
	}

	pool := storetest.NewPool(tb, "readlog_test_handlers", 42000)
	repo := repository.NewWithPool(pool)
	srv := New(cfg, nil, repo, testSessions, zap.NewNop())
	srv.now = func() time.Time { return testNow }
	// Replace chi router to avoid default middleware noise.
	srv.router = chi.NewRouter()
	srv.registerRoutes()
	return srv
}

func doRequest(tb testing.TB, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	tb.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			tb.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(tb testing.TB, rec *httptest.ResponseRecorder, dst interface{}) {
	tb.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		tb.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func mustCreateReview(tb testing.TB, srv *Server, token string, req reviewRequest) reviewResponse {
	tb.Helper()
	rec := doRequest(tb, srv, http.MethodPost, "/reviews", token, req)
	if rec.Code != http.StatusCreated {
		tb.Fatalf("create review status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp reviewResponse
	decodeResponse(tb, rec, &resp)
	return resp
}

func TestAuthenticate(t *testing.T) {
	srv := buildTestServer(t)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer alice-token", http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			rec := httptest.NewRecorder()
			srv.router.ServeHTTP(rec, req)
			if rec.Code != c.want {
				t.Fatalf("status = %d, want %d", rec.Code, c.want)
			}
		})
	}
}

func TestHandleHealthz_NoStore(t *testing.T) {
	srv := buildTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 without a store", rec.Code)
	}
}

func TestHandleMe(t *testing.T) {
	srv := buildTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/me", "alice-token", nil)
	var me userResponse
	decodeResponse(t, rec, &me)
	if me.ID != "alice" || me.JournalTitle != "Alice's Reading Log" {
		t.Fatalf("unexpected me payload: %+v", me)
	}

	rec = doRequest(t, srv, http.MethodGet, "/me", "carol-token", nil)
	decodeResponse(t, rec, &me)
	if me.JournalTitle != "My Reading Log" {
		t.Fatalf("journal title without name = %q", me.JournalTitle)
	}
}

func TestHandleCreateReview_InvalidPayload(t *testing.T) {
	srv := buildTestServer(t)

	cases := []struct {
		name string
		body interface{}
		want int
	}{
		{"invalid json", "invalid json", http.StatusUnprocessableEntity},
		{"empty body", "", http.StatusUnprocessableEntity},
		{"unknown field", `{"title":"t","author":"a","pages":100}`, http.StatusUnprocessableEntity},
		{"missing fields", reviewRequest{Title: " ", Author: ""}, http.StatusUnprocessableEntity},
		{"rating off scale", reviewRequest{Title: "t", Author: "a", Rating: 4.3}, http.StatusUnprocessableEntity},
		{"rating too high", reviewRequest{Title: "t", Author: "a", Rating: 5.5}, http.StatusUnprocessableEntity},
		{"bad date", reviewRequest{Title: "t", Author: "a", StartDate: "01/02/2024"}, http.StatusUnprocessableEntity},
		{"end before start", reviewRequest{Title: "t", Author: "a", StartDate: "2024-02-01", EndDate: "2024-01-01"}, http.StatusUnprocessableEntity},
		{"bad cover", reviewRequest{Title: "t", Author: "a", Cover: strPtr("https://img.example.com/c.png")}, http.StatusUnprocessableEntity},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/reviews", "alice-token", c.body)
			if rec.Code != c.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, c.want, rec.Body.String())
			}
			var errResp errorResponse
			decodeResponse(t, rec, &errResp)
			if errResp.Code != "VALIDATION_ERROR" {
				t.Fatalf("error code = %q", errResp.Code)
			}
		})
	}
}

func TestHandleReviews_CRUD(t *testing.T) {
	srv := buildTestServer(t)

	created := mustCreateReview(t, srv, "alice-token", reviewRequest{
		Title:     " Piranesi ",
		Author:    "Susanna Clarke",
		Genre:     "Fantasy",
		Rating:    4.5,
		StartDate: "2024-01-01",
		EndDate:   "2024-01-05",
		Review:    "Beautiful.",
		Cover:     strPtr("data:image/png;base64,iVBORw0KGgo="),
	})
	if created.Title != "Piranesi" || !created.Public || created.Cover == nil {
		t.Fatalf("unexpected created review: %+v", created)
	}

	rec := doRequest(t, srv, http.MethodGet, "/reviews/"+created.ID, "alice-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/reviews/"+created.ID, "bob-token", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("other user get status = %d, want 404", rec.Code)
	}

	public := false
	rec = doRequest(t, srv, http.MethodPut, "/reviews/"+created.ID, "alice-token", reviewRequest{
		Title:  "Piranesi",
		Author: "Susanna Clarke",
		Rating: 5,
		Public: &public,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated reviewResponse
	decodeResponse(t, rec, &updated)
	if updated.Rating != 5 || updated.Public || updated.Cover != nil {
		t.Fatalf("update not applied: %+v", updated)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/reviews/"+created.ID, "bob-token", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("other user delete status = %d, want 404", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodDelete, "/reviews/"+created.ID, "alice-token", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
}

func TestHandleListReviews_Pagination(t *testing.T) {
	srv := buildTestServer(t)
	for _, title := range []string{"One", "Two", "Three"} {
		mustCreateReview(t, srv, "alice-token", reviewRequest{Title: title, Author: "A"})
	}

	rec := doRequest(t, srv, http.MethodGet, "/reviews?limit=2", "alice-token", nil)
	var page reviewListResponse
	decodeResponse(t, rec, &page)
	if len(page.Items) != 2 || page.NextCursor == nil {
		t.Fatalf("first page = %d items, cursor %v", len(page.Items), page.NextCursor)
	}
	if page.Items[0].Title != "Three" {
		t.Fatalf("list should be newest first, got %q", page.Items[0].Title)
	}

	rec = doRequest(t, srv, http.MethodGet, "/reviews?limit=2&cursor="+*page.NextCursor, "alice-token", nil)
	decodeResponse(t, rec, &page)
	if len(page.Items) != 1 || page.Items[0].Title != "One" || page.NextCursor != nil {
		t.Fatalf("second page = %+v", page)
	}

	rec = doRequest(t, srv, http.MethodGet, "/reviews?cursor=garbage", "alice-token", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad cursor status = %d, want 400", rec.Code)
	}
}

func TestHandleExportReviews(t *testing.T) {
	srv := buildTestServer(t)
	mustCreateReview(t, srv, "alice-token", reviewRequest{Title: "Dune", Author: "Herbert", Review: "a\nb"})

	rec := doRequest(t, srv, http.MethodGet, "/reviews/export.csv", "alice-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="reading_journal_export_2024-06-15.csv"` {
		t.Fatalf("content disposition = %q", got)
	}
	want := "Title,Author,Genre,Rating,Started,Finished,Quote,Review\nDune,Herbert,,0,,,,a b\n"
	if rec.Body.String() != want {
		t.Fatalf("export body = %q, want %q", rec.Body.String(), want)
	}
}

func strPtr(s string) *string { return &s }
