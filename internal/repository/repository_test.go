package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Clark-Hu/readlog/internal/domain"
	"github.com/Clark-Hu/readlog/internal/store/storetest"
)

type testEnv struct {
	ctx        context.Context
	repository *Repository
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()
	pool := storetest.NewPool(t, "readlog_test", 40000)
	return &testEnv{
		ctx:        context.Background(),
		repository: NewWithPool(pool),
	}
}

func mustCreateUser(t testing.TB, env *testEnv, id, name string) domain.User {
	t.Helper()
	user, err := env.repository.Users.Upsert(env.ctx, id, name)
	if err != nil {
		t.Fatalf("upsert user %q: %v", id, err)
	}
	return user
}

func mustCreateReview(t testing.TB, env *testEnv, userID, title string) domain.Review {
	t.Helper()
	review, err := env.repository.Reviews.Create(env.ctx, ReviewParams{
		UserID:    userID,
		Title:     title,
		Author:    "Author",
		Genre:     "Fantasy",
		Rating:    4.5,
		StartDate: "2024-01-01",
		EndDate:   "2024-01-05",
		Public:    true,
	})
	if err != nil {
		t.Fatalf("create review %q: %v", title, err)
	}
	return review
}

func TestUsersRepository_Upsert(t *testing.T) {
	env := newTestEnv(t)

	first := mustCreateUser(t, env, "uid-1", "Ada")
	if first.DisplayName != "Ada" {
		t.Fatalf("display name = %q, want Ada", first.DisplayName)
	}

	// An empty display name must not erase the stored one.
	again, err := env.repository.Users.Upsert(env.ctx, "uid-1", "")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if again.DisplayName != "Ada" {
		t.Fatalf("display name = %q, want Ada", again.DisplayName)
	}

	if _, err := env.repository.Users.Get(env.ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewsRepository_CRUDAndList(t *testing.T) {
	env := newTestEnv(t)
	mustCreateUser(t, env, "reader", "Reader")
	mustCreateUser(t, env, "other", "Other")

	cover := "data:image/png;base64,AAAA"
	created, err := env.repository.Reviews.Create(env.ctx, ReviewParams{
		UserID: "reader",
		Title:  "Piranesi",
		Author: "Susanna Clarke",
		Rating: 5,
		Cover:  &cover,
		Public: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("created review missing id/timestamps: %+v", created)
	}
	if created.Cover == nil || *created.Cover != cover {
		t.Fatalf("cover not stored: %+v", created.Cover)
	}

	mustCreateReview(t, env, "reader", "Second")
	mustCreateReview(t, env, "other", "Not mine")

	if _, err := env.repository.Reviews.Get(env.ctx, "other", created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user must not read the review, got %v", err)
	}

	updated, err := env.repository.Reviews.Update(env.ctx, created.ID, ReviewParams{
		UserID:  "reader",
		Title:   "Piranesi",
		Author:  "Susanna Clarke",
		Genre:   "Fantasy",
		Rating:  4.5,
		EndDate: "2024-03-01",
		Public:  false,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Rating != 4.5 || updated.Genre != "Fantasy" || updated.Public || updated.Cover != nil {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := env.repository.Reviews.Update(env.ctx, created.ID, ReviewParams{UserID: "other", Title: "x", Author: "y"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update by other user should be ErrNotFound, got %v", err)
	}

	firstPage, err := env.repository.Reviews.List(env.ctx, ReviewListFilters{UserID: "reader", Limit: 1})
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(firstPage.Items) != 1 || firstPage.NextCursor == nil {
		t.Fatalf("unexpected first page: %d items, cursor %v", len(firstPage.Items), firstPage.NextCursor)
	}
	cursor, err := DecodeCursor(*firstPage.NextCursor)
	if err != nil {
		t.Fatalf("decode cursor: %v", err)
	}
	secondPage, err := env.repository.Reviews.List(env.ctx, ReviewListFilters{UserID: "reader", Limit: 1, Cursor: cursor})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(secondPage.Items) != 1 {
		t.Fatalf("second page size = %d, want 1", len(secondPage.Items))
	}
	if firstPage.Items[0].ID == secondPage.Items[0].ID {
		t.Fatalf("pagination returned duplicate review")
	}

	all, err := env.repository.Reviews.All(env.ctx, "reader")
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("All returned %d reviews, want 2", len(all))
	}
	if all[0].Title != "Second" {
		t.Fatalf("All should be newest first, got %q", all[0].Title)
	}

	if err := env.repository.Reviews.Delete(env.ctx, "reader", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.repository.Reviews.Delete(env.ctx, "reader", created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestReviewsRepository_CreateUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.repository.Reviews.Create(env.ctx, ReviewParams{UserID: "ghost", Title: "t", Author: "a"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestWishlistRepository(t *testing.T) {
	env := newTestEnv(t)
	mustCreateUser(t, env, "reader", "Reader")

	link := "https://example.com/book"
	item, err := env.repository.Wishlist.Create(env.ctx, WishlistParams{UserID: "reader", Title: "Dune", Author: "Herbert", Link: &link})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.Link == nil || *item.Link != link {
		t.Fatalf("link not stored: %+v", item.Link)
	}

	updated, err := env.repository.Wishlist.Update(env.ctx, item.ID, WishlistParams{UserID: "reader", Title: "Dune Messiah", Author: "Herbert"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Dune Messiah" || updated.Link != nil {
		t.Fatalf("update not applied: %+v", updated)
	}

	items, err := env.repository.Wishlist.List(env.ctx, "reader")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("list size = %d, want 1", len(items))
	}

	if err := env.repository.Wishlist.Delete(env.ctx, "someone-else", item.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete by other user should be ErrNotFound, got %v", err)
	}
	if err := env.repository.Wishlist.Delete(env.ctx, "reader", item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestGoalsRepository_UpsertAndGet(t *testing.T) {
	env := newTestEnv(t)
	mustCreateUser(t, env, "reader", "Reader")

	target, err := env.repository.Goals.TargetOrDefault(env.ctx, "reader", 2024, 10)
	if err != nil {
		t.Fatalf("target before set: %v", err)
	}
	if target != 10 {
		t.Fatalf("target = %d, want default 10", target)
	}

	goal, inserted, err := env.repository.Goals.Upsert(env.ctx, "reader", 2024, 30)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !inserted || goal.Target != 30 {
		t.Fatalf("first upsert = (%+v, %v)", goal, inserted)
	}

	_, inserted, err = env.repository.Goals.Upsert(env.ctx, "reader", 2024, 40)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if inserted {
		t.Fatalf("expected update, not insert")
	}

	fetched, err := env.repository.Goals.Get(env.ctx, "reader", 2024)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Target != 40 {
		t.Fatalf("target = %d, want 40", fetched.Target)
	}

	if _, err := env.repository.Goals.Get(env.ctx, "reader", 2023); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unset year, got %v", err)
	}

	if _, _, err := env.repository.Goals.Upsert(env.ctx, "reader", 2025, 12); err != nil {
		t.Fatalf("upsert 2025: %v", err)
	}
	goals, err := env.repository.Goals.List(env.ctx, "reader")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(goals) != 2 || goals[0].Year != 2025 || goals[1].Year != 2024 {
		t.Fatalf("goals = %+v, want 2025 then 2024", goals)
	}
}

func TestFollowsRepository_Feed(t *testing.T) {
	env := newTestEnv(t)
	mustCreateUser(t, env, "me", "Me")
	mustCreateUser(t, env, "friend", "Friend")
	mustCreateUser(t, env, "stranger", "Stranger")

	created, err := env.repository.Follows.Follow(env.ctx, "me", "friend")
	if err != nil || !created {
		t.Fatalf("follow = (%v, %v), want (true, nil)", created, err)
	}
	created, err = env.repository.Follows.Follow(env.ctx, "me", "friend")
	if err != nil || created {
		t.Fatalf("repeat follow = (%v, %v), want (false, nil)", created, err)
	}
	if _, err := env.repository.Follows.Follow(env.ctx, "me", "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("follow unknown user should be ErrNotFound, got %v", err)
	}

	mustCreateReview(t, env, "friend", "Friend public 1")
	mustCreateReview(t, env, "friend", "Friend public 2")
	mustCreateReview(t, env, "stranger", "Stranger public")
	if _, err := env.repository.Reviews.Create(env.ctx, ReviewParams{UserID: "friend", Title: "Secret", Author: "a", Public: false}); err != nil {
		t.Fatalf("create private review: %v", err)
	}

	feed, err := env.repository.Follows.Feed(env.ctx, FeedFilters{FollowerID: "me", Limit: 10})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed.Items) != 2 {
		t.Fatalf("feed size = %d, want 2", len(feed.Items))
	}
	for _, entry := range feed.Items {
		if entry.Review.UserID != "friend" || !entry.Review.Public || entry.DisplayName != "Friend" {
			t.Fatalf("unexpected feed entry %+v", entry)
		}
	}
	if feed.Items[0].Review.Title != "Friend public 2" {
		t.Fatalf("feed should be newest first, got %q", feed.Items[0].Review.Title)
	}

	following, err := env.repository.Follows.Following(env.ctx, "me")
	if err != nil {
		t.Fatalf("following: %v", err)
	}
	if len(following) != 1 || following[0].ID != "friend" {
		t.Fatalf("following = %+v", following)
	}

	if err := env.repository.Follows.Unfollow(env.ctx, "me", "friend"); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if err := env.repository.Follows.Unfollow(env.ctx, "me", "friend"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second unfollow should be ErrNotFound, got %v", err)
	}
}

func TestReviewsRepository_ConcurrentCreates(t *testing.T) {
	env := newTestEnv(t)
	mustCreateUser(t, env, "busy", "Busy")

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := env.repository.Reviews.Create(env.ctx, ReviewParams{
				UserID: "busy",
				Title:  fmt.Sprintf("Book %d", i),
				Author: "Author",
			})
			if err != nil {
				t.Errorf("create %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	all, err := env.repository.Reviews.All(env.ctx, "busy")
	if err != nil {
		t.Fatalf("all after concurrent creates: %v", err)
	}
	if len(all) != workers {
		t.Fatalf("review count = %d, want %d", len(all), workers)
	}
}

func TestDecodeCursor(t *testing.T) {
	if c, err := DecodeCursor(""); c != nil || err != nil {
		t.Fatalf("empty token = (%v, %v), want (nil, nil)", c, err)
	}
	for _, token := range []string{"!!!", "bm90IGpzb24=", "e30="} {
		if _, err := DecodeCursor(token); err == nil {
			t.Fatalf("DecodeCursor(%q) expected error", token)
		}
	}
}

func BenchmarkReviewsRepositoryCreate(b *testing.B) {
	env := newTestEnv(b)
	mustCreateUser(b, env, "bench", "Bench")

	for i := 0; i < b.N; i++ {
		_, err := env.repository.Reviews.Create(env.ctx, ReviewParams{
			UserID: "bench",
			Title:  fmt.Sprintf("Bench Book %d", i),
			Author: "Author",
			Rating: 4,
		})
		if err != nil {
			b.Fatalf("create review: %v", err)
		}
	}
}
