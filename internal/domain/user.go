package domain

import "time"

// User mirrors the identity provider's view of a signed-in account.
type User struct {
	ID          string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// JournalTitle returns the heading shown above the user's reviews.
func (u User) JournalTitle() string {
	if u.DisplayName == "" {
		return "My Reading Log"
	}
	return u.DisplayName + "'s Reading Log"
}

// Goal is a per-year reading target.
type Goal struct {
	UserID    string
	Year      int
	Target    int
	UpdatedAt time.Time
}

// Follow links a follower to the user whose public activity they see.
type Follow struct {
	FollowerID string
	FolloweeID string
	CreatedAt  time.Time
}

// FeedEntry is a followed user's public review together with its author.
type FeedEntry struct {
	Review      Review
	DisplayName string
}
