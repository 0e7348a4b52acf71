package domain

import "time"

// Review is one user-authored book review entry.
//
// StartDate and EndDate hold the dates as entered (YYYY-MM-DD) and may be
// empty or, for imported data, unparsable. Rating 0 means "not rated".
type Review struct {
	ID        string
	UserID    string
	Title     string
	Author    string
	Genre     string
	Rating    float64
	StartDate string
	EndDate   string
	Quote     string
	Body      string
	Cover     *string
	Public    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WishlistItem is a book the user wants to read.
type WishlistItem struct {
	ID        string
	UserID    string
	Title     string
	Author    string
	Link      *string
	Cover     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
