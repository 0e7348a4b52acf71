// Package share turns OS share-sheet payloads into wishlist drafts.
package share

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrEmptyShare is returned when a payload has neither a title nor a link.
var ErrEmptyShare = errors.New("share: nothing to save")

// Draft is a wishlist item proposed from shared content.
type Draft struct {
	Title  string
	Author string
	Link   *string
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// Parse builds a draft from the title, text, and url fields a share target
// receives. Browsers are inconsistent about which field carries the link, so
// text is searched when url is not usable.
func Parse(title, text, link string) (Draft, error) {
	title = strings.TrimSpace(title)
	text = strings.TrimSpace(text)

	resolved := ""
	if isWebURL(strings.TrimSpace(link)) {
		resolved = strings.TrimSpace(link)
	} else if found := urlPattern.FindString(text); found != "" && isWebURL(found) {
		resolved = found
	}

	if title == "" {
		title = text
		if resolved != "" {
			title = strings.Replace(title, resolved, "", 1)
		}
		title = strings.Join(strings.Fields(title), " ")
	}

	if title == "" && resolved == "" {
		return Draft{}, ErrEmptyShare
	}

	draft := Draft{Title: title}
	if name, author, ok := splitAuthor(title); ok {
		draft.Title, draft.Author = name, author
	}
	if draft.Title == "" {
		draft.Title = resolved
	}
	if resolved != "" {
		draft.Link = &resolved
	}
	return draft, nil
}

func isWebURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func splitAuthor(title string) (string, string, bool) {
	idx := strings.LastIndex(title, " by ")
	if idx <= 0 {
		return "", "", false
	}
	name := strings.TrimSpace(title[:idx])
	author := strings.TrimSpace(title[idx+len(" by "):])
	if name == "" || author == "" {
		return "", "", false
	}
	return name, author, true
}
