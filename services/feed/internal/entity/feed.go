package entity

import "time"

// Access is the per-viewer display state of a post.
type Access string

const (
	AccessFull   Access = "full"
	AccessLocked Access = "locked"
)

// FeedItem is a post as one viewer is allowed to see it. Content and media
// URLs are only set when Access is AccessFull.
type FeedItem struct {
	ID            string
	CreatorID     string
	Type          PostType
	Visibility    Visibility
	ContentRating ContentRating
	Access        Access
	Content       *string
	PriceInCents  *int
	IsFreePreview bool
	IsPinned      bool
	IsSponsored   bool
	MediaCount    int
	MediaURLs     []string
	CreatedAt     time.Time
}

type FeedPage struct {
	Items      []FeedItem
	NextCursor *string
	HasMore    bool
}

// FeedQuery narrows the stored posts a page is drawn from.
type FeedQuery struct {
	CreatorID string
}
