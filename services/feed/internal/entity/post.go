package entity

import (
	"errors"
	"time"
)

type PostType string

const (
	PostTypeText  PostType = "text"
	PostTypePhoto PostType = "photo"
	PostTypeVideo PostType = "video"
	PostTypeLive  PostType = "live"
)

func (t PostType) Valid() bool {
	switch t {
	case PostTypeText, PostTypePhoto, PostTypeVideo, PostTypeLive:
		return true
	}
	return false
}

type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilitySubscriber Visibility = "subscriber"
	VisibilityPaid       Visibility = "paid"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilitySubscriber, VisibilityPaid:
		return true
	}
	return false
}

type ContentRating string

const (
	RatingGeneral  ContentRating = "general"
	RatingMature   ContentRating = "mature"
	RatingExplicit ContentRating = "explicit"
)

func (r ContentRating) Valid() bool {
	switch r {
	case RatingGeneral, RatingMature, RatingExplicit:
		return true
	}
	return false
}

var ErrInvalidPost = errors.New("invalid post")

// Post is a stored feed row. FeedService only reads it.
type Post struct {
	ID            string        `json:"id"`
	CreatorID     string        `json:"creator_id"`
	Type          PostType      `json:"type"`
	Content       *string       `json:"content,omitempty"`
	Visibility    Visibility    `json:"visibility"`
	PriceInCents  *int          `json:"price_in_cents,omitempty"`
	IsFreePreview bool          `json:"is_free_preview"`
	ContentRating ContentRating `json:"content_rating"`
	IsPinned      bool          `json:"is_pinned"`
	IsSponsored   bool          `json:"is_sponsored"`
	Media         []MediaRef    `json:"media,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

type MediaRef struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type,omitempty"`
	Position    int    `json:"position"`
}

// Validate checks the enum fields and that paid posts carry a positive price
// while other tiers carry none.
func (p *Post) Validate() error {
	if !p.Type.Valid() || !p.Visibility.Valid() || !p.ContentRating.Valid() {
		return ErrInvalidPost
	}
	if p.Visibility == VisibilityPaid {
		if p.PriceInCents == nil || *p.PriceInCents <= 0 {
			return ErrInvalidPost
		}
	} else if p.PriceInCents != nil {
		return ErrInvalidPost
	}
	return nil
}

// Purchase is a ledger entry unlocking one paid post for one viewer.
type Purchase struct {
	ViewerID     string
	PostID       string
	PriceInCents int
	ExpiresAt    *time.Time
}
