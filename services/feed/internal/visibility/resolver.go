// Package visibility decides, per viewer, whether a post is shown in full or
// as a locked placeholder. Everything here is pure so the rules can be tested
// without storage or pagination.
package visibility

import "girlfanz/services/feed/internal/entity"

// PurchaseLookup answers whether the current viewer unlocked a paid post.
type PurchaseLookup interface {
	HasPurchased(postID string) bool
}

// PurchaseSet is a prefetched set of unlocked post ids.
type PurchaseSet map[string]struct{}

func (s PurchaseSet) HasPurchased(postID string) bool {
	_, ok := s[postID]
	return ok
}

// NoPurchases is used when the ledger is absent or unavailable.
var NoPurchases PurchaseLookup = PurchaseSet(nil)

type Resolution struct {
	Access entity.Access
	// PriceInCents is set only for locked paid posts, for the unlock prompt.
	PriceInCents *int
}

var full = Resolution{Access: entity.AccessFull}

// Resolve applies the rules in order, first match wins:
//
//  0. the viewer wrote the post
//  1. public
//  2. subscriber: subscribed to the creator, or admin
//  3. paid: free preview, admin, or purchased; otherwise locked with its price
//
// Unknown visibility values resolve to locked.
func Resolve(post *entity.Post, viewer entity.Viewer, purchases PurchaseLookup) Resolution {
	if purchases == nil {
		purchases = NoPurchases
	}

	if !viewer.IsAnonymous() && viewer.ID == post.CreatorID {
		return full
	}

	switch post.Visibility {
	case entity.VisibilityPublic:
		return full

	case entity.VisibilitySubscriber:
		if viewer.IsAdmin() || viewer.SubscribesTo(post.CreatorID) {
			return full
		}
		return Resolution{Access: entity.AccessLocked}

	case entity.VisibilityPaid:
		if post.IsFreePreview || viewer.IsAdmin() {
			return full
		}
		if !viewer.IsAnonymous() && purchases.HasPurchased(post.ID) {
			return full
		}
		res := Resolution{Access: entity.AccessLocked}
		if post.PriceInCents != nil {
			p := *post.PriceInCents
			res.PriceInCents = &p
		}
		return res
	}

	return Resolution{Access: entity.AccessLocked}
}

// Redact builds the viewer-facing item. Locked items keep metadata only;
// content and media URLs are never copied into them.
func Redact(post *entity.Post, res Resolution) entity.FeedItem {
	item := entity.FeedItem{
		ID:            post.ID,
		CreatorID:     post.CreatorID,
		Type:          post.Type,
		Visibility:    post.Visibility,
		ContentRating: post.ContentRating,
		Access:        res.Access,
		IsFreePreview: post.IsFreePreview,
		IsPinned:      post.IsPinned,
		IsSponsored:   post.IsSponsored,
		MediaCount:    len(post.Media),
		CreatedAt:     post.CreatedAt,
	}

	if res.Access == entity.AccessFull {
		if post.Content != nil {
			c := *post.Content
			item.Content = &c
		}
		return item
	}

	item.PriceInCents = res.PriceInCents
	return item
}

// NeedsPurchaseCheck reports whether Resolve could consult the ledger for
// this post and viewer. Used to keep ledger lookups to the posts that matter.
func NeedsPurchaseCheck(post *entity.Post, viewer entity.Viewer) bool {
	return post.Visibility == entity.VisibilityPaid &&
		!post.IsFreePreview &&
		!viewer.IsAnonymous() &&
		!viewer.IsAdmin() &&
		viewer.ID != post.CreatorID
}
