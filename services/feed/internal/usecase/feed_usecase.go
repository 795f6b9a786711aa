package usecase

import (
	"context"
	"fmt"

	"girlfanz/pkg/config"
	"girlfanz/pkg/logger"
	"girlfanz/services/feed/internal/cursor"
	"girlfanz/services/feed/internal/entity"
	"girlfanz/services/feed/internal/repo/cache"
	"girlfanz/services/feed/internal/repo/persistent"
	"girlfanz/services/feed/internal/visibility"
)

type FeedUseCase interface {
	// GetFeed returns the next page of the platform feed for viewer. An empty
	// cursorToken starts from the newest post.
	GetFeed(ctx context.Context, viewer entity.Viewer, cursorToken string, limit int) (*entity.FeedPage, error)
	// GetCreatorFeed is GetFeed restricted to one creator's posts.
	GetCreatorFeed(ctx context.Context, viewer entity.Viewer, creatorID, cursorToken string, limit int) (*entity.FeedPage, error)
}

// MediaSigner turns an object key into a short-lived URL.
type MediaSigner interface {
	SignMediaURL(key string) (string, error)
}

type FeedOptions struct {
	RequireAgeVerification bool
	DefaultLimit           int
	MaxLimit               int
}

func OptionsFromPolicy(p config.FeedPolicy) FeedOptions {
	return FeedOptions{
		RequireAgeVerification: p.RequireAgeVerification,
		DefaultLimit:           p.DefaultLimit,
		MaxLimit:               p.MaxLimit,
	}
}

type feedUseCase struct {
	posts     persistent.PostRepository
	purchases persistent.PurchaseRepository
	pages     cache.PageCache
	signer    MediaSigner
	codec     *cursor.Codec
	opts      FeedOptions
	logger    *logger.Logger
}

// NewFeedUseCase wires the feed. purchases, pages and signer may be nil: a
// missing ledger unlocks nothing, a missing cache always reads the store and
// a missing signer returns full items without media URLs.
func NewFeedUseCase(
	posts persistent.PostRepository,
	purchases persistent.PurchaseRepository,
	pages cache.PageCache,
	signer MediaSigner,
	codec *cursor.Codec,
	opts FeedOptions,
	logger *logger.Logger,
) FeedUseCase {
	return &feedUseCase{
		posts:     posts,
		purchases: purchases,
		pages:     pages,
		signer:    signer,
		codec:     codec,
		opts:      opts,
		logger:    logger,
	}
}

func (uc *feedUseCase) GetFeed(ctx context.Context, viewer entity.Viewer, cursorToken string, limit int) (*entity.FeedPage, error) {
	return uc.page(ctx, viewer, entity.FeedQuery{}, cursorToken, limit)
}

func (uc *feedUseCase) GetCreatorFeed(ctx context.Context, viewer entity.Viewer, creatorID, cursorToken string, limit int) (*entity.FeedPage, error) {
	return uc.page(ctx, viewer, entity.FeedQuery{CreatorID: creatorID}, cursorToken, limit)
}

func (uc *feedUseCase) page(ctx context.Context, viewer entity.Viewer, query entity.FeedQuery, cursorToken string, limit int) (*entity.FeedPage, error) {
	// Gate before anything touches storage.
	if uc.opts.RequireAgeVerification && !viewer.AgeVerified {
		return nil, entity.ErrAgeVerificationRequired
	}

	limit = uc.clampLimit(limit)

	before, err := uc.codec.Decode(cursorToken)
	if err != nil {
		return nil, entity.ErrInvalidCursor
	}

	rows, err := uc.loadRows(ctx, query, cursorToken, before, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	purchases := uc.loadPurchases(ctx, viewer, rows)

	items := make([]entity.FeedItem, 0, len(rows))
	for _, post := range rows {
		item := visibility.Redact(post, visibility.Resolve(post, viewer, purchases))
		if item.Access == entity.AccessFull {
			item.MediaURLs = uc.signMedia(post)
		}
		items = append(items, item)
	}

	page := &entity.FeedPage{Items: items, HasMore: hasMore}
	if hasMore {
		last := rows[len(rows)-1]
		next := uc.codec.Encode(cursor.Position{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	return page, nil
}

func (uc *feedUseCase) clampLimit(limit int) int {
	if limit <= 0 {
		return uc.opts.DefaultLimit
	}
	if limit > uc.opts.MaxLimit {
		return uc.opts.MaxLimit
	}
	return limit
}

func (uc *feedUseCase) loadRows(ctx context.Context, query entity.FeedQuery, cursorToken string, before *cursor.Position, n int) ([]*entity.Post, error) {
	key := cache.PageKey{CreatorID: query.CreatorID, Cursor: cursorToken, Limit: n}

	// Pinned before the store read: a fill racing an invalidation lands in
	// a dead generation.
	useCache := uc.pages != nil
	if useCache {
		gen, err := uc.pages.Generation(ctx)
		if err != nil {
			uc.logger.Warn("Page cache unavailable, using store: %v", err)
			useCache = false
		} else {
			key.Generation = gen
			rows, ok, err := uc.pages.Get(ctx, key)
			if err != nil {
				uc.logger.Warn("Page cache read failed, using store: %v", err)
			} else if ok {
				return rows, nil
			}
		}
	}

	rows, err := uc.posts.QueryRecent(ctx, query, before, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrStoreUnavailable, err)
	}

	if useCache {
		if err := uc.pages.Set(ctx, key, rows); err != nil {
			uc.logger.Warn("Page cache write failed: %v", err)
		}
	}
	return rows, nil
}

// loadPurchases asks the ledger once per page, and only about posts whose
// resolution depends on it.
func (uc *feedUseCase) loadPurchases(ctx context.Context, viewer entity.Viewer, rows []*entity.Post) visibility.PurchaseLookup {
	if uc.purchases == nil {
		return visibility.NoPurchases
	}

	var postIDs []string
	for _, post := range rows {
		if visibility.NeedsPurchaseCheck(post, viewer) {
			postIDs = append(postIDs, post.ID)
		}
	}
	if len(postIDs) == 0 {
		return visibility.NoPurchases
	}

	owned, err := uc.purchases.PurchasedPostIDs(ctx, viewer.ID, postIDs)
	if err != nil {
		uc.logger.Warn("Purchase ledger unavailable for viewer %s: %v", viewer.ID, err)
		return visibility.NoPurchases
	}
	return visibility.PurchaseSet(owned)
}

func (uc *feedUseCase) signMedia(post *entity.Post) []string {
	if uc.signer == nil || len(post.Media) == 0 {
		return nil
	}

	urls := make([]string, 0, len(post.Media))
	for _, m := range post.Media {
		url, err := uc.signer.SignMediaURL(m.Key)
		if err != nil {
			uc.logger.Warn("Failed to sign media %s of post %s: %v", m.Key, post.ID, err)
			continue
		}
		urls = append(urls, url)
	}
	return urls
}
