package usecase

import (
	"context"
	"sort"

	"girlfanz/services/feed/internal/cursor"
	"girlfanz/services/feed/internal/entity"
	"girlfanz/services/feed/internal/repo/cache"
	"girlfanz/services/feed/internal/repo/persistent"

	"github.com/stretchr/testify/mock"
)

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) QueryRecent(ctx context.Context, query entity.FeedQuery, before *cursor.Position, limit int) ([]*entity.Post, error) {
	args := m.Called(ctx, query, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) PurchasedPostIDs(ctx context.Context, viewerID string, postIDs []string) (map[string]struct{}, error) {
	args := m.Called(ctx, viewerID, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockPurchaseRepository) RecordPurchase(ctx context.Context, purchase entity.Purchase) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

type MockPageCache struct {
	mock.Mock
}

func (m *MockPageCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPageCache) Get(ctx context.Context, key cache.PageKey) ([]*entity.Post, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]*entity.Post), args.Bool(1), args.Error(2)
}

func (m *MockPageCache) Set(ctx context.Context, key cache.PageKey, posts []*entity.Post) error {
	args := m.Called(ctx, key, posts)
	return args.Error(0)
}

func (m *MockPageCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockMediaSigner struct {
	mock.Mock
}

func (m *MockMediaSigner) SignMediaURL(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

type MockIdentityRepository struct {
	mock.Mock
}

func (m *MockIdentityRepository) GetViewer(ctx context.Context, userID string) (*entity.Viewer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Viewer), args.Error(1)
}

var (
	_ persistent.PostRepository     = (*MockPostRepository)(nil)
	_ persistent.PurchaseRepository = (*MockPurchaseRepository)(nil)
	_ persistent.IdentityRepository = (*MockIdentityRepository)(nil)
	_ cache.PageCache               = (*MockPageCache)(nil)
	_ MediaSigner                   = (*MockMediaSigner)(nil)
)

// memoryPosts is an immutable in-memory store honouring the keyset contract.
type memoryPosts struct {
	posts []*entity.Post
	calls int
}

func newMemoryPosts(posts ...*entity.Post) *memoryPosts {
	sorted := append([]*entity.Post(nil), posts...)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})
	return &memoryPosts{posts: sorted}
}

func (s *memoryPosts) QueryRecent(_ context.Context, query entity.FeedQuery, before *cursor.Position, limit int) ([]*entity.Post, error) {
	s.calls++
	var out []*entity.Post
	for _, p := range s.posts {
		if query.CreatorID != "" && p.CreatorID != query.CreatorID {
			continue
		}
		if before != nil {
			older := p.CreatedAt.Before(before.CreatedAt) ||
				(p.CreatedAt.Equal(before.CreatedAt) && p.ID < before.ID)
			if !older {
				continue
			}
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
