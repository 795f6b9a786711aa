package persistent

import (
	"context"
	"fmt"

	"girlfanz/pkg/models"
	"girlfanz/services/feed/internal/cursor"
	"girlfanz/services/feed/internal/entity"

	"gorm.io/gorm"
)

// PostRepository is the read side of the post store.
type PostRepository interface {
	// QueryRecent returns up to limit posts strictly older than before,
	// newest first, ties broken by id descending.
	QueryRecent(ctx context.Context, query entity.FeedQuery, before *cursor.Position, limit int) ([]*entity.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) QueryRecent(ctx context.Context, query entity.FeedQuery, before *cursor.Position, limit int) ([]*entity.Post, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit)

	if query.CreatorID != "" {
		q = q.Where("creator_id = ?", query.CreatorID)
	}

	if before != nil {
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))", before.CreatedAt, before.CreatedAt, before.ID)
	}

	var rows []models.Post
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query recent posts: %w", err)
	}

	posts := make([]*entity.Post, len(rows))
	for i := range rows {
		posts[i] = ToPostEntity(&rows[i])
	}
	return posts, nil
}
