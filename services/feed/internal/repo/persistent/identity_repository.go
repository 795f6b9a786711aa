package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"girlfanz/pkg/models"
	"girlfanz/services/feed/internal/entity"

	"gorm.io/gorm"
)

type IdentityRepository interface {
	// GetViewer loads role, age verification and active subscriptions.
	// Returns entity.ErrViewerNotFound for unknown or deleted users.
	GetViewer(ctx context.Context, userID string) (*entity.Viewer, error)
}

type identityRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &identityRepository{db: db, now: time.Now}
}

func (r *identityRepository) GetViewer(ctx context.Context, userID string) (*entity.Viewer, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrViewerNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	var creatorIDs []string
	err = r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("viewer_id = ?", userID).
		Where("(expires_at IS NULL OR expires_at > ?)", r.now().UTC()).
		Pluck("creator_id", &creatorIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	return ToViewerEntity(&user, creatorIDs), nil
}
