package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"girlfanz/pkg/models"
	"girlfanz/services/auth/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	SetAgeVerification(ctx context.Context, userID string, verified bool, at time.Time) (*entity.User, error)
	GetSubscriptions(ctx context.Context, viewerID string) ([]*entity.Subscription, error)
	CreateSubscription(ctx context.Context, viewerID, creatorID string) (*entity.Subscription, error)
	DeleteSubscription(ctx context.Context, viewerID, creatorID string) error
}

type userRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, now: time.Now}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	userModel := ToUserModel(user)
	if err := r.db.WithContext(ctx).Create(userModel).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	*user = *ToUserEntity(userModel)
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg interface{}) (*entity.User, error) {
	var userModel models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrUserNotFound
		}
		return nil, err
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) SetAgeVerification(ctx context.Context, userID string, verified bool, at time.Time) (*entity.User, error) {
	updates := map[string]interface{}{
		"age_verified":    verified,
		"age_verified_at": nil,
	}
	if verified {
		updates["age_verified_at"] = at.UTC()
	}

	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update age verification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, entity.ErrUserNotFound
	}
	return r.GetByID(ctx, userID)
}

func (r *userRepository) GetSubscriptions(ctx context.Context, viewerID string) ([]*entity.Subscription, error) {
	var subscriptionModels []models.Subscription
	err := r.db.WithContext(ctx).
		Where("viewer_id = ?", viewerID).
		Where("(expires_at IS NULL OR expires_at > ?)", r.now().UTC()).
		Order("created_at DESC").
		Find(&subscriptionModels).Error
	if err != nil {
		return nil, err
	}

	subscriptions := make([]*entity.Subscription, len(subscriptionModels))
	for i := range subscriptionModels {
		subscriptions[i] = ToSubscriptionEntity(&subscriptionModels[i])
	}
	return subscriptions, nil
}

// CreateSubscription is idempotent. Subscribing again renews an expired
// subscription.
func (r *userRepository) CreateSubscription(ctx context.Context, viewerID, creatorID string) (*entity.Subscription, error) {
	subscriptionModel := &models.Subscription{
		ViewerID:  viewerID,
		CreatorID: creatorID,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "viewer_id"}, {Name: "creator_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"expires_at": nil, "updated_at": r.now().UTC()}),
		}).
		Create(subscriptionModel).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	var stored models.Subscription
	if err := r.db.WithContext(ctx).Where("viewer_id = ? AND creator_id = ?", viewerID, creatorID).First(&stored).Error; err != nil {
		return nil, err
	}
	return ToSubscriptionEntity(&stored), nil
}

func (r *userRepository) DeleteSubscription(ctx context.Context, viewerID, creatorID string) error {
	result := r.db.WithContext(ctx).Where("viewer_id = ? AND creator_id = ?", viewerID, creatorID).Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrSubscriptionNotFound
	}
	return nil
}
