package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestUser_BeforeCreate(t *testing.T) {
	user := &User{
		Email:    "test@example.com",
		Username: "testuser",
		Password: "password",
		IsActive: true,
	}

	err := user.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, RoleFan, user.Role)
}

func TestUser_BeforeCreate_WithID(t *testing.T) {
	existingID := "existing-id-123"
	user := &User{
		ID:       existingID,
		Email:    "test@example.com",
		Username: "testuser",
		Password: "password",
		Role:     RoleCreator,
	}

	err := user.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.Equal(t, existingID, user.ID)
	assert.Equal(t, RoleCreator, user.Role)
}

func TestPost_BeforeCreate(t *testing.T) {
	post := &Post{
		CreatorID:  "creator-123",
		Type:       PostTypePhoto,
		Visibility: VisibilityPublic,
	}

	err := post.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, post.ID)
}

func TestPost_BeforeCreate_WithID(t *testing.T) {
	existingID := "existing-post-id"
	post := &Post{
		ID:         existingID,
		CreatorID:  "creator-123",
		Type:       PostTypeText,
		Visibility: VisibilitySubscriber,
	}

	err := post.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.Equal(t, existingID, post.ID)
}

func TestPost_BeforeCreate_PriceInvariant(t *testing.T) {
	tests := []struct {
		name    string
		post    Post
		wantErr error
	}{
		{"paid with price", Post{Visibility: VisibilityPaid, PriceInCents: intPtr(500)}, nil},
		{"paid without price", Post{Visibility: VisibilityPaid}, ErrPaidPostWithoutPrice},
		{"paid with zero price", Post{Visibility: VisibilityPaid, PriceInCents: intPtr(0)}, ErrPaidPostWithoutPrice},
		{"public with price", Post{Visibility: VisibilityPublic, PriceInCents: intPtr(100)}, ErrPriceOnUnpaidPost},
		{"subscriber without price", Post{Visibility: VisibilitySubscriber}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := tt.post
			err := post.BeforeCreate(nil)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPostMedia_BeforeCreate(t *testing.T) {
	media := &PostMedia{
		PostID:     "post-123",
		StorageKey: "posts/creator-123/a.jpg",
	}

	err := media.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, media.ID)
	assert.Equal(t, "post_media", media.TableName())
}

func TestSubscription_BeforeCreate(t *testing.T) {
	subscription := &Subscription{
		ViewerID:  "viewer-123",
		CreatorID: "creator-123",
	}

	err := subscription.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, subscription.ID)
}

func TestPurchase_BeforeCreate(t *testing.T) {
	purchase := &Purchase{
		ViewerID:     "viewer-123",
		PostID:       "post-123",
		PriceInCents: 500,
	}

	err := purchase.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, purchase.ID)
}

func TestEnum_Constants(t *testing.T) {
	assert.Equal(t, UserRole("fan"), RoleFan)
	assert.Equal(t, UserRole("creator"), RoleCreator)
	assert.Equal(t, UserRole("admin"), RoleAdmin)
	assert.Equal(t, Visibility("paid"), VisibilityPaid)
	assert.Equal(t, ContentRating("explicit"), RatingExplicit)
	assert.Equal(t, PostType("live"), PostTypeLive)
}
