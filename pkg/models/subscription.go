package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription grants a viewer access to a creator's subscriber posts while
// ExpiresAt is unset or in the future.
type Subscription struct {
	ID        string     `gorm:"type:uuid;primary_key" json:"id"`
	ViewerID  string     `gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_viewer_creator" json:"viewer_id"`
	CreatorID string     `gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_viewer_creator;index" json:"creator_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
