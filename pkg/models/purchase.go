package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Purchase records that a viewer unlocked a paid post. A nil ExpiresAt is a
// permanent unlock.
type Purchase struct {
	ID           string     `gorm:"type:uuid;primary_key" json:"id"`
	ViewerID     string     `gorm:"type:uuid;not null;uniqueIndex:idx_purchases_viewer_post" json:"viewer_id"`
	PostID       string     `gorm:"type:uuid;not null;uniqueIndex:idx_purchases_viewer_post" json:"post_id"`
	PriceInCents int        `gorm:"not null" json:"price_in_cents"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// All lists every model in dependency order.
func All() []interface{} {
	return []interface{}{&User{}, &Post{}, &PostMedia{}, &Subscription{}, &Purchase{}}
}
