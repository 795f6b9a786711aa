package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostType string

const (
	PostTypeText  PostType = "text"
	PostTypePhoto PostType = "photo"
	PostTypeVideo PostType = "video"
	PostTypeLive  PostType = "live"
)

type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilitySubscriber Visibility = "subscriber"
	VisibilityPaid       Visibility = "paid"
)

type ContentRating string

const (
	RatingGeneral  ContentRating = "general"
	RatingMature   ContentRating = "mature"
	RatingExplicit ContentRating = "explicit"
)

var (
	ErrPaidPostWithoutPrice = errors.New("paid post requires a positive price")
	ErrPriceOnUnpaidPost    = errors.New("price is only allowed on paid posts")
)

type Post struct {
	ID            string         `gorm:"type:uuid;primary_key" json:"id"`
	CreatorID     string         `gorm:"type:uuid;not null;index" json:"creator_id"`
	Type          PostType       `gorm:"type:varchar(10);not null" json:"type"`
	Content       *string        `gorm:"type:text" json:"content,omitempty"`
	Visibility    Visibility     `gorm:"type:varchar(20);not null;default:'public'" json:"visibility"`
	PriceInCents  *int           `json:"price_in_cents,omitempty"`
	IsFreePreview bool           `gorm:"not null;default:false" json:"is_free_preview"`
	ContentRating ContentRating  `gorm:"type:varchar(20);not null;default:'general'" json:"content_rating"`
	IsPinned      bool           `gorm:"not null;default:false" json:"is_pinned"`
	IsSponsored   bool           `gorm:"not null;default:false" json:"is_sponsored"`
	Media         []PostMedia    `gorm:"foreignKey:PostID" json:"media"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return p.validatePrice()
}

func (p *Post) validatePrice() error {
	if p.Visibility == VisibilityPaid {
		if p.PriceInCents == nil || *p.PriceInCents <= 0 {
			return ErrPaidPostWithoutPrice
		}
		return nil
	}
	if p.PriceInCents != nil {
		return ErrPriceOnUnpaidPost
	}
	return nil
}

// PostMedia is an object-storage key attached to a post. URLs are signed at
// read time and never stored.
type PostMedia struct {
	ID          string    `gorm:"type:uuid;primary_key" json:"id"`
	PostID      string    `gorm:"type:uuid;not null;index" json:"post_id"`
	StorageKey  string    `gorm:"type:varchar(500);not null" json:"storage_key"`
	ContentType string    `gorm:"type:varchar(100)" json:"content_type"`
	Position    int       `gorm:"default:0" json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

func (PostMedia) TableName() string {
	return "post_media"
}

func (pm *PostMedia) BeforeCreate(tx *gorm.DB) error {
	if pm.ID == "" {
		pm.ID = uuid.New().String()
	}
	return nil
}
