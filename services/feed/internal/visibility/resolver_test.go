package visibility

import (
	"testing"
	"time"

	"girlfanz/services/feed/internal/entity"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

func post(visibility entity.Visibility) *entity.Post {
	p := &entity.Post{
		ID:            "post-1",
		CreatorID:     "creator-1",
		Type:          entity.PostTypePhoto,
		Content:       strPtr("secret body"),
		Visibility:    visibility,
		ContentRating: entity.RatingExplicit,
		IsPinned:      true,
		IsSponsored:   true,
		Media:         []entity.MediaRef{{Key: "posts/creator-1/a.jpg"}, {Key: "posts/creator-1/b.jpg", Position: 1}},
		CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if visibility == entity.VisibilityPaid {
		p.PriceInCents = intPtr(500)
	}
	return p
}

var (
	anonymous  = entity.Anonymous()
	fan        = entity.Viewer{ID: "fan-1", Role: entity.RoleFan, AgeVerified: true}
	subscriber = entity.Viewer{ID: "fan-2", Role: entity.RoleFan, AgeVerified: true, Subscriptions: entity.NewSubscriptions("creator-1")}
	admin      = entity.Viewer{ID: "admin-1", Role: entity.RoleAdmin, AgeVerified: true}
	author     = entity.Viewer{ID: "creator-1", Role: entity.RoleCreator, AgeVerified: true}
)

func TestResolve(t *testing.T) {
	purchased := PurchaseSet{"post-1": {}}

	tests := []struct {
		name      string
		post      *entity.Post
		viewer    entity.Viewer
		purchases PurchaseLookup
		want      entity.Access
		wantPrice *int
	}{
		{"public anonymous", post(entity.VisibilityPublic), anonymous, nil, entity.AccessFull, nil},
		{"public fan", post(entity.VisibilityPublic), fan, NoPurchases, entity.AccessFull, nil},

		{"subscriber non-subscriber", post(entity.VisibilitySubscriber), fan, NoPurchases, entity.AccessLocked, nil},
		{"subscriber subscriber", post(entity.VisibilitySubscriber), subscriber, NoPurchases, entity.AccessFull, nil},
		{"subscriber admin", post(entity.VisibilitySubscriber), admin, NoPurchases, entity.AccessFull, nil},
		{"subscriber anonymous", post(entity.VisibilitySubscriber), anonymous, NoPurchases, entity.AccessLocked, nil},
		{"subscriber author", post(entity.VisibilitySubscriber), author, NoPurchases, entity.AccessFull, nil},

		{"paid fan", post(entity.VisibilityPaid), fan, NoPurchases, entity.AccessLocked, intPtr(500)},
		{"paid subscriber still pays", post(entity.VisibilityPaid), subscriber, NoPurchases, entity.AccessLocked, intPtr(500)},
		{"paid purchased", post(entity.VisibilityPaid), fan, purchased, entity.AccessFull, nil},
		{"paid admin", post(entity.VisibilityPaid), admin, NoPurchases, entity.AccessFull, nil},
		{"paid author", post(entity.VisibilityPaid), author, NoPurchases, entity.AccessFull, nil},
		{"paid anonymous ignores ledger", post(entity.VisibilityPaid), anonymous, purchased, entity.AccessLocked, intPtr(500)},
		{"paid nil lookup", post(entity.VisibilityPaid), fan, nil, entity.AccessLocked, intPtr(500)},

		{"unknown visibility fails closed", post("friends"), subscriber, NoPurchases, entity.AccessLocked, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.post, tt.viewer, tt.purchases)
			assert.Equal(t, tt.want, res.Access)
			assert.Equal(t, tt.wantPrice, res.PriceInCents)
		})
	}
}

func TestResolve_FreePreview(t *testing.T) {
	p := post(entity.VisibilityPaid)
	p.IsFreePreview = true

	res := Resolve(p, anonymous, NoPurchases)
	assert.Equal(t, entity.AccessFull, res.Access)
	assert.Equal(t, entity.VisibilityPaid, p.Visibility, "free preview never rewrites stored visibility")
}

func TestResolve_DoesNotAliasPrice(t *testing.T) {
	p := post(entity.VisibilityPaid)
	res := Resolve(p, fan, NoPurchases)

	*res.PriceInCents = 1
	assert.Equal(t, 500, *p.PriceInCents)
}

func TestRedact_Locked(t *testing.T) {
	p := post(entity.VisibilityPaid)
	item := Redact(p, Resolve(p, fan, NoPurchases))

	assert.Equal(t, entity.AccessLocked, item.Access)
	assert.Nil(t, item.Content)
	assert.Nil(t, item.MediaURLs)
	assert.Equal(t, intPtr(500), item.PriceInCents)
	assert.Equal(t, 2, item.MediaCount)
	assert.True(t, item.IsPinned)
	assert.True(t, item.IsSponsored)
	assert.Equal(t, entity.RatingExplicit, item.ContentRating)
	assert.Equal(t, p.CreatedAt, item.CreatedAt)
}

func TestRedact_Full(t *testing.T) {
	p := post(entity.VisibilityPublic)
	item := Redact(p, Resolve(p, anonymous, NoPurchases))

	assert.Equal(t, entity.AccessFull, item.Access)
	if assert.NotNil(t, item.Content) {
		assert.Equal(t, "secret body", *item.Content)
	}
	assert.Nil(t, item.PriceInCents)

	*item.Content = "changed"
	assert.Equal(t, "secret body", *p.Content)
}

func TestRedact_FullWithoutContent(t *testing.T) {
	p := post(entity.VisibilityPublic)
	p.Content = nil

	item := Redact(p, Resolution{Access: entity.AccessFull})
	assert.Nil(t, item.Content)
}

func TestNeedsPurchaseCheck(t *testing.T) {
	paid := post(entity.VisibilityPaid)
	preview := post(entity.VisibilityPaid)
	preview.IsFreePreview = true

	assert.True(t, NeedsPurchaseCheck(paid, fan))
	assert.False(t, NeedsPurchaseCheck(paid, anonymous))
	assert.False(t, NeedsPurchaseCheck(paid, admin))
	assert.False(t, NeedsPurchaseCheck(paid, author))
	assert.False(t, NeedsPurchaseCheck(preview, fan))
	assert.False(t, NeedsPurchaseCheck(post(entity.VisibilitySubscriber), fan))
}
