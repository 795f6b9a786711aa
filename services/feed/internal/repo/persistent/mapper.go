package persistent

import (
	"girlfanz/pkg/models"
	"girlfanz/services/feed/internal/entity"
)

func ToPostEntity(m *models.Post) *entity.Post {
	if m == nil {
		return nil
	}

	media := make([]entity.MediaRef, len(m.Media))
	for i, pm := range m.Media {
		media[i] = entity.MediaRef{
			Key:         pm.StorageKey,
			ContentType: pm.ContentType,
			Position:    pm.Position,
		}
	}

	return &entity.Post{
		ID:            m.ID,
		CreatorID:     m.CreatorID,
		Type:          entity.PostType(m.Type),
		Content:       m.Content,
		Visibility:    entity.Visibility(m.Visibility),
		PriceInCents:  m.PriceInCents,
		IsFreePreview: m.IsFreePreview,
		ContentRating: entity.ContentRating(m.ContentRating),
		IsPinned:      m.IsPinned,
		IsSponsored:   m.IsSponsored,
		Media:         media,
		CreatedAt:     m.CreatedAt.UTC(),
	}
}

func ToViewerEntity(u *models.User, subscribedCreatorIDs []string) *entity.Viewer {
	if u == nil {
		return nil
	}

	return &entity.Viewer{
		ID:            u.ID,
		Role:          entity.Role(u.Role),
		AgeVerified:   u.AgeVerified,
		Subscriptions: entity.NewSubscriptions(subscribedCreatorIDs...),
	}
}

func ToPurchaseModel(e entity.Purchase) *models.Purchase {
	return &models.Purchase{
		ViewerID:     e.ViewerID,
		PostID:       e.PostID,
		PriceInCents: e.PriceInCents,
		ExpiresAt:    e.ExpiresAt,
	}
}
