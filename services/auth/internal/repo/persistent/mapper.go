package persistent

import (
	"girlfanz/pkg/models"
	"girlfanz/services/auth/internal/entity"
)

func ToUserEntity(m *models.User) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:            m.ID,
		Email:         m.Email,
		Username:      m.Username,
		Password:      m.Password,
		AvatarURL:     m.AvatarURL,
		Role:          entity.UserRole(m.Role),
		AgeVerified:   m.AgeVerified,
		AgeVerifiedAt: m.AgeVerifiedAt,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func ToUserModel(e *entity.User) *models.User {
	if e == nil {
		return nil
	}

	return &models.User{
		ID:            e.ID,
		Email:         e.Email,
		Username:      e.Username,
		Password:      e.Password,
		AvatarURL:     e.AvatarURL,
		Role:          models.UserRole(e.Role),
		AgeVerified:   e.AgeVerified,
		AgeVerifiedAt: e.AgeVerifiedAt,
		IsActive:      e.IsActive,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func ToSubscriptionEntity(m *models.Subscription) *entity.Subscription {
	if m == nil {
		return nil
	}

	return &entity.Subscription{
		ID:        m.ID,
		ViewerID:  m.ViewerID,
		CreatorID: m.CreatorID,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
}
