package entity

import "time"

type UserRole string

const (
	RoleFan     UserRole = "fan"
	RoleCreator UserRole = "creator"
	RoleAdmin   UserRole = "admin"
)

// SelfServiceRole reports whether a role may be chosen at registration.
func (r UserRole) SelfServiceRole() bool {
	return r == RoleFan || r == RoleCreator
}

type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Username      string     `json:"username"`
	Password      string     `json:"-"`
	AvatarURL     string     `json:"avatar_url"`
	Role          UserRole   `json:"role"`
	AgeVerified   bool       `json:"age_verified"`
	AgeVerifiedAt *time.Time `json:"age_verified_at,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type Subscription struct {
	ID        string     `json:"id"`
	ViewerID  string     `json:"viewer_id"`
	CreatorID string     `json:"creator_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
