package entity

type Role string

const (
	RoleFan     Role = "fan"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleFan, RoleCreator, RoleAdmin:
		return true
	}
	return false
}

// Viewer is the caller of the feed as supplied by the identity provider.
// The zero value is an anonymous, unverified viewer.
type Viewer struct {
	ID            string
	Role          Role
	AgeVerified   bool
	Subscriptions map[string]struct{}
}

func Anonymous() Viewer {
	return Viewer{}
}

func (v Viewer) IsAnonymous() bool {
	return v.ID == ""
}

func (v Viewer) IsAdmin() bool {
	return !v.IsAnonymous() && v.Role == RoleAdmin
}

func (v Viewer) SubscribesTo(creatorID string) bool {
	_, ok := v.Subscriptions[creatorID]
	return ok
}

// NewSubscriptions builds the subscription set from creator ids.
func NewSubscriptions(creatorIDs ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(creatorIDs))
	for _, id := range creatorIDs {
		set[id] = struct{}{}
	}
	return set
}
