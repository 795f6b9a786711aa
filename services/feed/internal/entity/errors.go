package entity

import "errors"

var (
	ErrAgeVerificationRequired = errors.New("age verification required")
	ErrInvalidCursor           = errors.New("invalid cursor")
	ErrViewerNotFound          = errors.New("viewer not found")
	// ErrPurchaseTargetNotFound means a purchase names a viewer or post
	// that does not exist.
	ErrPurchaseTargetNotFound = errors.New("purchase target not found")
	// ErrStoreUnavailable marks failures of the post store or identity
	// lookups. The underlying error stays in the chain.
	ErrStoreUnavailable = errors.New("feed store unavailable")
)
