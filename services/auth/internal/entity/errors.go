package entity

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountDisabled      = errors.New("account is deactivated")
	ErrEmailTaken           = errors.New("user with this email already exists")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrInvalidRole          = errors.New("role cannot be chosen at registration")
	ErrForbidden            = errors.New("forbidden")
	ErrSelfSubscription     = errors.New("cannot subscribe to yourself")
	ErrNotACreator          = errors.New("user is not a creator")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
