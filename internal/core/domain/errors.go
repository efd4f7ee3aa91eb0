package domain

import "errors"

// Kind classifies an error for clients. It is rendered next to the
// human-readable message in every failure envelope.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindUnauthorized    Kind = "unauthorized"
	KindAlreadyConsumed Kind = "already_consumed"
	KindExpired         Kind = "expired"
	KindValidation      Kind = "validation_failed"
	KindConflict        Kind = "conflict"
	KindRateLimited     Kind = "rate_limited"
	KindInternal        Kind = "internal"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrTokenNotFound        = errors.New("invite token not found")

	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotApproved        = errors.New("account is awaiting approval")

	ErrTokenAlreadyUsed = errors.New("invite token already used")
	ErrTokenExpired     = errors.New("invite token expired")

	ErrValidation   = errors.New("validation failed")
	ErrEmptyContent = errors.New("content must not be empty")
	ErrInvalidRoom  = errors.New("invalid room name")
	ErrNotInRoom    = errors.New("not in a room")
	ErrInviteNeeded = errors.New("an invite token is required")

	ErrUserExists        = errors.New("user already exists")
	ErrBootstrapConsumed = errors.New("bootstrap admin already created")
	ErrDuplicateToken    = errors.New("invite token already exists")

	ErrRateLimited = errors.New("rate limit exceeded")
)

// KindOf maps err to its client-facing kind. Unknown errors are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrNotificationNotFound),
		errors.Is(err, ErrTokenNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrNotApproved):
		return KindUnauthorized
	case errors.Is(err, ErrTokenAlreadyUsed):
		return KindAlreadyConsumed
	case errors.Is(err, ErrTokenExpired):
		return KindExpired
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrEmptyContent),
		errors.Is(err, ErrInvalidRoom),
		errors.Is(err, ErrNotInRoom),
		errors.Is(err, ErrInviteNeeded):
		return KindValidation
	case errors.Is(err, ErrUserExists),
		errors.Is(err, ErrBootstrapConsumed),
		errors.Is(err, ErrDuplicateToken):
		return KindConflict
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	}
	return KindInternal
}
