package domain

import "errors"

var (
	// ErrStoreUnavailable is returned when the backing question client/session
	// has not been initialized. It is the only error that aborts a fetch.
	ErrStoreUnavailable = errors.New("question store not initialized")
	// ErrTopicRequired is returned when the mandatory topic parameter is missing.
	ErrTopicRequired = errors.New("topic parameter is required")
	// ErrProviderUnavailable indicates the identity provider client is not configured.
	ErrProviderUnavailable = errors.New("identity provider not initialized")
	// ErrPopupBlocked is a recoverable popup sign-in failure; callers fall back to redirect.
	ErrPopupBlocked = errors.New("sign-in popup blocked")
	// ErrPopupCancelled is a recoverable popup sign-in failure; callers fall back to redirect.
	ErrPopupCancelled = errors.New("sign-in popup request cancelled")
	// ErrSignedOut indicates an operation that needs an identity ran without one.
	ErrSignedOut = errors.New("no signed-in user")
)
