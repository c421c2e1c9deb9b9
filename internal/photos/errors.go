package photos

import "errors"

var (
	// ErrMissingAPIKey is returned when a provider requires a key that is
	// not configured
	ErrMissingAPIKey = errors.New("photo provider API key is required")

	// ErrUnsupportedProvider is returned for unknown provider types
	ErrUnsupportedProvider = errors.New("unsupported photo provider")

	// ErrNoPhotos is returned when a search yields no usable results
	ErrNoPhotos = errors.New("no photos found")

	// ErrCatalogExhausted is returned when every non-blocked catalog entry
	// has been consumed and no random fallback is possible
	ErrCatalogExhausted = errors.New("all cataloged photos are blocked or consumed")

	// ErrProviderUnavailable is returned when a provider cannot be reached
	ErrProviderUnavailable = errors.New("photo provider is currently unavailable")
)
