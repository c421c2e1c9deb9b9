package photos

import (
	"context"

	"postforge/internal/core"
)

// Provider defines the unified interface for photo search backends.
type Provider interface {
	// Search returns candidate photos for a query, best matches first.
	Search(ctx context.Context, query string, limit int) ([]core.PhotoRef, error)

	// GetName returns the name of the photo provider.
	GetName() string
}

// ProviderType represents the type of photo provider
type ProviderType string

const (
	ProviderTypePexels    ProviderType = "pexels"
	ProviderTypeOpenverse ProviderType = "openverse"
	ProviderTypeMock      ProviderType = "mock"
)

// ProviderFactory creates photo providers based on type and configuration
type ProviderFactory struct{}

// NewProviderFactory creates a new provider factory
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

// CreateProvider creates a photo provider of the specified type
func (f *ProviderFactory) CreateProvider(providerType ProviderType, config map[string]string) (Provider, error) {
	switch providerType {
	case ProviderTypePexels:
		apiKey, exists := config["api_key"]
		if !exists || apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewPexelsProvider(apiKey), nil
	case ProviderTypeOpenverse:
		return NewOpenverseProvider(), nil
	case ProviderTypeMock:
		return NewMockProvider(), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// GetAvailableProviders returns a list of available provider types
func (f *ProviderFactory) GetAvailableProviders() []ProviderType {
	return []ProviderType{
		ProviderTypePexels,
		ProviderTypeOpenverse,
		ProviderTypeMock,
	}
}
