package config

import (
	"context"
	"fmt"
)

// SecretProvider resolves configuration values from a backing source.
// Providers are consulted through a chain so the same key works whether it
// comes from a mounted secret or a plain environment variable.
type SecretProvider interface {
	GetSecret(ctx context.Context, key string) (string, error)

	// Name identifies the provider in logs
	Name() string

	// IsAvailable reports whether the provider can serve lookups in the
	// current environment
	IsAvailable(ctx context.Context) bool
}

// ChainProvider tries a list of providers in order and returns the first
// non-empty value
type ChainProvider struct {
	providers []SecretProvider
}

// NewChainProvider builds a chain from the given providers, highest
// priority first
func NewChainProvider(providers ...SecretProvider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

// GetSecret resolves key against each available provider in turn
func (c *ChainProvider) GetSecret(ctx context.Context, key string) (string, error) {
	var lastErr error

	for _, provider := range c.providers {
		if !provider.IsAvailable(ctx) {
			continue
		}

		value, err := provider.GetSecret(ctx, key)
		if err == nil && value != "" {
			return value, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return "", fmt.Errorf("all providers failed for %s: %w", key, lastErr)
	}
	return "", fmt.Errorf("no provider could resolve key: %s", key)
}

// Name identifies the chain provider
func (c *ChainProvider) Name() string {
	return "chain"
}

// IsAvailable reports whether any provider in the chain is usable
func (c *ChainProvider) IsAvailable(ctx context.Context) bool {
	for _, provider := range c.providers {
		if provider.IsAvailable(ctx) {
			return true
		}
	}
	return false
}
