package config

import (
	"context"
	"os"
)

// EnvProvider resolves keys directly from environment variables. It sits
// last in the default chain as the always-available fallback.
type EnvProvider struct{}

// NewEnvProvider creates an environment variable provider
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// GetSecret reads the key as an environment variable
func (e *EnvProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return os.Getenv(key), nil
}

// Name identifies the provider
func (e *EnvProvider) Name() string {
	return "env"
}

// IsAvailable always reports true
func (e *EnvProvider) IsAvailable(ctx context.Context) bool {
	return true
}
