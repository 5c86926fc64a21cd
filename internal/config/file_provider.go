package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider reads secrets from a directory of one-file-per-secret
// mounts, the layout Kubernetes uses for mounted Secret volumes. The key
// CLAUDE_API_KEY maps to the file claude-api-key under the configured
// directory.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a provider reading from dir
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

// GetSecret reads the file derived from key. A missing file resolves to
// an empty value so the chain can fall through to the next provider.
func (f *FileProvider) GetSecret(ctx context.Context, key string) (string, error) {
	if f.dir == "" {
		return "", fmt.Errorf("secrets directory not configured")
	}

	name := strings.ToLower(strings.ReplaceAll(key, "_", "-"))
	path := filepath.Join(f.dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read secret file %s: %w", path, err)
	}

	return strings.TrimSpace(string(data)), nil
}

// Name identifies the provider
func (f *FileProvider) Name() string {
	return "file"
}

// IsAvailable reports whether the secrets directory exists
func (f *FileProvider) IsAvailable(ctx context.Context) bool {
	if f.dir == "" {
		return false
	}

	info, err := os.Stat(f.dir)
	if err != nil {
		return false
	}
	return info.IsDir()
}
