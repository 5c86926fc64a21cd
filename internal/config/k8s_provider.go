package config

import (
	"context"
	"os"
	"strings"
)

const serviceAccountDir = "/var/run/secrets/kubernetes.io/serviceaccount"

// K8sProvider serves secrets when running inside a Kubernetes pod. Secrets
// arrive as mounted files, so lookups delegate to a FileProvider; the
// provider only reports itself available when a service account token is
// present.
type K8sProvider struct {
	files     *FileProvider
	namespace string
}

// NewK8sProvider creates a Kubernetes secret provider. An empty
// secretsPath defaults to /var/secrets, and the namespace is detected
// from the pod when not given.
func NewK8sProvider(secretsPath, namespace string) *K8sProvider {
	if secretsPath == "" {
		secretsPath = "/var/secrets"
	}
	if namespace == "" {
		if ns, err := os.ReadFile(serviceAccountDir + "/namespace"); err == nil {
			namespace = strings.TrimSpace(string(ns))
		} else {
			namespace = "default"
		}
	}

	return &K8sProvider{
		files:     NewFileProvider(secretsPath),
		namespace: namespace,
	}
}

// GetSecret reads the mounted secret file for key
func (k *K8sProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return k.files.GetSecret(ctx, key)
}

// Name identifies the provider
func (k *K8sProvider) Name() string {
	return "kubernetes"
}

// IsAvailable reports whether the process is running in a pod with a
// mounted secrets directory
func (k *K8sProvider) IsAvailable(ctx context.Context) bool {
	if _, err := os.Stat(serviceAccountDir + "/token"); err != nil {
		return false
	}
	return k.files.IsAvailable(ctx)
}

// Namespace returns the detected Kubernetes namespace
func (k *K8sProvider) Namespace() string {
	return k.namespace
}
