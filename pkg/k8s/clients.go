package k8s

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	apiextclientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// ErrKubeconfigPathEmpty is returned when a kubeconfig path is empty.
var ErrKubeconfigPathEmpty = errors.New("kubeconfig path is empty")

// DefaultKubeconfigPath returns ~/.kube/config for the current user.
func DefaultKubeconfigPath() string {
	homeDir, _ := os.UserHomeDir()

	return filepath.Join(homeDir, ".kube", "config")
}

// BuildRESTConfig builds a Kubernetes REST config from a kubeconfig path and
// optional context. An empty context uses the kubeconfig's current context.
//
// Returns ErrKubeconfigPathEmpty if the kubeconfig path is empty.
func BuildRESTConfig(kubeconfig, context string) (*rest.Config, error) {
	if kubeconfig == "" {
		return nil, ErrKubeconfigPathEmpty
	}

	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		&clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig},
		&clientcmd.ConfigOverrides{CurrentContext: context},
	)

	restConfig, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	return restConfig, nil
}

// clientFor builds one typed client off a fresh REST config.
func clientFor[T any](kubeconfig, context, kind string, build func(*rest.Config) (T, error)) (T, error) {
	var zero T

	restConfig, err := BuildRESTConfig(kubeconfig, context)
	if err != nil {
		return zero, fmt.Errorf("failed to build rest config: %w", err)
	}

	client, err := build(restConfig)
	if err != nil {
		return zero, fmt.Errorf("failed to create %s client: %w", kind, err)
	}

	return client, nil
}

// NewClientset creates a Kubernetes clientset from a kubeconfig path and context.
func NewClientset(kubeconfig, context string) (*kubernetes.Clientset, error) {
	return clientFor(kubeconfig, context, "kubernetes", kubernetes.NewForConfig)
}

// NewAPIExtensionsClientset creates a clientset for CustomResourceDefinition
// access. Used to gate Fleet resource creation on its CRDs being established.
func NewAPIExtensionsClientset(kubeconfig, context string) (*apiextclientset.Clientset, error) {
	return clientFor(kubeconfig, context, "apiextensions", apiextclientset.NewForConfig)
}

// NewDynamicClient creates a dynamic client for unstructured resources such
// as Fleet GitRepos.
//
//nolint:ireturn // dynamic.Interface keeps the client swappable in tests
func NewDynamicClient(kubeconfig, context string) (dynamic.Interface, error) {
	return clientFor(kubeconfig, context, "dynamic", dynamic.NewForConfig)
}
