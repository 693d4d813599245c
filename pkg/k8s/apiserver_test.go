package k8s_test

import (
	"errors"
	"testing"

	"github.com/kroft-dev/kroft/pkg/k8s"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/version"
	"k8s.io/client-go/discovery"
	fakediscovery "k8s.io/client-go/discovery/fake"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"
)

var errAPIServerDown = errors.New("connection refused")

// failingDiscoveryClient simulates an unreachable API server.
type failingDiscoveryClient struct {
	*fakediscovery.FakeDiscovery
}

func (c *failingDiscoveryClient) ServerVersion() (*version.Info, error) {
	return nil, errAPIServerDown
}

// failingClientset wraps a fake clientset with failing discovery.
type failingClientset struct {
	kubernetes.Interface

	discovery discovery.DiscoveryInterface
}

func (s *failingClientset) Discovery() discovery.DiscoveryInterface {
	return s.discovery
}

func TestCheckAPIServerConnectivity_Responds(t *testing.T) {
	t.Parallel()

	err := k8s.CheckAPIServerConnectivity(fake.NewClientset())

	require.NoError(t, err)
}

func TestCheckAPIServerConnectivity_Unavailable(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset()

	fakeDiscovery, ok := clientset.Discovery().(*fakediscovery.FakeDiscovery)
	require.True(t, ok, "expected Discovery() to return *fakediscovery.FakeDiscovery")

	failing := &failingClientset{
		Interface: clientset,
		discovery: &failingDiscoveryClient{FakeDiscovery: fakeDiscovery},
	}

	err := k8s.CheckAPIServerConnectivity(failing)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server connectivity check failed")
	assert.ErrorIs(t, err, errAPIServerDown)
}
