// Package fleetinstaller wires the cluster to its GitOps source.
//
// Rancher bundles Fleet, so there is no chart to install here. The installer
// waits for the Fleet CRDs to register, places the sops-age key material and
// applies a GitRepo pointing at the configured repository.
package fleetinstaller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/k8s"
	"github.com/kroft-dev/kroft/pkg/k8s/readiness"
	apiextclientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

const (
	// fieldManager identifies this tool in the managed fields of applied
	// objects.
	fieldManager = "kroft"

	defaultBranch = "main"

	sopsSecretName = "sops-age"
	sopsSecretKey  = "age.agekey"
)

// fleetCRDs are the definitions the GitRepo apply depends on. Rancher's
// embedded Fleet controller registers them shortly after Rancher comes up.
//
//nolint:gochecknoglobals // package-level CRD list
var fleetCRDs = []string{
	"gitrepos.fleet.cattle.io",
	"bundles.fleet.cattle.io",
}

// gitRepoResource locates Fleet's GitRepo custom resource.
//
//nolint:gochecknoglobals // package-level resource identifier
var gitRepoResource = schema.GroupVersionResource{
	Group:    "fleet.cattle.io",
	Version:  "v1alpha1",
	Resource: "gitrepos",
}

// ErrRepoURLRequired is returned when no Git repository URL is configured.
var ErrRepoURLRequired = errors.New("fleet repository URL is required")

// FleetInstaller connects the cluster to a Git repository through Fleet.
type FleetInstaller struct {
	clientset     kubernetes.Interface
	apiextClient  apiextclientset.Interface
	dynamicClient dynamic.Interface
	clusterName   string
	config        v1alpha1.Fleet
	ageKey        []byte
	timeout       time.Duration
}

// NewFleetInstaller creates a new Fleet installer instance. A nil ageKey
// skips the sops-age secret, leaving the repository without SOPS decryption.
func NewFleetInstaller(
	clientset kubernetes.Interface,
	apiextClient apiextclientset.Interface,
	dynamicClient dynamic.Interface,
	clusterName string,
	config v1alpha1.Fleet,
	ageKey []byte,
	timeout time.Duration,
) *FleetInstaller {
	return &FleetInstaller{
		clientset:     clientset,
		apiextClient:  apiextClient,
		dynamicClient: dynamicClient,
		clusterName:   clusterName,
		config:        config,
		ageKey:        ageKey,
		timeout:       timeout,
	}
}

// Install waits for the Fleet CRDs, ensures the sops-age secret and applies
// the GitRepo.
func (f *FleetInstaller) Install(ctx context.Context) error {
	if f.config.RepoURL == "" {
		return ErrRepoURLRequired
	}

	for _, crd := range fleetCRDs {
		err := readiness.WaitForCRDEstablished(ctx, f.apiextClient, crd, f.timeout)
		if err != nil {
			return fmt.Errorf("wait for fleet CRD %s: %w", crd, err)
		}
	}

	if len(f.ageKey) > 0 {
		err := k8s.EnsureSecret(ctx, f.clientset, f.config.Namespace, sopsSecretName,
			map[string][]byte{sopsSecretKey: f.ageKey})
		if err != nil {
			return fmt.Errorf("ensure %s secret: %w", sopsSecretName, err)
		}
	}

	gitRepo := f.gitRepo()

	_, err := f.dynamicClient.Resource(gitRepoResource).
		Namespace(f.config.Namespace).
		Apply(ctx, gitRepo.GetName(), gitRepo, metav1.ApplyOptions{
			FieldManager: fieldManager,
			Force:        true,
		})
	if err != nil {
		return fmt.Errorf("apply fleet gitrepo %s: %w", gitRepo.GetName(), err)
	}

	return nil
}

// Uninstall deletes the GitRepo. The sops-age secret stays in place.
func (f *FleetInstaller) Uninstall(ctx context.Context) error {
	name := f.gitRepoName()

	err := f.dynamicClient.Resource(gitRepoResource).
		Namespace(f.config.Namespace).
		Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("delete fleet gitrepo %s: %w", name, err)
	}

	return nil
}

func (f *FleetInstaller) gitRepoName() string {
	return k8s.SanitizeToDNSLabel(f.clusterName)
}

func (f *FleetInstaller) gitRepo() *unstructured.Unstructured {
	branch := f.config.Branch
	if branch == "" {
		branch = defaultBranch
	}

	spec := map[string]any{
		"repo":   f.config.RepoURL,
		"branch": branch,
	}

	if len(f.config.Paths) > 0 {
		// runtime.DeepCopyJSON panics on []string, the object may only
		// hold JSON-typed values.
		paths := make([]any, 0, len(f.config.Paths))
		for _, path := range f.config.Paths {
			paths = append(paths, path)
		}

		spec["paths"] = paths
	}

	return &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "fleet.cattle.io/v1alpha1",
		"kind":       "GitRepo",
		"metadata": map[string]any{
			"name":      f.gitRepoName(),
			"namespace": f.config.Namespace,
		},
		"spec": spec,
	}}
}
