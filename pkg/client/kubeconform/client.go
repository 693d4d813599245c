// Package kubeconform validates Kubernetes manifests against their OpenAPI
// schemas before they are applied to the cluster.
package kubeconform

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yannh/kubeconform/pkg/validator"
)

// DefaultSchemaLocation resolves schemas from the upstream
// kubernetes-json-schema mirror.
const DefaultSchemaLocation = "default"

// ValidationOptions configures validation behavior.
type ValidationOptions struct {
	// SkipKinds lists Kubernetes kinds excluded from validation. Secrets are
	// skipped by the CLI so sops-encrypted fields do not fail validation.
	SkipKinds []string
	// Strict rejects unknown fields.
	Strict bool
	// IgnoreMissingSchemas tolerates resources without a published schema,
	// such as CRDs.
	IgnoreMissingSchemas bool
	// SchemaLocations overrides the schema sources. Defaults to
	// DefaultSchemaLocation.
	SchemaLocations []string
	// KubernetesVersion pins the schema version. Defaults to master.
	KubernetesVersion string
}

// Finding describes a single resource that failed validation.
type Finding struct {
	// Path is the manifest file the resource came from.
	Path string
	// Resource names the offending resource as kind/name when known.
	Resource string
	// Message is the validator's explanation.
	Message string
}

func (f Finding) String() string {
	if f.Resource == "" {
		return fmt.Sprintf("%s: %s", f.Path, f.Message)
	}

	return fmt.Sprintf("%s: %s: %s", f.Path, f.Resource, f.Message)
}

// Client validates manifests with the kubeconform validator.
type Client struct{}

// NewClient creates a new kubeconform client.
func NewClient() *Client {
	return &Client{}
}

// ValidateFile validates a single manifest file and returns one finding per
// invalid resource. A nil error with no findings means the file is valid.
func (c *Client) ValidateFile(path string, opts *ValidationOptions) ([]Finding, error) {
	resourceValidator, err := newValidator(opts)
	if err != nil {
		return nil, err
	}

	return validateFile(resourceValidator, path)
}

// ValidateDirectory walks root and validates every .yaml/.yml file found.
func (c *Client) ValidateDirectory(root string, opts *ValidationOptions) ([]Finding, error) {
	resourceValidator, err := newValidator(opts)
	if err != nil {
		return nil, err
	}

	var findings []Finding

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() || !isManifestFile(path) {
			return nil
		}

		fileFindings, fileErr := validateFile(resourceValidator, path)
		if fileErr != nil {
			return fileErr
		}

		findings = append(findings, fileFindings...)

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	return findings, nil
}

func newValidator(opts *ValidationOptions) (validator.Validator, error) {
	if opts == nil {
		opts = &ValidationOptions{}
	}

	schemaLocations := opts.SchemaLocations
	if len(schemaLocations) == 0 {
		schemaLocations = []string{DefaultSchemaLocation}
	}

	skipKinds := make(map[string]struct{}, len(opts.SkipKinds))
	for _, kind := range opts.SkipKinds {
		skipKinds[kind] = struct{}{}
	}

	resourceValidator, err := validator.New(schemaLocations, validator.Opts{
		Strict:               opts.Strict,
		IgnoreMissingSchemas: opts.IgnoreMissingSchemas,
		SkipKinds:            skipKinds,
		KubernetesVersion:    opts.KubernetesVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	return resourceValidator, nil
}

func validateFile(resourceValidator validator.Validator, path string) ([]Finding, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}

	defer func() { _ = file.Close() }()

	var findings []Finding

	for _, result := range resourceValidator.Validate(path, file) {
		if result.Status != validator.Invalid && result.Status != validator.Error {
			continue
		}

		findings = append(findings, Finding{
			Path:     path,
			Resource: resourceName(result),
			Message:  result.Err.Error(),
		})
	}

	return findings, nil
}

func resourceName(result validator.Result) string {
	signature, err := result.Resource.Signature()
	if err != nil || signature == nil || signature.Kind == "" {
		return ""
	}

	if signature.Name == "" {
		return signature.Kind
	}

	return signature.Kind + "/" + signature.Name
}

func isManifestFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
