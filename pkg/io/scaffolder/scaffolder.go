package scaffolder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/io/generator"
	yamlgenerator "github.com/kroft-dev/kroft/pkg/io/generator/yaml"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
	ktypes "sigs.k8s.io/kustomize/api/types"
)

const (
	// KroftConfigFile is the filename for the cluster configuration.
	KroftConfigFile = "kroft.yaml"

	// KustomizationFile is the filename for the workload kustomization.
	KustomizationFile = "kustomization.yaml"

	// SopsConfigFile is the filename for the sops configuration.
	SopsConfigFile = ".sops.yaml"
)

const (
	// secretPathRegex matches the YAML manifests sops encrypts.
	secretPathRegex = `\.ya?ml$`

	// encryptedFieldRegex limits encryption to Kubernetes Secret payload fields.
	encryptedFieldRegex = `^(data|stringData)$`
)

var (
	// ErrKroftConfigGeneration wraps failures when creating kroft.yaml.
	ErrKroftConfigGeneration = errors.New("failed to generate kroft configuration")

	// ErrKustomizationGeneration wraps failures when creating kustomization.yaml.
	ErrKustomizationGeneration = errors.New("failed to generate kustomization configuration")

	// ErrSopsConfigGeneration wraps failures when creating .sops.yaml.
	ErrSopsConfigGeneration = errors.New("failed to generate sops configuration")
)

// SopsConfig models the subset of .sops.yaml kroft scaffolds.
type SopsConfig struct {
	CreationRules []SopsCreationRule `json:"creation_rules"`
}

// SopsCreationRule assigns age recipients to files matched by path.
type SopsCreationRule struct {
	PathRegex      string `json:"path_regex,omitempty"`
	EncryptedRegex string `json:"encrypted_regex,omitempty"`
	Age            string `json:"age,omitempty"`
}

// Scaffolder generates kroft project files and configurations.
type Scaffolder struct {
	Config                 v1alpha1.Cluster
	KroftYAMLGenerator     generator.Generator[v1alpha1.Cluster, yamlgenerator.Options]
	KustomizationGenerator generator.Generator[*ktypes.Kustomization, yamlgenerator.Options]
	SopsGenerator          generator.Generator[*SopsConfig, yamlgenerator.Options]
	// AgeRecipient is the age public key written to .sops.yaml. The sops
	// configuration is skipped when empty.
	AgeRecipient string
	Writer       io.Writer
}

// NewScaffolder creates a new Scaffolder instance for the provided cluster configuration.
func NewScaffolder(cfg v1alpha1.Cluster, writer io.Writer, ageRecipient string) *Scaffolder {
	return &Scaffolder{
		Config:                 cfg,
		KroftYAMLGenerator:     yamlgenerator.NewGenerator[v1alpha1.Cluster](),
		KustomizationGenerator: yamlgenerator.NewGenerator[*ktypes.Kustomization](),
		SopsGenerator:          yamlgenerator.NewGenerator[*SopsConfig](),
		AgeRecipient:           ageRecipient,
		Writer:                 writer,
	}
}

// Scaffold generates the project files in the output directory:
//
//   - kroft.yaml cluster configuration
//   - kustomization.yaml in the workload source directory
//   - .sops.yaml with the age recipient, when one is configured
//
// Existing files are skipped unless force is set.
func (s *Scaffolder) Scaffold(output string, force bool) error {
	err := s.generateKroftConfig(output, force)
	if err != nil {
		return err
	}

	err = s.generateKustomizationConfig(output, force)
	if err != nil {
		return err
	}

	return s.generateSopsConfig(output, force)
}

// applyConfigDefaults fills the fields kroft.yaml always carries so the
// scaffolded file round-trips through the config loader.
func (s *Scaffolder) applyConfigDefaults() v1alpha1.Cluster {
	cluster := s.Config

	if cluster.APIVersion == "" {
		cluster.APIVersion = v1alpha1.APIVersion
	}

	if cluster.Kind == "" {
		cluster.Kind = v1alpha1.Kind
	}

	if cluster.Spec.Name == "" {
		cluster.Spec.Name = v1alpha1.DefaultClusterName
	}

	if cluster.Spec.Workload.SourceDirectory == "" {
		cluster.Spec.Workload.SourceDirectory = v1alpha1.DefaultSourceDirectory
	}

	return cluster
}

func (s *Scaffolder) sourceDirectory() string {
	if s.Config.Spec.Workload.SourceDirectory != "" {
		return s.Config.Spec.Workload.SourceDirectory
	}

	return v1alpha1.DefaultSourceDirectory
}

// probeOutputFile reports whether the output file already exists and its mod
// time for the overwrite bookkeeping.
func probeOutputFile(path string) (bool, time.Time) {
	info, err := os.Stat(path)
	if err != nil {
		return false, time.Time{}
	}

	return true, info.ModTime()
}

// writeGenerated runs a generator with the shared exists/skip handling and
// user messaging.
func writeGenerated[T any](
	s *Scaffolder,
	gen generator.Generator[T, yamlgenerator.Options],
	model T,
	opts yamlgenerator.Options,
	displayName string,
	wrapErr func(error) error,
) error {
	existed, previousModTime := probeOutputFile(opts.Output)

	if existed && !opts.Force {
		notify.WriteMessage(notify.Message{
			Type:    notify.WarningType,
			Content: "skipped '%s', file exists use --force to overwrite",
			Args:    []any{displayName},
			Writer:  s.Writer,
		})

		return nil
	}

	_, err := gen.Generate(model, opts)
	if err != nil {
		return wrapErr(err)
	}

	if existed {
		err = bumpModTime(opts.Output, previousModTime)
		if err != nil {
			return fmt.Errorf("failed to update mod time for %s: %w", displayName, err)
		}
	}

	action := "created"
	if existed {
		action = "overwrote"
	}

	notify.WriteMessage(notify.Message{
		Type:    notify.GenerateType,
		Content: "%s '%s'",
		Args:    []any{action, displayName},
		Writer:  s.Writer,
	})

	return nil
}

// bumpModTime advances the file's mod time past previous so file watchers
// see the overwrite even when the rendered content is unchanged.
func bumpModTime(path string, previous time.Time) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if previous.IsZero() || info.ModTime().After(previous) {
		return nil
	}

	stamp := previous.Add(time.Millisecond)
	if now := time.Now(); now.After(stamp) {
		stamp = now
	}

	err = os.Chtimes(path, stamp, stamp)
	if err != nil {
		return fmt.Errorf("failed to update mod time for %s: %w", path, err)
	}

	return nil
}

// generateKroftConfig generates the kroft.yaml configuration file.
func (s *Scaffolder) generateKroftConfig(output string, force bool) error {
	cluster := s.applyConfigDefaults()

	opts := yamlgenerator.Options{
		Output: filepath.Join(output, KroftConfigFile),
		Force:  force,
	}

	return writeGenerated(s, s.KroftYAMLGenerator, cluster, opts, KroftConfigFile,
		func(err error) error {
			return fmt.Errorf("%w: %w", ErrKroftConfigGeneration, err)
		})
}

// generateKustomizationConfig generates the kustomization.yaml file in the
// workload source directory.
func (s *Scaffolder) generateKustomizationConfig(output string, force bool) error {
	kustomization := ktypes.Kustomization{
		TypeMeta: ktypes.TypeMeta{
			Kind:       ktypes.KustomizationKind,
			APIVersion: ktypes.KustomizationVersion,
		},
	}

	displayName := filepath.Join(s.sourceDirectory(), KustomizationFile)

	opts := yamlgenerator.Options{
		Output: filepath.Join(output, s.sourceDirectory(), KustomizationFile),
		Force:  force,
	}

	return writeGenerated(s, s.KustomizationGenerator, &kustomization, opts, displayName,
		func(err error) error {
			return fmt.Errorf("%w: %w", ErrKustomizationGeneration, err)
		})
}

// generateSopsConfig generates the .sops.yaml file when an age recipient is
// configured.
func (s *Scaffolder) generateSopsConfig(output string, force bool) error {
	if s.AgeRecipient == "" {
		return nil
	}

	sopsConfig := SopsConfig{
		CreationRules: []SopsCreationRule{
			{
				PathRegex:      secretPathRegex,
				EncryptedRegex: encryptedFieldRegex,
				Age:            s.AgeRecipient,
			},
		},
	}

	opts := yamlgenerator.Options{
		Output: filepath.Join(output, SopsConfigFile),
		Force:  force,
	}

	return writeGenerated(s, s.SopsGenerator, &sopsConfig, opts, SopsConfigFile,
		func(err error) error {
			return fmt.Errorf("%w: %w", ErrSopsConfigGeneration, err)
		})
}
