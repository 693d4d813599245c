// Package k3dprovisioner manages k3d development clusters through the k3d
// Cobra commands, so cluster lifecycles behave exactly like the k3d CLI.
package k3dprovisioner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	clustercommand "github.com/k3d-io/k3d/v5/cmd/cluster"
	v1alpha5 "github.com/k3d-io/k3d/v5/pkg/config/v1alpha5"
	"github.com/sirupsen/logrus"

	"github.com/kroft-dev/kroft/pkg/client/docker"
	"github.com/kroft-dev/kroft/pkg/io/marshaller"
	clustererrors "github.com/kroft-dev/kroft/pkg/svc/provisioner/cluster/errors"
	"github.com/kroft-dev/kroft/pkg/utils/runner"
)

var (
	// listMutex serializes os.Stdout redirection during List. k3d writes
	// straight to os.Stdout before Cobra's output redirection takes effect.
	listMutex sync.Mutex //nolint:gochecknoglobals // guards process-wide os.Stdout swaps

	// logrusConfigOnce configures logrus exactly once. k3d logs through the
	// global logrus logger.
	logrusConfigOnce sync.Once //nolint:gochecknoglobals // one-time logrus setup
)

// K3dClusterProvisioner provisions k3d clusters via the k3d Cobra commands.
type K3dClusterProvisioner struct {
	simpleCfg   *v1alpha5.SimpleConfig
	waitTimeout time.Duration
	engine      docker.Pinger
	runner      runner.CommandRunner
	// listRunner stays silent so the JSON list output is parseable instead
	// of echoed to the console.
	listRunner runner.CommandRunner
}

// NewK3dClusterProvisioner constructs a provisioner that runs the k3d
// commands with console output.
func NewK3dClusterProvisioner(
	simpleCfg *v1alpha5.SimpleConfig,
	waitTimeout time.Duration,
	engine docker.Pinger,
) *K3dClusterProvisioner {
	prov := NewK3dClusterProvisionerWithRunner(
		simpleCfg,
		waitTimeout,
		engine,
		runner.NewCobraCommandRunner(nil, nil),
	)
	prov.listRunner = runner.NewCobraCommandRunner(io.Discard, io.Discard)

	return prov
}

// NewK3dClusterProvisionerWithRunner constructs a provisioner with an
// explicit command runner for testing purposes. The runner handles every
// command, the list command included.
func NewK3dClusterProvisionerWithRunner(
	simpleCfg *v1alpha5.SimpleConfig,
	waitTimeout time.Duration,
	engine docker.Pinger,
	cmdRunner runner.CommandRunner,
) *K3dClusterProvisioner {
	logrusConfigOnce.Do(func() {
		logrus.SetOutput(os.Stdout)
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:      true,
			DisableTimestamp: false,
			FullTimestamp:    false,
			TimestampFormat:  "2006-01-02T15:04:05Z",
		})
		logrus.SetLevel(logrus.InfoLevel)
	})

	return &K3dClusterProvisioner{
		simpleCfg:   simpleCfg,
		waitTimeout: waitTimeout,
		engine:      engine,
		runner:      cmdRunner,
		listRunner:  cmdRunner,
	}
}

// Create provisions a k3d cluster from the in-memory simple config. The
// config is written to a temporary file because the k3d command only reads
// configuration from disk.
func (k *K3dClusterProvisioner) Create(ctx context.Context, name string) error {
	err := docker.EnsureEngineReady(ctx, k.engine)
	if err != nil {
		return err
	}

	target := k.resolveName(name)
	if target != "" && k.simpleCfg != nil {
		// Keep the config name and the name argument in agreement.
		k.simpleCfg.Name = target
	}

	args, cleanup, err := k.createArgs()
	if err != nil {
		return err
	}
	defer cleanup()

	if target != "" {
		args = append(args, target)
	}

	_, err = k.runner.Run(ctx, clustercommand.NewCmdClusterCreate(), args)
	if err != nil {
		return fmt.Errorf("failed to create k3d cluster: %w", err)
	}

	return nil
}

// Delete removes a k3d cluster.
// Returns clustererrors.ErrClusterNotFound if the cluster does not exist,
// since the k3d command treats deleting a missing cluster as a success.
func (k *K3dClusterProvisioner) Delete(ctx context.Context, name string) error {
	target := k.resolveName(name)

	exists, err := k.Exists(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to check cluster existence: %w", err)
	}

	if !exists {
		return fmt.Errorf("%w: %s", clustererrors.ErrClusterNotFound, target)
	}

	_, err = k.runner.Run(ctx, clustercommand.NewCmdClusterDelete(), []string{target})
	if err != nil {
		return fmt.Errorf("failed to delete k3d cluster: %w", err)
	}

	return nil
}

// List returns the names of all k3d clusters.
func (k *K3dClusterProvisioner) List(ctx context.Context) ([]string, error) {
	err := docker.EnsureEngineReady(ctx, k.engine)
	if err != nil {
		return nil, err
	}

	// Silence logrus while listing so the JSON output stays parseable.
	originalLogOutput := logrus.StandardLogger().Out

	logrus.SetOutput(io.Discard)
	defer logrus.SetOutput(originalLogOutput)

	listMutex.Lock()

	originalStdout := os.Stdout

	pipeReader, pipeWriter, err := os.Pipe()
	if err != nil {
		listMutex.Unlock()

		return nil, fmt.Errorf("cluster list: create stdout pipe: %w", err)
	}

	os.Stdout = pipeWriter

	output, runErr := k.runListCommand(ctx)

	// Restore stdout before any blocking reads, while still holding the lock.
	_ = pipeWriter.Close()
	os.Stdout = originalStdout

	listMutex.Unlock()

	// Drain whatever k3d wrote directly to the redirected stdout.
	_, copyErr := io.Copy(io.Discard, pipeReader)
	_ = pipeReader.Close()

	if copyErr != nil {
		logrus.WithError(copyErr).Debug("failed to drain stdout pipe when listing k3d clusters")
	}

	if runErr != nil {
		return nil, fmt.Errorf("failed to list k3d clusters: %w", runErr)
	}

	return parseClusterNames(output)
}

// Exists reports whether the target k3d cluster is present.
func (k *K3dClusterProvisioner) Exists(ctx context.Context, name string) (bool, error) {
	clusters, err := k.List(ctx)
	if err != nil {
		return false, err
	}

	target := k.resolveName(name)
	if target == "" {
		return false, nil
	}

	return slices.Contains(clusters, target), nil
}

// runListCommand executes the k3d cluster list command and returns its JSON
// output.
func (k *K3dClusterProvisioner) runListCommand(ctx context.Context) (string, error) {
	res, err := k.listRunner.Run(ctx, clustercommand.NewCmdClusterList(), []string{"--output", "json"})
	if err != nil {
		return "", fmt.Errorf("run k3d cluster list: %w", err)
	}

	return strings.TrimSpace(res.Stdout), nil
}

// parseClusterNames extracts cluster names from the JSON list output.
func parseClusterNames(output string) ([]string, error) {
	if output == "" {
		return nil, nil
	}

	var entries []struct {
		Name string `json:"name"`
	}

	err := json.Unmarshal([]byte(output), &entries)
	if err != nil {
		return nil, fmt.Errorf("cluster list: parse output: %w", err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.Name != "" {
			names = append(names, entry.Name)
		}
	}

	return names, nil
}

// createArgs renders the simple config to a temporary file and returns the
// create arguments along with a cleanup function for the file.
func (k *K3dClusterProvisioner) createArgs() ([]string, func(), error) {
	args := []string{}

	if k.waitTimeout > 0 {
		args = append(args, "--timeout", k.waitTimeout.String())
	}

	if k.simpleCfg == nil {
		return args, func() {}, nil
	}

	tmpFile, err := os.CreateTemp("", "k3d-config-*.yaml")
	if err != nil {
		return nil, nil, fmt.Errorf("create temp config file: %w", err)
	}

	cleanup := func() { _ = os.Remove(tmpFile.Name()) }

	_ = tmpFile.Close()

	configYAML, err := marshaller.NewYAMLMarshaller[*v1alpha5.SimpleConfig]().Marshal(k.simpleCfg)
	if err != nil {
		cleanup()

		return nil, nil, fmt.Errorf("marshal k3d config: %w", err)
	}

	const configFilePerms = 0o600

	err = os.WriteFile(tmpFile.Name(), []byte(configYAML), configFilePerms)
	if err != nil {
		cleanup()

		return nil, nil, fmt.Errorf("write temp config file: %w", err)
	}

	return append(args, "--config", tmpFile.Name()), cleanup, nil
}

func (k *K3dClusterProvisioner) resolveName(name string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}

	if k.simpleCfg != nil && strings.TrimSpace(k.simpleCfg.Name) != "" {
		return k.simpleCfg.Name
	}

	return ""
}
