// Package helm wraps the Helm v4 action API behind a small interface used by
// the component installers (cert-manager, Rancher).
package helm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	helmv4action "helm.sh/helm/v4/pkg/action"
	helmv4loader "helm.sh/helm/v4/pkg/chart/loader"
	chartv2 "helm.sh/helm/v4/pkg/chart/v2"
	helmv4cli "helm.sh/helm/v4/pkg/cli"
	helmv4getter "helm.sh/helm/v4/pkg/getter"
	helmv4kube "helm.sh/helm/v4/pkg/kube"
	v1 "helm.sh/helm/v4/pkg/release/v1"
	repov1 "helm.sh/helm/v4/pkg/repo/v1"
)

// DefaultTimeout defines the fallback Helm chart installation timeout.
const DefaultTimeout = 5 * time.Minute

var (
	errMissingReleaseName = errors.New("helm: release name is required")
	errMissingChartSpec   = errors.New("helm: chart spec is required")
)

// Silencing swaps the process-wide os.Stderr, so only one capture may run at
// a time.
var stderrCaptureMu sync.Mutex //nolint:gochecknoglobals // guards the os.Stderr swap

// ChartSpec describes a chart operation: which chart, where it comes from and
// how its values are assembled.
type ChartSpec struct {
	ReleaseName string
	ChartName   string
	Namespace   string
	Version     string

	CreateNamespace bool
	Wait            bool
	WaitForJobs     bool
	Timeout         time.Duration
	Silent          bool
	UpgradeCRDs     bool

	ValuesYaml  string
	ValueFiles  []string
	SetValues   map[string]string
	SetFileVals map[string]string
	SetJSONVals map[string]string

	RepoURL               string
	Username              string
	Password              string
	CertFile              string
	KeyFile               string
	CaFile                string
	InsecureSkipTLSverify bool
}

// RepositoryEntry describes a Helm repository that should be added locally
// before performing chart operations.
type RepositoryEntry struct {
	Name                  string
	URL                   string
	Username              string
	Password              string
	CertFile              string
	KeyFile               string
	CaFile                string
	InsecureSkipTLSverify bool
}

// ReleaseInfo captures metadata about a Helm release after an operation.
type ReleaseInfo struct {
	Name       string
	Namespace  string
	Revision   int
	Status     string
	Chart      string
	AppVersion string
	Updated    time.Time
	Notes      string
}

// Interface defines the subset of Helm functionality the installers need.
type Interface interface {
	InstallChart(ctx context.Context, spec *ChartSpec) (*ReleaseInfo, error)
	InstallOrUpgradeChart(ctx context.Context, spec *ChartSpec) (*ReleaseInfo, error)
	UninstallRelease(ctx context.Context, releaseName, namespace string) error
	AddRepository(ctx context.Context, entry *RepositoryEntry, timeout time.Duration) error
}

// Client is the default Helm implementation backed by the v4 action API.
type Client struct {
	actionConfig *helmv4action.Configuration
	settings     *helmv4cli.EnvSettings
	kubeConfig   string
	kubeContext  string
	debugLog     func(string, ...any)
}

var _ Interface = (*Client)(nil)

// NewClient creates a Helm client using the provided kubeconfig and context.
func NewClient(kubeConfig, kubeContext string) (*Client, error) {
	return newClient(kubeConfig, kubeContext, nil)
}

func newClient(
	kubeConfig, kubeContext string,
	debug func(string, ...any),
) (*Client, error) {
	if debug == nil {
		debug = func(string, ...any) {}
	}

	settings := helmv4cli.New()
	if kubeConfig != "" {
		settings.KubeConfig = kubeConfig
	}

	if kubeContext != "" {
		settings.KubeContext = kubeContext
	}

	client := &Client{
		actionConfig: new(helmv4action.Configuration),
		settings:     settings,
		kubeConfig:   kubeConfig,
		kubeContext:  kubeContext,
		debugLog:     debug,
	}

	err := client.reinitNamespace(settings.Namespace())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize helm action config: %w", err)
	}

	return client, nil
}

// InstallChart installs a Helm chart using the provided specification.
func (c *Client) InstallChart(ctx context.Context, spec *ChartSpec) (*ReleaseInfo, error) {
	return c.installRelease(ctx, spec, false)
}

// InstallOrUpgradeChart upgrades a Helm chart when present and installs it otherwise.
func (c *Client) InstallOrUpgradeChart(ctx context.Context, spec *ChartSpec) (*ReleaseInfo, error) {
	return c.installRelease(ctx, spec, true)
}

// UninstallRelease removes a Helm release by name within the provided namespace.
func (c *Client) UninstallRelease(ctx context.Context, releaseName, namespace string) error {
	if releaseName == "" {
		return errMissingReleaseName
	}

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return fmt.Errorf("uninstall of %q cancelled: %w", releaseName, ctxErr)
	}

	cleanup, err := c.switchNamespace(namespace)
	if err != nil {
		return err
	}
	defer cleanup()

	client := helmv4action.NewUninstall(c.actionConfig)
	client.KeepHistory = false

	_, uninstallErr := client.Run(releaseName)
	if uninstallErr != nil {
		return fmt.Errorf("failed to uninstall release %q: %w", releaseName, uninstallErr)
	}

	return nil
}

func (c *Client) installRelease(
	ctx context.Context,
	spec *ChartSpec,
	upgrade bool,
) (*ReleaseInfo, error) {
	if spec == nil {
		return nil, errMissingChartSpec
	}

	cleanup, err := c.switchNamespace(spec.Namespace)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var release *v1.Release

	if upgrade && c.releaseExists(spec.ReleaseName) {
		release, err = c.upgradeRelease(ctx, spec)
	} else {
		release, err = c.performInstall(ctx, spec)
	}

	if err != nil {
		return nil, err
	}

	return newReleaseInfo(release), nil
}

func (c *Client) releaseExists(releaseName string) bool {
	histClient := helmv4action.NewHistory(c.actionConfig)
	histClient.Max = 1

	releases, err := histClient.Run(releaseName)

	return err == nil && len(releases) > 0
}

// applyTiming copies the spec's shared wait and timeout tuning onto either
// action client. Install and Upgrade do not share a type, so the fields are
// passed by pointer.
func applyTiming(
	spec *ChartSpec,
	waitStrategy *helmv4kube.WaitStrategy,
	waitForJobs *bool,
	timeout *time.Duration,
	version *string,
) {
	if spec.Wait {
		*waitStrategy = helmv4kube.StatusWatcherStrategy
	}

	*waitForJobs = spec.WaitForJobs

	*timeout = spec.Timeout
	if *timeout == 0 {
		*timeout = DefaultTimeout
	}

	*version = spec.Version
}

func (c *Client) performInstall(ctx context.Context, spec *ChartSpec) (*v1.Release, error) {
	client := helmv4action.NewInstall(c.actionConfig)
	client.ReleaseName = spec.ReleaseName
	client.Namespace = spec.Namespace
	client.CreateNamespace = spec.CreateNamespace
	applyTiming(spec, &client.WaitStrategy, &client.WaitForJobs, &client.Timeout, &client.Version)

	chart, err := c.locateAndLoadChart(spec, client)
	if err != nil {
		return nil, err
	}

	vals, err := c.mergeValues(spec)
	if err != nil {
		return nil, err
	}

	release, err := runRelease(spec.Silent, func() (any, error) {
		return client.RunWithContext(ctx, chart, vals)
	})
	if err != nil {
		return nil, fmt.Errorf("install release %q: %w", spec.ReleaseName, err)
	}

	return release, nil
}

func (c *Client) upgradeRelease(ctx context.Context, spec *ChartSpec) (*v1.Release, error) {
	client := helmv4action.NewUpgrade(c.actionConfig)
	client.Namespace = spec.Namespace
	applyTiming(spec, &client.WaitStrategy, &client.WaitForJobs, &client.Timeout, &client.Version)
	// SkipCRDs carries the inverted meaning of UpgradeCRDs in the v4 API.
	client.SkipCRDs = !spec.UpgradeCRDs

	chart, err := c.locateAndLoadChart(spec, client)
	if err != nil {
		return nil, err
	}

	vals, err := c.mergeValues(spec)
	if err != nil {
		return nil, err
	}

	release, err := runRelease(spec.Silent, func() (any, error) {
		return client.RunWithContext(ctx, spec.ReleaseName, chart, vals)
	})
	if err != nil {
		return nil, fmt.Errorf("upgrade release %q: %w", spec.ReleaseName, err)
	}

	return release, nil
}

// runRelease executes the action, optionally with helm's stderr chatter
// silenced, and narrows the result to a v4 release.
func runRelease(silent bool, run func() (any, error)) (*v1.Release, error) {
	var (
		result any
		err    error
	)

	if silent {
		result, err = runWithSilencedStderr(run)
	} else {
		result, err = run()
	}

	if err != nil {
		return nil, err
	}

	release, ok := result.(*v1.Release)
	if !ok {
		return nil, fmt.Errorf("unexpected release type: %T", result)
	}

	return release, nil
}

func (c *Client) locateAndLoadChart(spec *ChartSpec, client any) (*chartv2.Chart, error) {
	chartPath := spec.ChartName

	if spec.RepoURL != "" {
		resolved, err := c.locateChartFromRepo(spec, client)
		if err != nil {
			return nil, err
		}

		chartPath = resolved
	}

	loaded, err := helmv4loader.Load(chartPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart: %w", err)
	}

	chart, ok := loaded.(*chartv2.Chart)
	if !ok {
		return nil, fmt.Errorf("unexpected chart type: %T", loaded)
	}

	return chart, nil
}

func (c *Client) locateChartFromRepo(spec *ChartSpec, client any) (string, error) {
	_, chartName := splitChartRef(spec.ChartName)
	if chartName == "" {
		chartName = spec.ChartName
	}

	switch action := client.(type) {
	case *helmv4action.Install:
		applyChartPathOptions(&action.ChartPathOptions, spec)
	case *helmv4action.Upgrade:
		applyChartPathOptions(&action.ChartPathOptions, spec)
	}

	options := []repov1.FindChartInRepoURLOption{
		repov1.WithChartVersion(spec.Version),
	}

	if spec.Username != "" || spec.Password != "" {
		options = append(options, repov1.WithUsernamePassword(spec.Username, spec.Password))
	}

	if spec.CertFile != "" || spec.KeyFile != "" || spec.CaFile != "" {
		options = append(options, repov1.WithClientTLS(spec.CertFile, spec.KeyFile, spec.CaFile))
	}

	if spec.InsecureSkipTLSverify {
		options = append(options, repov1.WithInsecureSkipTLSVerify(spec.InsecureSkipTLSverify))
	}

	chartURL, err := repov1.FindChartInRepoURL(
		spec.RepoURL,
		chartName,
		helmv4getter.All(c.settings),
		options...,
	)
	if err != nil {
		return "", fmt.Errorf("chart %q not found in repository %s: %w", chartName, spec.RepoURL, err)
	}

	return chartURL, nil
}

func applyChartPathOptions(opts *helmv4action.ChartPathOptions, spec *ChartSpec) {
	opts.RepoURL = spec.RepoURL
	opts.Username = spec.Username
	opts.Password = spec.Password
	opts.CertFile = spec.CertFile
	opts.KeyFile = spec.KeyFile
	opts.CaFile = spec.CaFile
	opts.InsecureSkipTLSVerify = spec.InsecureSkipTLSverify
}

// reinitNamespace rebuilds the action configuration against the namespace.
// The v4 API offers no lighter way to repoint an initialized configuration.
func (c *Client) reinitNamespace(namespace string) error {
	//nolint:wrapcheck // callers add the namespace context
	return c.actionConfig.Init(
		c.settings.RESTClientGetter(),
		namespace,
		os.Getenv("HELM_DRIVER"),
	)
}

// switchNamespace points the action configuration at the given namespace and
// returns a cleanup that restores the previous one.
func (c *Client) switchNamespace(namespace string) (func(), error) {
	previous := c.settings.Namespace()
	if namespace == "" || previous == namespace {
		return func() {}, nil
	}

	c.settings.SetNamespace(namespace)

	err := c.reinitNamespace(namespace)
	if err != nil {
		c.settings.SetNamespace(previous)
		_ = c.reinitNamespace(previous)

		return nil, fmt.Errorf("failed to set helm namespace %q: %w", namespace, err)
	}

	return func() {
		c.settings.SetNamespace(previous)

		restoreErr := c.reinitNamespace(previous)
		if restoreErr != nil {
			c.debugLog("failed to restore helm namespace: %v", restoreErr)
		}
	}, nil
}

// splitChartRef splits "repo/chart" into its halves. A bare chart name comes
// back with an empty repo.
func splitChartRef(ref string) (repo, chart string) {
	if before, after, found := strings.Cut(ref, "/"); found {
		return before, after
	}

	return "", ref
}

func newReleaseInfo(release *v1.Release) *ReleaseInfo {
	if release == nil {
		return nil
	}

	return &ReleaseInfo{
		Name:       release.Name,
		Namespace:  release.Namespace,
		Revision:   release.Version,
		Status:     release.Info.Status.String(),
		Chart:      release.Chart.Metadata.Name,
		AppVersion: release.Chart.Metadata.AppVersion,
		Updated:    release.Info.LastDeployed,
		Notes:      release.Info.Notes,
	}
}

// runWithSilencedStderr redirects process stderr for the duration of the
// operation. Helm's kube client logs readiness chatter straight to stderr
// which drowns the spinner output during long installs. When the operation
// fails the captured chatter is folded into the returned error.
func runWithSilencedStderr(operation func() (any, error)) (any, error) {
	stderrCaptureMu.Lock()
	defer stderrCaptureMu.Unlock()

	readPipe, writePipe, pipeErr := os.Pipe()
	if pipeErr != nil {
		return operation()
	}

	original := os.Stderr
	os.Stderr = writePipe

	captured := make(chan string, 1)

	go func() {
		var buf bytes.Buffer

		_, _ = io.Copy(&buf, readPipe)
		captured <- buf.String()
	}()

	result, runErr := func() (any, error) {
		defer func() {
			_ = writePipe.Close()
			os.Stderr = original
		}()

		return operation()
	}()

	logs := strings.TrimSpace(<-captured)

	_ = readPipe.Close()

	if runErr != nil && logs != "" {
		runErr = fmt.Errorf("%w: %s", runErr, logs)
	}

	return result, runErr
}
