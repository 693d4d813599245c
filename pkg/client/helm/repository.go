package helm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kroft-dev/kroft/pkg/client/netretry"
	helmv4getter "helm.sh/helm/v4/pkg/getter"
	repov1 "helm.sh/helm/v4/pkg/repo/v1"
)

const (
	repoDirMode  = 0o750
	repoFileMode = 0o640

	// Retry configuration for repository index downloads. Chart registries
	// occasionally return transient 5xx responses under load.
	repoIndexMaxRetries    = 3
	repoIndexRetryBaseWait = 2 * time.Second
	repoIndexRetryMaxWait  = 15 * time.Second
)

var (
	errRepositoryEntryRequired = errors.New("helm: repository entry is required")
	errRepositoryNameRequired  = errors.New("helm: repository name is required")
	errRepositoryCacheUnset    = errors.New("helm: repository cache path is not set")
	errRepositoryConfigUnset   = errors.New("helm: repository config path is not set")
)

// repoPaths holds the resolved repository config file and cache directory.
type repoPaths struct {
	configFile string
	cacheDir   string
}

// AddRepository registers a Helm repository and refreshes its index. The
// timeout bounds the HTTP requests that download the index.
func (c *Client) AddRepository(
	ctx context.Context,
	entry *RepositoryEntry,
	timeout time.Duration,
) error {
	if entry == nil {
		return errRepositoryEntryRequired
	}

	if entry.Name == "" {
		return errRepositoryNameRequired
	}

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return fmt.Errorf("add repository context cancelled: %w", ctxErr)
	}

	paths, err := c.resolveRepoPaths()
	if err != nil {
		return err
	}

	repoEntry := &repov1.Entry{
		Name:                  entry.Name,
		URL:                   entry.URL,
		Username:              entry.Username,
		Password:              entry.Password,
		CertFile:              entry.CertFile,
		KeyFile:               entry.KeyFile,
		CAFile:                entry.CaFile,
		InsecureSkipTLSVerify: entry.InsecureSkipTLSverify,
	}

	err = c.refreshRepoIndex(ctx, repoEntry, paths.cacheDir, timeout)
	if err != nil {
		return err
	}

	return recordRepoEntry(paths.configFile, repoEntry)
}

// resolveRepoPaths determines where the repository config and index cache
// live, honoring the HELM_REPOSITORY_CONFIG and HELM_REPOSITORY_CACHE
// environment overrides, and creates both directories.
func (c *Client) resolveRepoPaths() (repoPaths, error) {
	configFile := c.settings.RepositoryConfig
	if env := os.Getenv("HELM_REPOSITORY_CONFIG"); env != "" {
		configFile = env
		c.settings.RepositoryConfig = env
	}

	if configFile == "" {
		return repoPaths{}, errRepositoryConfigUnset
	}

	cacheDir := c.settings.RepositoryCache
	if env := os.Getenv("HELM_REPOSITORY_CACHE"); env != "" {
		cacheDir = env
		c.settings.RepositoryCache = env
	}

	if cacheDir == "" {
		return repoPaths{}, errRepositoryCacheUnset
	}

	mkdirErr := os.MkdirAll(filepath.Dir(configFile), repoDirMode)
	if mkdirErr != nil {
		return repoPaths{}, fmt.Errorf("create repository directory: %w", mkdirErr)
	}

	mkdirErr = os.MkdirAll(cacheDir, repoDirMode)
	if mkdirErr != nil {
		return repoPaths{}, fmt.Errorf("create repository cache directory: %w", mkdirErr)
	}

	return repoPaths{configFile: configFile, cacheDir: cacheDir}, nil
}

// refreshRepoIndex downloads the repository index, retrying transient
// registry failures with exponential backoff.
func (c *Client) refreshRepoIndex(
	ctx context.Context,
	repoEntry *repov1.Entry,
	cacheDir string,
	timeout time.Duration,
) error {
	// WithTimeout bounds the index download so a stalled registry cannot
	// hang the bootstrap.
	getterOpts := []helmv4getter.Option{}
	if timeout > 0 {
		getterOpts = append(getterOpts, helmv4getter.WithTimeout(timeout))
	}

	chartRepository, err := repov1.NewChartRepository(
		repoEntry,
		helmv4getter.All(c.settings, getterOpts...),
	)
	if err != nil {
		return fmt.Errorf("create chart repository: %w", err)
	}

	chartRepository.CachePath = cacheDir

	var lastErr error

	for attempt := 1; attempt <= repoIndexMaxRetries; attempt++ {
		lastErr = downloadIndexOnce(chartRepository)
		if lastErr == nil {
			return nil
		}

		if !netretry.IsRetryable(lastErr) || attempt == repoIndexMaxRetries {
			break
		}

		waitErr := netretry.Wait(ctx, attempt, repoIndexRetryBaseWait, repoIndexRetryMaxWait)
		if waitErr != nil {
			return fmt.Errorf("download repository index cancelled: %w", waitErr)
		}
	}

	return lastErr
}

func downloadIndexOnce(chartRepository *repov1.ChartRepository) error {
	indexPath, err := chartRepository.DownloadIndexFile()
	if err != nil {
		return fmt.Errorf("failed to download repository index file: %w", err)
	}

	_, statErr := os.Stat(indexPath)
	if statErr != nil {
		return fmt.Errorf("failed to verify repository index file: %w", statErr)
	}

	return nil
}

// recordRepoEntry merges the entry into the repositories file, creating the
// file when it does not exist yet.
func recordRepoEntry(configFile string, repoEntry *repov1.Entry) error {
	repositoryFile, err := repov1.LoadFile(configFile)
	if err != nil {
		repositoryFile = repov1.NewFile()
	}

	repositoryFile.Update(repoEntry)

	writeErr := repositoryFile.WriteFile(configFile, repoFileMode)
	if writeErr != nil {
		return fmt.Errorf("write repository file: %w", writeErr)
	}

	return nil
}
