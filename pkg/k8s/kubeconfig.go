package k8s

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

const (
	// kubeconfigFileMode is the file mode for kubeconfig files.
	kubeconfigFileMode = 0o600
	// kubeconfigDirMode is the mode for a freshly created ~/.kube directory.
	kubeconfigDirMode = 0o755
)

// MergeKubeconfig merges the entries of kubeconfig into the file at
// kubeconfigPath, creating the file and its parent directory when missing.
// Entries with the same name are replaced so re-running bootstrap refreshes
// stale credentials, and the current context switches to the merged config's
// current context.
func MergeKubeconfig(kubeconfig []byte, kubeconfigPath string) error {
	if kubeconfigPath == "" {
		return ErrKubeconfigPathEmpty
	}

	newConfig, err := clientcmd.Load(kubeconfig)
	if err != nil {
		return fmt.Errorf("failed to parse kubeconfig: %w", err)
	}

	merged, err := mergeWithExisting(newConfig, kubeconfigPath)
	if err != nil {
		return err
	}

	result, err := clientcmd.Write(*merged)
	if err != nil {
		return fmt.Errorf("failed to serialize kubeconfig: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(kubeconfigPath), kubeconfigDirMode)
	if err != nil {
		return fmt.Errorf("failed to create kubeconfig directory: %w", err)
	}

	err = os.WriteFile(kubeconfigPath, result, kubeconfigFileMode)
	if err != nil {
		return fmt.Errorf("failed to write kubeconfig: %w", err)
	}

	return nil
}

// mergeWithExisting folds newConfig into the config on disk. A missing file
// means newConfig is used as-is.
func mergeWithExisting(
	newConfig *clientcmdapi.Config,
	kubeconfigPath string,
) (*clientcmdapi.Config, error) {
	_, statErr := os.Stat(kubeconfigPath)
	if os.IsNotExist(statErr) {
		return newConfig, nil
	}

	existing, err := clientcmd.LoadFromFile(kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing kubeconfig: %w", err)
	}

	for name, cluster := range newConfig.Clusters {
		existing.Clusters[name] = cluster
	}

	for name, authInfo := range newConfig.AuthInfos {
		existing.AuthInfos[name] = authInfo
	}

	for name, kubeContext := range newConfig.Contexts {
		existing.Contexts[name] = kubeContext
	}

	if newConfig.CurrentContext != "" {
		existing.CurrentContext = newConfig.CurrentContext
	}

	return existing, nil
}

// CleanupKubeconfig removes the cluster, context, and user entries for a
// cluster from the kubeconfig file. Teardown calls this so a later bootstrap
// does not inherit stale credentials. Only entries matching the provided
// names are removed; other cluster configurations stay intact.
func CleanupKubeconfig(
	kubeconfigPath string,
	clusterName string,
	contextName string,
	userName string,
	logWriter io.Writer,
) error {
	_, statErr := os.Stat(kubeconfigPath)
	if os.IsNotExist(statErr) {
		// No kubeconfig to clean up.
		return nil
	}

	return removeEntriesFromKubeconfig(
		kubeconfigPath,
		clusterName,
		contextName,
		userName,
		logWriter,
	)
}

//nolint:gosec // G304: kubeconfigPath comes from the cluster configuration
func removeEntriesFromKubeconfig(
	kubeconfigPath string,
	clusterName string,
	contextName string,
	userName string,
	logWriter io.Writer,
) error {
	kubeconfigBytes, err := os.ReadFile(kubeconfigPath)
	if err != nil {
		return fmt.Errorf("failed to read kubeconfig: %w", err)
	}

	kubeConfig, err := clientcmd.Load(kubeconfigBytes)
	if err != nil {
		return fmt.Errorf("failed to parse kubeconfig: %w", err)
	}

	if !hasKubeconfigEntriesToCleanup(kubeConfig, contextName, clusterName, userName) {
		return nil
	}

	delete(kubeConfig.Contexts, contextName)
	delete(kubeConfig.Clusters, clusterName)
	delete(kubeConfig.AuthInfos, userName)

	if kubeConfig.CurrentContext == contextName {
		kubeConfig.CurrentContext = ""
	}

	_, _ = fmt.Fprintf(logWriter, "Cleaned up kubeconfig entries for cluster %q\n", clusterName)

	result, err := clientcmd.Write(*kubeConfig)
	if err != nil {
		return fmt.Errorf("failed to serialize kubeconfig: %w", err)
	}

	err = os.WriteFile(kubeconfigPath, result, kubeconfigFileMode)
	if err != nil {
		return fmt.Errorf("failed to write kubeconfig: %w", err)
	}

	return nil
}

// hasKubeconfigEntriesToCleanup checks whether any of the entries targeted
// for removal actually exist.
func hasKubeconfigEntriesToCleanup(
	kubeConfig *clientcmdapi.Config,
	contextName string,
	clusterName string,
	userName string,
) bool {
	_, hasContext := kubeConfig.Contexts[contextName]
	_, hasCluster := kubeConfig.Clusters[clusterName]
	_, hasUser := kubeConfig.AuthInfos[userName]
	isCurrentContext := kubeConfig.CurrentContext == contextName

	return hasContext || hasCluster || hasUser || isCurrentContext
}
