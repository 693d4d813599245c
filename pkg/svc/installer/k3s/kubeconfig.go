package k3sinstaller

import (
	"fmt"
	"strings"

	"github.com/kroft-dev/kroft/pkg/k8s"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// loopbackAddress is what K3s writes into its generated kubeconfig.
const loopbackAddress = "127.0.0.1"

// rewriteKubeconfig retargets the kubeconfig K3s generates on the server:
// the loopback API server address becomes serverAddress, and the "default"
// cluster, context, and user entries are renamed to the cluster name so the
// merged kubeconfig stays readable next to other clusters.
func rewriteKubeconfig(raw []byte, serverAddress, clusterName string) ([]byte, error) {
	config, err := clientcmd.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("parse kubeconfig from server node: %w", err)
	}

	currentContext := config.Contexts[config.CurrentContext]
	if currentContext == nil {
		return nil, fmt.Errorf("%w: no current context", ErrMalformedKubeconfig)
	}

	cluster := config.Clusters[currentContext.Cluster]
	user := config.AuthInfos[currentContext.AuthInfo]

	if cluster == nil || user == nil {
		return nil, fmt.Errorf("%w: missing cluster or user entry", ErrMalformedKubeconfig)
	}

	cluster.Server = strings.Replace(cluster.Server, loopbackAddress, serverAddress, 1)

	name := k8s.SanitizeToDNSLabel(clusterName)

	renamed := clientcmdapi.NewConfig()
	renamed.Clusters[name] = cluster
	renamed.AuthInfos[name] = user
	renamed.Contexts[name] = &clientcmdapi.Context{Cluster: name, AuthInfo: name}
	renamed.CurrentContext = name

	result, err := clientcmd.Write(*renamed)
	if err != nil {
		return nil, fmt.Errorf("serialize rewritten kubeconfig: %w", err)
	}

	return result, nil
}
