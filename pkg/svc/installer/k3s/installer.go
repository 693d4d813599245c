// Package k3sinstaller installs K3s on cluster nodes over SSH.
//
// Every operation is idempotent: installs are skipped when the systemd unit
// is already active, and uninstalls tolerate nodes that never ran K3s. That
// makes bootstrap safe to re-run after a partial failure.
package k3sinstaller

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/poll"
)

const (
	installScriptURL = "https://get.k3s.io"

	// ServerService is the systemd unit for the K3s server.
	ServerService = "k3s"
	// AgentService is the systemd unit for the K3s agent.
	AgentService = "k3s-agent"

	nodeTokenPath        = "/var/lib/rancher/k3s/server/node-token"
	remoteKubeconfigPath = "/etc/rancher/k3s/k3s.yaml"

	serverUninstallScript = "/usr/local/bin/k3s-uninstall.sh"
	agentUninstallScript  = "/usr/local/bin/k3s-agent-uninstall.sh"

	apiServerPort = "6443"

	// serviceActiveInterval spaces the systemd probes after an install. Each
	// probe is a full SSH round trip, so it stays coarser than the API polls.
	serviceActiveInterval = 2 * time.Second
)

// ErrEmptyNodeToken indicates the server's node-token file was empty.
var ErrEmptyNodeToken = errors.New("k3s node token is empty")

// ErrMalformedKubeconfig indicates the kubeconfig fetched from the server is
// missing its current context, cluster, or user entry.
var ErrMalformedKubeconfig = errors.New("k3s kubeconfig is malformed")

// Runner runs commands on a single node. *ssh.Client satisfies it.
type Runner interface {
	Run(ctx context.Context, command string) (string, error)
	Sudo(ctx context.Context, command string) (string, error)
}

// Installer installs and uninstalls K3s over SSH.
type Installer struct {
	config  v1alpha1.K3s
	timeout time.Duration
}

// NewInstaller creates a K3s installer for the given configuration. The
// timeout bounds each post-install wait for the systemd unit.
func NewInstaller(config v1alpha1.K3s, timeout time.Duration) *Installer {
	return &Installer{config: config, timeout: timeout}
}

// InstallServer installs the K3s server on a master node. The node is skipped
// when the k3s unit is already active. An empty token lets K3s generate one.
func (i *Installer) InstallServer(ctx context.Context, node Runner, token string) error {
	if IsServiceActive(ctx, node, ServerService) {
		return nil
	}

	_, err := node.Run(ctx, i.serverInstallCommand(token))
	if err != nil {
		return fmt.Errorf("run k3s server install script: %w", err)
	}

	return i.waitServiceActive(ctx, node, ServerService)
}

// InstallAgent installs the K3s agent on a worker node and joins it to the
// server at serverURL. The node is skipped when the k3s-agent unit is already
// active.
func (i *Installer) InstallAgent(ctx context.Context, node Runner, serverURL, token string) error {
	if IsServiceActive(ctx, node, AgentService) {
		return nil
	}

	_, err := node.Run(ctx, i.agentInstallCommand(serverURL, token))
	if err != nil {
		return fmt.Errorf("run k3s agent install script: %w", err)
	}

	return i.waitServiceActive(ctx, node, AgentService)
}

// Token reads the cluster join token generated by the K3s server.
func (i *Installer) Token(ctx context.Context, node Runner) (string, error) {
	output, err := node.Sudo(ctx, "cat "+nodeTokenPath)
	if err != nil {
		return "", fmt.Errorf("read k3s node token: %w", err)
	}

	token := strings.TrimSpace(output)
	if token == "" {
		return "", ErrEmptyNodeToken
	}

	return token, nil
}

// Kubeconfig fetches the admin kubeconfig from the server node, points it at
// serverAddress instead of the loopback address K3s writes, and renames the
// default context, cluster, and user entries to clusterName.
func (i *Installer) Kubeconfig(
	ctx context.Context,
	node Runner,
	serverAddress, clusterName string,
) ([]byte, error) {
	output, err := node.Sudo(ctx, "cat "+remoteKubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("read k3s kubeconfig: %w", err)
	}

	return rewriteKubeconfig([]byte(output), serverAddress, clusterName)
}

// UninstallServer runs the K3s server uninstall script, tolerating nodes
// where it was never installed.
func (i *Installer) UninstallServer(ctx context.Context, node Runner) error {
	return runUninstallScript(ctx, node, serverUninstallScript)
}

// UninstallAgent runs the K3s agent uninstall script, tolerating nodes where
// it was never installed.
func (i *Installer) UninstallAgent(ctx context.Context, node Runner) error {
	return runUninstallScript(ctx, node, agentUninstallScript)
}

// ServerURL returns the join URL agents use to reach the K3s server.
func ServerURL(serverAddress string) string {
	return "https://" + net.JoinHostPort(serverAddress, apiServerPort)
}

// ServiceNameForRole returns the systemd unit a node role runs.
func ServiceNameForRole(role v1alpha1.NodeRole) string {
	if role == v1alpha1.RoleMaster {
		return ServerService
	}

	return AgentService
}

// ServiceState reports the systemd active-state of a unit on the node.
// systemctl exits nonzero for anything but "active", so the command error is
// ignored as long as a state was printed.
func ServiceState(ctx context.Context, node Runner, service string) string {
	output, _ := node.Run(ctx, "systemctl is-active "+service)

	state := strings.TrimSpace(output)
	if state == "" {
		return "unknown"
	}

	return state
}

// IsServiceActive reports whether the unit is active on the node.
func IsServiceActive(ctx context.Context, node Runner, service string) bool {
	return ServiceState(ctx, node, service) == "active"
}

func (i *Installer) waitServiceActive(ctx context.Context, node Runner, service string) error {
	err := poll.Until(ctx, serviceActiveInterval, i.timeout,
		func(pollCtx context.Context) (bool, error) {
			return IsServiceActive(pollCtx, node, service), nil
		})
	if err != nil {
		return fmt.Errorf("wait for %s service: %w", service, err)
	}

	return nil
}

// serverInstallCommand builds the get.k3s.io pipeline for a server install.
// The install script passes INSTALL_K3S_* and K3S_* through to its sudo'd
// steps itself, so the pipeline runs as the login user.
func (i *Installer) serverInstallCommand(token string) string {
	env := i.versionEnv()
	if token != "" {
		env = append(env, "K3S_TOKEN="+shellQuote(token))
	}

	args := []string{"server"}
	for _, component := range i.config.Disable {
		args = append(args, "--disable", component)
	}

	args = append(args, i.config.ServerArgs...)

	return installCommand(env, args)
}

// agentInstallCommand builds the get.k3s.io pipeline for an agent join.
func (i *Installer) agentInstallCommand(serverURL, token string) string {
	env := i.versionEnv()
	env = append(env,
		"K3S_URL="+shellQuote(serverURL),
		"K3S_TOKEN="+shellQuote(token),
	)

	args := append([]string{"agent"}, i.config.AgentArgs...)

	return installCommand(env, args)
}

// versionEnv selects the release: an exact version pin wins over the channel.
func (i *Installer) versionEnv() []string {
	if i.config.Version != "" {
		return []string{"INSTALL_K3S_VERSION=" + shellQuote(i.config.Version)}
	}

	channel := i.config.Channel
	if channel == "" {
		channel = v1alpha1.K3sChannelStable
	}

	return []string{"INSTALL_K3S_CHANNEL=" + shellQuote(string(channel))}
}

func installCommand(env, args []string) string {
	return fmt.Sprintf(
		"curl -sfL %s | %s sh -s - %s",
		installScriptURL,
		strings.Join(env, " "),
		strings.Join(args, " "),
	)
}

func runUninstallScript(ctx context.Context, node Runner, script string) error {
	command := fmt.Sprintf("if [ -x %s ]; then sudo %s; fi", script, script)

	_, err := node.Run(ctx, command)
	if err != nil {
		return fmt.Errorf("run %s: %w", script, err)
	}

	return nil
}

// shellQuote wraps a value in single quotes for the remote shell.
func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}
