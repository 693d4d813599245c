package ssh

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/kroft-dev/kroft/pkg/fsutil"
	cryptossh "golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	// DefaultPort is the standard SSH port.
	DefaultPort = 22

	// DefaultTimeout bounds a single connection attempt.
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrNoAuthMethod indicates neither an identity file nor a password is
	// configured.
	ErrNoAuthMethod = errors.New("ssh: no authentication method configured")

	// ErrNotConnected indicates a command was run before Connect.
	ErrNotConnected = errors.New("ssh: client is not connected")
)

// Config describes how to reach a node over SSH.
type Config struct {
	User         string
	Host         string
	Port         int
	IdentityFile string
	Password     string
	// KnownHostsFile enables host key verification when set.
	KnownHostsFile string
	// Timeout bounds a single connection attempt. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Address returns the host:port dial address, applying the default port.
func (c Config) Address() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}

	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

func (c Config) timeout() time.Duration {
	if c.Timeout == 0 {
		return DefaultTimeout
	}

	return c.Timeout
}

// Client runs commands on a single node over SSH.
type Client struct {
	config Config
	client *cryptossh.Client
}

// NewClient creates a client for the node described by config. The connection
// is established by Connect.
func NewClient(config Config) *Client {
	return &Client{config: config}
}

// Connect dials the node and completes the SSH handshake.
func (c *Client) Connect(ctx context.Context) error {
	clientConfig, err := c.clientConfig()
	if err != nil {
		return err
	}

	address := c.config.Address()

	dialer := net.Dialer{Timeout: c.config.timeout()}

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("dial %s: %w", address, err)
	}

	sshConn, channels, requests, err := cryptossh.NewClientConn(conn, address, clientConfig)
	if err != nil {
		_ = conn.Close()

		return fmt.Errorf("ssh handshake with %s: %w", address, err)
	}

	c.client = cryptossh.NewClient(sshConn, channels, requests)

	return nil
}

// Close terminates the connection. Closing a client that never connected is a
// no-op.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	err := c.client.Close()
	c.client = nil

	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close ssh connection: %w", err)
	}

	return nil
}

func (c *Client) clientConfig() (*cryptossh.ClientConfig, error) {
	authMethods, err := c.authMethods()
	if err != nil {
		return nil, err
	}

	hostKeyCallback, err := c.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	return &cryptossh.ClientConfig{
		User:            c.config.User,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         c.config.timeout(),
	}, nil
}

func (c *Client) authMethods() ([]cryptossh.AuthMethod, error) {
	var methods []cryptossh.AuthMethod

	if c.config.IdentityFile != "" {
		key, err := fsutil.ReadFileSafe(c.config.IdentityFile)
		if err != nil {
			return nil, fmt.Errorf("read identity file: %w", err)
		}

		signer, err := cryptossh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse identity file %s: %w", c.config.IdentityFile, err)
		}

		methods = append(methods, cryptossh.PublicKeys(signer))
	}

	if c.config.Password != "" {
		methods = append(methods, cryptossh.Password(c.config.Password))
	}

	if len(methods) == 0 {
		return nil, ErrNoAuthMethod
	}

	return methods, nil
}

func (c *Client) hostKeyCallback() (cryptossh.HostKeyCallback, error) {
	if c.config.KnownHostsFile == "" {
		return cryptossh.InsecureIgnoreHostKey(), nil //nolint:gosec // homelab nodes without a known-hosts file
	}

	path, err := fsutil.ExpandHomePath(c.config.KnownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("expand known hosts path: %w", err)
	}

	callback, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("load known hosts %s: %w", path, err)
	}

	return callback, nil
}
