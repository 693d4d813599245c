package ssh_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/kroft-dev/kroft/pkg/client/ssh"
	"github.com/kroft-dev/kroft/pkg/poll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cryptossh "golang.org/x/crypto/ssh"
)

var errPasswordRejected = errors.New("password rejected")

func TestConfigAddress(t *testing.T) {
	t.Parallel()

	t.Run("applies default port", func(t *testing.T) {
		t.Parallel()

		config := ssh.Config{Host: "192.168.1.10"}
		assert.Equal(t, "192.168.1.10:22", config.Address())
	})

	t.Run("uses configured port", func(t *testing.T) {
		t.Parallel()

		config := ssh.Config{Host: "192.168.1.10", Port: 2222}
		assert.Equal(t, "192.168.1.10:2222", config.Address())
	})
}

func TestConnectRequiresAuthMethod(t *testing.T) {
	t.Parallel()

	client := ssh.NewClient(ssh.Config{User: "pi", Host: "192.168.1.10"})

	err := client.Connect(context.Background())
	require.ErrorIs(t, err, ssh.ErrNoAuthMethod)
}

func TestConnectRejectsUnparsableIdentityFile(t *testing.T) {
	t.Parallel()

	identityFile := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(identityFile, []byte("not a key"), 0o600))

	client := ssh.NewClient(ssh.Config{
		User:         "pi",
		Host:         "192.168.1.10",
		IdentityFile: identityFile,
	})

	err := client.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse identity file")
}

func TestRunNotConnected(t *testing.T) {
	t.Parallel()

	client := ssh.NewClient(ssh.Config{User: "pi", Host: "192.168.1.10", Password: "secret"})

	_, err := client.Run(context.Background(), "true")
	require.ErrorIs(t, err, ssh.ErrNotConnected)
}

func TestConnectAndRun(t *testing.T) {
	t.Parallel()

	server := startTestServer(t, nil, func(_ string, _ io.Reader) execResult {
		return execResult{stdout: "hello\n"}
	})

	client := connectTestClient(t, server)

	out, err := client.Run(context.Background(), "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestRunReportsFailureWithStderrTail(t *testing.T) {
	t.Parallel()

	server := startTestServer(t, nil, func(_ string, _ io.Reader) execResult {
		return execResult{stderr: "E: unable to locate package\n", code: 1}
	})

	client := connectTestClient(t, server)

	_, err := client.Run(context.Background(), "apt-get install nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apt-get install nope")
	assert.Contains(t, err.Error(), "unable to locate package")
}

func TestSudoWrapsCommand(t *testing.T) {
	t.Parallel()

	server := startTestServer(t, nil, nil)
	client := connectTestClient(t, server)

	_, err := client.Sudo(context.Background(), "systemctl start k3s")
	require.NoError(t, err)

	assert.Equal(t, "sudo sh -c 'systemctl start k3s'", server.lastCommand())
}

func TestUploadFileStreamsContent(t *testing.T) {
	t.Parallel()

	var (
		uploadedMu sync.Mutex
		uploaded   []byte
	)

	server := startTestServer(t, nil, func(_ string, stdin io.Reader) execResult {
		data, _ := io.ReadAll(stdin)

		uploadedMu.Lock()
		uploaded = data
		uploadedMu.Unlock()

		return execResult{}
	})

	client := connectTestClient(t, server)

	err := client.UploadFile(
		context.Background(),
		[]byte("token-content"),
		"/etc/rancher/k3s/token",
		"0600",
	)
	require.NoError(t, err)

	assert.Equal(
		t,
		"sudo install -D -m 0600 /dev/stdin '/etc/rancher/k3s/token'",
		server.lastCommand(),
	)

	uploadedMu.Lock()
	defer uploadedMu.Unlock()
	assert.Equal(t, "token-content", string(uploaded))
}

func TestConnectWithIdentityFile(t *testing.T) {
	t.Parallel()

	server := startTestServer(t, &cryptossh.ServerConfig{
		PublicKeyCallback: func(
			_ cryptossh.ConnMetadata,
			_ cryptossh.PublicKey,
		) (*cryptossh.Permissions, error) {
			return &cryptossh.Permissions{}, nil
		},
	}, nil)

	client := ssh.NewClient(ssh.Config{
		User:         "pi",
		Host:         server.host,
		Port:         server.port,
		IdentityFile: writeTestIdentityFile(t),
		Timeout:      2 * time.Second,
	})

	require.NoError(t, client.Connect(context.Background()))

	t.Cleanup(func() { _ = client.Close() })

	out, err := client.Run(context.Background(), "true")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestWaitForReadySucceeds(t *testing.T) {
	t.Parallel()

	server := startTestServer(t, nil, nil)
	config := testClientConfig(server)

	err := ssh.WaitForReady(context.Background(), config, 10*time.Millisecond, 5*time.Second)
	require.NoError(t, err)
}

func TestWaitForReadyTimesOut(t *testing.T) {
	t.Parallel()

	// Reserve a port nothing listens on.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	address, ok := listener.Addr().(*net.TCPAddr)
	require.True(t, ok)
	require.NoError(t, listener.Close())

	config := ssh.Config{
		User:     "pi",
		Host:     "127.0.0.1",
		Port:     address.Port,
		Password: "secret",
		Timeout:  100 * time.Millisecond,
	}

	err = ssh.WaitForReady(context.Background(), config, 20*time.Millisecond, 150*time.Millisecond)
	require.ErrorIs(t, err, poll.ErrTimeoutExceeded)
}

func TestWaitForReadyAbortsOnAuthFailure(t *testing.T) {
	t.Parallel()

	server := startTestServer(t, &cryptossh.ServerConfig{
		PasswordCallback: func(
			_ cryptossh.ConnMetadata,
			_ []byte,
		) (*cryptossh.Permissions, error) {
			return nil, errPasswordRejected
		},
	}, nil)

	config := testClientConfig(server)

	err := ssh.WaitForReady(context.Background(), config, 10*time.Millisecond, 5*time.Second)
	require.Error(t, err)
	assert.NotErrorIs(t, err, poll.ErrTimeoutExceeded)
	assert.Contains(t, err.Error(), "unable to authenticate")
}

func TestWaitForReadyRejectsBrokenAuthConfig(t *testing.T) {
	t.Parallel()

	config := ssh.Config{User: "pi", Host: "127.0.0.1"}

	err := ssh.WaitForReady(context.Background(), config, 10*time.Millisecond, time.Second)
	require.ErrorIs(t, err, ssh.ErrNoAuthMethod)
}

// --- test server ---

type execResult struct {
	stdout string
	stderr string
	code   int
}

type testServer struct {
	host string
	port int

	// handle runs a single exec request. Set once before the accept loop
	// starts.
	handle func(command string, stdin io.Reader) execResult

	mu       sync.Mutex
	commands []string
}

func (s *testServer) lastCommand() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.commands) == 0 {
		return ""
	}

	return s.commands[len(s.commands)-1]
}

func (s *testServer) recordCommand(command string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commands = append(s.commands, command)
}

// startTestServer runs an in-process SSH server on a loopback port. A nil
// config accepts every client without authentication; a nil handle accepts
// every command with an empty, successful result.
func startTestServer(
	t *testing.T,
	config *cryptossh.ServerConfig,
	handle func(command string, stdin io.Reader) execResult,
) *testServer {
	t.Helper()

	if config == nil {
		config = &cryptossh.ServerConfig{NoClientAuth: true}
	}

	if handle == nil {
		handle = func(string, io.Reader) execResult { return execResult{} }
	}

	config.AddHostKey(generateTestSigner(t))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	address, ok := listener.Addr().(*net.TCPAddr)
	require.True(t, ok)

	server := &testServer{
		host:   "127.0.0.1",
		port:   address.Port,
		handle: handle,
	}

	go func() {
		for {
			conn, acceptErr := listener.Accept()
			if acceptErr != nil {
				return
			}

			go server.handleConn(conn, config)
		}
	}()

	return server
}

func (s *testServer) handleConn(conn net.Conn, config *cryptossh.ServerConfig) {
	serverConn, channels, requests, err := cryptossh.NewServerConn(conn, config)
	if err != nil {
		return
	}

	defer func() { _ = serverConn.Close() }()

	go cryptossh.DiscardRequests(requests)

	for newChannel := range channels {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(cryptossh.UnknownChannelType, "unsupported channel type")

			continue
		}

		channel, channelRequests, acceptErr := newChannel.Accept()
		if acceptErr != nil {
			continue
		}

		go s.handleSession(channel, channelRequests)
	}
}

func (s *testServer) handleSession(
	channel cryptossh.Channel,
	requests <-chan *cryptossh.Request,
) {
	defer func() { _ = channel.Close() }()

	for request := range requests {
		if request.Type != "exec" {
			_ = request.Reply(false, nil)

			continue
		}

		var payload struct{ Command string }

		_ = cryptossh.Unmarshal(request.Payload, &payload)
		_ = request.Reply(true, nil)

		s.recordCommand(payload.Command)

		result := s.handle(payload.Command, channel)

		_, _ = channel.Write([]byte(result.stdout))
		_, _ = channel.Stderr().Write([]byte(result.stderr))

		status := struct{ Status uint32 }{Status: uint32(result.code)} //nolint:gosec // test exit codes are small
		_, _ = channel.SendRequest("exit-status", false, cryptossh.Marshal(&status))

		return
	}
}

func connectTestClient(t *testing.T, server *testServer) *ssh.Client {
	t.Helper()

	client := ssh.NewClient(testClientConfig(server))
	require.NoError(t, client.Connect(context.Background()))

	t.Cleanup(func() { _ = client.Close() })

	return client
}

func testClientConfig(server *testServer) ssh.Config {
	return ssh.Config{
		User:     "pi",
		Host:     server.host,
		Port:     server.port,
		Password: "secret",
		Timeout:  2 * time.Second,
	}
}

func generateTestSigner(t *testing.T) cryptossh.Signer {
	t.Helper()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signer, err := cryptossh.NewSignerFromKey(key)
	require.NoError(t, err)

	return signer
}

func writeTestIdentityFile(t *testing.T) string {
	t.Helper()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	block, err := cryptossh.MarshalPrivateKey(key, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))

	return path
}
