package cipher

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImportCmd(t *testing.T) {
	t.Parallel()

	cmd := NewImportCmd()

	assert.Equal(t, "import [key-file]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Contains(t, cmd.Long, "keys.txt")
}

func TestImportCmdReadsKeyFile(t *testing.T) {
	storePath := isolateKeyStore(t)
	identity := newIdentity(t)

	keyFile := filepath.Join(t.TempDir(), "homelab.key")
	require.NoError(t, os.WriteFile(keyFile, []byte(identity.String()+"\n"), 0o600))

	var output bytes.Buffer

	cmd := NewImportCmd()
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{keyFile})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, output.String(), "imported 1 age key(s) into '"+storePath+"'")

	content, err := os.ReadFile(storePath)
	require.NoError(t, err)
	assert.Contains(t, string(content), identity.String())
	assert.Contains(t, string(content), "# public key: "+identity.Recipient().String())

	if runtime.GOOS != "windows" {
		info, err := os.Stat(storePath)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestImportCmdReadsStdin(t *testing.T) {
	storePath := isolateKeyStore(t)
	identity := newIdentity(t)

	var output bytes.Buffer

	cmd := NewImportCmd()
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetIn(strings.NewReader(identity.String() + "\n"))
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, output.String(), "imported 1 age key(s)")

	content, err := os.ReadFile(storePath)
	require.NoError(t, err)
	assert.Contains(t, string(content), identity.String())
}

func TestImportCmdIgnoresCommentLines(t *testing.T) {
	storePath := isolateKeyStore(t)
	identity := newIdentity(t)

	keyFile := filepath.Join(t.TempDir(), "annotated.key")
	annotated := "# created by age-keygen\n# public key: " + identity.Recipient().String() + "\n" + identity.String() + "\n"
	require.NoError(t, os.WriteFile(keyFile, []byte(annotated), 0o600))

	var output bytes.Buffer

	cmd := NewImportCmd()
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{keyFile})

	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(storePath)
	require.NoError(t, err)
	assert.Contains(t, string(content), identity.String())
}

func TestImportCmdSkipsDuplicateKeys(t *testing.T) {
	storePath := isolateKeyStore(t)
	identity := newIdentity(t)

	keyFile := filepath.Join(t.TempDir(), "homelab.key")
	require.NoError(t, os.WriteFile(keyFile, []byte(identity.String()+"\n"), 0o600))

	first := NewImportCmd()
	first.SetOut(&bytes.Buffer{})
	first.SetErr(&bytes.Buffer{})
	first.SetArgs([]string{keyFile})
	require.NoError(t, first.Execute())

	var output bytes.Buffer

	cmd := NewImportCmd()
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{keyFile})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, output.String(), "all keys already present in '"+storePath+"'")

	content, err := os.ReadFile(storePath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), identity.String()))
}

func TestImportCmdRejectsInvalidKey(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty file", content: ""},
		{name: "wrong prefix", content: "WRONG-PREFIX-1234567890\n"},
		{name: "truncated key", content: "AGE-SECRET-KEY-123\n"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			keyFile := filepath.Join(t.TempDir(), "bad.key")
			require.NoError(t, os.WriteFile(keyFile, []byte(testCase.content), 0o600))

			var output bytes.Buffer

			cmd := NewImportCmd()
			cmd.SetOut(&output)
			cmd.SetErr(&output)
			cmd.SetArgs([]string{keyFile})

			err := cmd.Execute()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAgeKey)
		})
	}
}

func TestImportCmdMissingKeyFile(t *testing.T) {
	t.Parallel()

	var output bytes.Buffer

	cmd := NewImportCmd()
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.key")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyFileNotFound)
}
