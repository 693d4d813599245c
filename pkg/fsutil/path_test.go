package fsutil_test

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroft-dev/kroft/pkg/fsutil"
)

func TestExpandHomePath(t *testing.T) {
	t.Parallel()

	usr, err := user.Current()
	require.NoError(t, err)

	t.Run("expands home prefix", func(t *testing.T) {
		t.Parallel()

		result, err := fsutil.ExpandHomePath("~/some/nested/dir")

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(usr.HomeDir, "some", "nested", "dir"), result)
	})

	t.Run("converts relative path to absolute", func(t *testing.T) {
		t.Parallel()

		result, err := fsutil.ExpandHomePath(filepath.Join("var", "tmp"))

		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(result))
	})

	t.Run("returns unchanged when already absolute", func(t *testing.T) {
		t.Parallel()

		input := filepath.Join(string(filepath.Separator), "tmp", "file")

		result, err := fsutil.ExpandHomePath(input)

		require.NoError(t, err)
		assert.Equal(t, input, result)
	})
}

func TestReadFileSafe(t *testing.T) {
	t.Parallel()

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		_, err := fsutil.ReadFileSafe("")

		require.ErrorIs(t, err, fsutil.ErrEmptyInputPath)
	})

	t.Run("reads existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("secret\n"), 0o600))

		data, err := fsutil.ReadFileSafe(path)

		require.NoError(t, err)
		assert.Equal(t, "secret\n", string(data))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := fsutil.ReadFileSafe(filepath.Join(t.TempDir(), "missing"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read file")
	})
}
