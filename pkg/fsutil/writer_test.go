package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroft-dev/kroft/pkg/fsutil"
)

const (
	testContent     = "test content"
	originalContent = "original content"
)

func TestTryWriteFile(t *testing.T) {
	t.Parallel()

	t.Run("empty output path", func(t *testing.T) {
		t.Parallel()

		result, err := fsutil.TryWriteFile(testContent, "", false)

		require.ErrorIs(t, err, fsutil.ErrEmptyOutputPath)
		assert.Empty(t, result)
	})

	t.Run("writes new file", func(t *testing.T) {
		t.Parallel()

		output := filepath.Join(t.TempDir(), "out.yaml")

		result, err := fsutil.TryWriteFile(testContent, output, false)

		require.NoError(t, err)
		assert.Equal(t, testContent, result)

		written, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, testContent, string(written))
	})

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		output := filepath.Join(t.TempDir(), "nested", "deeper", "out.yaml")

		_, err := fsutil.TryWriteFile(testContent, output, false)

		require.NoError(t, err)
		assert.FileExists(t, output)
	})

	t.Run("skips existing file without force", func(t *testing.T) {
		t.Parallel()

		output := filepath.Join(t.TempDir(), "out.yaml")
		require.NoError(t, os.WriteFile(output, []byte(originalContent), 0o600))

		result, err := fsutil.TryWriteFile(testContent, output, false)

		require.NoError(t, err)
		assert.Equal(t, testContent, result)

		onDisk, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, originalContent, string(onDisk))
	})

	t.Run("overwrites existing file with force", func(t *testing.T) {
		t.Parallel()

		output := filepath.Join(t.TempDir(), "out.yaml")
		require.NoError(t, os.WriteFile(output, []byte(originalContent), 0o600))

		_, err := fsutil.TryWriteFile(testContent, output, true)

		require.NoError(t, err)

		onDisk, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, testContent, string(onDisk))
	})
}
