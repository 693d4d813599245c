package yamlgenerator_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	yamlgenerator "github.com/kroft-dev/kroft/pkg/io/generator/yaml"
)

func TestMain(m *testing.M) {
	exitCode := m.Run()

	_, err := snaps.Clean(m, snaps.CleanOpts{Sort: true})
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to clean snapshots: " + err.Error() + "\n")

		os.Exit(1)
	}

	os.Exit(exitCode)
}

type clusterDoc struct {
	Name  string   `json:"name"`
	Paths []string `json:"paths,omitempty"`
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	gen := yamlgenerator.NewGenerator[clusterDoc]()
	model := clusterDoc{Name: "homelab", Paths: []string{"k8s/apps"}}

	t.Run("returns content without output path", func(t *testing.T) {
		t.Parallel()

		result, err := gen.Generate(model, yamlgenerator.Options{})

		require.NoError(t, err)
		assert.Contains(t, result, "name: homelab")
		snaps.MatchSnapshot(t, result)
	})

	t.Run("writes content to output path", func(t *testing.T) {
		t.Parallel()

		output := filepath.Join(t.TempDir(), "cluster.yaml")

		result, err := gen.Generate(model, yamlgenerator.Options{Output: output})

		require.NoError(t, err)

		onDisk, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, result, string(onDisk))
	})

	t.Run("keeps existing file without force", func(t *testing.T) {
		t.Parallel()

		output := filepath.Join(t.TempDir(), "cluster.yaml")
		require.NoError(t, os.WriteFile(output, []byte("keep me"), 0o600))

		_, err := gen.Generate(model, yamlgenerator.Options{Output: output})
		require.NoError(t, err)

		onDisk, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, "keep me", string(onDisk))
	})
}
