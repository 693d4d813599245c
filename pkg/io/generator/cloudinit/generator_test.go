package cloudinitgenerator_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	cloudinitgenerator "github.com/kroft-dev/kroft/pkg/io/generator/cloudinit"
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

func testModel() cloudinitgenerator.Model {
	return cloudinitgenerator.Model{
		Spec: &v1alpha1.Spec{
			Name: "homelab",
			SSH: v1alpha1.SSH{
				User: "pi",
			},
			Network: v1alpha1.Network{
				Interface:   "eth0",
				CIDRPrefix:  24,
				Gateway:     "192.168.1.1",
				Nameservers: []string{"192.168.1.1", "1.1.1.1"},
			},
			CloudInit: v1alpha1.CloudInit{
				Timezone:       "Europe/Copenhagen",
				Locale:         "en_US.UTF-8",
				AuthorizedKeys: []string{"ssh-ed25519 AAAAC3Nza test@host"},
				Packages:       []string{"vim", "htop"},
			},
		},
		Node: v1alpha1.Node{
			Name:    "master-0",
			Address: "192.168.1.10",
			Role:    v1alpha1.RoleMaster,
		},
	}
}

func TestUserData(t *testing.T) {
	t.Parallel()

	gen := cloudinitgenerator.NewCloudInitGenerator()

	userData, err := gen.UserData(testModel())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(userData, "#cloud-config\n"))
	assert.Contains(t, userData, "hostname: master-0")
	assert.Contains(t, userData, "manage_etc_hosts: true")
	assert.Contains(t, userData, "timezone: Europe/Copenhagen")
	assert.Contains(t, userData, "name: pi")
	assert.Contains(t, userData, "ssh-ed25519 AAAAC3Nza test@host")
	assert.Contains(t, userData, "cgroup_enable=memory")
	assert.Contains(t, userData, "mode: reboot")

	snaps.MatchSnapshot(t, userData)
}

func TestUserData_PackagesIncludeCurl(t *testing.T) {
	t.Parallel()

	gen := cloudinitgenerator.NewCloudInitGenerator()
	model := testModel()
	model.Spec.CloudInit.Packages = []string{"htop", "curl"}

	userData, err := gen.UserData(model)
	require.NoError(t, err)

	// curl is required for the K3s install and must not be duplicated.
	assert.Equal(t, 1, strings.Count(userData, "- curl"))
	assert.Contains(t, userData, "- htop")
}

func TestUserData_Defaults(t *testing.T) {
	t.Parallel()

	gen := cloudinitgenerator.NewCloudInitGenerator()
	model := cloudinitgenerator.Model{
		Spec: &v1alpha1.Spec{},
		Node: v1alpha1.Node{Name: "worker-0", Address: "192.168.1.11"},
	}

	userData, err := gen.UserData(model)
	require.NoError(t, err)

	assert.Contains(t, userData, "timezone: Etc/UTC")
	assert.Contains(t, userData, "locale: en_US.UTF-8")
	assert.Contains(t, userData, "name: pi")
}

func TestMetaData(t *testing.T) {
	t.Parallel()

	gen := cloudinitgenerator.NewCloudInitGenerator()

	metaData, err := gen.MetaData(testModel())
	require.NoError(t, err)

	assert.Contains(t, metaData, "instance-id: iid-master-0")
	assert.Contains(t, metaData, "local-hostname: master-0")

	snaps.MatchSnapshot(t, metaData)
}

func TestNetworkConfig(t *testing.T) {
	t.Parallel()

	gen := cloudinitgenerator.NewCloudInitGenerator()

	networkConfig, err := gen.NetworkConfig(testModel())
	require.NoError(t, err)

	assert.Contains(t, networkConfig, "version: 2")
	assert.Contains(t, networkConfig, "eth0:")
	assert.Contains(t, networkConfig, "dhcp4: false")
	assert.Contains(t, networkConfig, "192.168.1.10/24")
	assert.Contains(t, networkConfig, "gateway4: 192.168.1.1")
	assert.Contains(t, networkConfig, "1.1.1.1")

	snaps.MatchSnapshot(t, networkConfig)
}

func TestNetworkConfig_Defaults(t *testing.T) {
	t.Parallel()

	gen := cloudinitgenerator.NewCloudInitGenerator()
	model := cloudinitgenerator.Model{
		Spec: &v1alpha1.Spec{},
		Node: v1alpha1.Node{Name: "worker-0", Address: "192.168.1.11"},
	}

	networkConfig, err := gen.NetworkConfig(model)
	require.NoError(t, err)

	assert.Contains(t, networkConfig, "eth0:")
	assert.Contains(t, networkConfig, "192.168.1.11/24")
	assert.NotContains(t, networkConfig, "gateway4")
	assert.NotContains(t, networkConfig, "nameservers")
}

func TestGenerate_WritesTrio(t *testing.T) {
	t.Parallel()

	gen := cloudinitgenerator.NewCloudInitGenerator()
	outputDir := filepath.Join(t.TempDir(), "master-0")

	userData, err := gen.Generate(testModel(), yamlgenerator.Options{Output: outputDir})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(userData, "#cloud-config\n"))

	for _, name := range []string{
		cloudinitgenerator.UserDataFileName,
		cloudinitgenerator.MetaDataFileName,
		cloudinitgenerator.NetworkConfigFileName,
	} {
		assert.FileExists(t, filepath.Join(outputDir, name))
	}

	onDisk, err := os.ReadFile(filepath.Join(outputDir, cloudinitgenerator.UserDataFileName))
	require.NoError(t, err)
	assert.Equal(t, userData, string(onDisk))
}

func TestGenerate_RespectsForce(t *testing.T) {
	t.Parallel()

	gen := cloudinitgenerator.NewCloudInitGenerator()
	outputDir := t.TempDir()
	userDataPath := filepath.Join(outputDir, cloudinitgenerator.UserDataFileName)

	require.NoError(t, os.WriteFile(userDataPath, []byte("manual edit"), 0o600))

	_, err := gen.Generate(testModel(), yamlgenerator.Options{Output: outputDir})
	require.NoError(t, err)

	onDisk, err := os.ReadFile(userDataPath)
	require.NoError(t, err)
	assert.Equal(t, "manual edit", string(onDisk), "existing file kept without force")

	_, err = gen.Generate(testModel(), yamlgenerator.Options{Output: outputDir, Force: true})
	require.NoError(t, err)

	onDisk, err = os.ReadFile(userDataPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(onDisk), "#cloud-config\n"))
}
