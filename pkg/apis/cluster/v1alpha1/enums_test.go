package v1alpha1_test

import (
	"testing"

	v1alpha1 "github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeRoleSet(t *testing.T) {
	t.Parallel()

	t.Run("accepts_valid_values_case_insensitively", func(t *testing.T) {
		t.Parallel()

		for _, input := range []string{"master", "Master", "MASTER"} {
			var role v1alpha1.NodeRole

			require.NoError(t, role.Set(input))
			assert.Equal(t, v1alpha1.RoleMaster, role)
		}
	})

	t.Run("rejects_unknown_values", func(t *testing.T) {
		t.Parallel()

		var role v1alpha1.NodeRole

		err := role.Set("control-plane")

		require.ErrorIs(t, err, v1alpha1.ErrInvalidNodeRole)
		assert.Contains(t, err.Error(), "control-plane")
	})
}

func TestK3sChannelSet(t *testing.T) {
	t.Parallel()

	t.Run("accepts_all_channels", func(t *testing.T) {
		t.Parallel()

		for _, input := range []string{"stable", "latest", "testing"} {
			var channel v1alpha1.K3sChannel

			require.NoError(t, channel.Set(input))
			assert.Equal(t, input, channel.String())
		}
	})

	t.Run("rejects_unknown_channel", func(t *testing.T) {
		t.Parallel()

		var channel v1alpha1.K3sChannel

		require.ErrorIs(t, channel.Set("nightly"), v1alpha1.ErrInvalidK3sChannel)
	})
}

func TestDevDistribution(t *testing.T) {
	t.Parallel()

	t.Run("set_accepts_valid_values", func(t *testing.T) {
		t.Parallel()

		var dist v1alpha1.DevDistribution

		require.NoError(t, dist.Set("k3d"))
		assert.Equal(t, v1alpha1.DevDistributionK3d, dist)
	})

	t.Run("set_rejects_unknown_values", func(t *testing.T) {
		t.Parallel()

		var dist v1alpha1.DevDistribution

		require.ErrorIs(t, dist.Set("minikube"), v1alpha1.ErrInvalidDevDistribution)
	})

	t.Run("context_name_per_distribution", func(t *testing.T) {
		t.Parallel()

		kind := v1alpha1.DevDistributionKind
		k3d := v1alpha1.DevDistributionK3d

		assert.Equal(t, "kind-dev", kind.ContextName("dev"))
		assert.Equal(t, "k3d-dev", k3d.ContextName("dev"))
		assert.Empty(t, kind.ContextName(""))
	})
}

func TestEnumValidValues(t *testing.T) {
	t.Parallel()

	var (
		role    v1alpha1.NodeRole
		channel v1alpha1.K3sChannel
		dist    v1alpha1.DevDistribution
	)

	assert.Equal(t, []string{"master", "worker"}, role.ValidValues())
	assert.Equal(t, []string{"stable", "latest", "testing"}, channel.ValidValues())
	assert.Equal(t, []string{"Kind", "K3d"}, dist.ValidValues())
}
