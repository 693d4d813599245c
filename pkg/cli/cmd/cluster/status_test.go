package cluster

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	"github.com/kroft-dev/kroft/pkg/svc/bootstrap"
)

// healthyReport builds a report where every probe passed.
func healthyReport() *bootstrap.Report {
	return &bootstrap.Report{
		Nodes: []bootstrap.NodeStatus{
			{
				Node:    v1alpha1.Node{Name: "pi-master", Address: "192.168.1.10", Role: v1alpha1.RoleMaster},
				Service: "k3s",
				State:   "active",
			},
			{
				Node:    v1alpha1.Node{Name: "pi-worker", Address: "192.168.1.11", Role: v1alpha1.RoleWorker},
				Service: "k3s-agent",
				State:   "active",
			},
		},
		API: bootstrap.APIStatus{
			Version:       "v1.31.4+k3s1",
			ReadyNodes:    2,
			TotalNodes:    2,
			Architectures: []string{"arm64"},
		},
		Components: []bootstrap.ComponentStatus{
			{Component: "cert-manager", Namespace: "cert-manager", Deployment: "cert-manager", Ready: true},
		},
	}
}

func TestNewStatusCmd(t *testing.T) {
	t.Parallel()

	cmd := NewStatusCmd(runtime.NewRuntime())

	assert.Equal(t, "status", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.Flags().Lookup("quiet"))
}

func TestStatusCmdRendersReport(t *testing.T) {
	t.Chdir(t.TempDir())
	writeClusterConfig(t)

	fake := &fakeOrchestrator{statusReport: healthyReport()}
	installFakeOrchestrator(t, fake)

	var output bytes.Buffer

	cmd := NewStatusCmd(runtime.NewRuntime())
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	out := output.String()
	assert.Contains(t, out, "node 'pi-master' (192.168.1.10): k3s active")
	assert.Contains(t, out, "node 'pi-worker' (192.168.1.11): k3s-agent active")
	assert.Contains(t, out, "api server v1.31.4+k3s1: 2/2 node(s) ready (arm64)")
	assert.Contains(t, out, "cert-manager: deployment 'cert-manager/cert-manager' ready")
	assert.Contains(t, out, "cluster healthy")
}

func TestStatusCmdReportsProblems(t *testing.T) {
	t.Chdir(t.TempDir())
	writeClusterConfig(t)

	report := healthyReport()
	report.Nodes[1].State = "inactive"
	report.Components = append(report.Components, bootstrap.ComponentStatus{
		Component:  "rancher",
		Namespace:  "cattle-system",
		Deployment: "rancher",
		FailingPods: []string{
			"rancher-0: ImagePullBackOff for rancher/rancher:v2.11.1",
		},
	})

	fake := &fakeOrchestrator{statusReport: report}
	installFakeOrchestrator(t, fake)

	var output bytes.Buffer

	cmd := NewStatusCmd(runtime.NewRuntime())
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{})

	// Problems are reported in the output, the exit code stays zero so the
	// report is readable in pipelines.
	require.NoError(t, cmd.Execute())
	assert.Contains(t, output.String(), "node 'pi-worker' (192.168.1.11): k3s-agent inactive")
	assert.Contains(t, output.String(), "rancher: deployment 'cattle-system/rancher' not rolled out")
	assert.Contains(t, output.String(), "rancher-0: ImagePullBackOff for rancher/rancher:v2.11.1")
	assert.Contains(t, output.String(), "cluster has problems")
}

func TestStatusCmdQuietHealthy(t *testing.T) {
	t.Chdir(t.TempDir())
	writeClusterConfig(t)

	fake := &fakeOrchestrator{statusReport: healthyReport()}
	installFakeOrchestrator(t, fake)

	var output bytes.Buffer

	cmd := NewStatusCmd(runtime.NewRuntime())
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{"--quiet"})

	require.NoError(t, cmd.Execute())
	assert.Empty(t, output.String())
}

func TestStatusCmdQuietUnhealthy(t *testing.T) {
	t.Chdir(t.TempDir())
	writeClusterConfig(t)

	report := healthyReport()
	report.API.ReadyNodes = 1

	fake := &fakeOrchestrator{statusReport: report}
	installFakeOrchestrator(t, fake)

	cmd := NewStatusCmd(runtime.NewRuntime())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--quiet"})

	err := cmd.Execute()
	require.ErrorIs(t, err, ErrClusterUnhealthy)
}
