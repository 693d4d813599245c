// Package cloudinitgenerator renders the NoCloud provisioning trio
// (user-data, meta-data, network-config) for cluster nodes.
package cloudinitgenerator

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/fsutil"
	"github.com/kroft-dev/kroft/pkg/io/generator"
	yamlgenerator "github.com/kroft-dev/kroft/pkg/io/generator/yaml"
)

// Names of the generated files inside a node's output directory.
const (
	UserDataFileName      = "user-data"
	MetaDataFileName      = "meta-data"
	NetworkConfigFileName = "network-config"
)

const userDataHeader = "#cloud-config\n"

// cmdlinePath is the Raspberry Pi kernel command line file. K3s needs the
// memory cgroup enabled there before the agent can start.
const cmdlinePath = "/boot/firmware/cmdline.txt"

const cgroupFlags = "cgroup_memory=1 cgroup_enable=memory"

// Model carries the cluster-wide provisioning settings and the node being rendered.
type Model struct {
	Spec *v1alpha1.Spec
	Node v1alpha1.Node
}

// CloudInitGenerator renders provisioning documents for one node at a time.
type CloudInitGenerator struct{}

// Compile-time interface compliance verification.
var _ generator.Generator[Model, yamlgenerator.Options] = (*CloudInitGenerator)(nil)

// NewCloudInitGenerator creates and returns a new CloudInitGenerator instance.
func NewCloudInitGenerator() *CloudInitGenerator {
	return &CloudInitGenerator{}
}

// Generate renders all three documents and, when opts.Output is set, writes
// them into that directory. Returns the rendered user-data document.
func (g *CloudInitGenerator) Generate(model Model, opts yamlgenerator.Options) (string, error) {
	userData, err := g.UserData(model)
	if err != nil {
		return "", err
	}

	metaData, err := g.MetaData(model)
	if err != nil {
		return "", err
	}

	networkConfig, err := g.NetworkConfig(model)
	if err != nil {
		return "", err
	}

	if opts.Output != "" {
		documents := map[string]string{
			UserDataFileName:      userData,
			MetaDataFileName:      metaData,
			NetworkConfigFileName: networkConfig,
		}

		for _, name := range []string{UserDataFileName, MetaDataFileName, NetworkConfigFileName} {
			_, err = fsutil.TryWriteFile(documents[name], filepath.Join(opts.Output, name), opts.Force)
			if err != nil {
				return "", fmt.Errorf("write %s: %w", name, err)
			}
		}
	}

	return userData, nil
}

// UserData renders the `#cloud-config` document for the node.
func (g *CloudInitGenerator) UserData(model Model) (string, error) {
	doc := buildUserData(model)

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal user-data: %w", err)
	}

	return userDataHeader + string(out), nil
}

// MetaData renders the NoCloud meta-data document for the node.
func (g *CloudInitGenerator) MetaData(model Model) (string, error) {
	doc := MetaData{
		InstanceID:    "iid-" + model.Node.Name,
		LocalHostname: model.Node.Name,
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal meta-data: %w", err)
	}

	return string(out), nil
}

// NetworkConfig renders the netplan v2 document with the node's static address.
func (g *CloudInitGenerator) NetworkConfig(model Model) (string, error) {
	network := model.Spec.Network

	iface := network.Interface
	if iface == "" {
		iface = v1alpha1.DefaultNetworkInterface
	}

	prefix := network.CIDRPrefix
	if prefix == 0 {
		prefix = v1alpha1.DefaultCIDRPrefix
	}

	ethernet := Ethernet{
		DHCP4:     false,
		Addresses: []string{model.Node.Address + "/" + strconv.Itoa(prefix)},
		Gateway4:  network.Gateway,
	}

	if len(network.Nameservers) > 0 {
		ethernet.Nameservers = &Nameservers{Addresses: network.Nameservers}
	}

	doc := NetworkConfig{
		Version:   2,
		Ethernets: map[string]Ethernet{iface: ethernet},
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal network-config: %w", err)
	}

	return string(out), nil
}

func buildUserData(model Model) UserData {
	cloudInit := model.Spec.CloudInit

	timezone := cloudInit.Timezone
	if timezone == "" {
		timezone = v1alpha1.DefaultTimezone
	}

	locale := cloudInit.Locale
	if locale == "" {
		locale = v1alpha1.DefaultLocale
	}

	user := model.Spec.SSH.User
	if user == "" {
		user = v1alpha1.DefaultSSHUser
	}

	return UserData{
		Hostname:       model.Node.Name,
		ManageEtcHosts: true,
		Timezone:       timezone,
		Locale:         locale,
		Users: []User{
			{
				Name:              user,
				Groups:            "users,adm,sudo",
				Shell:             "/bin/bash",
				Sudo:              "ALL=(ALL) NOPASSWD:ALL",
				LockPasswd:        true,
				SSHAuthorizedKeys: cloudInit.AuthorizedKeys,
			},
		},
		PackageUpdate:  true,
		PackageUpgrade: true,
		Packages:       withBasePackages(cloudInit.Packages),
		BootCmd:        []string{cgroupBootCmd()},
		PowerState: &PowerState{
			Mode:    "reboot",
			Message: "reboot to apply kernel cgroup settings",
			Timeout: 30,
		},
	}
}

// withBasePackages guarantees curl is present for the K3s installation that
// later runs over SSH.
func withBasePackages(configured []string) []string {
	packages := []string{"curl"}

	for _, pkg := range configured {
		if !slices.Contains(packages, pkg) {
			packages = append(packages, pkg)
		}
	}

	return packages
}

// cgroupBootCmd appends the cgroup flags to the kernel command line once.
// bootcmd runs on every boot, so the grep guard keeps it idempotent.
func cgroupBootCmd() string {
	return "grep -q cgroup_enable=memory " + cmdlinePath +
		" || sed -i '1 s/$/ " + cgroupFlags + "/' " + cmdlinePath
}
