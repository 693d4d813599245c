package cloudinitgenerator

// Cloud-init document models. Field order follows the order the documents are
// conventionally written in, since yaml.v3 preserves struct order.

// UserData is the `#cloud-config` user-data document for a node.
type UserData struct {
	Hostname       string      `yaml:"hostname"`
	ManageEtcHosts bool        `yaml:"manage_etc_hosts"`
	Timezone       string      `yaml:"timezone,omitempty"`
	Locale         string      `yaml:"locale,omitempty"`
	Users          []User      `yaml:"users,omitempty"`
	PackageUpdate  bool        `yaml:"package_update"`
	PackageUpgrade bool        `yaml:"package_upgrade"`
	Packages       []string    `yaml:"packages,omitempty"`
	WriteFiles     []WriteFile `yaml:"write_files,omitempty"`
	BootCmd        []string    `yaml:"bootcmd,omitempty"`
	RunCmd         []string    `yaml:"runcmd,omitempty"`
	PowerState     *PowerState `yaml:"power_state,omitempty"`
}

// User is a cloud-init user entry.
type User struct {
	Name              string   `yaml:"name"`
	Groups            string   `yaml:"groups,omitempty"`
	Shell             string   `yaml:"shell,omitempty"`
	Sudo              string   `yaml:"sudo,omitempty"`
	LockPasswd        bool     `yaml:"lock_passwd"`
	SSHAuthorizedKeys []string `yaml:"ssh_authorized_keys,omitempty"`
}

// WriteFile is a cloud-init write_files entry.
type WriteFile struct {
	Path        string `yaml:"path"`
	Permissions string `yaml:"permissions,omitempty"`
	Content     string `yaml:"content"`
}

// PowerState controls what happens after first-boot provisioning completes.
type PowerState struct {
	Mode    string `yaml:"mode"`
	Message string `yaml:"message,omitempty"`
	Timeout int    `yaml:"timeout,omitempty"`
}

// MetaData is the NoCloud meta-data document for a node.
type MetaData struct {
	InstanceID    string `yaml:"instance-id"`
	LocalHostname string `yaml:"local-hostname"`
}

// NetworkConfig is the netplan v2 network-config document.
type NetworkConfig struct {
	Version   int                 `yaml:"version"`
	Ethernets map[string]Ethernet `yaml:"ethernets"`
}

// Ethernet configures static addressing for one interface.
type Ethernet struct {
	DHCP4       bool         `yaml:"dhcp4"`
	Addresses   []string     `yaml:"addresses"`
	Gateway4    string       `yaml:"gateway4,omitempty"`
	Nameservers *Nameservers `yaml:"nameservers,omitempty"`
}

// Nameservers lists DNS resolver addresses.
type Nameservers struct {
	Addresses []string `yaml:"addresses"`
}
