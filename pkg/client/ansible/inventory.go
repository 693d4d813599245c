package ansible

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Host describes one inventory entry.
type Host struct {
	Name         string
	Address      string
	User         string
	Port         int
	IdentityFile string
}

// Inventory groups cluster hosts into the masters and workers sections the
// playbooks target.
type Inventory struct {
	Masters []Host
	Workers []Host
}

// Render returns the ini-style inventory text.
func (i Inventory) Render() string {
	var builder strings.Builder

	renderGroup(&builder, "masters", i.Masters)
	builder.WriteString("\n")
	renderGroup(&builder, "workers", i.Workers)

	return builder.String()
}

// Write renders the inventory to path, creating parent directories. The file
// is private since it can reference identity files.
func (i Inventory) Write(path string) error {
	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return fmt.Errorf("create inventory directory: %w", err)
	}

	err = os.WriteFile(path, []byte(i.Render()), 0o600)
	if err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}

	return nil
}

func renderGroup(builder *strings.Builder, name string, hosts []Host) {
	builder.WriteString("[" + name + "]\n")

	for _, host := range hosts {
		builder.WriteString(hostLine(host) + "\n")
	}
}

func hostLine(host Host) string {
	parts := []string{host.Name, "ansible_host=" + host.Address}

	if host.User != "" {
		parts = append(parts, "ansible_user="+host.User)
	}

	if host.Port != 0 {
		parts = append(parts, fmt.Sprintf("ansible_port=%d", host.Port))
	}

	if host.IdentityFile != "" {
		parts = append(parts, "ansible_ssh_private_key_file="+host.IdentityFile)
	}

	return strings.Join(parts, " ")
}
