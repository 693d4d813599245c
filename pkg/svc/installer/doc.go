// Package installer provides functionality for installing and uninstalling
// cluster components.
//
// This package defines the Installer interface and provides implementations
// for the pieces of the homelab platform (K3s itself, cert-manager, Rancher,
// Fleet) installed during bootstrap.
package installer
