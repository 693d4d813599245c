// Package ssh provides the SSH client kroft uses to reach cluster nodes for
// provisioning, K3s installation, and teardown.
//
// Host keys are verified against a known-hosts file when one is configured.
// Without one the host key is accepted without verification, which matches the
// trust model of a homelab where the operator flashes and addresses the nodes
// themselves.
package ssh
