// Package client provides infrastructure and Kubernetes tool clients.
//
// Most clients embed the tool as a Go library, eliminating external binary
// dependencies. The ansible and terraform clients wrap their binaries
// instead, since those ecosystems have no embeddable Go form:
//
//   - ansible: Playbook-driven node configuration (wraps ansible-playbook)
//   - docker: Docker container operations for development clusters
//   - helm: Helm chart installation and management
//   - k9s: Terminal UI for Kubernetes cluster interaction
//   - kubeconform: Kubernetes manifest validation
//   - kubectl: Kubernetes API operations and server-side apply
//   - netretry: Retry policies for flaky network operations
//   - ssh: SSH sessions and file transfer to cluster nodes
//   - terraform: Infrastructure plan, apply, and destroy (wraps terraform)
package client
