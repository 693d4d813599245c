// Package svc holds the service layer sitting between the CLI commands and
// the clients underneath.
//
// Subpackages:
//   - bootstrap: cluster bootstrap, teardown, and health orchestration
//   - installer: component installers for K3s, cert-manager, Rancher, and Fleet
//   - provisioner: local development cluster provisioning for Kind and K3d
package svc
