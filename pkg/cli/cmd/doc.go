// Package cmd provides the command-line interface for Kroft.
//
// This package contains the root command and delegates to subcommand packages:
//   - node: Node preparation and configuration (cloud-init images, OS setup)
//   - cluster: Cluster lifecycle management (bootstrap, teardown, status, etc.)
//   - workload: Workload management (apply, validate)
//   - infra: Infrastructure-as-code runs via OpenTofu (plan, apply, destroy)
//   - dev: Local development clusters backed by k3d
//   - cipher: Secret encryption and decryption with SOPS
package cmd
