// Package bootstrap drives a cluster from bare nodes to a running K3s
// cluster with its components installed.
//
// Bootstrap is a fixed sequence of stages: wait for SSH, install the K3s
// server, merge the kubeconfig, join the workers, then install cert-manager,
// Rancher, and Fleet in dependency order. The first failing stage aborts the
// run; re-running is safe because every stage skips work that is already
// done. Teardown walks the same sequence in reverse with best-effort
// semantics.
package bootstrap
