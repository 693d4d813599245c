// Package k8s provides Kubernetes client configuration and general-purpose
// cluster utilities.
//
// This package offers reusable helpers for working with the bootstrapped
// cluster: REST client configuration, kubeconfig cleanup on teardown, node
// labelling, secret management, and DNS label sanitization for names that end
// up in kubeconfig entries.
//
// For resource readiness polling, see the [readiness] sub-package.
package k8s
