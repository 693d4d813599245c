// Package cluster contains the cluster configuration API group. v1alpha1
// is the current and only version; it defines the schema of kroft.yaml.
package cluster
