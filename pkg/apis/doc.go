// Package apis holds the versioned configuration types kroft reads and
// writes. The layout follows Kubernetes API conventions (group, version,
// TypeMeta) so the types round-trip cleanly as YAML manifests.
package apis
