// Package io groups the configuration I/O layers: the typed config
// managers, the YAML and cloud-init generators, the marshaller they share,
// and the project scaffolder.
//
// Plain file helpers (reads, force-aware writes, path expansion) live in
// fsutil instead.
package io
