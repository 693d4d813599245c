// Package fsutil holds the small filesystem helpers shared across kroft:
// home directory expansion for user supplied paths such as kubeconfigs and
// SSH identity files, reads that expand before touching disk, and
// force-aware writes for generated files.
package fsutil
