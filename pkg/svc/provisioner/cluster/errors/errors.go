// Package clustererrors provides sentinel errors shared by the development
// cluster provisioners so command handlers can match on them regardless of
// which distribution backs the cluster.
package clustererrors

import "errors"

// ErrClusterNotFound is returned when an operation targets a cluster that
// does not exist.
var ErrClusterNotFound = errors.New("cluster not found")
