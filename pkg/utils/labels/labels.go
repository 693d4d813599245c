// Package labels aggregates values out of Kubernetes-style label maps.
package labels

import (
	"maps"
	"slices"
)

// UniqueValues collects the distinct non-empty values the items carry for one
// label key and returns them sorted. The status command uses it to summarize
// the CPU architectures behind a mixed Pi cluster.
func UniqueValues[T any](items []T, key string, labelsOf func(T) map[string]string) []string {
	values := make(map[string]struct{})

	for _, item := range items {
		value := labelsOf(item)[key]
		if value == "" {
			continue
		}

		values[value] = struct{}{}
	}

	return slices.Sorted(maps.Keys(values))
}
