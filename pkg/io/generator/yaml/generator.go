// Package yamlgenerator provides a generic generator that marshals any model
// to YAML and optionally writes it to disk.
package yamlgenerator

import (
	"fmt"

	"github.com/kroft-dev/kroft/pkg/fsutil"
	"github.com/kroft-dev/kroft/pkg/io/marshaller"
)

// Options configures where generated content is written.
type Options struct {
	// Output is the file path to write to. When empty the content is only returned.
	Output string
	// Force overwrites an existing file.
	Force bool
}

// Generator marshals models of type T to YAML.
type Generator[T any] struct {
	Marshaller marshaller.Marshaller[T]
}

// NewGenerator creates a YAML generator for T.
func NewGenerator[T any]() *Generator[T] {
	return &Generator[T]{
		Marshaller: marshaller.NewYAMLMarshaller[T](),
	}
}

// Generate marshals the model and writes it to opts.Output when set.
func (g *Generator[T]) Generate(model T, opts Options) (string, error) {
	out, err := g.Marshaller.Marshal(model)
	if err != nil {
		return "", fmt.Errorf("marshal model: %w", err)
	}

	if opts.Output != "" {
		result, err := fsutil.TryWriteFile(out, opts.Output, opts.Force)
		if err != nil {
			return "", fmt.Errorf("write generated file: %w", err)
		}

		return result, nil
	}

	return out, nil
}
