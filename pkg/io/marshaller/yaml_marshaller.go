package marshaller

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// YAMLMarshaller marshals models to YAML through their JSON field tags, which
// keeps the output consistent with how the Kubernetes API types serialize.
type YAMLMarshaller[T any] struct{}

// Compile-time interface compliance verification.
var _ Marshaller[any] = YAMLMarshaller[any]{}

// NewYAMLMarshaller creates a YAML marshaller for T.
func NewYAMLMarshaller[T any]() YAMLMarshaller[T] {
	return YAMLMarshaller[T]{}
}

// Marshal serializes the model to YAML.
func (m YAMLMarshaller[T]) Marshal(model T) (string, error) {
	data, err := yaml.Marshal(model)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	return string(data), nil
}

// Unmarshal deserializes YAML data into the model.
func (m YAMLMarshaller[T]) Unmarshal(data []byte, model *T) error {
	err := yaml.Unmarshal(data, model)
	if err != nil {
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return nil
}

// UnmarshalString deserializes a YAML string into the model.
func (m YAMLMarshaller[T]) UnmarshalString(data string, model *T) error {
	return m.Unmarshal([]byte(data), model)
}
