package marshaller

// Marshaller converts models to and from a serialized representation.
type Marshaller[T any] interface {
	// Marshal serializes the model.
	Marshal(model T) (string, error)
	// Unmarshal deserializes data into the model.
	Unmarshal(data []byte, model *T) error
	// UnmarshalString deserializes a string into the model.
	UnmarshalString(data string, model *T) error
}
