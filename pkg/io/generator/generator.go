package generator

// Generator is implemented by specific document generators (yaml, cloud-init).
// The Options type parameter allows each implementation to define its own
// options structure.
type Generator[T any, Options any] interface {
	Generate(model T, opts Options) (string, error)
}
