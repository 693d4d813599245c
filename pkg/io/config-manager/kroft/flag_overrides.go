package configmanager

import (
	"fmt"
	"strconv"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// flagValueSetter matches enum fields that implement pflag.Value style
// setters.
type flagValueSetter interface {
	Set(value string) error
}

// setFieldValueFromFlag writes a flag's string representation into the
// config field behind fieldPtr, dispatching on its concrete type. An empty
// string resets numeric and boolean fields to their zero value. Field types
// without a parser are left untouched.
func setFieldValueFromFlag(fieldPtr any, raw string) error {
	if setter, ok := fieldPtr.(flagValueSetter); ok {
		err := setter.Set(raw)
		if err != nil {
			return fmt.Errorf("set flag value: %w", err)
		}

		return nil
	}

	switch ptr := fieldPtr.(type) {
	case *string:
		*ptr = raw

		return nil
	case *metav1.Duration:
		return assignParsed(raw, "duration", time.ParseDuration, func(v time.Duration) {
			ptr.Duration = v
		})
	case *bool:
		return assignParsed(raw, "bool", strconv.ParseBool, func(v bool) { *ptr = v })
	case *int:
		return assignParsed(raw, "int", strconv.Atoi, func(v int) { *ptr = v })
	default:
		return nil
	}
}

// assignParsed parses raw with parse and hands the result to assign. The
// empty string assigns the zero value without parsing.
func assignParsed[T any](
	raw, kind string,
	parse func(string) (T, error),
	assign func(T),
) error {
	if raw == "" {
		var zero T

		assign(zero)

		return nil
	}

	value, err := parse(raw)
	if err != nil {
		return fmt.Errorf("parse %s %q: %w", kind, raw, err)
	}

	assign(value)

	return nil
}
