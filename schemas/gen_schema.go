// Copyright (c) Kroft contributors. All rights reserved.
// Licensed under the MIT License.

//go:build ignore

// gen_schema.go reflects a JSON schema out of the kroft config types and
// writes it to kroft-config.schema.json, so editors can validate and
// complete kroft.yaml files.
//
// Usage:
//
//	go run gen_schema.go [output-path]
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
)

const (
	dirPermissions  = 0o750
	filePermissions = 0o600
)

func main() {
	if err := run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	outputPath := "kroft-config.schema.json"
	if len(args) > 1 {
		outputPath = args[1]
	}

	return writeSchema(outputPath, buildSchema())
}

// buildSchema reflects the Cluster type and applies the kroft adjustments.
func buildSchema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper:                    customTypeMapper,
	}

	schema := reflector.Reflect(&v1alpha1.Cluster{})

	schema.ID = ""
	schema.Title = "Kroft Cluster Configuration"
	schema.Description = "JSON schema for kroft cluster configuration (kroft.yaml)"

	// Every field uses omitzero, so nothing nested is required.
	walkSchema(schema, func(s *jsonschema.Schema) {
		s.Required = nil
	})

	schema.Required = []string{"spec"}

	pinEnum(schema, "kind", v1alpha1.Kind)
	pinEnum(schema, "apiVersion", v1alpha1.APIVersion)

	return schema
}

// pinEnum restricts a top level property to a single constant value.
func pinEnum(schema *jsonschema.Schema, property string, value string) {
	if schema.Properties == nil {
		return
	}

	if p, ok := schema.Properties.Get(property); ok && p != nil {
		p.Enum = []any{value}
	}
}

func writeSchema(outputPath string, schema *jsonschema.Schema) error {
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), dirPermissions); err != nil {
		return fmt.Errorf("create directory for %s: %w", outputPath, err)
	}

	if err := os.WriteFile(outputPath, schemaJSON, filePermissions); err != nil {
		return fmt.Errorf("write schema to %s: %w", outputPath, err)
	}

	fmt.Printf("gen_schema: wrote %s (%d bytes)\n", outputPath, len(schemaJSON))

	return nil
}

// walkSchema calls fn on the schema and every schema nested under it.
func walkSchema(schema *jsonschema.Schema, fn func(*jsonschema.Schema)) {
	if schema == nil {
		return
	}

	fn(schema)

	children := []*jsonschema.Schema{schema.Items, schema.AdditionalProperties}

	if schema.Properties != nil {
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			children = append(children, pair.Value)
		}
	}

	for _, child := range children {
		walkSchema(child, fn)
	}
}

// customTypeMapper overrides the reflected schema for config types with
// hand-built ones: enum types list their valid values and durations become
// Go duration strings.
func customTypeMapper(t reflect.Type) *jsonschema.Schema {
	if t == reflect.TypeFor[metav1.Duration]() {
		return &jsonschema.Schema{
			Type:    "string",
			Pattern: "^[0-9]+(ns|us|µs|ms|s|m|h)$",
		}
	}

	return enumSchemaFor(t)
}

// enumSchemaFor builds a string schema carrying the valid values of any
// config type implementing EnumValuer. ValidValues uses pointer receivers,
// hence the reflect.New.
func enumSchemaFor(t reflect.Type) *jsonschema.Schema {
	valuer, ok := reflect.New(t).Interface().(v1alpha1.EnumValuer)
	if !ok {
		return nil
	}

	values := valuer.ValidValues()
	enumVals := make([]any, 0, len(values))

	for _, v := range values {
		enumVals = append(enumVals, v)
	}

	return &jsonschema.Schema{Type: "string", Enum: enumVals}
}
