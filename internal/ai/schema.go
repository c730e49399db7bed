// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ai

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// FieldType is a JSON type a schema field may take
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Field describes one property of a structured response
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Required    bool
	Enum        []string
	// Min and Max bound number fields when Bounded is set
	Bounded bool
	Min     float64
	Max     float64
	// Items describes array elements
	Items *Field
	// Fields describes object properties
	Fields []Field
}

// Schema is the shape a structured response must take
type Schema struct {
	Name        string
	Description string
	Fields      []Field
}

// JSONSchema renders the schema as a closed JSON Schema object
func (s Schema) JSONSchema() *jsonschema.Schema {
	out := objectSchema(s.Fields)
	out.Description = s.Description
	return out
}

func objectSchema(fields []Field) *jsonschema.Schema {
	out := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(fields)),
		Required:   []string{},
	}
	// {"not": {}} is the false schema: no undeclared properties
	out.AdditionalProperties = &jsonschema.Schema{Not: &jsonschema.Schema{}}
	for _, f := range fields {
		out.Properties[f.Name] = fieldSchema(f)
		if f.Required {
			out.Required = append(out.Required, f.Name)
		}
	}
	return out
}

func fieldSchema(f Field) *jsonschema.Schema {
	var out *jsonschema.Schema
	switch f.Type {
	case TypeObject:
		out = objectSchema(f.Fields)
	case TypeArray:
		out = &jsonschema.Schema{Type: "array"}
		if f.Items != nil {
			out.Items = fieldSchema(*f.Items)
		}
	default:
		out = &jsonschema.Schema{Type: string(f.Type)}
	}
	out.Description = f.Description
	for _, v := range f.Enum {
		out.Enum = append(out.Enum, v)
	}
	if f.Bounded {
		lo, hi := f.Min, f.Max
		out.Minimum = &lo
		out.Maximum = &hi
	}
	return out
}

// Validate checks a decoded JSON object against the schema
func (s Schema) Validate(obj map[string]any) error {
	resolved, err := s.JSONSchema().Resolve(nil)
	if err != nil {
		return fmt.Errorf("invalid schema %q: %w", s.Name, err)
	}
	return resolved.Validate(obj)
}
