// Package schema derives JSON Schema objects and argument decoders from a
// declarative description of a tool's parameters. A tool declares its
// parameter shape once; the same declaration drives the inputSchema exposed
// by tools/list and the validation applied to every tools/call.
package schema

import (
	"encoding/json"
	"fmt"
)

// Kind is the JSON Schema type of a property.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// Property describes one named parameter or object field.
type Property struct {
	Name        string
	Description string
	Kind        Kind
	Format      string // schema "format" hint, e.g. int64
	Optional    bool
	Enum        []string   // allowed values for string enums
	Items       *Property  // element schema for arrays (its Name is unused)
	Properties  []Property // fields for nested objects
}

// String declares a string parameter.
func String(name, description string) Property {
	return Property{Name: name, Description: description, Kind: KindString}
}

// Integer declares an int64 parameter. The emitted schema carries
// format "int64" so clients know the expected width.
func Integer(name, description string) Property {
	return Property{Name: name, Description: description, Kind: KindInteger, Format: "int64"}
}

// Number declares a float64 parameter.
func Number(name, description string) Property {
	return Property{Name: name, Description: description, Kind: KindNumber}
}

// Boolean declares a boolean parameter.
func Boolean(name, description string) Property {
	return Property{Name: name, Description: description, Kind: KindBoolean}
}

// Enum declares a string parameter restricted to the given values.
func Enum(name, description string, values ...string) Property {
	return Property{Name: name, Description: description, Kind: KindString, Enum: values}
}

// Array declares an array parameter whose elements match items.
func Array(name, description string, items Property) Property {
	return Property{Name: name, Description: description, Kind: KindArray, Items: &items}
}

// Object declares a nested object parameter with the given fields.
func Object(name, description string, fields ...Property) Property {
	return Property{Name: name, Description: description, Kind: KindObject, Properties: fields}
}

// Optional marks a parameter as not required. It still contributes to the
// schema's properties but is dropped from the required list.
func Optional(p Property) Property {
	p.Optional = true
	return p
}

// InputSchema is a tool's derived parameter schema: an ordered parameter
// list plus the decoder applied to inbound argument objects. Immutable once
// built.
type InputSchema struct {
	properties []Property
}

// New validates a parameter list and builds an InputSchema. Declaration
// problems (empty or duplicate names, arrays without element schemas,
// empty enums) are configuration errors surfaced at registration time,
// never per request.
func New(properties ...Property) (*InputSchema, error) {
	if err := validateFields(properties); err != nil {
		return nil, err
	}
	return &InputSchema{properties: properties}, nil
}

// MustNew is New for statically declared schemas; it panics on declaration
// errors, which registration converts into a fatal configuration error.
func MustNew(properties ...Property) *InputSchema {
	s, err := New(properties...)
	if err != nil {
		panic(err)
	}
	return s
}

// Properties returns the declared parameters in declaration order.
func (s *InputSchema) Properties() []Property {
	return s.properties
}

func validateFields(fields []Property) error {
	seen := make(map[string]bool, len(fields))
	for _, p := range fields {
		if p.Name == "" {
			return fmt.Errorf("parameter with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate parameter name %q", p.Name)
		}
		seen[p.Name] = true

		if err := validateProperty(p); err != nil {
			return err
		}
	}
	return nil
}

func validateProperty(p Property) error {
	switch p.Kind {
	case KindString:
		for _, v := range p.Enum {
			if v == "" {
				return fmt.Errorf("parameter %q: empty enum value", p.Name)
			}
		}
	case KindInteger, KindNumber, KindBoolean:
		// nothing beyond the kind itself
	case KindArray:
		if p.Items == nil {
			return fmt.Errorf("parameter %q: array without element schema", p.Name)
		}
		item := *p.Items
		if item.Name == "" {
			item.Name = p.Name + "[]"
		}
		return validateProperty(item)
	case KindObject:
		if err := validateFields(p.Properties); err != nil {
			return fmt.Errorf("parameter %q: %w", p.Name, err)
		}
	default:
		return fmt.Errorf("parameter %q: unsupported kind %q", p.Name, p.Kind)
	}
	return nil
}

// JSON renders the schema as a JSON Schema object:
// {"type":"object","properties":{...},"required":[...]}.
// The required array preserves declaration order.
func (s *InputSchema) JSON() json.RawMessage {
	data, err := json.Marshal(objectSchemaValue(s.properties))
	if err != nil {
		// All values in the schema tree are maps, slices and strings;
		// marshaling cannot fail for a validated schema.
		panic(err)
	}
	return data
}

func objectSchemaValue(fields []Property) map[string]interface{} {
	properties := make(map[string]interface{}, len(fields))
	required := make([]string, 0, len(fields))

	for _, p := range fields {
		properties[p.Name] = propertySchemaValue(p)
		if !p.Optional {
			required = append(required, p.Name)
		}
	}

	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func propertySchemaValue(p Property) map[string]interface{} {
	if p.Kind == KindObject {
		m := objectSchemaValue(p.Properties)
		if p.Description != "" {
			m["description"] = p.Description
		}
		return m
	}

	m := map[string]interface{}{
		"type": string(p.Kind),
	}
	if p.Format != "" {
		m["format"] = p.Format
	}
	if p.Description != "" {
		m["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		m["enum"] = p.Enum
	}
	if p.Kind == KindArray {
		m["items"] = propertySchemaValue(*p.Items)
	}
	return m
}

// Encode serializes a tool's result value for the response envelope.
func Encode(v interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return data, nil
}
