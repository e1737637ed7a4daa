package tools

import "encoding/json"

// FieldType is the declared runtime type of a tool argument.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldInteger FieldType = "integer"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
)

func (t FieldType) valid() bool {
	switch t {
	case FieldString, FieldInteger, FieldNumber, FieldBoolean:
		return true
	}
	return false
}

// Field describes one argument of a tool.
type Field struct {
	Name        string
	Type        FieldType
	Required    bool
	Description string

	// Enum restricts a string field to the listed values.
	Enum []string
}

// Definition is a named, schema-described operation the engine may call.
type Definition struct {
	Name        string
	Description string

	// Fields is ordered; validation reports the first offending field in
	// this order.
	Fields []Field
}

// Call is a tool invocation produced by the engine.
type Call struct {
	// ID is the engine-assigned call identifier (e.g., "call_abc123" or
	// "toolu_01..."). It may be empty.
	ID string

	Name string

	// Arguments is the untyped argument object as decoded from JSON.
	Arguments map[string]any

	// ArgumentsErr is set when the raw arguments were not a JSON object
	// (truncated output, a bare array). Arguments is nil in that case.
	ArgumentsErr error
}

type schemaProperty struct {
	Type        FieldType `json:"type"`
	Description string    `json:"description,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
}

type objectSchema struct {
	Type                 string                    `json:"type"`
	Properties           map[string]schemaProperty `json:"properties"`
	Required             []string                  `json:"required,omitempty"`
	AdditionalProperties bool                      `json:"additionalProperties"`
}

// Schema renders the argument list as a JSON Schema object. Additional
// properties are allowed so that newer engine arguments don't fail
// validation on older deployments.
func (d Definition) Schema() json.RawMessage {
	s := objectSchema{
		Type:                 "object",
		Properties:           make(map[string]schemaProperty, len(d.Fields)),
		AdditionalProperties: true,
	}
	for _, f := range d.Fields {
		s.Properties[f.Name] = schemaProperty{
			Type:        f.Type,
			Description: f.Description,
			Enum:        f.Enum,
		}
		if f.Required {
			s.Required = append(s.Required, f.Name)
		}
	}
	// Marshaling plain structs and maps of strings cannot fail.
	data, _ := json.Marshal(s)
	return data
}
