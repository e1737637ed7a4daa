package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ValidationReason classifies why arguments were rejected.
type ValidationReason string

const (
	ReasonUnknownTool ValidationReason = "unknown_tool"
	ReasonMissing     ValidationReason = "missing"
	ReasonType        ValidationReason = "type"
	ReasonEnum        ValidationReason = "enum"
	ReasonMalformed   ValidationReason = "malformed"
)

// ValidationError reports the first problem found with a tool call. Field
// is empty when the tool itself is unknown.
type ValidationError struct {
	Tool   string
	Field  string
	Reason ValidationReason
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonUnknownTool:
		return fmt.Sprintf("unknown tool %q", e.Tool)
	case ReasonMalformed:
		return fmt.Sprintf("tool %q: arguments could not be parsed", e.Tool)
	}
	return fmt.Sprintf("tool %q: field %q: %s", e.Tool, e.Field, e.Reason)
}

// Outcome renders the error as the correction sentence folded into the
// reply. It is never fatal.
func (e *ValidationError) Outcome() Outcome {
	switch e.Reason {
	case ReasonUnknownTool:
		return Invalid(Fragment("I tried to use something I can't do yet. Could you rephrase what you'd like me to help with?"))
	case ReasonMalformed:
		return Invalid(Fragment("I lost some of the details for that request. Mind saying it once more?"))
	}
	return Invalid(Fragment(e.Field + " looks off — mind double-checking?"))
}

// Arguments holds validated arguments: only declared fields, with integer
// fields normalised to int and number fields to float64.
type Arguments map[string]any

// Decode fills dst (a pointer to a struct with json tags) from the
// arguments.
func (a Arguments) Decode(dst any) error {
	data, err := json.Marshal(map[string]any(a))
	if err != nil {
		return fmt.Errorf("encoding arguments: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding arguments: %w", err)
	}
	return nil
}

// ValidateCall validates an engine tool call. Arguments that could not be
// decoded are reported after the tool name is checked, so an unknown tool
// is still reported as such.
func (r *Registry) ValidateCall(c Call) (Arguments, *ValidationError) {
	if c.ArgumentsErr != nil {
		if _, ok := r.Lookup(c.Name); !ok {
			return nil, &ValidationError{Tool: c.Name, Reason: ReasonUnknownTool}
		}
		return nil, &ValidationError{Tool: c.Name, Reason: ReasonMalformed}
	}
	return r.Validate(c.Name, c.Arguments)
}

// Validate checks args against the definition registered under name.
// Missing required fields, type mismatches and enum violations are
// reported in field order. A JSON null counts as absent. Undeclared
// fields are dropped, not rejected.
func (r *Registry) Validate(name string, args map[string]any) (Arguments, *ValidationError) {
	def, ok := r.Lookup(name)
	if !ok {
		return nil, &ValidationError{Tool: name, Reason: ReasonUnknownTool}
	}

	out := make(Arguments, len(def.Fields))
	for _, f := range def.Fields {
		raw, present := args[f.Name]
		if !present || raw == nil {
			if f.Required {
				return nil, &ValidationError{Tool: name, Field: f.Name, Reason: ReasonMissing}
			}
			continue
		}

		v, ok := coerce(f.Type, raw)
		if !ok {
			return nil, &ValidationError{Tool: name, Field: f.Name, Reason: ReasonType}
		}
		if s, isString := v.(string); isString {
			if f.Required && strings.TrimSpace(s) == "" {
				return nil, &ValidationError{Tool: name, Field: f.Name, Reason: ReasonMissing}
			}
			if len(f.Enum) > 0 && !slices.Contains(f.Enum, s) {
				return nil, &ValidationError{Tool: name, Field: f.Name, Reason: ReasonEnum}
			}
		}
		out[f.Name] = v
	}
	return out, nil
}

// coerce checks v against t and returns it in canonical form. Numeric
// strings are not accepted for numeric fields.
func coerce(t FieldType, v any) (any, bool) {
	switch t {
	case FieldString:
		s, ok := v.(string)
		return s, ok
	case FieldBoolean:
		b, ok := v.(bool)
		return b, ok
	case FieldNumber:
		f, ok := toFloat(v)
		return f, ok
	case FieldInteger:
		f, ok := toFloat(v)
		if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return nil, false
		}
		return int(f), true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
