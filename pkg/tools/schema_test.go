package tools

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func compileSchema(t *testing.T, d Definition) *jsonschema.Schema {
	t.Helper()
	s, err := jsonschema.CompileString(d.Name+".json", string(d.Schema()))
	if err != nil {
		t.Fatalf("Compile(%s) failed: %v\nschema: %s", d.Name, err, d.Schema())
	}
	return s
}

func TestSchemaCompiles(t *testing.T) {
	for _, d := range sampleDefinitions() {
		t.Run(d.Name, func(t *testing.T) {
			compileSchema(t, d)
		})
	}
}

func TestSchemaShape(t *testing.T) {
	d := sampleDefinitions()[0]

	var got map[string]any
	if err := json.Unmarshal(d.Schema(), &got); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if got["type"] != "object" {
		t.Errorf("type = %v, want object", got["type"])
	}
	if got["additionalProperties"] != true {
		t.Errorf("additionalProperties = %v, want true", got["additionalProperties"])
	}
	required, _ := got["required"].([]any)
	if len(required) != 2 || required[0] != "procedure" || required[1] != "timeline" {
		t.Errorf("required = %v", got["required"])
	}
	props := got["properties"].(map[string]any)
	pref := props["budget_preference"].(map[string]any)
	if enum, _ := pref["enum"].([]any); len(enum) != 3 {
		t.Errorf("enum = %v", pref["enum"])
	}
}

func TestEmptySchemaHasProperties(t *testing.T) {
	d := Definition{Name: "generate_comparison"}
	if !bytes.Contains(d.Schema(), []byte(`"properties":{}`)) {
		t.Errorf("schema = %s, want empty properties object", d.Schema())
	}
	compileSchema(t, d)
}

// The schema and the validator must agree on what a valid call is.
func TestSchemaAgreesWithValidator(t *testing.T) {
	r := newTestRegistry(t)
	def, _ := r.Lookup("create_journey")
	schema := compileSchema(t, def)

	cases := []string{
		`{"procedure":"IVF","timeline":"soon"}`,
		`{"procedure":"IVF","timeline":"soon","budget_preference":"premium","extra":1}`,
		`{"procedure":"IVF"}`,
		`{"procedure":"IVF","timeline":"soon","budget_preference":"luxury"}`,
		`{"procedure":"IVF","timeline":"soon","budget_min":"100"}`,
	}
	for _, raw := range cases {
		var v map[string]any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			t.Fatal(err)
		}
		schemaOK := schema.Validate(v) == nil
		_, verr := r.Validate("create_journey", v)
		if schemaOK != (verr == nil) {
			t.Errorf("%s: schema valid=%v, validator valid=%v", raw, schemaOK, verr == nil)
		}
	}
}
