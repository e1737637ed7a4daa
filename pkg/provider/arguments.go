package provider

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrArgumentsNotObject is returned when tool arguments decode to something
// other than a JSON object.
var ErrArgumentsNotObject = errors.New("tool arguments are not a JSON object")

// DecodeArguments parses raw tool arguments. Empty input and JSON null
// yield an empty map. Numbers decode as float64.
func DecodeArguments(raw []byte) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}
	if raw[0] != '{' {
		return nil, ErrArgumentsNotObject
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	return args, nil
}
