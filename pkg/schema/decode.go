package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	mcperrors "github.com/modelctx/mcp-go/pkg/errors"
)

// Decode validates an inbound arguments object against the schema and
// returns the decoded values keyed by parameter name. Integers come back as
// int64, numbers as float64, booleans as bool, strings as string, arrays as
// []interface{} and nested objects as map[string]interface{}. Optional
// parameters that were absent (or null) do not appear in the result.
//
// Any failure is a validation error carrying the dotted path of the
// offending field, which the engine maps to a JSON-RPC invalid-params
// response.
func (s *InputSchema) Decode(args json.RawMessage) (map[string]interface{}, error) {
	if len(args) == 0 || bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		args = json.RawMessage("{}")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(args, &raw); err != nil {
		return nil, mcperrors.DecodeError("arguments", "expected a JSON object")
	}

	return decodeFields(s.properties, raw, "")
}

func decodeFields(fields []Property, raw map[string]json.RawMessage, prefix string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(fields))

	for _, p := range fields {
		path := p.Name
		if prefix != "" {
			path = prefix + "." + p.Name
		}

		value, present := raw[p.Name]
		if !present || isNull(value) {
			if p.Optional {
				continue
			}
			return nil, mcperrors.DecodeError(path, "missing required parameter")
		}

		decoded, err := decodeValue(p, value, path)
		if err != nil {
			return nil, err
		}
		out[p.Name] = decoded
	}

	return out, nil
}

func decodeValue(p Property, value json.RawMessage, path string) (interface{}, error) {
	switch p.Kind {
	case KindString:
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, mcperrors.DecodeError(path, "expected a string")
		}
		if len(p.Enum) > 0 && !containsString(p.Enum, s) {
			return nil, mcperrors.DecodeError(path,
				fmt.Sprintf("value %q is not one of %v", s, p.Enum))
		}
		return s, nil

	case KindInteger:
		n, err := decodeNumber(value)
		if err != nil {
			return nil, mcperrors.DecodeError(path, "expected an integer")
		}
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return nil, mcperrors.DecodeError(path, "expected an integer")
		}
		return i, nil

	case KindNumber:
		n, err := decodeNumber(value)
		if err != nil {
			return nil, mcperrors.DecodeError(path, "expected a number")
		}
		f, err := n.Float64()
		if err != nil {
			return nil, mcperrors.DecodeError(path, "expected a number")
		}
		return f, nil

	case KindBoolean:
		var b bool
		if err := json.Unmarshal(value, &b); err != nil {
			return nil, mcperrors.DecodeError(path, "expected a boolean")
		}
		return b, nil

	case KindArray:
		var elements []json.RawMessage
		if err := json.Unmarshal(value, &elements); err != nil {
			return nil, mcperrors.DecodeError(path, "expected an array")
		}
		out := make([]interface{}, 0, len(elements))
		for i, elem := range elements {
			decoded, err := decodeValue(*p.Items, elem, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out = append(out, decoded)
		}
		return out, nil

	case KindObject:
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(value, &raw); err != nil {
			return nil, mcperrors.DecodeError(path, "expected an object")
		}
		return decodeFields(p.Properties, raw, path)

	default:
		return nil, mcperrors.DecodeError(path, fmt.Sprintf("unsupported kind %q", p.Kind))
	}
}

// decodeNumber parses a JSON number without converting it through float64,
// so int64 values keep full precision.
func decodeNumber(value json.RawMessage) (json.Number, error) {
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()

	token, err := dec.Token()
	if err != nil {
		return "", err
	}
	n, ok := token.(json.Number)
	if !ok {
		return "", fmt.Errorf("not a number")
	}
	return n, nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
