package decode

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rhuss/opexcore/pkg/api"
)

// Object decodes data into v after checking that every required top-level
// key is present and not null.
func Object(data []byte, v any, required ...string) error {
	if len(required) > 0 {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return syntaxError(err)
		}
		if err := requireKeys(fields, required); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return syntaxError(err)
	}
	return nil
}

// List decodes a JSON array. Each element must carry the required keys.
func List[T any](data []byte, required ...string) ([]T, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, syntaxError(err)
	}
	out := make([]T, 0, len(raw))
	for i, elem := range raw {
		var item T
		if err := Object(elem, &item, required...); err != nil {
			if apiErr, ok := api.AsAPIError(err); ok {
				apiErr.Message = fmt.Sprintf("item %d: %s", i, apiErr.Message)
			}
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Unwrap returns the raw value stored under key in a JSON object.
func Unwrap(data []byte, key string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, syntaxError(err)
	}
	if err := requireKeys(fields, []string{key}); err != nil {
		return nil, err
	}
	return fields[key], nil
}

func requireKeys(fields map[string]json.RawMessage, required []string) error {
	if fields == nil {
		return api.NewDecodeError("", "expected a JSON object", nil)
	}
	for _, key := range required {
		v, ok := fields[key]
		if !ok || string(v) == "null" {
			return api.NewDecodeError(key, fmt.Sprintf("required key %q is missing", key), nil)
		}
	}
	return nil
}

// syntaxError converts encoding/json failures into decode errors, naming
// the field on type mismatches.
func syntaxError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return api.NewDecodeError(typeErr.Field,
			fmt.Sprintf("field %q: cannot decode %s into %s", typeErr.Field, typeErr.Value, typeErr.Type), err)
	}
	return api.NewDecodeError("", fmt.Sprintf("malformed response: %s", err.Error()), err)
}
