package genesis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedGenesis is returned when a path the merger relies on holds a
// value of the wrong shape, e.g. app_state.bank being a string.
var ErrMalformedGenesis = errors.New("malformed genesis document")

// Document is a decoded JSON object. Numbers are kept as json.Number so that
// large integer amounts survive a decode/encode cycle unchanged.
type Document map[string]any

// Decode parses data as a single JSON object.
func Decode(data []byte) (Document, error) {
	v, err := decodeValue(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
	return obj, nil
}

// Encode renders v as compact JSON without HTML escaping and without a
// trailing newline.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// decodeValue decodes exactly one JSON value, rejecting trailing content.
func decodeValue(data []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var v any
	if err := decoder.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected content after JSON value")
	}
	return v, nil
}

// AppState returns the app_state object, or nil when absent or not an object.
func (d Document) AppState() map[string]any {
	appState, _ := d["app_state"].(map[string]any)
	return appState
}

// object walks path from root and returns the object found there. Missing or
// null intermediate values are created when create is set.
func object(root map[string]any, path []string, create bool) (map[string]any, error) {
	cur := root
	for _, key := range path {
		switch next := cur[key].(type) {
		case map[string]any:
			cur = next
		case nil:
			if !create {
				return nil, nil
			}
			child := make(map[string]any)
			cur[key] = child
			cur = child
		default:
			return nil, fmt.Errorf("%w: %q holds %T, want object", ErrMalformedGenesis, key, next)
		}
	}
	return cur, nil
}

// ensureList makes sure the list at path exists, creating parents and an
// empty list as needed. An existing value is left untouched, whatever it is.
func ensureList(root map[string]any, path []string) error {
	parent, err := object(root, path[:len(path)-1], true)
	if err != nil {
		return err
	}
	last := path[len(path)-1]
	if _, exists := parent[last]; !exists {
		parent[last] = []any{}
	}
	return nil
}

// list returns the list at path. Anything that is not a list reads as empty.
func list(root map[string]any, path []string) []any {
	parent, err := object(root, path[:len(path)-1], false)
	if err != nil || parent == nil {
		return nil
	}
	l, _ := parent[path[len(path)-1]].([]any)
	return l
}

func setList(root map[string]any, path []string, value []any) error {
	parent, err := object(root, path[:len(path)-1], true)
	if err != nil {
		return err
	}
	parent[path[len(path)-1]] = value
	return nil
}

func objects(entries []any) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		if obj, ok := entry.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func cloneObject(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// deepCopy copies the maps and slices of a decoded JSON value.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = deepCopy(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = deepCopy(child)
		}
		return out
	default:
		return v
	}
}
