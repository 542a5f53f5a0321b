package sanitize

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	internal_errors "github.com/bricks-cloud/geminiproxy/internal/errors"
)

// Denylist is the set of body keys that never reach the upstream API.
type Denylist map[string]struct{}

func NewDenylist(keys ...string) Denylist {
	d := Denylist{}
	for _, k := range keys {
		trimmed := strings.TrimSpace(k)
		if len(trimmed) != 0 {
			d[trimmed] = struct{}{}
		}
	}

	return d
}

func (d Denylist) Contains(key string) bool {
	_, ok := d[key]
	return ok
}

func (d Denylist) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}

	return keys
}

// Strip returns a copy of v with every denylisted object key removed at any
// depth. v is never modified.
func Strip(v any, d Denylist) any {
	switch typed := v.(type) {
	case map[string]any:
		stripped := make(map[string]any, len(typed))
		for k, val := range typed {
			if d.Contains(k) {
				continue
			}

			stripped[k] = Strip(val, d)
		}

		return stripped
	case []any:
		stripped := make([]any, len(typed))
		for i, val := range typed {
			stripped[i] = Strip(val, d)
		}

		return stripped
	default:
		return v
	}
}

// IsEmpty reports whether v carries nothing worth sending.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}

	if obj, ok := v.(map[string]any); ok {
		return len(obj) == 0
	}

	return false
}

// Body parses raw as JSON, strips denylisted keys and re-encodes it. A nil
// result means no body should be sent.
func Body(raw []byte, d Denylist) ([]byte, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	v, err := decode(raw)
	if err != nil {
		return nil, err
	}

	stripped := Strip(v, d)
	if IsEmpty(stripped) {
		return nil, nil
	}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(stripped); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, internal_errors.NewValidationError("body", "request body is not valid json")
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, internal_errors.NewValidationError("body", "request body has trailing data after json value")
	}

	return v, nil
}
