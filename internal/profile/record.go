package profile

import "encoding/json"

// Record is a profile as returned by a scraping API or read from disk.
// No schema is enforced; keys and nesting depend on the provider.
type Record map[string]any

// Clone returns a deep copy of r. Nested maps and slices are copied so the
// result can be modified without touching r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return cloneValue(map[string]any(r)).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case Record:
		return Record(cloneValue(map[string]any(t)).(map[string]any))
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// JSON renders the record as indented JSON, for prompts and logs.
func (r Record) JSON() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
