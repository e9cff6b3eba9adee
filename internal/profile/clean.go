package profile

// FieldPolicy describes which fields of a record survive cleaning.
//
// With a non-empty Allow list only those keys are kept. Otherwise keys in
// Deny are removed. DropEmpty additionally removes "", empty lists and null
// values. Nested applies a sub-policy to the mapping stored under a key.
// Whatever the policy, profile_pic_url is stripped from every entry of the
// "groups" list.
type FieldPolicy struct {
	Allow     []string
	Deny      []string
	DropEmpty bool
	Nested    map[string]FieldPolicy
}

// Clean returns a cleaned copy of record. It never fails and leaves record
// untouched; applying it twice gives the same result as applying it once.
func (p FieldPolicy) Clean(record Record) Record {
	if record == nil {
		return nil
	}

	allow := toSet(p.Allow)
	deny := toSet(p.Deny)

	out := make(Record, len(record))
	for k, v := range record {
		if len(allow) > 0 {
			if !allow[k] {
				continue
			}
		} else if deny[k] {
			continue
		}
		if p.DropEmpty && isEmpty(v) {
			continue
		}
		out[k] = cloneValue(v)
	}

	for key, sub := range p.Nested {
		if nested, ok := asMap(out[key]); ok {
			out[key] = map[string]any(sub.Clean(Record(nested)))
		}
	}

	scrubGroups(out)
	return out
}

func scrubGroups(r Record) {
	groups, ok := r["groups"].([]any)
	if !ok {
		return
	}
	for _, g := range groups {
		if m, ok := asMap(g); ok {
			delete(m, "profile_pic_url")
		}
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	default:
		return false
	}
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Record:
		return t, true
	default:
		return nil, false
	}
}

func toSet(keys []string) map[string]bool {
	if len(keys) == 0 {
		return nil
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
