package profile

import (
	"reflect"
	"testing"
)

func sampleRecord() Record {
	return Record{
		"full_name":          "Yann LeCun",
		"headline":           "Chief AI Scientist",
		"summary":            "",
		"skills":             []any{},
		"state":              nil,
		"people_also_viewed": []any{map[string]any{"name": "x"}},
		"groups": []any{
			map[string]any{"name": "AI", "profile_pic_url": "https://img/1"},
			map[string]any{"name": "ML"},
		},
	}
}

func TestFieldPolicyAllowList(t *testing.T) {
	p := FieldPolicy{Allow: []string{"full_name", "summary", "groups"}}
	got := p.Clean(sampleRecord())

	if _, ok := got["headline"]; ok {
		t.Error("headline is not allowed and should be dropped")
	}
	if _, ok := got["summary"]; !ok {
		t.Error("allow-list without DropEmpty keeps empty values")
	}
	if len(got) != 3 {
		t.Errorf("got %d keys, want 3: %v", len(got), got)
	}
}

func TestFieldPolicyDenyAndEmpty(t *testing.T) {
	p := FieldPolicy{Deny: []string{"people_also_viewed"}, DropEmpty: true}
	got := p.Clean(sampleRecord())

	for _, k := range []string{"summary", "skills", "state", "people_also_viewed"} {
		if _, ok := got[k]; ok {
			t.Errorf("%s should be dropped", k)
		}
	}
	for _, k := range []string{"full_name", "headline", "groups"} {
		if _, ok := got[k]; !ok {
			t.Errorf("%s should be kept", k)
		}
	}
}

func TestFieldPolicyScrubsGroups(t *testing.T) {
	policies := map[string]FieldPolicy{
		"allow": {Allow: []string{"groups"}},
		"deny":  {Deny: []string{"headline"}, DropEmpty: true},
		"none":  {},
	}

	for name, p := range policies {
		got := p.Clean(sampleRecord())
		groups, ok := got["groups"].([]any)
		if !ok {
			t.Fatalf("%s: groups missing or wrong type: %T", name, got["groups"])
		}
		for _, g := range groups {
			if _, ok := g.(map[string]any)["profile_pic_url"]; ok {
				t.Errorf("%s: profile_pic_url survived in groups", name)
			}
		}
	}
}

func TestFieldPolicyIdempotent(t *testing.T) {
	policies := []FieldPolicy{
		{Allow: []string{"full_name", "groups", "summary"}, DropEmpty: true},
		{Deny: []string{"people_also_viewed"}, DropEmpty: true},
		{
			Deny:      []string{"entities"},
			DropEmpty: true,
			Nested:    map[string]FieldPolicy{"user": {Allow: []string{"name"}}},
		},
	}

	for i, p := range policies {
		rec := sampleRecord()
		rec["user"] = map[string]any{"name": "ylecun", "id_str": "48008938"}

		once := p.Clean(rec)
		twice := p.Clean(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("policy %d not idempotent:\nonce  %v\ntwice %v", i, once, twice)
		}
	}
}

func TestFieldPolicyDoesNotMutateInput(t *testing.T) {
	rec := sampleRecord()
	FieldPolicy{DropEmpty: true}.Clean(rec)

	group := rec["groups"].([]any)[0].(map[string]any)
	if _, ok := group["profile_pic_url"]; !ok {
		t.Error("Clean must not modify its input")
	}
	if _, ok := rec["summary"]; !ok {
		t.Error("Clean must not remove keys from its input")
	}
}

func TestFieldPolicyNested(t *testing.T) {
	p := FieldPolicy{
		DropEmpty: true,
		Nested: map[string]FieldPolicy{
			"user": {Allow: []string{"name", "followers_count"}},
		},
	}
	rec := Record{
		"full_text": "hello",
		"user": map[string]any{
			"name":            "Yann LeCun",
			"followers_count": float64(10),
			"id_str":          "1",
		},
	}

	got := p.Clean(rec)
	user := got["user"].(map[string]any)
	if len(user) != 2 {
		t.Errorf("nested user = %v, want only name and followers_count", user)
	}
}

func TestFieldPolicyNilRecord(t *testing.T) {
	if got := (FieldPolicy{}).Clean(nil); got != nil {
		t.Errorf("Clean(nil) = %v, want nil", got)
	}
}
