package risk

import "testing"

func TestDefaultRules(t *testing.T) {
	rules := Default()
	if len(rules) == 0 {
		t.Fatalf("embedded rule set should not be empty")
	}
	seen := map[string]bool{}
	for _, r := range rules {
		if seen[r.ID] {
			t.Fatalf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true
		if r.Condition == CondLessThan && r.Value == nil {
			t.Fatalf("rule %q uses less_than without a value", r.ID)
		}
		if (r.Condition == CondContainsAny || r.Condition == CondNotContainsAll) && len(r.Keywords) == 0 {
			t.Fatalf("rule %q uses a keyword condition without keywords", r.ID)
		}
	}
}

func TestLoadDropsIncompleteRules(t *testing.T) {
	rules, err := Load([]byte(`
rules:
  - id: GOOD
    field: capacity_mw
    condition: is_missing
    description: ok
  - field: capacity_mw
    condition: is_missing
    description: no id
  - id: NO_FIELD
    condition: is_missing
    description: no field
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rules) != 1 || rules[0].ID != "GOOD" {
		t.Fatalf("incomplete rules should be dropped, got %v", rules)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	if _, err := Load([]byte("rules: [not closed")); err == nil {
		t.Fatalf("expected parse error for malformed YAML")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/rules.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
