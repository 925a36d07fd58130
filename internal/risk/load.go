package risk

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// Default returns the built-in rule set shipped with the binary.
func Default() []Rule {
	rules, err := Load(defaultRules)
	if err != nil {
		// The embedded file is covered by tests; treat corruption as no rules.
		return nil
	}
	return rules
}

// Load parses a YAML rule document. Rules missing an id or field are dropped
// rather than failing the whole file, so one bad entry cannot disable the
// engine.
func Load(data []byte) ([]Rule, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse risk rules: %w", err)
	}
	rules := make([]Rule, 0, len(file.Rules))
	for _, r := range file.Rules {
		if r.ID == "" || r.Field == "" {
			continue
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// LoadFile reads a rule document from disk, for operator-supplied overrides.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read risk rules: %w", err)
	}
	return Load(data)
}
