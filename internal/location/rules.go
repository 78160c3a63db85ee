package location

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule kinds. A contains rule fires when the pattern appears anywhere in
// the location text; an exact rule fires only on a full (trimmed) match.
const (
	KindContains = "contains"
	KindExact    = "exact"
)

// Rule maps a known venue fragment to its canonical "Venue, City" form.
// Requires, when set, gates a contains rule on a second fragment also being
// present (some mall and street names are ambiguous on their own).
type Rule struct {
	Kind     string `yaml:"kind"`
	Pattern  string `yaml:"pattern"`
	Requires string `yaml:"requires,omitempty"`
	Replace  string `yaml:"replace"`
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// venues.yaml is the versioned venue-mapping asset. Extending the known
// venue set means editing that file, not this package.
//
//go:embed venues.yaml
var defaultRulesYAML []byte

// DefaultRules returns the rule set embedded in the binary.
func DefaultRules() []Rule {
	rules, err := ParseRules(defaultRulesYAML)
	if err != nil {
		// The embedded asset is validated by tests; a parse failure here
		// is a build defect.
		panic(fmt.Sprintf("location: embedded venues.yaml: %v", err))
	}
	return rules
}

// ParseRules decodes a YAML rule file.
func ParseRules(data []byte) ([]Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing venue rules: %w", err)
	}
	for i, r := range f.Rules {
		if r.Pattern == "" || r.Replace == "" {
			return nil, fmt.Errorf("venue rule %d: pattern and replace are required", i)
		}
		switch r.Kind {
		case KindContains, KindExact:
		default:
			return nil, fmt.Errorf("venue rule %d: unknown kind %q", i, r.Kind)
		}
	}
	return f.Rules, nil
}

// applyRules returns the replacement of the first matching rule, if any.
func applyRules(rules []Rule, location string) (string, bool) {
	trimmed := strings.TrimSpace(location)
	for _, r := range rules {
		switch r.Kind {
		case KindExact:
			if trimmed == r.Pattern {
				return r.Replace, true
			}
		case KindContains:
			if strings.Contains(location, r.Pattern) {
				if r.Requires != "" && !strings.Contains(location, r.Requires) {
					continue
				}
				return r.Replace, true
			}
		}
	}
	return "", false
}
