package policy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy is the complete configuration surface of the engine: the rule
// table plus the flags that resolve deliberately-configurable behavior.
// A Policy is loaded once and never mutated afterwards.
type Policy struct {
	// ForbidClassPrefixInStruct flags struct members that carry a
	// reserved class-style prefix. The Grimlore standard forbids m_ on
	// struct members ("only use it for class members"); projects that
	// merely leave struct members unprefixed can disable this.
	ForbidClassPrefixInStruct bool `yaml:"forbid_class_prefix_in_struct"`

	// ReservedPrefixes are the prefixes checked by the rule above.
	ReservedPrefixes []string `yaml:"reserved_prefixes"`

	// ProjectPrefixes are project-specific prefixes (e.g. Dom_) accepted
	// on categories without a prefix requirement and exempt from the
	// reserved-prefix check.
	ProjectPrefixes []string `yaml:"project_prefixes"`

	// PrefixOverrides replaces the required prefix of a rule by ID.
	PrefixOverrides map[string]string `yaml:"prefix_overrides"`

	// SeverityOverrides replaces the severity of a rule by ID, using
	// severity names (error, warning, suggestion, hint, ignore).
	SeverityOverrides map[string]string `yaml:"severity_overrides"`

	rules []Rule
}

// DefaultPolicy returns a Policy with the built-in rule table and the
// Grimlore defaults for all flags.
func DefaultPolicy() Policy {
	return Policy{
		ForbidClassPrefixInStruct: true,
		ReservedPrefixes:          []string{"m_"},
		rules:                     DefaultRules(),
	}
}

// Rules returns the effective rule table with overrides applied.
func (p Policy) Rules() []Rule {
	rules := p.rules
	if rules == nil {
		rules = DefaultRules()
	}
	if len(p.PrefixOverrides) == 0 && len(p.SeverityOverrides) == 0 {
		return rules
	}

	out := make([]Rule, len(rules))
	copy(out, rules)
	for i := range out {
		if prefix, ok := p.PrefixOverrides[out[i].ID]; ok {
			if out[i].ClassPrefix != "" || out[i].StructPrefix != "" {
				out[i].ClassPrefix = prefix
			} else {
				out[i].RequiredPrefix = prefix
			}
		}
		if name, ok := p.SeverityOverrides[out[i].ID]; ok {
			if sev, err := ParseSeverity(name); err == nil {
				out[i].Severity = sev
			}
		}
	}
	return out
}

// Validate checks the policy for configuration errors.
func (p Policy) Validate() error {
	for id, name := range p.SeverityOverrides {
		if _, err := ParseSeverity(name); err != nil {
			return fmt.Errorf("severity override for %s: %w", id, err)
		}
	}
	for _, prefix := range p.ReservedPrefixes {
		if prefix == "" {
			return fmt.Errorf("reserved prefix must not be empty")
		}
	}
	for _, prefix := range p.ProjectPrefixes {
		if prefix == "" {
			return fmt.Errorf("project prefix must not be empty")
		}
	}
	return nil
}

// IsProjectName reports whether name carries one of the configured
// project-specific prefixes.
func (p Policy) IsProjectName(name string) bool {
	for _, prefix := range p.ProjectPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// reservedPrefix returns the reserved prefix name starts with, if any.
func (p Policy) reservedPrefix(name string) (string, bool) {
	for _, prefix := range p.ReservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return prefix, true
		}
	}
	return "", false
}

// LoadPolicy loads a Policy from a YAML file, layered over the defaults.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	policy := DefaultPolicy()
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return Policy{}, fmt.Errorf("parse policy file: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, fmt.Errorf("invalid policy: %w", err)
	}
	return policy, nil
}
