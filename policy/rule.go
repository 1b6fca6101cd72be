package policy

import "fmt"

// Severity orders rule findings from most to least serious.
// Findings at SeverityIgnore are excluded from reports entirely.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeveritySuggestion
	SeverityHint
	SeverityIgnore
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeveritySuggestion:
		return "suggestion"
	case SeverityHint:
		return "hint"
	case SeverityIgnore:
		return "ignore"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// ParseSeverity converts a severity name to its Severity value.
func ParseSeverity(name string) (Severity, error) {
	switch name {
	case "error":
		return SeverityError, nil
	case "warning":
		return SeverityWarning, nil
	case "suggestion":
		return SeveritySuggestion, nil
	case "hint":
		return SeverityHint, nil
	case "ignore":
		return SeverityIgnore, nil
	}
	return SeverityIgnore, fmt.Errorf("unknown severity: %q", name)
}

// MarshalJSON emits the severity name rather than its ordinal.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON accepts a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	name := string(data)
	if len(name) >= 2 && name[0] == '"' && name[len(name)-1] == '"' {
		name = name[1 : len(name)-1]
	}
	parsed, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Rule is one entry of the naming rule table. Each Category maps to
// exactly one Rule; the table is built once and never mutated, so it is
// safe for concurrent readers.
//
// For scope-variant categories (instance and pointer members) the
// required prefix depends on the enclosing scope: ClassPrefix applies
// inside classes, StructPrefix inside structs. For every other category
// RequiredPrefix applies regardless of scope. An empty effective prefix
// means the category has no prefix requirement. Forbidden marks a
// category that is non-compliant independent of its name (typedef).
type Rule struct {
	ID             string   `json:"id"`
	Category       Category `json:"category"`
	RequiredPrefix string   `json:"required_prefix,omitempty"`
	ClassPrefix    string   `json:"class_prefix,omitempty"`
	StructPrefix   string   `json:"struct_prefix,omitempty"`
	Forbidden      bool     `json:"forbidden,omitempty"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
}

// PrefixFor returns the literal prefix required for a declaration in the
// given scope. Empty means no prefix is required.
func (r Rule) PrefixFor(scope ScopeKind) string {
	switch scope {
	case ScopeClass:
		if r.ClassPrefix != "" || r.StructPrefix != "" {
			return r.ClassPrefix
		}
	case ScopeStruct:
		if r.ClassPrefix != "" || r.StructPrefix != "" {
			return r.StructPrefix
		}
	}
	return r.RequiredPrefix
}

// DefaultRules returns the built-in rule table. Prefixes and messages
// follow the Grimlore coding standard the checker was written for.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:             "constant.prefix",
			Category:       CategoryGlobalConstant,
			RequiredPrefix: "k_",
			Severity:       SeveritySuggestion,
			Description:    "Missing k_ prefix for static and global constants.",
		},
		{
			ID:             "constant.prefix",
			Category:       CategoryStaticConstMember,
			RequiredPrefix: "k_",
			Severity:       SeveritySuggestion,
			Description:    "Missing k_ prefix for static and global constants.",
		},
		{
			ID:          "member.prefix",
			Category:    CategoryInstanceMember,
			ClassPrefix: "m_",
			Severity:    SeveritySuggestion,
			Description: "Class members use the m_ prefix; struct members are unprefixed.",
		},
		{
			ID:          "pointer.prefix",
			Category:    CategoryPointerMember,
			ClassPrefix: "m_p",
			// Struct pointer members keep the bare p prefix.
			StructPrefix: "p",
			Severity:     SeveritySuggestion,
			Description:  "Missing p prefix for pointer members.",
		},
		{
			ID:             "parameter.prefix",
			Category:       CategoryFunctionParameter,
			RequiredPrefix: "_",
			Severity:       SeveritySuggestion,
			Description:    "Missing _ prefix for function parameters.",
		},
		{
			ID:             "pointer.parameter.prefix",
			Category:       CategoryPointerParameter,
			RequiredPrefix: "_p",
			Severity:       SeveritySuggestion,
			Description:    "Missing _p prefix for pointer parameters.",
		},
		{
			ID:             "template.prefix",
			Category:       CategoryTemplateName,
			RequiredPrefix: "T",
			Severity:       SeveritySuggestion,
			Description:    "Missing T prefix for templates.",
		},
		{
			ID:          "typedef.banned",
			Category:    CategoryTypedefName,
			Forbidden:   true,
			Severity:    SeverityError,
			Description: "Use modern using declaration instead of typedef.",
		},
		{
			ID:          "using.alias",
			Category:    CategoryUsingAlias,
			Severity:    SeverityIgnore,
			Description: "Using aliases are accepted regardless of name.",
		},
	}
}
