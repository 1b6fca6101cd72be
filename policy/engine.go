package policy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory reports a declaration whose category is not present
// in the rule table. This is a configuration defect, not a finding about
// the checked code, and aborts the batch.
var ErrUnknownCategory = errors.New("unknown declaration category")

// Verdict is the result of checking one declaration. Violated is nil
// when the declaration is compliant.
type Verdict struct {
	Declaration Declaration `json:"declaration"`
	Compliant   bool        `json:"compliant"`
	Violated    *Rule       `json:"violated,omitempty"`

	// Expected is the literal prefix the name was expected to start
	// with. Empty for unconditionally forbidden categories and for
	// reserved-prefix findings.
	Expected string `json:"expected,omitempty"`

	// Message is the human-readable finding, empty when compliant.
	Message string `json:"message,omitempty"`
}

// Engine checks declarations against a Policy. It holds only immutable
// state after construction and is safe for concurrent use.
type Engine struct {
	policy Policy
	rules  map[Category]Rule
}

// NewEngine builds an Engine from the given policy.
func NewEngine(policy Policy) *Engine {
	rules := make(map[Category]Rule)
	for _, rule := range policy.Rules() {
		rules[rule.Category] = rule
	}
	return &Engine{policy: policy, rules: rules}
}

// Classify returns the unique rule for the declaration's category.
func (e *Engine) Classify(decl Declaration) (Rule, error) {
	rule, ok := e.rules[decl.Category]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownCategory, decl.Category)
	}
	return rule, nil
}

// Check applies the rule for the declaration's category and returns a
// verdict. It is a pure function of the declaration and the rule table.
func (e *Engine) Check(decl Declaration) (Verdict, error) {
	rule, err := e.Classify(decl)
	if err != nil {
		return Verdict{}, err
	}

	if rule.Forbidden {
		return e.violation(decl, rule, "", rule.Description), nil
	}

	required := rule.PrefixFor(decl.Scope)
	if required == "" {
		return e.checkUnprefixed(decl, rule), nil
	}

	if !strings.HasPrefix(decl.Name, required) {
		msg := fmt.Sprintf("%s Expected prefix %q.", rule.Description, required)
		return e.violation(decl, rule, required, msg), nil
	}
	return Verdict{Declaration: decl, Compliant: true}, nil
}

// checkUnprefixed handles categories without a prefix requirement.
// Struct members may be bare, but must not borrow a reserved prefix
// meant for another category when the policy forbids it.
func (e *Engine) checkUnprefixed(decl Declaration, rule Rule) Verdict {
	if e.policy.ForbidClassPrefixInStruct &&
		rule.Category == CategoryInstanceMember &&
		decl.Scope == ScopeStruct &&
		!e.policy.IsProjectName(decl.Name) {
		if prefix, ok := e.policy.reservedPrefix(decl.Name); ok {
			msg := fmt.Sprintf("Bad %s prefix for struct members. Only use it for class members.", prefix)
			return e.violation(decl, rule, "", msg)
		}
	}
	return Verdict{Declaration: decl, Compliant: true}
}

func (e *Engine) violation(decl Declaration, rule Rule, expected, msg string) Verdict {
	violated := rule
	return Verdict{
		Declaration: decl,
		Compliant:   false,
		Violated:    &violated,
		Expected:    expected,
		Message:     msg,
	}
}

// CheckAll checks every declaration in input order. The output always
// has one verdict per input in matching positions; violations never
// interrupt processing of subsequent declarations. Only an unknown
// category aborts the batch.
func (e *Engine) CheckAll(decls []Declaration) ([]Verdict, error) {
	verdicts := make([]Verdict, 0, len(decls))
	for _, decl := range decls {
		verdict, err := e.Check(decl)
		if err != nil {
			return nil, err
		}
		verdicts = append(verdicts, verdict)
	}
	return verdicts, nil
}
