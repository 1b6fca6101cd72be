package policy

// Category classifies a declaration for rule lookup.
// The set is closed: every category maps to exactly one rule in the table.
type Category string

const (
	CategoryGlobalConstant    Category = "global-constant"
	CategoryStaticConstMember Category = "static-const-member"
	CategoryInstanceMember    Category = "instance-member"
	CategoryPointerMember     Category = "pointer-member"
	CategoryFunctionParameter Category = "function-parameter"
	CategoryPointerParameter  Category = "pointer-parameter"
	CategoryTemplateName      Category = "template-name"
	CategoryTypedefName       Category = "typedef-name"
	CategoryUsingAlias        Category = "using-alias"
)

// Categories lists all known categories in rule-table order.
func Categories() []Category {
	return []Category{
		CategoryGlobalConstant,
		CategoryStaticConstMember,
		CategoryInstanceMember,
		CategoryPointerMember,
		CategoryFunctionParameter,
		CategoryPointerParameter,
		CategoryTemplateName,
		CategoryTypedefName,
		CategoryUsingAlias,
	}
}

// ScopeKind is the kind of lexical scope enclosing a declaration.
type ScopeKind string

const (
	ScopeStruct    ScopeKind = "struct"
	ScopeClass     ScopeKind = "class"
	ScopeNamespace ScopeKind = "namespace"
	ScopeGlobal    ScopeKind = "global"
	ScopeFunction  ScopeKind = "function"
)

// Declaration is a single named program entity subject to a naming check.
// It is an immutable input record produced by an extractor.
type Declaration struct {
	Category  Category  `json:"category"`
	Name      string    `json:"name"`
	Scope     ScopeKind `json:"scope"`
	IsPointer bool      `json:"is_pointer,omitempty"`
	IsConst   bool      `json:"is_const,omitempty"`
	IsStatic  bool      `json:"is_static,omitempty"`

	// Source location, for reporting.
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// Categorize maps variable facts to a Category. Extractors call this for
// variables and parameters; template, typedef and using declarations are
// categorized structurally by the extractor itself.
//
// Global and namespace scope variables are assumed const by the caller:
// non-const globals are outside the policy and should not be submitted.
func Categorize(scope ScopeKind, isPointer, isConst, isStatic bool) Category {
	switch scope {
	case ScopeStruct, ScopeClass:
		if isStatic && isConst {
			return CategoryStaticConstMember
		}
		if isPointer {
			return CategoryPointerMember
		}
		return CategoryInstanceMember
	case ScopeFunction:
		if isPointer {
			return CategoryPointerParameter
		}
		return CategoryFunctionParameter
	default:
		return CategoryGlobalConstant
	}
}
