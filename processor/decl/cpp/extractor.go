// Package cpp extracts naming-relevant declarations from C++ source
// files using tree-sitter.
package cpp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/c360studio/namelint/policy"
	"github.com/c360studio/namelint/processor/decl"
)

// Extensions lists the file extensions handled by this extractor.
var Extensions = []string{".cpp", ".cc", ".cxx", ".h", ".hpp"}

func init() {
	decl.DefaultRegistry.Register("cpp", Extensions,
		func(scanRoot string) decl.FileExtractor {
			return NewExtractor(scanRoot)
		})
}

// Extractor extracts declarations from C++ source files using tree-sitter.
type Extractor struct {
	scanRoot string
	parser   *sitter.Parser
}

// NewExtractor creates a new C++ declaration extractor.
func NewExtractor(scanRoot string) *Extractor {
	p := sitter.NewParser()
	p.SetLanguage(cpp.GetLanguage())
	return &Extractor{
		scanRoot: scanRoot,
		parser:   p,
	}
}

// ExtractFile parses a single C++ file and extracts its declarations.
func (e *Extractor) ExtractFile(ctx context.Context, filePath string) (*decl.FileResult, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	hash := decl.ComputeHash(content)

	relPath, err := filepath.Rel(e.scanRoot, filePath)
	if err != nil {
		relPath = filePath
	}

	tree, err := e.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse file: %w", err)
	}
	defer tree.Close()

	result := &decl.FileResult{
		Path:         relPath,
		Hash:         hash,
		Language:     "cpp",
		Declarations: make([]policy.Declaration, 0),
	}

	e.walk(tree.RootNode(), content, policy.ScopeGlobal, relPath, &result.Declarations)

	return result, nil
}

// ExtractDirectory walks a directory and extracts declarations from
// every C++ file. Unreadable files are skipped.
func (e *Extractor) ExtractDirectory(ctx context.Context, dirPath string) ([]*decl.FileResult, error) {
	var results []*decl.FileResult

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			base := filepath.Base(path)
			if path != dirPath && (base == "build" || strings.HasPrefix(base, ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		if !hasCppExtension(path) {
			return nil
		}

		result, err := e.ExtractFile(ctx, path)
		if err != nil {
			// Skip unparseable files, keep going
			return nil
		}

		results = append(results, result)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	return results, nil
}

func hasCppExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, known := range Extensions {
		if ext == known {
			return true
		}
	}
	return false
}

// walk descends the syntax tree collecting declarations. scope tracks
// the enclosing lexical context, which decides how member and constant
// declarations are categorized.
func (e *Extractor) walk(node *sitter.Node, content []byte, scope policy.ScopeKind, filePath string, out *[]policy.Declaration) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)

		switch child.Type() {
		case "namespace_definition":
			if body := child.ChildByFieldName("body"); body != nil {
				e.walk(body, content, policy.ScopeNamespace, filePath, out)
			}

		case "class_specifier":
			if body := child.ChildByFieldName("body"); body != nil {
				e.walk(body, content, policy.ScopeClass, filePath, out)
			}

		case "struct_specifier":
			if body := child.ChildByFieldName("body"); body != nil {
				e.walk(body, content, policy.ScopeStruct, filePath, out)
			}

		case "template_declaration":
			e.extractTemplateName(child, content, scope, filePath, out)
			// The templated entity itself still gets walked so its
			// members and parameters are checked too.
			e.walk(child, content, scope, filePath, out)

		case "type_definition":
			e.extractTypedef(child, content, scope, filePath, out)

		case "alias_declaration":
			e.extractUsingAlias(child, content, scope, filePath, out)

		case "declaration":
			e.extractDeclaration(child, content, scope, filePath, out)

		case "field_declaration":
			e.extractFieldDeclaration(child, content, scope, filePath, out)

		case "function_definition":
			e.extractParameters(child, content, filePath, out)

		case "linkage_specification", "preproc_ifdef", "preproc_if", "preproc_else":
			e.walk(child, content, scope, filePath, out)
		}
	}
}

// extractTemplateName emits a declaration for the name of a templated
// struct or class. The prefix requirement applies to the type name
// itself; template type parameters and function templates carry none.
func (e *Extractor) extractTemplateName(node *sitter.Node, content []byte, scope policy.ScopeKind, filePath string, out *[]policy.Declaration) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "struct_specifier" && child.Type() != "class_specifier" {
			continue
		}

		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}

		*out = append(*out, policy.Declaration{
			Category: policy.CategoryTemplateName,
			Name:     nodeText(nameNode, content),
			Scope:    scope,
			File:     filePath,
			Line:     int(nameNode.StartPoint().Row) + 1,
			Column:   int(nameNode.StartPoint().Column) + 1,
		})
	}
}

// extractTypedef emits a typedef-name declaration.
func (e *Extractor) extractTypedef(node *sitter.Node, content []byte, scope policy.ScopeKind, filePath string, out *[]policy.Declaration) {
	declarator := node.ChildByFieldName("declarator")
	if declarator == nil {
		return
	}

	name, nameNode := declaratorName(declarator, content)
	if name == "" {
		return
	}

	*out = append(*out, policy.Declaration{
		Category: policy.CategoryTypedefName,
		Name:     name,
		Scope:    scope,
		File:     filePath,
		Line:     int(nameNode.StartPoint().Row) + 1,
		Column:   int(nameNode.StartPoint().Column) + 1,
	})
}

// extractUsingAlias emits a using-alias declaration.
func (e *Extractor) extractUsingAlias(node *sitter.Node, content []byte, scope policy.ScopeKind, filePath string, out *[]policy.Declaration) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		// Older grammars expose the alias as the first type_identifier.
		var name string
		name, nameNode = typeIdentifierIn(node, content)
		if name == "" {
			return
		}
	}

	*out = append(*out, policy.Declaration{
		Category: policy.CategoryUsingAlias,
		Name:     nodeText(nameNode, content),
		Scope:    scope,
		File:     filePath,
		Line:     int(nameNode.StartPoint().Row) + 1,
		Column:   int(nameNode.StartPoint().Column) + 1,
	})
}

// extractDeclaration handles declarations at global or namespace scope.
// Only constants carry a prefix requirement there; non-const globals are
// not checked. Function declarations contribute their parameters.
func (e *Extractor) extractDeclaration(node *sitter.Node, content []byte, scope policy.ScopeKind, filePath string, out *[]policy.Declaration) {
	declarator := node.ChildByFieldName("declarator")
	if declarator == nil {
		return
	}

	if fn := findFunctionDeclarator(declarator); fn != nil {
		e.extractParameterList(fn, content, filePath, out)
		return
	}

	isConst := hasConstQualifier(node, content)
	if !isConst {
		return
	}

	name, nameNode := declaratorName(declarator, content)
	if name == "" {
		return
	}

	*out = append(*out, policy.Declaration{
		Category:  policy.CategoryGlobalConstant,
		Name:      name,
		Scope:     scope,
		IsPointer: isPointerDeclarator(declarator),
		IsConst:   true,
		IsStatic:  hasStaticSpecifier(node, content),
		File:      filePath,
		Line:      int(nameNode.StartPoint().Row) + 1,
		Column:    int(nameNode.StartPoint().Column) + 1,
	})
}

// extractFieldDeclaration handles members of a class or struct body.
func (e *Extractor) extractFieldDeclaration(node *sitter.Node, content []byte, scope policy.ScopeKind, filePath string, out *[]policy.Declaration) {
	declarator := node.ChildByFieldName("declarator")
	if declarator == nil {
		return
	}

	// Method declarations are not members, but their parameters are
	// still checked.
	if fn := findFunctionDeclarator(declarator); fn != nil {
		e.extractParameterList(fn, content, filePath, out)
		return
	}

	name, nameNode := declaratorName(declarator, content)
	if name == "" {
		return
	}

	isPointer := isPointerDeclarator(declarator)
	isConst := hasConstQualifier(node, content)
	isStatic := hasStaticSpecifier(node, content)

	*out = append(*out, policy.Declaration{
		Category:  policy.Categorize(scope, isPointer, isConst, isStatic),
		Name:      name,
		Scope:     scope,
		IsPointer: isPointer,
		IsConst:   isConst,
		IsStatic:  isStatic,
		File:      filePath,
		Line:      int(nameNode.StartPoint().Row) + 1,
		Column:    int(nameNode.StartPoint().Column) + 1,
	})
}

// extractParameters pulls the parameter list out of a function
// definition or method.
func (e *Extractor) extractParameters(node *sitter.Node, content []byte, filePath string, out *[]policy.Declaration) {
	declarator := node.ChildByFieldName("declarator")
	if declarator == nil {
		return
	}

	if fn := findFunctionDeclarator(declarator); fn != nil {
		e.extractParameterList(fn, content, filePath, out)
	}
}

// extractParameterList emits a declaration for each named parameter.
// Unnamed parameters (e.g. in pure declarations) are skipped.
func (e *Extractor) extractParameterList(fn *sitter.Node, content []byte, filePath string, out *[]policy.Declaration) {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return
	}

	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)
		if param.Type() != "parameter_declaration" && param.Type() != "optional_parameter_declaration" {
			continue
		}

		declarator := param.ChildByFieldName("declarator")
		if declarator == nil {
			continue
		}

		name, nameNode := declaratorName(declarator, content)
		if name == "" {
			continue
		}

		isPointer := isPointerDeclarator(declarator)

		*out = append(*out, policy.Declaration{
			Category:  policy.Categorize(policy.ScopeFunction, isPointer, false, false),
			Name:      name,
			Scope:     policy.ScopeFunction,
			IsPointer: isPointer,
			File:      filePath,
			Line:      int(nameNode.StartPoint().Row) + 1,
			Column:    int(nameNode.StartPoint().Column) + 1,
		})
	}
}

// declaratorName descends through declarator wrappers to the underlying
// identifier. Returns the empty string for abstract declarators.
func declaratorName(node *sitter.Node, content []byte) (string, *sitter.Node) {
	switch node.Type() {
	case "identifier", "field_identifier", "type_identifier":
		return nodeText(node, content), node

	case "init_declarator", "pointer_declarator", "array_declarator",
		"function_declarator", "parenthesized_declarator":
		if inner := node.ChildByFieldName("declarator"); inner != nil {
			return declaratorName(inner, content)
		}

	case "reference_declarator":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if name, found := declaratorName(node.NamedChild(i), content); name != "" {
				return name, found
			}
		}
	}

	return "", nil
}

// isPointerDeclarator reports whether the declarator declares a pointer.
// References are not pointers for naming purposes.
func isPointerDeclarator(node *sitter.Node) bool {
	switch node.Type() {
	case "pointer_declarator":
		return true
	case "init_declarator", "array_declarator", "parenthesized_declarator":
		if inner := node.ChildByFieldName("declarator"); inner != nil {
			return isPointerDeclarator(inner)
		}
	}
	return false
}

// findFunctionDeclarator locates a function_declarator within a
// declarator chain, or nil if the declarator declares a variable.
func findFunctionDeclarator(node *sitter.Node) *sitter.Node {
	switch node.Type() {
	case "function_declarator":
		return node
	case "pointer_declarator", "reference_declarator", "init_declarator", "parenthesized_declarator":
		if inner := node.ChildByFieldName("declarator"); inner != nil {
			return findFunctionDeclarator(inner)
		}
	}
	return nil
}

// hasConstQualifier reports whether the declaration carries const or
// constexpr.
func hasConstQualifier(node *sitter.Node, content []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "type_qualifier" {
			text := nodeText(child, content)
			if text == "const" || text == "constexpr" {
				return true
			}
		}
	}
	return false
}

// hasStaticSpecifier reports whether the declaration carries static.
func hasStaticSpecifier(node *sitter.Node, content []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "storage_class_specifier" && nodeText(child, content) == "static" {
			return true
		}
	}
	return false
}

// typeIdentifierIn returns the first type_identifier child of node.
func typeIdentifierIn(node *sitter.Node, content []byte) (string, *sitter.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "type_identifier" {
			return nodeText(child, content), child
		}
	}
	return "", nil
}

func nodeText(node *sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}
