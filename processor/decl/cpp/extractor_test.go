package cpp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/c360studio/namelint/policy"
	"github.com/c360studio/namelint/processor/decl"
)

func extractSource(t *testing.T, name, code string) *decl.FileResult {
	t.Helper()

	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, name)
	if err := os.WriteFile(filePath, []byte(code), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	e := NewExtractor(tmpDir)
	result, err := e.ExtractFile(context.Background(), filePath)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	return result
}

func findDecl(t *testing.T, result *decl.FileResult, name string) policy.Declaration {
	t.Helper()
	for _, d := range result.Declarations {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("declaration %q not found in %v", name, result.Declarations)
	return policy.Declaration{}
}

func TestExtractFile_GlobalConstants(t *testing.T) {
	code := `
const int k_MaxRetries = 3;
static const char* k_DefaultName = "none";
int g_NotConst = 0;
`
	result := extractSource(t, "globals.cpp", code)

	d := findDecl(t, result, "k_MaxRetries")
	if d.Category != policy.CategoryGlobalConstant {
		t.Errorf("Category = %q, want %q", d.Category, policy.CategoryGlobalConstant)
	}
	if d.Scope != policy.ScopeGlobal {
		t.Errorf("Scope = %q, want %q", d.Scope, policy.ScopeGlobal)
	}
	if !d.IsConst {
		t.Error("IsConst should be true")
	}
	if d.Line != 2 {
		t.Errorf("Line = %d, want 2", d.Line)
	}

	d = findDecl(t, result, "k_DefaultName")
	if !d.IsStatic {
		t.Error("IsStatic should be true")
	}
	if !d.IsPointer {
		t.Error("IsPointer should be true")
	}

	// Non-const globals carry no prefix requirement
	for _, d := range result.Declarations {
		if d.Name == "g_NotConst" {
			t.Error("non-const global should not be extracted")
		}
	}
}

func TestExtractFile_NamespaceConstants(t *testing.T) {
	code := `
namespace detail {
const int k_BufferSize = 4096;
}
`
	result := extractSource(t, "ns.cpp", code)

	d := findDecl(t, result, "k_BufferSize")
	if d.Category != policy.CategoryGlobalConstant {
		t.Errorf("Category = %q, want %q", d.Category, policy.CategoryGlobalConstant)
	}
	if d.Scope != policy.ScopeNamespace {
		t.Errorf("Scope = %q, want %q", d.Scope, policy.ScopeNamespace)
	}
}

func TestExtractFile_ClassMembers(t *testing.T) {
	code := `
class Widget {
public:
    static const int k_MaxWidgets = 10;
    int m_Count;
    char* m_pBuffer;
};
`
	result := extractSource(t, "widget.hpp", code)

	d := findDecl(t, result, "k_MaxWidgets")
	if d.Category != policy.CategoryStaticConstMember {
		t.Errorf("Category = %q, want %q", d.Category, policy.CategoryStaticConstMember)
	}

	d = findDecl(t, result, "m_Count")
	if d.Category != policy.CategoryInstanceMember {
		t.Errorf("Category = %q, want %q", d.Category, policy.CategoryInstanceMember)
	}
	if d.Scope != policy.ScopeClass {
		t.Errorf("Scope = %q, want %q", d.Scope, policy.ScopeClass)
	}

	d = findDecl(t, result, "m_pBuffer")
	if d.Category != policy.CategoryPointerMember {
		t.Errorf("Category = %q, want %q", d.Category, policy.CategoryPointerMember)
	}
	if !d.IsPointer {
		t.Error("IsPointer should be true")
	}
}

func TestExtractFile_StructMembers(t *testing.T) {
	code := `
struct Point {
    int X;
    int Y;
    float* pWeights;
};
`
	result := extractSource(t, "point.h", code)

	d := findDecl(t, result, "X")
	if d.Category != policy.CategoryInstanceMember {
		t.Errorf("Category = %q, want %q", d.Category, policy.CategoryInstanceMember)
	}
	if d.Scope != policy.ScopeStruct {
		t.Errorf("Scope = %q, want %q", d.Scope, policy.ScopeStruct)
	}

	d = findDecl(t, result, "pWeights")
	if d.Category != policy.CategoryPointerMember {
		t.Errorf("Category = %q, want %q", d.Category, policy.CategoryPointerMember)
	}
}

func TestExtractFile_FunctionParameters(t *testing.T) {
	code := `
void Process(int _count, char* _pData) {
}

int Compute(double _factor);
`
	result := extractSource(t, "funcs.cpp", code)

	d := findDecl(t, result, "_count")
	if d.Category != policy.CategoryFunctionParameter {
		t.Errorf("Category = %q, want %q", d.Category, policy.CategoryFunctionParameter)
	}
	if d.Scope != policy.ScopeFunction {
		t.Errorf("Scope = %q, want %q", d.Scope, policy.ScopeFunction)
	}

	d = findDecl(t, result, "_pData")
	if d.Category != policy.CategoryPointerParameter {
		t.Errorf("Category = %q, want %q", d.Category, policy.CategoryPointerParameter)
	}

	// Parameters of pure declarations are extracted too
	d = findDecl(t, result, "_factor")
	if d.Category != policy.CategoryFunctionParameter {
		t.Errorf("Category = %q, want %q", d.Category, policy.CategoryFunctionParameter)
	}
}

func TestExtractFile_MethodParameters(t *testing.T) {
	code := `
class Engine {
public:
    void Start(int _speed) {
    }
    void Stop(bool _force);
};
`
	result := extractSource(t, "engine.hpp", code)

	d := findDecl(t, result, "_speed")
	if d.Category != policy.CategoryFunctionParameter {
		t.Errorf("Category = %q, want %q", d.Category, policy.CategoryFunctionParameter)
	}

	d = findDecl(t, result, "_force")
	if d.Category != policy.CategoryFunctionParameter {
		t.Errorf("Category = %q, want %q", d.Category, policy.CategoryFunctionParameter)
	}
}

func TestExtractFile_Templates(t *testing.T) {
	code := `
template <typename T1, typename T2>
struct TValidTemplateName {
    T1 m_Value;
};

template <typename T1, typename T2>
struct InvalidTemplateName {
};

template <class Item>
class TCache {
};

template <class Item>
void Sort(Item* _pItems, int _count) {
}
`
	result := extractSource(t, "cache.hpp", code)

	// The templated struct/class name carries the prefix requirement
	for _, name := range []string{"TValidTemplateName", "InvalidTemplateName", "TCache"} {
		d := findDecl(t, result, name)
		if d.Category != policy.CategoryTemplateName {
			t.Errorf("%s: Category = %q, want %q", name, d.Category, policy.CategoryTemplateName)
		}
	}

	// Template type parameters are not declarations to check
	for _, d := range result.Declarations {
		if d.Name == "T1" || d.Name == "T2" || d.Name == "Item" {
			t.Errorf("type parameter %s emitted as %q declaration", d.Name, d.Category)
		}
	}

	// The templated class body and function parameters are checked too
	findDecl(t, result, "m_Value")
	findDecl(t, result, "_pItems")
	findDecl(t, result, "_count")
}

func TestExtractFile_TypedefAndUsing(t *testing.T) {
	code := `
typedef unsigned int Uint;

using Byte = unsigned char;
`
	result := extractSource(t, "types.h", code)

	d := findDecl(t, result, "Uint")
	if d.Category != policy.CategoryTypedefName {
		t.Errorf("Category = %q, want %q", d.Category, policy.CategoryTypedefName)
	}

	d = findDecl(t, result, "Byte")
	if d.Category != policy.CategoryUsingAlias {
		t.Errorf("Category = %q, want %q", d.Category, policy.CategoryUsingAlias)
	}
}

func TestExtractFile_ReferencesAreNotPointers(t *testing.T) {
	code := `
void Update(const int& _value) {
}
`
	result := extractSource(t, "ref.cpp", code)

	d := findDecl(t, result, "_value")
	if d.IsPointer {
		t.Error("reference parameter should not be a pointer")
	}
	if d.Category != policy.CategoryFunctionParameter {
		t.Errorf("Category = %q, want %q", d.Category, policy.CategoryFunctionParameter)
	}
}

func TestExtractFile_Hash(t *testing.T) {
	result := extractSource(t, "a.cpp", "const int k_A = 1;\n")
	if result.Hash == "" {
		t.Error("Hash is empty")
	}
	if result.Language != "cpp" {
		t.Errorf("Language = %q, want 'cpp'", result.Language)
	}
}

func TestExtractDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	files := map[string]string{
		"a.cpp":        "const int k_A = 1;\n",
		"inc/b.hpp":    "struct S { int Field; };\n",
		"build/gen.cc": "const int k_Skipped = 0;\n",
		"notes.txt":    "not source\n",
	}
	for name, code := range files {
		path := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(code), 0644); err != nil {
			t.Fatal(err)
		}
	}

	e := NewExtractor(tmpDir)
	results, err := e.ExtractDirectory(context.Background(), tmpDir)
	if err != nil {
		t.Fatalf("ExtractDirectory: %v", err)
	}

	paths := make(map[string]bool)
	for _, r := range results {
		paths[r.Path] = true
	}

	if !paths["a.cpp"] {
		t.Error("expected a.cpp in results")
	}
	if !paths[filepath.Join("inc", "b.hpp")] {
		t.Error("expected inc/b.hpp in results")
	}
	if paths[filepath.Join("build", "gen.cc")] {
		t.Error("build directory should be skipped")
	}
	if paths["notes.txt"] {
		t.Error("non-source files should be skipped")
	}
}

func TestRegistryRegistration(t *testing.T) {
	for _, ext := range Extensions {
		name, ok := decl.DefaultRegistry.GetExtractorName(ext)
		if !ok || name != "cpp" {
			t.Errorf("extension %q: got (%q, %v), want (cpp, true)", ext, name, ok)
		}
	}
}
