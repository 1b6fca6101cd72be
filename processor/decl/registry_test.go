package decl

import (
	"context"
	"sync"
	"testing"
)

// mockExtractor implements FileExtractor for testing
type mockExtractor struct {
	scanRoot string
}

func (m *mockExtractor) ExtractFile(ctx context.Context, filePath string) (*FileResult, error) {
	return &FileResult{Path: filePath}, nil
}

func (m *mockExtractor) ExtractDirectory(ctx context.Context, dirPath string) ([]*FileResult, error) {
	return nil, nil
}

func newMockFactory(scanRoot string) FileExtractor {
	return &mockExtractor{scanRoot: scanRoot}
}

func TestExtractorRegistry_Register(t *testing.T) {
	registry := NewExtractorRegistry()

	registry.Register("test", []string{".test", ".tst"}, newMockFactory)

	if !registry.HasExtractor("test") {
		t.Error("expected extractor 'test' to be registered")
	}

	extractors := registry.ListExtractors()
	if len(extractors) != 1 || extractors[0] != "test" {
		t.Errorf("expected [test], got %v", extractors)
	}
}

func TestExtractorRegistry_GetExtractorName(t *testing.T) {
	registry := NewExtractorRegistry()
	registry.Register("test", []string{".test", ".tst"}, newMockFactory)

	tests := []struct {
		ext      string
		wantName string
		wantOK   bool
	}{
		{".test", "test", true},
		{".tst", "test", true},
		{".unknown", "", false},
	}

	for _, tc := range tests {
		name, ok := registry.GetExtractorName(tc.ext)
		if ok != tc.wantOK {
			t.Errorf("GetExtractorName(%q): got ok=%v, want ok=%v", tc.ext, ok, tc.wantOK)
		}
		if name != tc.wantName {
			t.Errorf("GetExtractorName(%q): got name=%q, want name=%q", tc.ext, name, tc.wantName)
		}
	}
}

func TestExtractorRegistry_CreateExtractor(t *testing.T) {
	registry := NewExtractorRegistry()
	registry.Register("test", []string{".test"}, newMockFactory)

	extractor, err := registry.CreateExtractor("test", "/src")
	if err != nil {
		t.Fatalf("CreateExtractor failed: %v", err)
	}

	mock, ok := extractor.(*mockExtractor)
	if !ok {
		t.Fatal("expected *mockExtractor")
	}

	if mock.scanRoot != "/src" {
		t.Errorf("factory received wrong root: %q", mock.scanRoot)
	}
}

func TestExtractorRegistry_CreateExtractor_NotRegistered(t *testing.T) {
	registry := NewExtractorRegistry()

	_, err := registry.CreateExtractor("nonexistent", "/")
	if err == nil {
		t.Error("expected error for unregistered extractor")
	}
}

func TestExtractorRegistry_CreateExtractorForExtension(t *testing.T) {
	registry := NewExtractorRegistry()
	registry.Register("test", []string{".test"}, newMockFactory)

	extractor, err := registry.CreateExtractorForExtension(".test", "/")
	if err != nil {
		t.Fatalf("CreateExtractorForExtension failed: %v", err)
	}
	if extractor == nil {
		t.Error("expected non-nil extractor")
	}

	_, err = registry.CreateExtractorForExtension(".unknown", "/")
	if err == nil {
		t.Error("expected error for unknown extension")
	}
}

func TestExtractorRegistry_FirstRegistrationWins(t *testing.T) {
	registry := NewExtractorRegistry()

	registry.Register("first", []string{".ext"}, newMockFactory)
	registry.Register("second", []string{".ext"}, newMockFactory)

	// Extension should still map to the first extractor
	name, _ := registry.GetExtractorName(".ext")
	if name != "first" {
		t.Errorf("expected extension to map to 'first', got %q", name)
	}

	// But both extractors should be registered
	if !registry.HasExtractor("first") || !registry.HasExtractor("second") {
		t.Error("both extractors should be registered")
	}
}

func TestExtractorRegistry_ListExtensions(t *testing.T) {
	registry := NewExtractorRegistry()
	registry.Register("one", []string{".a", ".b"}, newMockFactory)
	registry.Register("two", []string{".c"}, newMockFactory)

	exts := registry.ListExtensions()
	if len(exts) != 3 {
		t.Errorf("expected 3 extensions, got %d", len(exts))
	}

	extSet := make(map[string]bool)
	for _, ext := range exts {
		extSet[ext] = true
	}

	for _, want := range []string{".a", ".b", ".c"} {
		if !extSet[want] {
			t.Errorf("expected extension %q in list", want)
		}
	}
}

func TestExtractorRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewExtractorRegistry()
	var wg sync.WaitGroup

	// Concurrent registrations
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			registry.Register("extractor"+string(rune('A'+i)), []string{"." + string(rune('a'+i))}, newMockFactory)
		}(i)
	}

	// Concurrent reads
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			registry.ListExtractors()
			registry.ListExtensions()
		}()
	}

	wg.Wait()

	extractors := registry.ListExtractors()
	if len(extractors) != 10 {
		t.Errorf("expected 10 extractors, got %d", len(extractors))
	}
}

func TestComputeHash(t *testing.T) {
	content := []byte("struct Foo { int bar; };")
	hash := ComputeHash(content)

	if len(hash) != 16 {
		t.Errorf("expected 16 hex chars, got %d", len(hash))
	}

	if hash != ComputeHash(content) {
		t.Error("hash should be deterministic")
	}

	if hash == ComputeHash([]byte("struct Foo { int baz; };")) {
		t.Error("different content should produce different hashes")
	}
}
