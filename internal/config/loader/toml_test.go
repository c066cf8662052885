package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/lineindex.toml", `
[document]
encoding = "utf-8"
gap_capacity = 256

[[markers]]
index = 1
symbol = "bookmark"
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/lineindex.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := map[string]any{
		"document": map[string]any{"encoding": "utf-8", "gap_capacity": int64(256)},
		"markers":  []any{map[string]any{"index": int64(1), "symbol": "bookmark"}},
	}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestTOMLLoader_LoadNonExistent(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/missing.toml").Load()
	if err != nil {
		t.Errorf("expected no error for a missing file, got %v", err)
	}
	if config != nil {
		t.Errorf("expected nil config, got %v", config)
	}
}

func TestTOMLLoader_LoadInvalid(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[document]\nencoding = \"utf-8\"\ngap_capacity = = 3\n")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if pe.Path != "/bad.toml" || pe.Line != 3 {
		t.Errorf("ParseError = %+v, want line 3 of /bad.toml", pe)
	}
	if pe.Unwrap() == nil || !strings.HasPrefix(pe.Error(), "parse error at /bad.toml:3:") {
		t.Errorf("unexpected error text %q", pe.Error())
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[index]\nconsistency_checks = true\n"))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if val, _ := getByPath(config, "index.consistency_checks"); val != true {
		t.Errorf("consistency_checks = %v", val)
	}
}

func TestTOMLLoader_LoadWithIncludes(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/cfg/main.toml", `
"@include" = ["base.toml", "/shared/markers.toml"]

[document]
gap_capacity = 32
`)
	memfs.AddFile("/cfg/base.toml", `
[document]
encoding = "windows-1252"
gap_capacity = 8
`)
	memfs.AddFile("/shared/markers.toml", `
[[markers]]
index = 2
back = "#00ff00"
`)

	config, err := NewTOMLLoaderWithFS(memfs, "").LoadWithIncludes("/cfg/main.toml", 4)
	if err != nil {
		t.Fatalf("LoadWithIncludes failed: %v", err)
	}

	want := map[string]any{
		"document": map[string]any{"encoding": "windows-1252", "gap_capacity": int64(32)},
		"markers":  []any{map[string]any{"index": int64(2), "back": "#00ff00"}},
	}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestTOMLLoader_LoadWithIncludes_DepthExceeded(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/a.toml", `"@include" = "b.toml"`)
	memfs.AddFile("/b.toml", `"@include" = "a.toml"`)

	_, err := NewTOMLLoaderWithFS(memfs, "").LoadWithIncludes("/a.toml", 5)
	if !errors.Is(err, ErrIncludeDepth) {
		t.Errorf("expected ErrIncludeDepth, got %v", err)
	}
}

func TestTOMLLoader_LoadWithIncludes_BadDirective(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/a.toml", `"@include" = 3`)

	if _, err := NewTOMLLoaderWithFS(memfs, "").LoadWithIncludes("/a.toml", 2); err == nil {
		t.Error("expected an error for a non-string include")
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"document": map[string]any{"encoding": "utf-8", "gap_capacity": int64(8)},
		"markers":  []any{"a"},
	}
	src := map[string]any{
		"document": map[string]any{"gap_capacity": int64(16)},
		"markers":  []any{"b", "c"},
		"index":    map[string]any{"consistency_checks": true},
	}
	want := map[string]any{
		"document": map[string]any{"encoding": "utf-8", "gap_capacity": int64(16)},
		"markers":  []any{"b", "c"},
		"index":    map[string]any{"consistency_checks": true},
	}
	if diff := cmp.Diff(want, DeepMerge(dst, src)); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
	if got := DeepMerge(nil, nil); got == nil || len(got) != 0 {
		t.Errorf("DeepMerge(nil, nil) = %v", got)
	}
}

func TestMergeAll(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/base.toml", "[logging]\nlevel = \"warn\"\n")
	memfs.AddFile("/main.toml", "\"@include\" = \"base.toml\"\n[document]\nencoding = \"utf-8\"\n")

	env := LoaderFunc(func() (map[string]any, error) {
		return map[string]any{"logging": map[string]any{"level": "debug"}}, nil
	})
	missing := NewTOMLLoaderWithFS(memfs, "/none.toml")

	got, err := MergeAll(NewTOMLLoaderWithFS(memfs, "/main.toml").Resolved(4), missing, env)
	if err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}
	want := map[string]any{
		"logging":  map[string]any{"level": "debug"},
		"document": map[string]any{"encoding": "utf-8"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}

	boom := errors.New("boom")
	_, err = MergeAll(env, LoaderFunc(func() (map[string]any, error) { return nil, boom }))
	if !errors.Is(err, boom) {
		t.Errorf("expected the source error, got %v", err)
	}
}
