package loader

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func envLoader(vars ...string) *EnvLoader {
	l := NewEnvLoader("LINEINDEX_")
	l.environ = func() []string { return vars }
	return l
}

func TestEnvLoader_Load(t *testing.T) {
	l := envLoader(
		"LINEINDEX_LOG_LEVEL=debug",
		"LINEINDEX_CHECKS=yes",
		"LINEINDEX_WRAP=40",
		"OTHER_VAR=ignored",
	)
	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := map[string]any{
		"logging":     map[string]any{"level": "debug"},
		"index":       map[string]any{"consistency_checks": true},
		"annotations": map[string]any{"wrap_width": int64(40)},
	}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvLoader_LoadUnmapped(t *testing.T) {
	config, err := envLoader("LINEINDEX_DOCUMENT_GAP_CAPACITY=128").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if val, ok := getByPath(config, "document.gap_capacity"); !ok || val != int64(128) {
		t.Errorf("document.gap_capacity = %v (%T), want 128", val, val)
	}
}

func TestEnvLoader_RealEnvironment(t *testing.T) {
	t.Setenv("LINEINDEX_ENCODING", "shift_jis")

	config, err := NewEnvLoader("LINEINDEX_").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if val, ok := getByPath(config, "document.encoding"); !ok || val != "shift_jis" {
		t.Errorf("document.encoding = %v, want shift_jis", val)
	}
}

func TestEnvLoader_AddMapping(t *testing.T) {
	l := envLoader("LINEINDEX_CAP=9")
	l.AddMapping("LINEINDEX_CAP", "document.gap_capacity")
	config, _ := l.Load()
	if val, _ := getByPath(config, "document.gap_capacity"); val != int64(9) {
		t.Errorf("mapped value = %v", val)
	}
}

func TestEnvLoader_envToPath(t *testing.T) {
	l := NewEnvLoader("LINEINDEX_")
	tests := []struct {
		env  string
		want string
	}{
		{"LINEINDEX_LOGGING_LEVEL", "logging.level"},
		{"LINEINDEX_DOCUMENT_GAP_CAPACITY", "document.gap_capacity"},
		{"LINEINDEX_INDEX_CONSISTENCY_CHECKS", "index.consistency_checks"},
		{"LINEINDEX_MARKERS", "markers"},
	}
	for _, tt := range tests {
		if got := l.envToPath(tt.env); got != tt.want {
			t.Errorf("envToPath(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"", ""},
		{"true", true},
		{"Off", false},
		{"1", int64(1)},
		{"0", int64(0)},
		{"-12", int64(-12)},
		{"1.5", 1.5},
		{"utf-8", "utf-8"},
		{`[{"index": 3, "back": "#f00"}]`, []any{map[string]any{"index": int64(3), "back": "#f00"}}},
		{"[not json", "[not json"},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, parseValue(tt.input)); diff != "" {
			t.Errorf("parseValue(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

// getByPath returns the value at a dot-separated path.
func getByPath(data map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	v, ok := current[parts[len(parts)-1]]
	return v, ok
}
