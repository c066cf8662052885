package config

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/lineindex/internal/logging"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(s), nil
}

func (m memFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m[path]; !ok {
		return nil, fs.ErrNotExist
	}
	return fileInfo(path), nil
}

type fileInfo string

func (f fileInfo) Name() string       { return string(f) }
func (f fileInfo) Size() int64        { return 0 }
func (f fileInfo) Mode() fs.FileMode  { return 0644 }
func (f fileInfo) ModTime() time.Time { return time.Time{} }
func (f fileInfo) IsDir() bool        { return false }
func (f fileInfo) Sys() any           { return nil }

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.LogLevel() != logging.LevelInfo {
		t.Errorf("default level = %v", cfg.LogLevel())
	}
}

func TestLoadFile(t *testing.T) {
	files := memFS{"/etc/lineindex.toml": `
[logging]
level = "debug"

[document]
encoding = "shift_jis"

[index]
consistency_checks = true

[[markers]]
index = 1
symbol = "bookmark"
back = "darkred"

[[markers]]
index = 30
fore = "#ff0"
`}

	cfg, err := Load("/etc/lineindex.toml", WithFS(files), WithEnvPrefix(""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := &Config{
		Logging:  LoggingConfig{Level: "debug"},
		Document: DocumentConfig{Encoding: "shift_jis", GapCapacity: 64},
		Index:    IndexConfig{ConsistencyChecks: true},
		Markers: []MarkerConfig{
			{Index: 1, Symbol: "bookmark", Back: "darkred"},
			{Index: 30, Fore: "#ff0"},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.LogLevel() != logging.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel())
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	files := memFS{"/c.toml": "[document]\ngap_capacity = 16\n\n[annotations]\nwrap_width = 10\n"}
	t.Setenv("LITEST_DOCUMENT_GAP_CAPACITY", "512")
	t.Setenv("LITEST_WRAP", "0")
	t.Setenv("LITEST_MARKERS", `[{"index": 4, "symbol": "plus"}]`)

	cfg, err := Load("/c.toml", WithFS(files), WithEnvPrefix("LITEST_"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Document.GapCapacity != 512 {
		t.Errorf("gap_capacity = %d, want 512", cfg.Document.GapCapacity)
	}
	if cfg.Annotations.WrapWidth != 0 {
		t.Errorf("wrap_width = %d, want 0", cfg.Annotations.WrapWidth)
	}
	if diff := cmp.Diff([]MarkerConfig{{Index: 4, Symbol: "plus"}}, cfg.Markers); diff != "" {
		t.Errorf("markers mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("", WithEnvPrefix(""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nope.toml", WithFS(memFS{}), WithEnvPrefix(""))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoadParseError(t *testing.T) {
	files := memFS{"/bad.toml": "[index\nconsistency_checks = true\n"}
	_, err := Load("/bad.toml", WithFS(files), WithEnvPrefix(""))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if pe.Line != 1 {
		t.Errorf("parse error at line %d, want 1", pe.Line)
	}
}

func TestLoadUnknownSetting(t *testing.T) {
	files := memFS{"/c.toml": "[document]\ntab_width = 4\n"}
	_, err := Load("/c.toml", WithFS(files), WithEnvPrefix(""))
	if !errors.Is(err, ErrUnknownSetting) {
		t.Fatalf("expected ErrUnknownSetting, got %v", err)
	}
	if !strings.Contains(err.Error(), "tab_width") {
		t.Errorf("error %q should name the key", err)
	}
}

func TestDecodeTypeMismatch(t *testing.T) {
	_, err := Decode(map[string]any{"document": map[string]any{"gap_capacity": "lots"}})
	if err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		paths []string
	}{
		{"valid", func(*Config) {}, nil},
		{"level", func(c *Config) { c.Logging.Level = "loud" }, []string{"logging.level"}},
		{"encoding", func(c *Config) { c.Document.Encoding = "klingon" }, []string{"document.encoding"}},
		{"empty encoding", func(c *Config) { c.Document.Encoding = "" }, nil},
		{"negative sizes", func(c *Config) {
			c.Document.GapCapacity = -1
			c.Annotations.WrapWidth = -2
		}, []string{"document.gap_capacity", "annotations.wrap_width"}},
		{"markers", func(c *Config) {
			c.Markers = []MarkerConfig{
				{Index: 32},
				{Index: 3, Fore: "#12345"},
				{Index: 3, Back: "blue"},
			}
		}, []string{"markers[0].index", "markers[1].fore", "markers[2].index"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(cfg)
			err := cfg.Validate()

			var got []string
			if err != nil {
				if !errors.Is(err, ErrValidationFailed) {
					t.Errorf("expected ErrValidationFailed, got %v", err)
				}
				for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
					var ve *ValidationError
					if errors.As(e, &ve) {
						got = append(got, ve.Path)
					}
				}
			}
			if diff := cmp.Diff(tt.paths, got); diff != "" {
				t.Errorf("failed paths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
