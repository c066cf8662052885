package config

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/lineindex/internal/config/loader"
	"github.com/dshills/lineindex/internal/engine/charset"
	"github.com/dshills/lineindex/internal/engine/color"
	"github.com/dshills/lineindex/internal/logging"
)

// EnvPrefix is the prefix of environment variables that override file
// settings.
const EnvPrefix = "LINEINDEX_"

const maxIncludeDepth = 8

// Config is the complete lineindex configuration.
type Config struct {
	Logging     LoggingConfig     `toml:"logging"`
	Document    DocumentConfig    `toml:"document"`
	Index       IndexConfig       `toml:"index"`
	Annotations AnnotationsConfig `toml:"annotations"`
	Markers     []MarkerConfig    `toml:"markers"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level"`
}

// DocumentConfig configures document storage.
type DocumentConfig struct {
	// Encoding is the WHATWG name of the encoding documents are read and
	// written in. Text is always held as UTF-8.
	Encoding string `toml:"encoding"`
	// GapCapacity is the initial gap buffer capacity.
	GapCapacity int `toml:"gap_capacity"`
}

// IndexConfig configures the line index.
type IndexConfig struct {
	// ConsistencyChecks verifies the index after every edit and rebuilds it
	// on mismatch.
	ConsistencyChecks bool `toml:"consistency_checks"`
}

// AnnotationsConfig configures annotation and margin text layout.
type AnnotationsConfig struct {
	// WrapWidth is the display width rows wrap at; zero disables wrapping.
	WrapWidth int `toml:"wrap_width"`
}

// MarkerConfig defines one marker. Empty fields keep the default.
type MarkerConfig struct {
	Index  int    `toml:"index"`
	Symbol string `toml:"symbol,omitempty"`
	Fore   string `toml:"fore,omitempty"`
	Back   string `toml:"back,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging:  LoggingConfig{Level: "info"},
		Document: DocumentConfig{Encoding: "utf-8", GapCapacity: 64},
	}
}

// LogLevel returns the configured level, or info when it is not valid.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Logging.Level)
	return level
}

// loadOptions holds the sources Load reads.
type loadOptions struct {
	fs        loader.FileSystem
	envPrefix string
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithFS reads configuration files from fsys.
func WithFS(fsys loader.FileSystem) LoadOption {
	return func(o *loadOptions) {
		o.fs = fsys
	}
}

// WithEnvPrefix sets the environment variable prefix. An empty prefix
// disables environment overrides.
func WithEnvPrefix(prefix string) LoadOption {
	return func(o *loadOptions) {
		o.envPrefix = prefix
	}
}

// Load builds a configuration from the defaults, the TOML file at path
// (with its @include files) and the environment, later sources winning.
// An empty path skips the file; a path that does not exist is an error.
// The result is validated.
func Load(path string, opts ...LoadOption) (*Config, error) {
	o := loadOptions{fs: loader.DefaultFS(), envPrefix: EnvPrefix}
	for _, opt := range opts {
		opt(&o)
	}

	var sources []loader.Loader
	if path != "" {
		if _, err := o.fs.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		sources = append(sources, loader.NewTOMLLoaderWithFS(o.fs, path).Resolved(maxIncludeDepth))
	}
	if o.envPrefix != "" {
		sources = append(sources, loader.NewEnvLoader(o.envPrefix))
	}
	merged, err := loader.MergeAll(sources...)
	if err != nil {
		return nil, err
	}

	cfg, err := Decode(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode converts a raw settings map into a Config on top of the defaults.
// Keys no section defines are rejected.
func Decode(settings map[string]any) (*Config, error) {
	cfg := Default()
	if len(settings) == 0 {
		return cfg, nil
	}
	data, err := toml.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return nil, fmt.Errorf("%w:\n%s", ErrUnknownSetting, sme.String())
		}
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	return cfg, nil
}

// Validate checks every setting and returns all failures joined.
func (c *Config) Validate() error {
	var errs []error
	fail := func(path, msg string, value any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
	}

	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		fail("logging.level", "must be debug, info, warn or error", c.Logging.Level)
	}
	if c.Document.Encoding != "" {
		if _, err := charset.Lookup(c.Document.Encoding); err != nil {
			fail("document.encoding", "unknown encoding", c.Document.Encoding)
		}
	}
	if c.Document.GapCapacity < 0 {
		fail("document.gap_capacity", "must not be negative", c.Document.GapCapacity)
	}
	if c.Annotations.WrapWidth < 0 {
		fail("annotations.wrap_width", "must not be negative", c.Annotations.WrapWidth)
	}

	seen := make(map[int]bool)
	for i, m := range c.Markers {
		path := fmt.Sprintf("markers[%d]", i)
		if m.Index < 0 || m.Index > 31 {
			fail(path+".index", "must be between 0 and 31", m.Index)
		} else if seen[m.Index] {
			fail(path+".index", "defined more than once", m.Index)
		}
		seen[m.Index] = true

		for _, f := range []struct{ name, value string }{{"fore", m.Fore}, {"back", m.Back}} {
			if f.value == "" {
				continue
			}
			if _, err := color.Parse(f.value); err != nil {
				fail(path+"."+f.name, "not a hex color or color name", f.value)
			}
		}
	}
	return errors.Join(errs...)
}
