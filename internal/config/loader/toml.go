package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ErrIncludeDepth indicates too many nested @include directives.
var ErrIncludeDepth = errors.New("include depth exceeded")

const includeKey = "@include"

// TOMLLoader reads settings from a TOML file.
type TOMLLoader struct {
	fs   FileSystem
	path string
}

// NewTOMLLoader returns a loader for the file at path on the host file system.
func NewTOMLLoader(path string) *TOMLLoader {
	return NewTOMLLoaderWithFS(DefaultFS(), path)
}

// NewTOMLLoaderWithFS returns a loader for the file at path in fsys.
func NewTOMLLoaderWithFS(fsys FileSystem, path string) *TOMLLoader {
	return &TOMLLoader{fs: fsys, path: path}
}

// Load reads the loader's file. @include directives are left in place.
func (l *TOMLLoader) Load() (map[string]any, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads the file at path instead of the loader's own.
func (l *TOMLLoader) LoadFrom(path string) (map[string]any, error) {
	data, err := l.fs.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(path, data)
}

// LoadFromReader parses TOML read from r.
func (l *TOMLLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	return Parse("<reader>", data)
}

// Parse decodes TOML data. source names the data in errors.
func Parse(source string, data []byte) (map[string]any, error) {
	var settings map[string]any
	if err := toml.Unmarshal(data, &settings); err != nil {
		return nil, newParseError(source, err)
	}
	return settings, nil
}

// Resolved returns a Loader that reads the loader's file with its
// @include directives expanded, nesting at most maxDepth files deep.
func (l *TOMLLoader) Resolved(maxDepth int) Loader {
	return LoaderFunc(func() (map[string]any, error) {
		return l.LoadWithIncludes(l.path, maxDepth)
	})
}

// LoadWithIncludes reads path and expands its @include directive, a string
// or an array of strings. Relative includes resolve against the directory
// of the including file, and the including file's own keys win.
func (l *TOMLLoader) LoadWithIncludes(path string, maxDepth int) (map[string]any, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("%w at %s", ErrIncludeDepth, path)
	}

	settings, err := l.LoadFrom(path)
	if err != nil || settings == nil {
		return nil, err
	}
	raw, ok := settings[includeKey]
	if !ok {
		return settings, nil
	}
	delete(settings, includeKey)

	paths, err := includePaths(path, raw)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]any)
	for _, inc := range paths {
		layer, err := l.LoadWithIncludes(inc, maxDepth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", inc, err)
		}
		merged = DeepMerge(merged, layer)
	}
	return DeepMerge(merged, settings), nil
}

func includePaths(from string, raw any) ([]string, error) {
	var names []string
	switch v := raw.(type) {
	case string:
		names = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: %s entries must be strings, got %T", from, includeKey, item)
			}
			names = append(names, s)
		}
	default:
		return nil, fmt.Errorf("%s: %s must be a string or an array of strings, got %T", from, includeKey, raw)
	}

	dir := filepath.Dir(from)
	for i, name := range names {
		if !filepath.IsAbs(name) {
			names[i] = filepath.Join(dir, name)
		}
	}
	return names, nil
}

// ParseError reports malformed TOML. Line and Column are 1-based and zero
// when the decoder gave no position.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func newParseError(path string, err error) *ParseError {
	pe := &ParseError{Path: path, Message: err.Error(), Err: err}
	var de *toml.DecodeError
	if errors.As(err, &de) {
		pe.Line, pe.Column = de.Position()
	}
	return pe
}

func (e *ParseError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
		if e.Column > 0 {
			loc = fmt.Sprintf("%s:%d", loc, e.Column)
		}
	}
	return "parse error at " + loc + ": " + e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
