// Package loader reads raw configuration maps from TOML files and
// environment variables, and merges them.
package loader

import (
	"io/fs"
	"os"
)

// Loader produces one layer of raw settings. A source that does not exist
// yields a nil map and no error.
type Loader interface {
	Load() (map[string]any, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func() (map[string]any, error)

// Load calls f.
func (f LoaderFunc) Load() (map[string]any, error) {
	return f()
}

// FileSystem is the file access a TOMLLoader needs. Tests substitute an
// in-memory implementation.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS reads from the host file system.
type OSFS struct{}

func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// DefaultFS returns the host file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// MergeAll loads every source in order and merges the layers, later
// sources overriding earlier ones. The first load error stops the merge.
func MergeAll(sources ...Loader) (map[string]any, error) {
	merged := make(map[string]any)
	for _, src := range sources {
		layer, err := src.Load()
		if err != nil {
			return nil, err
		}
		merged = DeepMerge(merged, layer)
	}
	return merged, nil
}

// DeepMerge recursively merges src into dst and returns dst.
// Values in src override values in dst. Maps are merged recursively;
// other types, arrays included, are replaced.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = srcVal
	}
	return dst
}
