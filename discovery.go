// FILE: tunable/discovery.go
package tunable

import (
	"os"
	"path/filepath"
)

// EnvSpecPath lists extra manifest directories, separated like PATH.
const EnvSpecPath = "TUNABLE_SPEC_PATH"

// ManifestExt is the file extension of spec manifests.
const ManifestExt = ".json"

// DiscoveryOptions configures where manifests for named specs are searched.
type DiscoveryOptions struct {
	// Custom search paths, searched first
	Paths []string

	// Environment variable holding more search paths
	EnvVar string

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions searches EnvSpecPath and then the current directory.
func DefaultDiscoveryOptions() DiscoveryOptions {
	return DiscoveryOptions{
		EnvVar:        EnvSpecPath,
		UseCurrentDir: true,
	}
}

// searchPaths returns the directories to search, in order
func (o DiscoveryOptions) searchPaths() []string {
	var paths []string
	paths = append(paths, o.Paths...)

	if o.EnvVar != "" {
		if v := os.Getenv(o.EnvVar); v != "" {
			paths = append(paths, filepath.SplitList(v)...)
		}
	}

	if o.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			paths = append(paths, cwd)
		}
	}

	return paths
}

// findManifest returns the first <name>.json found in the search paths.
func (o DiscoveryOptions) findManifest(name string) (string, bool) {
	for _, dir := range o.searchPaths() {
		path := filepath.Join(dir, name+ManifestExt)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
