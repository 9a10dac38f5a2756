// FILE: tunable/registry.go
package tunable

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Registry caches specs by name. Each name maps to at most one *Spec for the
// life of the registry, so every lookup observes the same values and bindings.
type Registry struct {
	mu        sync.RWMutex
	specs     map[string]*Spec
	group     singleflight.Group
	discovery DiscoveryOptions
	opts      Options
}

// Default is the process-wide registry used by Named.
var Default = NewRegistry(DefaultOptions())

// Named returns the spec called name from the Default registry, loading
// <name>.json from the search paths on first use.
func Named(name string) (*Spec, error) {
	return Default.Named(name)
}

// NewRegistry creates a registry that searches opts.SearchPaths, then
// EnvSpecPath, then the current directory.
func NewRegistry(opts Options) *Registry {
	discovery := DefaultDiscoveryOptions()
	discovery.Paths = append(discovery.Paths, opts.SearchPaths...)
	return &Registry{
		specs:     make(map[string]*Spec),
		discovery: discovery,
		opts:      opts,
	}
}

// Configure replaces the registry options. Specs already loaded keep theirs.
func (r *Registry) Configure(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if opts.LogLevel != "" {
		if err := SetLogLevel(opts.LogLevel); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	discovery := DefaultDiscoveryOptions()
	discovery.Paths = append(discovery.Paths, opts.SearchPaths...)
	r.discovery = discovery
	r.opts = opts
	return nil
}

// Named returns the cached spec for name, loading its manifest on first use.
// Concurrent first lookups share one load. A failed load is not cached.
func (r *Registry) Named(name string) (*Spec, error) {
	if s, ok := r.Lookup(name); ok {
		return s, nil
	}
	if err := validateSpecName(name); err != nil {
		return nil, err
	}

	v, err, _ := r.group.Do(name, func() (any, error) {
		if s, ok := r.Lookup(name); ok {
			return s, nil
		}

		r.mu.RLock()
		discovery, opts := r.discovery, r.opts
		r.mu.RUnlock()

		path, found := discovery.findManifest(name)
		if !found {
			return nil, fmt.Errorf("%w: %s%s", ErrSpecNotFound, name, ManifestExt)
		}

		s := New(name)
		if err := s.LoadFile(path); err != nil {
			return nil, err
		}
		if opts.AutoReload {
			if err := s.AutoReloadWithOptions(opts.watchOptions()); err != nil {
				return nil, err
			}
		}

		return r.store(s), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Spec), nil
}

// Provide installs a spec built from manifest data under name, for callers
// that read manifests themselves. If name is already cached the cached spec
// is returned and data is ignored.
func (r *Registry) Provide(name string, data []byte) (*Spec, error) {
	if s, ok := r.Lookup(name); ok {
		return s, nil
	}
	s, err := NewFromManifest(name, data)
	if err != nil {
		return nil, err
	}
	return r.store(s), nil
}

// Lookup returns the cached spec for name without loading it.
func (r *Registry) Lookup(name string) (*Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[name]
	return s, ok
}

// Names returns the names of cached specs.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	return names
}

// store caches s unless another spec won the race, and returns the cached one.
func (r *Registry) store(s *Spec) *Spec {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.specs[s.name]; ok {
		if s.IsWatching() {
			s.StopAutoReload()
		}
		return existing
	}
	r.specs[s.name] = s
	return s
}

func validateSpecName(name string) error {
	if name == "" {
		return fmt.Errorf("spec name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid spec name %q", name)
	}
	return nil
}
