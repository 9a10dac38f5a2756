// File: tunable/builder.go
package tunable

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// ValidatorFunc defines the signature for a function that can validate a Spec.
// It receives the fully loaded *Spec and should return an error if validation fails.
type ValidatorFunc func(s *Spec) error

// Builder provides a fluent interface for building specs
type Builder struct {
	name       string
	manifest   []byte
	file       string
	opts       Options
	logger     *log.Logger
	registry   *Registry
	err        error
	validators []ValidatorFunc
}

// NewBuilder creates a new spec builder
func NewBuilder() *Builder {
	return &Builder{
		opts:       DefaultOptions(),
		validators: make([]ValidatorFunc, 0),
	}
}

// WithName sets the spec name. Without it the name is "default".
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithManifest seeds the spec from manifest JSON held in memory
func (b *Builder) WithManifest(data []byte) *Builder {
	b.manifest = data
	return b
}

// WithFile loads the manifest from a file, after any WithManifest data
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithOptions sets the options; AutoReload takes effect when a file is given
func (b *Builder) WithOptions(opts Options) *Builder {
	b.opts = opts
	return b
}

// WithOptionsFile reads options from a TOML file
func (b *Builder) WithOptionsFile(path string) *Builder {
	opts, err := LoadOptionsFile(path)
	if err != nil && b.err == nil {
		b.err = err
	}
	b.opts = opts
	return b
}

// WithLogger sets the logger used by the spec
func (b *Builder) WithLogger(l *log.Logger) *Builder {
	b.logger = l
	return b
}

// WithRegistry caches the built spec in r under its name
func (b *Builder) WithRegistry(r *Registry) *Builder {
	b.registry = r
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the Spec with all specified options
func (b *Builder) Build() (*Spec, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.opts.Validate(); err != nil {
		return nil, err
	}
	if b.opts.LogLevel != "" {
		lvl, _ := log.ParseLevel(b.opts.LogLevel) // checked by Validate
		if b.logger != nil {
			b.logger.SetLevel(lvl)
		} else {
			Logger().SetLevel(lvl)
		}
	}

	name := b.name
	if name == "" {
		name = "default"
	}
	s := New(name)
	s.logger = b.logger

	if b.manifest != nil {
		if _, err := s.importManifest(b.manifest); err != nil {
			return nil, fmt.Errorf("failed to import manifest: %w", err)
		}
	}
	if b.file != "" {
		if err := s.LoadFile(b.file); err != nil {
			return nil, err
		}
	}

	for _, validator := range b.validators {
		if err := validator(s); err != nil {
			return nil, fmt.Errorf("spec validation failed: %w", err)
		}
	}

	if b.file != "" && b.opts.AutoReload {
		if err := s.AutoReloadWithOptions(b.opts.watchOptions()); err != nil {
			return nil, err
		}
	}

	if b.registry != nil {
		cached := b.registry.store(s)
		if cached != s {
			return nil, fmt.Errorf("spec %s is already registered", name)
		}
	}

	return s, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Spec {
	s, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("spec build failed: %v", err))
	}
	return s
}

// BuildAndScan builds the spec and decodes its values into target
func (b *Builder) BuildAndScan(target any) (*Spec, error) {
	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := s.Scan(target); err != nil {
		return nil, fmt.Errorf("failed to scan spec into target: %w", err)
	}
	return s, nil
}

// RequireKeys returns a validator that fails unless every key is declared.
func RequireKeys(keys ...string) ValidatorFunc {
	return func(s *Spec) error {
		for _, key := range keys {
			if !s.Has(key) {
				return &KeyNotFoundError{Key: key}
			}
		}
		return nil
	}
}
