// FILE: tunable/builder_test.go
package tunable

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuilder tests the builder pattern
func TestBuilder(t *testing.T) {
	t.Run("BasicBuilder", func(t *testing.T) {
		s, err := NewBuilder().
			WithManifest([]byte(sampleManifest)).
			Build()

		require.NoError(t, err)
		assert.Equal(t, "default", s.Name())

		grid, err := s.Double("Grid")
		require.NoError(t, err)
		assert.Equal(t, 175.0, grid)
	})

	t.Run("ManifestThenFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "Layout.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"key": "Grid", "sliderValue": 50, "sliderMinValue": 0, "sliderMaxValue": 100}]`), 0644))

		s, err := NewBuilder().
			WithName("Layout").
			WithManifest([]byte(sampleManifest)).
			WithFile(path).
			WithLogger(log.New(os.Stderr)).
			Build()

		require.NoError(t, err)
		assert.Equal(t, "Layout", s.Name())
		assert.Equal(t, path, s.FilePath())

		// File values override the embedded manifest
		grid, _ := s.Double("Grid")
		assert.Equal(t, 50.0, grid)
		assert.True(t, s.Has("Clicky"))
	})

	t.Run("BuilderWithValidator", func(t *testing.T) {
		validatorCalled := false
		validator := func(s *Spec) error {
			validatorCalled = true
			grid, err := s.Double("Grid")
			if err != nil {
				return err
			}
			if grid < 100 {
				return fmt.Errorf("grid too small: %g", grid)
			}
			return nil
		}

		_, err := NewBuilder().
			WithManifest([]byte(sampleManifest)).
			WithValidator(validator).
			Build()
		require.NoError(t, err)
		assert.True(t, validatorCalled)

		_, err = NewBuilder().
			WithManifest([]byte(`[{"key": "Grid", "sliderValue": 5}]`)).
			WithValidator(validator).
			Build()
		assert.ErrorContains(t, err, "grid too small")
	})

	t.Run("RequireKeys", func(t *testing.T) {
		_, err := NewBuilder().
			WithManifest([]byte(sampleManifest)).
			WithValidator(RequireKeys("Grid", "Tint")).
			Build()
		require.NoError(t, err)

		_, err = NewBuilder().
			WithManifest([]byte(sampleManifest)).
			WithValidator(RequireKeys("Grid", "Missing")).
			Build()
		assert.True(t, errors.Is(err, ErrKeyNotFound))
	})

	t.Run("InvalidManifest", func(t *testing.T) {
		_, err := NewBuilder().WithManifest([]byte(`{}`)).Build()
		assert.True(t, errors.Is(err, ErrManifestParse))

		_, err = NewBuilder().WithFile(filepath.Join(t.TempDir(), "missing.json")).Build()
		assert.True(t, errors.Is(err, ErrSpecNotFound))
	})

	t.Run("InvalidOptions", func(t *testing.T) {
		_, err := NewBuilder().WithOptions(Options{LogLevel: "loud"}).Build()
		assert.Error(t, err)

		_, err = NewBuilder().WithOptionsFile(filepath.Join(t.TempDir(), "missing.toml")).Build()
		assert.Error(t, err)
	})

	t.Run("BuildAndScan", func(t *testing.T) {
		var layout struct {
			Grid float64 `spec:"Grid"`
			Tint string  `spec:"Tint"`
		}

		s, err := NewBuilder().
			WithManifest([]byte(sampleManifest)).
			BuildAndScan(&layout)
		require.NoError(t, err)
		assert.NotNil(t, s)
		assert.Equal(t, 175.0, layout.Grid)
		assert.Equal(t, "rgba(57,204,204,1.000)", layout.Tint)
	})

	t.Run("MustBuildPanics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewBuilder().WithManifest([]byte(`nope`)).MustBuild()
		})
	})
}

// TestBuilderRegistry tests caching built specs in a registry
func TestBuilderRegistry(t *testing.T) {
	r := NewRegistry(DefaultOptions())

	s, err := NewBuilder().
		WithName("Layout").
		WithManifest([]byte(sampleManifest)).
		WithRegistry(r).
		Build()
	require.NoError(t, err)

	cached, err := r.Named("Layout")
	require.NoError(t, err)
	assert.Same(t, s, cached)

	_, err = NewBuilder().
		WithName("Layout").
		WithManifest([]byte(sampleManifest)).
		WithRegistry(r).
		Build()
	assert.ErrorContains(t, err, "already registered")
}

// TestBuilderAutoReload tests that options from a TOML file start the watcher
func TestBuilderAutoReload(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "Layout.json")
	require.NoError(t, os.WriteFile(manifest, []byte(sampleManifest), 0644))

	optsFile := filepath.Join(dir, "tunable.toml")
	require.NoError(t, os.WriteFile(optsFile, []byte(`
auto_reload   = true
poll_interval = "50ms"
debounce      = "10ms"
`), 0644))

	s, err := NewBuilder().
		WithName("Layout").
		WithFile(manifest).
		WithOptionsFile(optsFile).
		Build()
	require.NoError(t, err)
	defer s.StopAutoReload()

	assert.True(t, s.IsWatching())
}
