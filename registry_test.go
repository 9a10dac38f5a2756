// FILE: tunable/registry_test.go
package tunable

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, manifests map[string]string) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()
	for name, doc := range manifests {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+ManifestExt), []byte(doc), 0644))
	}
	opts := DefaultOptions()
	opts.SearchPaths = []string{dir}
	return NewRegistry(opts), dir
}

func TestRegistryNamed(t *testing.T) {
	r, _ := newTestRegistry(t, map[string]string{"MainSpec": sampleManifest})

	s, err := r.Named("MainSpec")
	require.NoError(t, err)
	assert.Equal(t, "MainSpec", s.Name())

	grid, err := s.Double("Grid")
	require.NoError(t, err)
	assert.Equal(t, 175.0, grid)

	// Same instance, same bindings
	again, err := r.Named("MainSpec")
	require.NoError(t, err)
	assert.Same(t, s, again)

	require.NoError(t, s.SetDouble("Grid", 20))
	grid, _ = again.Double("Grid")
	assert.Equal(t, 20.0, grid)

	assert.Equal(t, []string{"MainSpec"}, r.Names())
}

func TestRegistryConcurrentFirstUse(t *testing.T) {
	r, _ := newTestRegistry(t, map[string]string{"MainSpec": sampleManifest})

	const n = 16
	results := make([]*Spec, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := r.Named("MainSpec")
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		assert.Same(t, results[0], s)
	}
}

func TestRegistryNotFoundNotCached(t *testing.T) {
	r, dir := newTestRegistry(t, nil)

	_, err := r.Named("Later")
	assert.True(t, errors.Is(err, ErrSpecNotFound))
	_, ok := r.Lookup("Later")
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Later.json"), []byte(sampleManifest), 0644))
	s, err := r.Named("Later")
	require.NoError(t, err)
	assert.True(t, s.Has("Grid"))
}

func TestRegistryInvalidNames(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		_, err := r.Named(name)
		assert.Error(t, err, name)
	}
}

func TestRegistryProvide(t *testing.T) {
	r, _ := newTestRegistry(t, nil)

	s, err := r.Provide("Embedded", []byte(sampleManifest))
	require.NoError(t, err)

	again, err := r.Provide("Embedded", []byte(`[]`))
	require.NoError(t, err)
	assert.Same(t, s, again)

	named, err := r.Named("Embedded")
	require.NoError(t, err)
	assert.Same(t, s, named)

	_, err = r.Provide("Broken", []byte(`{}`))
	assert.True(t, errors.Is(err, ErrManifestParse))
}

func TestRegistryEnvSearchPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "FromEnv.json"), []byte(sampleManifest), 0644))
	t.Setenv(EnvSpecPath, dir)

	r := NewRegistry(DefaultOptions())
	s, err := r.Named("FromEnv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "FromEnv.json"), s.FilePath())
}

func TestRegistryConfigure(t *testing.T) {
	r, _ := newTestRegistry(t, nil)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Moved.json"), []byte(sampleManifest), 0644))

	_, err := r.Named("Moved")
	require.Error(t, err)

	opts := DefaultOptions()
	opts.SearchPaths = []string{dir}
	require.NoError(t, r.Configure(opts))

	_, err = r.Named("Moved")
	require.NoError(t, err)

	assert.Error(t, r.Configure(Options{PollInterval: -1}))
}
