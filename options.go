// FILE: tunable/options.go
package tunable

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Options configures how specs are located, logged and reloaded. They are
// usually read from a TOML file:
//
//	search_paths  = ["./specs", "/etc/myapp/specs"]
//	log_level     = "info"
//	auto_reload   = true
//	poll_interval = "250ms"
//	debounce      = "100ms"
type Options struct {
	// SearchPaths are directories searched for <name>.json, in order
	SearchPaths []string `toml:"search_paths"`

	// LogLevel for the package logger; empty leaves it unchanged
	LogLevel string `toml:"log_level"`

	// AutoReload starts polling the manifest file of every spec loaded from disk
	AutoReload bool `toml:"auto_reload"`

	// PollInterval for manifest stat checks (minimum MinPollInterval)
	PollInterval time.Duration `toml:"poll_interval"`

	// Debounce duration to coalesce rapid manifest writes
	Debounce time.Duration `toml:"debounce"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		PollInterval: DefaultPollInterval,
		Debounce:     DefaultDebounce,
	}
}

// LoadOptionsFile reads Options from a TOML file on top of DefaultOptions.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadOptionsFile(path string) (Options, error) {
	opts := DefaultOptions()

	md, err := toml.DecodeFile(path, &opts)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return opts, fmt.Errorf("options file not found: %s: %w", path, err)
		}
		return opts, fmt.Errorf("failed to parse TOML options file '%s': %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return opts, fmt.Errorf("unknown keys in options file '%s': %s", path, strings.Join(keys, ", "))
	}

	return opts, opts.Validate()
}

// Validate checks option values.
func (o Options) Validate() error {
	if o.PollInterval < 0 || o.Debounce < 0 {
		return fmt.Errorf("poll_interval and debounce must not be negative")
	}
	if o.LogLevel != "" {
		if _, err := log.ParseLevel(o.LogLevel); err != nil {
			return fmt.Errorf("invalid log_level %q: %w", o.LogLevel, err)
		}
	}
	return nil
}

// watchOptions derives watcher settings from o.
func (o Options) watchOptions() WatchOptions {
	w := DefaultWatchOptions()
	if o.PollInterval > 0 {
		w.PollInterval = o.PollInterval
	}
	if o.Debounce > 0 {
		w.Debounce = o.Debounce
	}
	return w
}
