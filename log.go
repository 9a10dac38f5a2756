// FILE: tunable/log.go
package tunable

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var defaultLogger atomic.Pointer[log.Logger]

func init() {
	defaultLogger.Store(log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "tunable",
		Level:  log.WarnLevel,
	}))
}

// Logger returns the package logger used by specs built without WithLogger.
func Logger() *log.Logger {
	return defaultLogger.Load()
}

// SetLogger replaces the package logger. A nil logger is ignored.
func SetLogger(l *log.Logger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

// SetLogLevel sets the package logger level by name (debug, info, warn, error, fatal).
func SetLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	Logger().SetLevel(lvl)
	return nil
}
