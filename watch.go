// FILE: tunable/watch.go
package tunable

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultMaxWatchers = 100 // Prevent resource exhaustion

// Events sent on Watch channels besides changed keys.
const (
	EventFileDeleted        = "file_deleted"
	EventPermissionsChanged = "permissions_changed"
	EventReloadErrorPrefix  = "reload_error:"
)

// WatchOptions configures manifest auto-reload.
type WatchOptions struct {
	// PollInterval for file stat checks (minimum MinPollInterval)
	PollInterval time.Duration

	// Debounce duration to avoid rapid reloads
	Debounce time.Duration

	// MaxWatchers limits concurrent watch channels
	MaxWatchers int

	// VerifyPermissions refuses to reload a file whose group/world permissions changed
	VerifyPermissions bool
}

// DefaultWatchOptions returns sensible defaults for file watching
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		PollInterval:      DefaultPollInterval,
		Debounce:          DefaultDebounce,
		MaxWatchers:       DefaultMaxWatchers,
		VerifyPermissions: true,
	}
}

// watcher polls a manifest file and re-imports it on change.
type watcher struct {
	mu               sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
	opts             WatchOptions
	filePath         string
	lastModTime      time.Time
	lastSize         int64
	lastMode         os.FileMode
	watching         atomic.Bool
	reloadInProgress atomic.Bool
	watchers         map[int64]chan string // subscriber channels
	watcherID        atomic.Int64
	debounceTimer    *time.Timer
}

// AutoReload starts polling the spec's manifest file with default options.
// Edits to the file are applied through Set, so bindings fire as if the
// values had been tuned.
func (s *Spec) AutoReload() error {
	return s.AutoReloadWithOptions(DefaultWatchOptions())
}

// AutoReloadWithOptions starts polling the spec's manifest file.
func (s *Spec) AutoReloadWithOptions(opts WatchOptions) error {
	if opts.PollInterval < MinPollInterval {
		opts.PollInterval = MinPollInterval
	}
	if opts.MaxWatchers <= 0 {
		opts.MaxWatchers = DefaultMaxWatchers
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	filePath := s.filePath
	if filePath == "" {
		return fmt.Errorf("spec %s was not loaded from a file", s.name)
	}

	// Stop existing watcher if path changed
	if s.watcher != nil && s.watcher.filePath != filePath {
		s.watcher.stop()
		s.watcher = nil
	}
	if s.watcher != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &watcher{
		ctx:      ctx,
		cancel:   cancel,
		opts:     opts,
		filePath: filePath,
		watchers: make(map[int64]chan string),
	}
	if info, err := os.Stat(filePath); err == nil {
		w.lastModTime = info.ModTime()
		w.lastSize = info.Size()
		w.lastMode = info.Mode()
	}
	s.watcher = w

	w.watching.Store(true)
	go w.watchLoop(s)

	s.log().Info("Watching manifest", "spec", s.name, "path", filePath, "interval", opts.PollInterval)
	return nil
}

// StopAutoReload stops polling and closes all Watch channels.
func (s *Spec) StopAutoReload() {
	s.mutex.Lock()
	w := s.watcher
	s.watcher = nil
	s.mutex.Unlock()

	if w != nil {
		w.stop()
	}
}

// IsWatching returns true if auto-reload is running.
func (s *Spec) IsWatching() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.watcher != nil && s.watcher.watching.Load()
}

// Watch returns a channel that receives the keys changed by each reload, and
// the Event* markers. The channel is closed by StopAutoReload. Without a
// running auto-reload the returned channel is already closed.
func (s *Spec) Watch() <-chan string {
	s.mutex.RLock()
	w := s.watcher
	s.mutex.RUnlock()

	if w == nil {
		ch := make(chan string)
		close(ch)
		return ch
	}
	return w.subscribe()
}

// WatcherCount returns the number of active watch channels
func (s *Spec) WatcherCount() int {
	s.mutex.RLock()
	w := s.watcher
	s.mutex.RUnlock()

	if w == nil {
		return 0
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.watchers)
}

// watchLoop is the main file watching loop
func (w *watcher) watchLoop(s *Spec) {
	defer w.watching.Store(false)

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.checkAndReload(s)
		}
	}
}

// checkAndReload checks if file changed and triggers reload
func (w *watcher) checkAndReload(s *Spec) {
	info, err := os.Stat(w.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			w.notifyWatchers(EventFileDeleted)
		}
		return
	}

	changed := !info.ModTime().Equal(w.lastModTime) || info.Size() != w.lastSize

	// Refuse to reload a manifest whose group/world permissions changed
	if w.opts.VerifyPermissions && w.lastMode != 0 && info.Mode() != w.lastMode {
		if (info.Mode() & 0077) != (w.lastMode & 0077) {
			// Reported once; the next poll compares against the new mode
			w.lastMode = info.Mode()
			w.notifyWatchers(EventPermissionsChanged)
			return
		}
	}

	if !changed {
		return
	}

	w.lastModTime = info.ModTime()
	w.lastSize = info.Size()
	w.lastMode = info.Mode()

	// Debounce rapid changes
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.opts.Debounce, func() {
		w.performReload(s)
	})
	w.mu.Unlock()
}

// performReload re-imports the manifest and reports changed keys
func (w *watcher) performReload(s *Spec) {
	if w.ctx.Err() != nil {
		return
	}
	// Prevent concurrent reloads
	if !w.reloadInProgress.CompareAndSwap(false, true) {
		return
	}
	defer w.reloadInProgress.Store(false)

	changed, err := s.loadFile(w.filePath)
	for _, key := range changed {
		w.notifyWatchers(key)
	}
	if err != nil {
		s.log().Error("Manifest reload failed", "spec", s.name, "path", w.filePath, "error", err)
		w.notifyWatchers(EventReloadErrorPrefix + err.Error())
		return
	}
	s.log().Info("Reloaded manifest", "spec", s.name, "path", w.filePath, "changed", len(changed))
}

// subscribe creates a new watcher channel
func (w *watcher) subscribe() <-chan string {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Check watcher limit
	if len(w.watchers) >= w.opts.MaxWatchers || w.ctx.Err() != nil {
		ch := make(chan string)
		close(ch)
		return ch
	}

	// Create buffered channel to prevent blocking
	ch := make(chan string, 10)
	id := w.watcherID.Add(1)
	w.watchers[id] = ch

	// Cleanup goroutine
	go func() {
		<-w.ctx.Done()
		w.mu.Lock()
		delete(w.watchers, id)
		close(ch)
		w.mu.Unlock()
	}()

	return ch
}

// notifyWatchers sends change notification to all subscribers
func (w *watcher) notifyWatchers(event string) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, ch := range w.watchers {
		select {
		case ch <- event:
		default:
			// Channel full, drop
		}
	}
}

// stop terminates the watcher
func (w *watcher) stop() {
	w.cancel()

	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.mu.Unlock()

	// Wait for watch loop to exit with timeout
	deadline := time.Now().Add(ShutdownTimeout)
	for w.watching.Load() && time.Now().Before(deadline) {
		time.Sleep(SpinWaitInterval)
	}
}
