// FILE: tunable/spec.go
package tunable

import (
	"fmt"
	"math"
	"sync"

	"github.com/charmbracelet/log"
)

// entry holds the declared and current value of one key.
type entry struct {
	key      string
	label    string
	value    Value
	declared Value    // value from the manifest, restored by Reset
	min      *float64 // slider bounds, doubles only
	max      *float64
	raw      []byte // manifest object, patched on export
	bindings []*binding
}

func (e *entry) clamp(v float64) float64 {
	if e.min != nil && v < *e.min {
		v = *e.min
	}
	if e.max != nil && v > *e.max {
		v = *e.max
	}
	return v
}

// Spec is one named store of tunable values.
//
// Reads may happen from any goroutine. Set, Bind and the notifications they
// trigger are serialized, so observers of one key always see changes in the
// order they were made. Callbacks run on the goroutine that called Set or
// Bind; they may read the spec but must not call Set or Bind on it.
type Spec struct {
	name    string
	entries map[string]*entry
	order   []string // declaration order, runtime additions last
	mutex   sync.RWMutex

	diagnostics []error // skipped manifest entries

	writeMu sync.Mutex // held across read-modify-notify
	nextID  uint64

	logger   *log.Logger
	filePath string
	watcher  *watcher
}

// New creates an empty spec.
func New(name string) *Spec {
	return &Spec{
		name:    name,
		entries: make(map[string]*entry),
	}
}

// NewFromManifest creates a spec seeded from manifest JSON. Malformed entries
// are skipped and logged; only an unreadable document is an error.
func NewFromManifest(name string, data []byte) (*Spec, error) {
	s := New(name)
	if _, err := s.importManifest(data); err != nil {
		return nil, err
	}
	return s, nil
}

// Name returns the spec name.
func (s *Spec) Name() string {
	return s.name
}

func (s *Spec) log() *log.Logger {
	if s.logger != nil {
		return s.logger
	}
	return Logger()
}

// Get returns the value for key, which must be declared with the given kind.
func (s *Spec) Get(key string, kind Kind) (Value, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return Value{}, &KeyNotFoundError{Key: key}
	}
	if e.value.Kind() != kind {
		return Value{}, &TypeMismatchError{Key: key, Stored: e.value.Kind(), Wanted: kind}
	}
	return e.value, nil
}

// Double returns the double value for key.
func (s *Spec) Double(key string) (float64, error) {
	v, err := s.Get(key, KindDouble)
	if err != nil {
		return 0, err
	}
	return v.Double(), nil
}

// Bool returns the bool value for key.
func (s *Spec) Bool(key string) (bool, error) {
	v, err := s.Get(key, KindBool)
	if err != nil {
		return false, err
	}
	return v.Bool(), nil
}

// Color returns the color value for key.
func (s *Spec) Color(key string) (Color, error) {
	v, err := s.Get(key, KindColor)
	if err != nil {
		return Color{}, err
	}
	return v.Color(), nil
}

// Has reports whether key is declared.
func (s *Spec) Has(key string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, ok := s.entries[key]
	return ok
}

// Len returns the number of declared keys.
func (s *Spec) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.order)
}

// Keys returns the declared keys in declaration order.
func (s *Spec) Keys() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]string(nil), s.order...)
}

// Kind returns the declared kind of key.
func (s *Spec) Kind(key string) (Kind, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return 0, &KeyNotFoundError{Key: key}
	}
	return e.value.Kind(), nil
}

// Label returns the display label of key, which defaults to the key itself.
func (s *Spec) Label(key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return "", &KeyNotFoundError{Key: key}
	}
	return e.label, nil
}

// Bounds returns the slider bounds of a double entry. Missing sides are
// reported as -Inf and +Inf; ok is false when neither side is declared.
func (s *Spec) Bounds(key string) (lo, hi float64, ok bool, err error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	e, found := s.entries[key]
	if !found {
		return 0, 0, false, &KeyNotFoundError{Key: key}
	}
	if e.value.Kind() != KindDouble {
		return 0, 0, false, &TypeMismatchError{Key: key, Stored: e.value.Kind(), Wanted: KindDouble}
	}
	lo, hi = math.Inf(-1), math.Inf(1)
	if e.min != nil {
		lo = *e.min
	}
	if e.max != nil {
		hi = *e.max
	}
	return lo, hi, e.min != nil || e.max != nil, nil
}

// Set stores v under key. A new key creates an entry; an existing key must
// hold the same kind. Doubles must be finite and are clamped to declared
// bounds. Bindings
// are notified only when the stored value actually changes.
//
// If a callback fails, Set returns a *CallbackError and the bindings after
// it are not notified; the new value stays stored.
func (s *Spec) Set(key string, v Value) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.setLocked(key, v)
}

// SetDouble is Set with a double value.
func (s *Spec) SetDouble(key string, v float64) error {
	return s.Set(key, Double(v))
}

// SetBool is Set with a bool value.
func (s *Spec) SetBool(key string, v bool) error {
	return s.Set(key, Bool(v))
}

// SetColor is Set with a color value.
func (s *Spec) SetColor(key string, c Color) error {
	return s.Set(key, ColorValue(c))
}

func (s *Spec) setLocked(key string, v Value) error {
	if v.Kind() == KindDouble {
		if err := checkFinite(key, v.Double()); err != nil {
			return err
		}
	}

	s.mutex.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.addEntryLocked(&entry{key: key, label: key, value: v, declared: v})
		s.mutex.Unlock()
		s.log().Debug("Added value", "spec", s.name, "key", key, "value", v)
		return nil
	}

	if e.value.Kind() != v.Kind() {
		s.mutex.Unlock()
		return &TypeMismatchError{Key: key, Stored: e.value.Kind(), Wanted: v.Kind()}
	}
	if v.Kind() == KindDouble {
		v = Double(e.clamp(v.Double()))
	}
	if e.value.Equal(v) {
		s.mutex.Unlock()
		return nil
	}

	e.value = v
	observers := append([]*binding(nil), e.bindings...)
	s.mutex.Unlock()

	s.log().Debug("Value changed", "spec", s.name, "key", key, "value", v, "bindings", len(observers))
	return s.notify(key, observers, v)
}

// AddDouble creates or replaces a double entry keyed by label. With no
// bounds the range is (0, 2*value) for positive values and unbounded
// otherwise; a single bound is the maximum with a minimum of 0; two bounds
// are the minimum and maximum. The value is clamped into the range. The value
// and bounds must be finite.
func (s *Spec) AddDouble(label string, value float64, minMax ...float64) error {
	if label == "" {
		return fmt.Errorf("AddDouble requires a non-empty label")
	}

	var lo, hi *float64
	switch len(minMax) {
	case 0:
		if value > 0 {
			lo, hi = ptr(0), ptr(2*value)
		}
	case 1:
		lo, hi = ptr(0), ptr(minMax[0])
	case 2:
		lo, hi = ptr(minMax[0]), ptr(minMax[1])
	default:
		return fmt.Errorf("AddDouble takes at most two bounds, got %d", len(minMax))
	}
	for _, v := range append([]float64{value}, minMax...) {
		if err := checkFinite(label, v); err != nil {
			return err
		}
	}
	if lo != nil && hi != nil && *lo > *hi {
		return fmt.Errorf("AddDouble %s: minimum %g exceeds maximum %g", label, *lo, *hi)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mutex.Lock()
	e, ok := s.entries[label]
	if !ok {
		e = &entry{key: label, label: label, min: lo, max: hi}
		v := Double(e.clamp(value))
		e.value, e.declared = v, v
		s.addEntryLocked(e)
		s.mutex.Unlock()
		return nil
	}
	if e.value.Kind() != KindDouble {
		s.mutex.Unlock()
		return &TypeMismatchError{Key: label, Stored: e.value.Kind(), Wanted: KindDouble}
	}
	e.min, e.max = lo, hi
	s.mutex.Unlock()

	return s.setLocked(label, Double(value))
}

// Reset restores key to its declared value, notifying bindings if it changes.
func (s *Spec) Reset(key string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mutex.RLock()
	e, ok := s.entries[key]
	var declared Value
	if ok {
		declared = e.declared
	}
	s.mutex.RUnlock()
	if !ok {
		return &KeyNotFoundError{Key: key}
	}
	return s.setLocked(key, declared)
}

// ResetAll restores every key to its declared value. It stops at the first
// callback error.
func (s *Spec) ResetAll() error {
	for _, key := range s.Keys() {
		if err := s.Reset(key); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns the current values keyed by key: float64 for doubles,
// bool for bools and Color for colors. The map is a copy.
func (s *Spec) Snapshot() map[string]any {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	snapshot := make(map[string]any, len(s.entries))
	for key, e := range s.entries {
		snapshot[key] = e.value.Any()
	}
	return snapshot
}

// AsMap is Snapshot, for use as a metrics dictionary in layout code.
func (s *Spec) AsMap() map[string]any {
	return s.Snapshot()
}

func (s *Spec) addEntryLocked(e *entry) {
	if _, exists := s.entries[e.key]; !exists {
		s.order = append(s.order, e.key)
	}
	s.entries[e.key] = e
}

// checkFinite rejects NaN and infinities, which no bound can clamp.
func checkFinite(key string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be finite, got %g", ErrInvalidValue, key, v)
	}
	return nil
}

func ptr(v float64) *float64 {
	return &v
}
