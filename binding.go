// FILE: tunable/binding.go
package tunable

import (
	"fmt"
	"runtime"
	"slices"
	"unsafe"
	"weak"
)

// anyKind lets BindValue observe a key of any kind.
const anyKind Kind = -1

// binding is one (owner, callback) pair registered against a key. The owner
// is held through a weak pointer so a binding never keeps it alive.
type binding struct {
	id      uint64
	resolve func() (any, bool)
	fire    func(owner any, v Value) error
}

type bindingRef struct {
	key string
	id  uint64
}

// BindDouble registers fn to maintain owner from the double at key. fn is
// called once before BindDouble returns and again on every change, for as
// long as owner is reachable. fn must reach owner through its argument:
// capturing owner in the closure keeps it alive forever. Owners of a
// zero-size type such as struct{} are rejected.
func BindDouble[T any](s *Spec, key string, owner *T, fn func(owner *T, v float64) error) error {
	if fn == nil {
		return nilCallback(key)
	}
	return bind(s, key, KindDouble, owner, func(o *T, v Value) error { return fn(o, v.Double()) })
}

// BindBool registers fn to maintain owner from the bool at key. See BindDouble.
func BindBool[T any](s *Spec, key string, owner *T, fn func(owner *T, v bool) error) error {
	if fn == nil {
		return nilCallback(key)
	}
	return bind(s, key, KindBool, owner, func(o *T, v Value) error { return fn(o, v.Bool()) })
}

// BindColor registers fn to maintain owner from the color at key. See BindDouble.
func BindColor[T any](s *Spec, key string, owner *T, fn func(owner *T, c Color) error) error {
	if fn == nil {
		return nilCallback(key)
	}
	return bind(s, key, KindColor, owner, func(o *T, v Value) error { return fn(o, v.Color()) })
}

// BindValue registers fn against key whatever its kind. See BindDouble.
func BindValue[T any](s *Spec, key string, owner *T, fn func(owner *T, v Value) error) error {
	return bind(s, key, anyKind, owner, fn)
}

func bind[T any](s *Spec, key string, kind Kind, owner *T, fn func(*T, Value) error) error {
	if owner == nil {
		return fmt.Errorf("bind %s: owner must not be nil", key)
	}
	// Zero-size values share one address and are never collected.
	if unsafe.Sizeof(*owner) == 0 {
		return fmt.Errorf("bind %s: owner type %T has zero size", key, owner)
	}
	if fn == nil {
		return nilCallback(key)
	}

	wp := weak.Make(owner)
	b := &binding{
		resolve: func() (any, bool) {
			p := wp.Value()
			if p == nil {
				return nil, false
			}
			return p, true
		},
		fire: func(o any, v Value) error {
			return fn(o.(*T), v)
		},
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.register(key, kind, b)
	if err != nil {
		return err
	}
	runtime.AddCleanup(owner, s.dropBinding, bindingRef{key: key, id: b.id})

	s.log().Debug("Bound", "spec", s.name, "key", key, "binding", b.id)
	if err := fn(owner, current); err != nil {
		return &CallbackError{Key: key, Err: err}
	}
	return nil
}

func nilCallback(key string) error {
	return fmt.Errorf("bind %s: callback must not be nil", key)
}

// register appends b to the bindings of key and returns the current value.
// The caller holds writeMu.
func (s *Spec) register(key string, kind Kind, b *binding) (Value, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Value{}, &KeyNotFoundError{Key: key}
	}
	if kind != anyKind && e.value.Kind() != kind {
		return Value{}, &TypeMismatchError{Key: key, Stored: e.value.Kind(), Wanted: kind}
	}

	s.nextID++
	b.id = s.nextID
	e.bindings = append(e.bindings, b)
	return e.value, nil
}

// notify calls each live binding in registration order. Dead bindings are
// skipped and pruned. The first callback error stops delivery.
func (s *Spec) notify(key string, observers []*binding, v Value) error {
	var dead []uint64
	defer func() {
		if len(dead) > 0 {
			s.pruneBindings(key, dead)
		}
	}()

	for _, b := range observers {
		owner, alive := b.resolve()
		if !alive {
			dead = append(dead, b.id)
			continue
		}
		if err := b.fire(owner, v); err != nil {
			s.log().Error("Binding callback failed", "spec", s.name, "key", key, "binding", b.id, "error", err)
			return &CallbackError{Key: key, Err: err}
		}
	}
	return nil
}

// dropBinding runs as a runtime cleanup once the owner is unreachable.
func (s *Spec) dropBinding(ref bindingRef) {
	s.pruneBindings(ref.key, []uint64{ref.id})
}

func (s *Spec) pruneBindings(key string, ids []uint64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return
	}
	e.bindings = slices.DeleteFunc(e.bindings, func(b *binding) bool {
		return slices.Contains(ids, b.id)
	})
}

// BindingCount returns the number of bindings for key whose owners are still
// reachable.
func (s *Spec) BindingCount(key string) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return 0
	}
	n := 0
	for _, b := range e.bindings {
		if _, alive := b.resolve(); alive {
			n++
		}
	}
	return n
}

// bindingSlots returns the number of registered bindings for key, dead or alive.
func (s *Spec) bindingSlots(key string) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if e, ok := s.entries[key]; ok {
		return len(e.bindings)
	}
	return 0
}
