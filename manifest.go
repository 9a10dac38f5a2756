// FILE: tunable/manifest.go
package tunable

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"
)

// Manifest field names.
const (
	fieldKey       = "key"
	fieldLabel     = "label"
	fieldSlider    = "sliderValue"
	fieldSliderMin = "sliderMinValue"
	fieldSliderMax = "sliderMaxValue"
	fieldSwitch    = "switchValue"
	fieldColor     = "colorValue"
)

// Entry is one declared manifest item. Its kind follows from the payload
// field that was present: sliderValue, switchValue or colorValue.
type Entry struct {
	Key   string
	Label string
	Value Value
	Min   *float64
	Max   *float64
	Raw   []byte // the entry object as written, kept for export
}

// ParseManifest classifies every entry of a manifest document. A document
// that is not a JSON array fails with a *ManifestParseError. Individual
// malformed entries are left out of entries and reported in skipped.
func ParseManifest(data []byte) (entries []Entry, skipped []error, err error) {
	if !gjson.ValidBytes(data) {
		return nil, nil, &ManifestParseError{Index: -1, Reason: "invalid JSON"}
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, nil, &ManifestParseError{Index: -1, Reason: "top level must be an array of entries"}
	}

	seen := make(map[string]bool)
	index := 0
	doc.ForEach(func(_, item gjson.Result) bool {
		i := index
		index++

		e, err := parseEntry(i, item)
		if err == nil && seen[e.Key] {
			err = &ManifestParseError{Index: i, Key: e.Key, Reason: "duplicate key"}
		}
		if err != nil {
			skipped = append(skipped, err)
			return true
		}
		seen[e.Key] = true
		entries = append(entries, e)
		return true
	})

	return entries, skipped, nil
}

func parseEntry(i int, item gjson.Result) (Entry, error) {
	if !item.IsObject() {
		return Entry{}, &ManifestParseError{Index: i, Reason: "entry is not an object"}
	}

	key := item.Get(fieldKey)
	if key.Type != gjson.String || key.Str == "" {
		return Entry{}, &ManifestParseError{Index: i, Reason: "missing required string field \"key\""}
	}

	e := Entry{
		Key:   key.Str,
		Label: key.Str,
		Raw:   []byte(item.Raw),
	}
	if label := item.Get(fieldLabel); label.Type == gjson.String && label.Str != "" {
		e.Label = label.Str
	}

	fail := func(format string, args ...any) (Entry, error) {
		return Entry{}, &ManifestParseError{Index: i, Key: e.Key, Reason: fmt.Sprintf(format, args...)}
	}

	var present []string
	for _, f := range []string{fieldSlider, fieldSwitch, fieldColor} {
		if item.Get(f).Exists() {
			present = append(present, f)
		}
	}
	switch len(present) {
	case 0:
		return fail("no value field (%s, %s or %s)", fieldSlider, fieldSwitch, fieldColor)
	case 1:
	default:
		return fail("ambiguous kind, found %s", strings.Join(present, " and "))
	}

	switch present[0] {
	case fieldSlider:
		v := item.Get(fieldSlider)
		if v.Type != gjson.Number {
			return fail("%s must be a number", fieldSlider)
		}
		if !isFinite(v.Num) {
			return fail("%s must be finite", fieldSlider)
		}
		for _, bound := range []struct {
			field string
			dst   **float64
		}{{fieldSliderMin, &e.Min}, {fieldSliderMax, &e.Max}} {
			b := item.Get(bound.field)
			if !b.Exists() {
				continue
			}
			if b.Type != gjson.Number {
				return fail("%s must be a number", bound.field)
			}
			if !isFinite(b.Num) {
				return fail("%s must be finite", bound.field)
			}
			*bound.dst = ptr(b.Num)
		}
		if e.Min != nil && e.Max != nil && *e.Min > *e.Max {
			return fail("%s %g exceeds %s %g", fieldSliderMin, *e.Min, fieldSliderMax, *e.Max)
		}
		e.Value = Double(v.Num)

	case fieldSwitch:
		v := item.Get(fieldSwitch)
		if v.Type != gjson.True && v.Type != gjson.False {
			return fail("%s must be a boolean", fieldSwitch)
		}
		e.Value = Bool(v.Bool())

	case fieldColor:
		c, err := parseColorField(item.Get(fieldColor))
		if err != nil {
			return Entry{}, &ManifestParseError{Index: i, Key: e.Key, Reason: err.Error(), Err: err}
		}
		e.Value = ColorValue(c)
	}

	return e, nil
}

// parseColorField accepts a color string, or an array of equivalent
// representations of which the first parseable one wins.
func parseColorField(v gjson.Result) (Color, error) {
	switch {
	case v.Type == gjson.String:
		return ParseColor(v.Str)
	case v.IsArray():
		var errs []error
		for _, rep := range v.Array() {
			if rep.Type != gjson.String {
				continue
			}
			c, err := ParseColor(rep.Str)
			if err == nil {
				return c, nil
			}
			errs = append(errs, err)
		}
		if len(errs) == 0 {
			return Color{}, fmt.Errorf("%s array holds no strings", fieldColor)
		}
		return Color{}, errors.Join(errs...)
	}
	return Color{}, fmt.Errorf("%s must be a string or an array of strings", fieldColor)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func newEntry(e Entry) *entry {
	v := e.Value
	ent := &entry{
		key:   e.Key,
		label: e.Label,
		min:   e.Min,
		max:   e.Max,
		raw:   e.Raw,
	}
	if v.Kind() == KindDouble {
		v = Double(ent.clamp(v.Double()))
	}
	ent.value, ent.declared = v, v
	return ent
}

// importManifest parses manifest JSON and reconciles it into the spec.
func (s *Spec) importManifest(data []byte) ([]string, error) {
	entries, skipped, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}

	for _, e := range skipped {
		s.log().Warn("Skipped manifest entry", "spec", s.name, "error", e)
	}
	s.mutex.Lock()
	s.diagnostics = skipped
	s.mutex.Unlock()

	changed, err := s.reconcile(entries)
	s.log().Debug("Imported manifest", "spec", s.name, "entries", len(entries), "skipped", len(skipped), "changed", len(changed))
	return changed, err
}

// reconcile merges declared entries into the spec. New keys are added.
// Existing keys take the declared label and bounds. Their value moves to the
// declared value only when the declaration itself changed, so values tuned
// at runtime survive a reload that does not touch them; either way the value
// is clamped into the new bounds. A key whose declared kind differs from the
// stored kind is left alone. It returns the keys that were added or changed
// value.
func (s *Spec) reconcile(entries []Entry) ([]string, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var changed []string
	var errs []error
	for _, e := range entries {
		fresh := newEntry(e)

		s.mutex.Lock()
		cur, ok := s.entries[e.Key]
		if !ok {
			s.addEntryLocked(fresh)
			s.mutex.Unlock()
			changed = append(changed, e.Key)
			continue
		}
		if cur.value.Kind() != fresh.value.Kind() {
			s.mutex.Unlock()
			err := &TypeMismatchError{Key: e.Key, Stored: cur.value.Kind(), Wanted: fresh.value.Kind()}
			s.log().Warn("Declared kind changed, keeping stored value", "spec", s.name, "key", e.Key, "error", err)
			errs = append(errs, err)
			continue
		}
		target := cur.value
		if !cur.declared.Equal(fresh.declared) {
			target = fresh.declared
		}
		cur.label, cur.min, cur.max, cur.raw = fresh.label, fresh.min, fresh.max, fresh.raw
		cur.declared = fresh.declared
		before := cur.value
		s.mutex.Unlock()

		err := s.setLocked(e.Key, target)
		if err != nil {
			errs = append(errs, err)
		}

		s.mutex.RLock()
		after := cur.value
		s.mutex.RUnlock()
		if !before.Equal(after) {
			changed = append(changed, e.Key)
		}
	}
	return changed, errors.Join(errs...)
}

// Diagnostics returns the errors for manifest entries skipped by the most
// recent import.
func (s *Spec) Diagnostics() []error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]error(nil), s.diagnostics...)
}
